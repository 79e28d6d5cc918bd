package services

import (
	"context"

	"go.uber.org/zap"

	"storefront/internal/storefront/adapters/api"
	"storefront/internal/storefront/app/querycache"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/ports/services"
	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	LogCatalogMutation = "catalog service: mutation"
)

// CatalogServiceImpl выполняет запросы через кэш. Данные, уже находящиеся в кэше,
// возвращаются без обращения к бэкенду до инвалидации или вытеснения.
type CatalogServiceImpl struct {
	engine *querycache.Engine
	api    *api.StoreAPI
}

var _ services.CatalogService = (*CatalogServiceImpl)(nil)

// NewCatalogService создает сервис каталога.
func NewCatalogService(engine *querycache.Engine, storeAPI *api.StoreAPI) *CatalogServiceImpl {
	return &CatalogServiceImpl{engine: engine, api: storeAPI}
}

func execute[A, T any](ctx context.Context, e *querycache.Engine, m querycache.Mutation[A, T], args A) (T, error) {
	logger.Log(ctx).Info(ctx, LogCatalogMutation, zap.String("mutation", m.Name))
	return querycache.Execute(ctx, e, m, args)
}

func (s *CatalogServiceImpl) Categories(ctx context.Context, filter entities.Filter) (entities.Page[entities.Category], error) {
	return querycache.Fetch(ctx, s.engine, s.api.GetCategories, filter)
}

func (s *CatalogServiceImpl) Category(ctx context.Context, id int) (entities.Category, error) {
	return querycache.Fetch(ctx, s.engine, s.api.GetCategory, id)
}

func (s *CatalogServiceImpl) PopularCategories(ctx context.Context, params entities.PageParams) (entities.Page[entities.CategoryCard], error) {
	return querycache.Fetch(ctx, s.engine, s.api.GetPopularCategories, params)
}

func (s *CatalogServiceImpl) CategoryNames(ctx context.Context) ([]entities.CategoryName, error) {
	return querycache.Fetch(ctx, s.engine, s.api.GetCategoriesNames, api.Void{})
}

func (s *CatalogServiceImpl) AddCategory(ctx context.Context, input entities.CategoryInput) error {
	_, err := execute(ctx, s.engine, s.api.AddCategory, input)
	return err
}

func (s *CatalogServiceImpl) UpdateCategory(ctx context.Context, update entities.CategoryUpdate) error {
	_, err := execute(ctx, s.engine, s.api.UpdateCategory, update)
	return err
}

func (s *CatalogServiceImpl) DeleteCategory(ctx context.Context, id int) error {
	_, err := execute(ctx, s.engine, s.api.DeleteCategory, id)
	return err
}

func (s *CatalogServiceImpl) Products(ctx context.Context, filter entities.Filter) (entities.Page[entities.Product], error) {
	return querycache.Fetch(ctx, s.engine, s.api.GetProducts, filter)
}

func (s *CatalogServiceImpl) Product(ctx context.Context, params entities.ProductParams) (entities.Product, error) {
	return querycache.Fetch(ctx, s.engine, s.api.GetProduct, params)
}

func (s *CatalogServiceImpl) Recommendations(ctx context.Context, filter entities.ProductFilter) (entities.Page[entities.ProductCard], error) {
	return querycache.Fetch(ctx, s.engine, s.api.GetRecommendations, filter)
}

func (s *CatalogServiceImpl) Similar(ctx context.Context, params entities.RelatedParams) (entities.Page[entities.ProductCard], error) {
	return querycache.Fetch(ctx, s.engine, s.api.GetRelatedProducts, params)
}

func (s *CatalogServiceImpl) AddProduct(ctx context.Context, input entities.ProductInput) error {
	_, err := execute(ctx, s.engine, s.api.AddProduct, input)
	return err
}

func (s *CatalogServiceImpl) UpdateProduct(ctx context.Context, update entities.ProductUpdate) error {
	_, err := execute(ctx, s.engine, s.api.UpdateProduct, update)
	return err
}

func (s *CatalogServiceImpl) DeleteProduct(ctx context.Context, id int) error {
	_, err := execute(ctx, s.engine, s.api.DeleteProduct, id)
	return err
}

func (s *CatalogServiceImpl) Statistics(ctx context.Context) ([]entities.Statistic, error) {
	return querycache.Fetch(ctx, s.engine, s.api.GetStatistics, api.Void{})
}

func (s *CatalogServiceImpl) Cart(ctx context.Context, params entities.PageParams) (entities.Page[entities.CartItem], error) {
	return querycache.Fetch(ctx, s.engine, s.api.GetCart, params)
}

func (s *CatalogServiceImpl) AddCartItem(ctx context.Context, input entities.CartItemInput) error {
	_, err := execute(ctx, s.engine, s.api.AddCartItem, input)
	return err
}

func (s *CatalogServiceImpl) DeleteCartItem(ctx context.Context, id int) error {
	_, err := execute(ctx, s.engine, s.api.DeleteCartItem, id)
	return err
}

func (s *CatalogServiceImpl) User(ctx context.Context) (entities.User, error) {
	return querycache.Fetch(ctx, s.engine, s.api.GetUser, api.Void{})
}

// DecodeImage загружает изображение по URL через бэкенд. Подходит как generator.ImageDecoder.
func (s *CatalogServiceImpl) DecodeImage(ctx context.Context, url string) (entities.EncodedImage, error) {
	return execute(ctx, s.engine, s.api.GetBase64Image, url)
}

// Entries возвращает содержимое кэша.
func (s *CatalogServiceImpl) Entries() []querycache.EntryInfo {
	return s.engine.Entries()
}
