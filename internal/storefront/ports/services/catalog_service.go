package services

import (
	"context"

	"storefront/internal/storefront/app/querycache"
	"storefront/internal/storefront/domain/entities"
)

// CatalogService читает и изменяет ресурсы витрины через кэш запросов.
type CatalogService interface {
	Categories(ctx context.Context, filter entities.Filter) (entities.Page[entities.Category], error)
	Category(ctx context.Context, id int) (entities.Category, error)
	PopularCategories(ctx context.Context, params entities.PageParams) (entities.Page[entities.CategoryCard], error)
	CategoryNames(ctx context.Context) ([]entities.CategoryName, error)
	AddCategory(ctx context.Context, input entities.CategoryInput) error
	UpdateCategory(ctx context.Context, update entities.CategoryUpdate) error
	DeleteCategory(ctx context.Context, id int) error

	Products(ctx context.Context, filter entities.Filter) (entities.Page[entities.Product], error)
	Product(ctx context.Context, params entities.ProductParams) (entities.Product, error)
	Recommendations(ctx context.Context, filter entities.ProductFilter) (entities.Page[entities.ProductCard], error)
	Similar(ctx context.Context, params entities.RelatedParams) (entities.Page[entities.ProductCard], error)
	AddProduct(ctx context.Context, input entities.ProductInput) error
	UpdateProduct(ctx context.Context, update entities.ProductUpdate) error
	DeleteProduct(ctx context.Context, id int) error

	Statistics(ctx context.Context) ([]entities.Statistic, error)

	Cart(ctx context.Context, params entities.PageParams) (entities.Page[entities.CartItem], error)
	AddCartItem(ctx context.Context, input entities.CartItemInput) error
	DeleteCartItem(ctx context.Context, id int) error

	User(ctx context.Context) (entities.User, error)
	DecodeImage(ctx context.Context, url string) (entities.EncodedImage, error)

	Entries() []querycache.EntryInfo
}
