package services

import (
	"context"
	"fmt"

	"storefront/internal/storefront/app/generator"
	"storefront/internal/storefront/ports/services"
)

// ErrorLoadCategoryNames - ошибка загрузки списка категорий.
const ErrorLoadCategoryNames = "failed to load category names"

// GenerationServiceImpl подготавливает данные для генератора.
type GenerationServiceImpl struct {
	generator *generator.Generator
	catalog   services.CatalogService
}

var _ services.GenerationService = (*GenerationServiceImpl)(nil)

// NewGenerationService создает сервис генерации.
func NewGenerationService(gen *generator.Generator, catalog services.CatalogService) *GenerationServiceImpl {
	return &GenerationServiceImpl{generator: gen, catalog: catalog}
}

// GenerateCategory генерирует поля категории.
func (s *GenerationServiceImpl) GenerateCategory(ctx context.Context, name string) (generator.Result[generator.CategoryPatch], error) {
	return s.generator.GenerateCategory(ctx, name)
}

// GenerateProduct загружает список категорий и генерирует поля товара.
func (s *GenerationServiceImpl) GenerateProduct(ctx context.Context, draft generator.ProductDraft) (generator.Result[generator.ProductPatch], error) {
	names, err := s.catalog.CategoryNames(ctx)
	if err != nil {
		return generator.Result[generator.ProductPatch]{}, fmt.Errorf("%s: %w", ErrorLoadCategoryNames, err)
	}
	return s.generator.GenerateProduct(ctx, draft, names)
}
