package services

import (
	"context"

	"storefront/internal/storefront/app/generator"
)

// GenerationService формирует подсказки для форм админ-панели.
type GenerationService interface {
	GenerateCategory(ctx context.Context, name string) (generator.Result[generator.CategoryPatch], error)
	GenerateProduct(ctx context.Context, draft generator.ProductDraft) (generator.Result[generator.ProductPatch], error)
}
