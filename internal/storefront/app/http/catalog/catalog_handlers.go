// Package catalog содержит HTTP обработчики каталога, корзины и состояния кэша.
package catalog

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"storefront/internal/storefront/app/http/respond"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/ports/services"
	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerCatalog = "catalog handler"

	ErrorInvalidID = "invalid id"
	MessageDeleted = "deleted"
	MessageAdded   = "added"
)

// Handler содержит HTTP обработчики каталога.
type Handler struct {
	catalog services.CatalogService
	render  *respond.Renderer
}

// NewHandler создает обработчик.
func NewHandler(catalog services.CatalogService, render *respond.Renderer) *Handler {
	return &Handler{catalog: catalog, render: render}
}

func (h *Handler) trace(ctx fiber.Ctx, op string) {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerCatalog, zap.String("operation", op))
}

func reply[T any](h *Handler, ctx fiber.Ctx, value T, err error) error {
	if err != nil {
		return h.render.Error(ctx, err, nil)
	}
	return respond.JSON(ctx, http.StatusOK, value)
}

// Categories возвращает страницу категорий.
func (h *Handler) Categories(ctx fiber.Ctx) error {
	h.trace(ctx, "categories")
	page, err := h.catalog.Categories(ctx.Context(), filter(ctx))
	return reply(h, ctx, page, err)
}

// CategoryNames возвращает список названий категорий.
func (h *Handler) CategoryNames(ctx fiber.Ctx) error {
	h.trace(ctx, "category names")
	names, err := h.catalog.CategoryNames(ctx.Context())
	return reply(h, ctx, names, err)
}

// PopularCategories возвращает популярные категории.
func (h *Handler) PopularCategories(ctx fiber.Ctx) error {
	h.trace(ctx, "popular categories")
	page, err := h.catalog.PopularCategories(ctx.Context(), pageParams(ctx))
	return reply(h, ctx, page, err)
}

// Category возвращает категорию.
func (h *Handler) Category(ctx fiber.Ctx) error {
	h.trace(ctx, "category")
	id, ok := pathID(ctx)
	if !ok {
		return respond.BadRequest(ctx, ErrorInvalidID)
	}
	category, err := h.catalog.Category(ctx.Context(), id)
	return reply(h, ctx, category, err)
}

// DeleteCategory удаляет категорию.
func (h *Handler) DeleteCategory(ctx fiber.Ctx) error {
	h.trace(ctx, "delete category")
	id, ok := pathID(ctx)
	if !ok {
		return respond.BadRequest(ctx, ErrorInvalidID)
	}
	err := h.catalog.DeleteCategory(ctx.Context(), id)
	return reply(h, ctx, fiber.Map{"message": MessageDeleted}, err)
}

// Products возвращает страницу товаров.
func (h *Handler) Products(ctx fiber.Ctx) error {
	h.trace(ctx, "products")
	page, err := h.catalog.Products(ctx.Context(), filter(ctx))
	return reply(h, ctx, page, err)
}

// Product возвращает товар. Параметры query и source передаются бэкенду для учета просмотров.
func (h *Handler) Product(ctx fiber.Ctx) error {
	h.trace(ctx, "product")
	id, ok := pathID(ctx)
	if !ok {
		return respond.BadRequest(ctx, ErrorInvalidID)
	}
	product, err := h.catalog.Product(ctx.Context(), entities.ProductParams{
		ID:     id,
		Query:  ctx.Query("query"),
		Source: ctx.Query("source"),
	})
	return reply(h, ctx, product, err)
}

// DeleteProduct удаляет товар.
func (h *Handler) DeleteProduct(ctx fiber.Ctx) error {
	h.trace(ctx, "delete product")
	id, ok := pathID(ctx)
	if !ok {
		return respond.BadRequest(ctx, ErrorInvalidID)
	}
	err := h.catalog.DeleteProduct(ctx.Context(), id)
	return reply(h, ctx, fiber.Map{"message": MessageDeleted}, err)
}

// Recommendations возвращает рекомендации по фильтру.
func (h *Handler) Recommendations(ctx fiber.Ctx) error {
	h.trace(ctx, "recommendations")
	page, err := h.catalog.Recommendations(ctx.Context(), productFilter(ctx))
	return reply(h, ctx, page, err)
}

// Similar возвращает похожие товары.
func (h *Handler) Similar(ctx fiber.Ctx) error {
	h.trace(ctx, "similar")
	id, ok := pathID(ctx)
	if !ok {
		return respond.BadRequest(ctx, ErrorInvalidID)
	}
	page, err := h.catalog.Similar(ctx.Context(), entities.RelatedParams{PageParams: pageParams(ctx), Product: id})
	return reply(h, ctx, page, err)
}

// Statistics возвращает статистику админ-панели.
func (h *Handler) Statistics(ctx fiber.Ctx) error {
	h.trace(ctx, "statistics")
	stats, err := h.catalog.Statistics(ctx.Context())
	return reply(h, ctx, stats, err)
}

// Cart возвращает корзину.
func (h *Handler) Cart(ctx fiber.Ctx) error {
	h.trace(ctx, "cart")
	page, err := h.catalog.Cart(ctx.Context(), pageParams(ctx))
	return reply(h, ctx, page, err)
}

// AddCartItem добавляет товар в корзину.
func (h *Handler) AddCartItem(ctx fiber.Ctx) error {
	h.trace(ctx, "add cart item")
	var item entities.CartItemInput
	if err := ctx.Bind().JSON(&item); err != nil || item.Product <= 0 {
		return respond.BadRequest(ctx, respond.ErrorInvalidRequest)
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if err := h.catalog.AddCartItem(ctx.Context(), item); err != nil {
		return h.render.Error(ctx, err, nil)
	}
	return respond.JSON(ctx, http.StatusCreated, fiber.Map{"message": MessageAdded})
}

// DeleteCartItem удаляет позицию корзины.
func (h *Handler) DeleteCartItem(ctx fiber.Ctx) error {
	h.trace(ctx, "delete cart item")
	id, ok := pathID(ctx)
	if !ok {
		return respond.BadRequest(ctx, ErrorInvalidID)
	}
	err := h.catalog.DeleteCartItem(ctx.Context(), id)
	return reply(h, ctx, fiber.Map{"message": MessageDeleted}, err)
}

// User возвращает профиль текущего пользователя.
func (h *Handler) User(ctx fiber.Ctx) error {
	h.trace(ctx, "user")
	user, err := h.catalog.User(ctx.Context())
	return reply(h, ctx, user, err)
}

// Cache возвращает записи кэша запросов.
func (h *Handler) Cache(ctx fiber.Ctx) error {
	h.trace(ctx, "cache")
	return respond.JSON(ctx, http.StatusOK, h.catalog.Entries())
}
