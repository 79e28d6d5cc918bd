// Package admin содержит HTTP обработчики генерации контента админ-панели.
package admin

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"storefront/internal/storefront/app/http/respond"
	"storefront/internal/storefront/ports/services"
	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerGenerateCategory = "admin handler: generate category"
	LogHandlerGenerateProduct  = "admin handler: generate product"

	ErrorInvalidImage = "invalid image data"
)

// Handler содержит HTTP обработчики генерации.
type Handler struct {
	generation services.GenerationService
	render     *respond.Renderer
}

// NewHandler создает обработчик.
func NewHandler(generation services.GenerationService, render *respond.Renderer) *Handler {
	return &Handler{generation: generation, render: render}
}

// GenerateCategory генерирует описание и иконку категории.
// Частичный успех возвращается с кодом 200, ошибки веток перечислены в errors.
func (h *Handler) GenerateCategory(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerGenerateCategory)

	var req GenerateCategoryRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Warn(requestCtx, respond.ErrorInvalidRequest, zap.Error(err))
		return respond.BadRequest(ctx, respond.ErrorInvalidRequest)
	}

	res, err := h.generation.GenerateCategory(requestCtx, req.Name)
	if err != nil {
		return h.render.Error(ctx, err, res.Errors)
	}
	return respond.JSON(ctx, http.StatusOK, categoryResult(res))
}

// GenerateProduct генерирует описание, цену, категории и изображение товара.
func (h *Handler) GenerateProduct(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerGenerateProduct)

	var req GenerateProductRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Warn(requestCtx, respond.ErrorInvalidRequest, zap.Error(err))
		return respond.BadRequest(ctx, respond.ErrorInvalidRequest)
	}
	draft, err := req.draft()
	if err != nil {
		log.Warn(requestCtx, ErrorInvalidImage, zap.Error(err))
		return respond.BadRequest(ctx, ErrorInvalidImage)
	}

	res, err := h.generation.GenerateProduct(requestCtx, draft)
	if err != nil {
		return h.render.Error(ctx, err, res.Errors)
	}
	return respond.JSON(ctx, http.StatusOK, productResult(res))
}
