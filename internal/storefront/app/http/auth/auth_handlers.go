// Package auth содержит HTTP обработчики входа, регистрации и состояния сессии.
package auth

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
	LogHandlerRegister = "auth handler: register"
	LogHandlerLogin    = "auth handler: login"
	LogHandlerLogout   = "auth handler: logout"
	LogHandlerSession  = "auth handler: session"

	ErrorCredentialsRequired = "email and password are required"
	MessageLoggedOut         = "logged out successfully"
)

// Handler содержит HTTP обработчики авторизации.
type Handler struct {
	authService services.AuthService
	render      *respond.Renderer
}

// NewHandler создает обработчик.
func NewHandler(authService services.AuthService, render *respond.Renderer) *Handler {
	return &Handler{authService: authService, render: render}
}

// Session возвращает текущее состояние сессии.
func (h *Handler) Session(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerSession)
	return respond.JSON(ctx, http.StatusOK, h.authService.State())
}

// Register регистрирует пользователя и выполняет вход.
func (h *Handler) Register(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerRegister)

	var req entities.RegisterRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Warn(requestCtx, respond.ErrorInvalidRequest, zap.Error(err))
		return respond.BadRequest(ctx, respond.ErrorInvalidRequest)
	}
	if req.Email == "" || req.Password == "" {
		return respond.BadRequest(ctx, ErrorCredentialsRequired)
	}

	state, err := h.authService.Register(requestCtx, req)
	if err != nil {
		return h.render.Error(ctx, err, nil)
	}
	return respond.JSON(ctx, http.StatusCreated, state)
}

// Login выполняет вход.
func (h *Handler) Login(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerLogin)

	var req entities.LoginRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Warn(requestCtx, respond.ErrorInvalidRequest, zap.Error(err))
		return respond.BadRequest(ctx, respond.ErrorInvalidRequest)
	}
	if req.Email == "" || req.Password == "" {
		return respond.BadRequest(ctx, ErrorCredentialsRequired)
	}

	state, err := h.authService.Login(requestCtx, req)
	if err != nil {
		return h.render.Error(ctx, err, nil)
	}
	return respond.JSON(ctx, http.StatusOK, state)
}

// Logout завершает сессию.
func (h *Handler) Logout(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Info(requestCtx, LogHandlerLogout)

	if err := h.authService.Logout(requestCtx); err != nil {
		return h.render.Error(ctx, err, nil)
	}
	return respond.JSON(ctx, http.StatusOK, fiber.Map{"message": MessageLoggedOut})
}
