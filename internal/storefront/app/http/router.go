// Package http содержит компоненты HTTP сервера, отдающего состояние клиента слою представления.
package http

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/storefront/app/http/admin"
	"storefront/internal/storefront/app/http/auth"
	"storefront/internal/storefront/app/http/catalog"
	"storefront/internal/storefront/app/http/middleware"
	"storefront/internal/storefront/app/http/respond"
	"storefront/internal/storefront/ports/services"
	"storefront/pkg/logger"
)

// Dependencies - сервисы, которые обслуживает HTTP сервер.
type Dependencies struct {
	Auth         services.AuthService
	Catalog      services.CatalogService
	Generation   services.GenerationService
	Gatherer     prometheus.Gatherer
	Logger       *logger.Logger
	LandingRoute string
}

// SetupRouter настраивает маршрутизацию.
func SetupRouter(app *fiber.App, deps Dependencies) {
	render := respond.NewRenderer(deps.LandingRoute)
	authHandler := auth.NewHandler(deps.Auth, render)
	catalogHandler := catalog.NewHandler(deps.Catalog, render)
	adminHandler := admin.NewHandler(deps.Generation, render)
	formHandler := admin.NewFormHandler(deps.Catalog, render)

	app.Use(middleware.NewLoggerMiddleware(deps.Logger))
	app.Use(middleware.NewRecoveryMiddleware())

	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := app.Group("/api/v1")

	apiV1.Get("/session", authHandler.Session)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/logout", authHandler.Logout)

	apiV1.Get("/user", catalogHandler.User)

	apiV1.Get("/categories", catalogHandler.Categories)
	apiV1.Get("/categories/names", catalogHandler.CategoryNames)
	apiV1.Get("/categories/popular", catalogHandler.PopularCategories)
	apiV1.Get("/categories/:id", catalogHandler.Category)
	apiV1.Post("/categories", formHandler.CreateCategory)
	apiV1.Put("/categories/:id", formHandler.UpdateCategory)
	apiV1.Delete("/categories/:id", catalogHandler.DeleteCategory)

	apiV1.Get("/products", catalogHandler.Products)
	apiV1.Get("/products/:id", catalogHandler.Product)
	apiV1.Post("/products", formHandler.CreateProduct)
	apiV1.Put("/products/:id", formHandler.UpdateProduct)
	apiV1.Delete("/products/:id", catalogHandler.DeleteProduct)
	apiV1.Get("/products/:id/similar", catalogHandler.Similar)
	apiV1.Get("/recommendations", catalogHandler.Recommendations)
	apiV1.Get("/statistics", catalogHandler.Statistics)

	apiV1.Get("/cart", catalogHandler.Cart)
	apiV1.Post("/cart", catalogHandler.AddCartItem)
	apiV1.Delete("/cart/:id", catalogHandler.DeleteCartItem)

	apiV1.Get("/cache", catalogHandler.Cache)

	adminRoutes := apiV1.Group("/admin/generate")
	adminRoutes.Post("/category", adminHandler.GenerateCategory)
	adminRoutes.Post("/product", adminHandler.GenerateProduct)

	app.Use(func(ctx fiber.Ctx) error {
		return respond.JSON(ctx, fiber.StatusNotFound, fiber.Map{"error": respond.ErrorRouteNotFound})
	})
}
