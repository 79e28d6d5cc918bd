package catalog

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"storefront/internal/storefront/domain/entities"
)

const (
	defaultPage     = 1
	defaultPageSize = 12
)

func intQuery(ctx fiber.Ctx, name string, def int) int {
	v, err := strconv.Atoi(ctx.Query(name))
	if err != nil {
		return def
	}
	return v
}

func floatQuery(ctx fiber.Ctx, name string) float64 {
	v, err := strconv.ParseFloat(ctx.Query(name), 64)
	if err != nil {
		return 0
	}
	return v
}

func pageParams(ctx fiber.Ctx) entities.PageParams {
	return entities.PageParams{
		Page:     intQuery(ctx, "page", defaultPage),
		PageSize: intQuery(ctx, "page_size", defaultPageSize),
	}
}

func filter(ctx fiber.Ctx) entities.Filter {
	return entities.Filter{PageParams: pageParams(ctx), Query: ctx.Query("query")}
}

// productFilter читает фильтр рекомендаций. categories передаются через запятую.
func productFilter(ctx fiber.Ctx) entities.ProductFilter {
	f := entities.ProductFilter{
		PageParams: pageParams(ctx),
		PriceMin:   floatQuery(ctx, "price_min"),
		PriceMax:   floatQuery(ctx, "price_max"),
		Sort:       entities.Sort(ctx.Query("sort")),
		Query:      ctx.Query("query"),
	}
	for _, part := range strings.Split(ctx.Query("categories"), ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			f.Categories = append(f.Categories, id)
		}
	}
	return f
}

func pathID(ctx fiber.Ctx) (int, bool) {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
