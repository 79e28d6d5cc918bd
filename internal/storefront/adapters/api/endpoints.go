package api

import (
	"context"
	"net/url"
	"strconv"

	"storefront/internal/storefront/adapters/transport"
	"storefront/internal/storefront/app/querycache"
	"storefront/internal/storefront/domain/entities"
)

// Void - результат мутации без тела ответа.
type Void struct{}

func query[A, T any](doer transport.Doer, name string, build func(args A) *transport.Request, provides ...querycache.Tag) querycache.Query[A, T] {
	return querycache.Query[A, T]{
		Name:     name,
		Provides: provides,
		Fetch: func(ctx context.Context, args A) (T, error) {
			return transport.Call[T](ctx, doer, build(args))
		},
	}
}

func mutation[A, T any](doer transport.Doer, name string, build func(args A) *transport.Request, invalidates ...querycache.Tag) querycache.Mutation[A, T] {
	return querycache.Mutation[A, T]{
		Name:        name,
		Invalidates: invalidates,
		Run: func(ctx context.Context, args A) (T, error) {
			return transport.Call[T](ctx, doer, build(args))
		},
	}
}

// command - мутация, тело ответа которой не разбирается.
func command[A any](doer transport.Doer, name string, build func(args A) *transport.Request, invalidates ...querycache.Tag) querycache.Mutation[A, Void] {
	return querycache.Mutation[A, Void]{
		Name:        name,
		Invalidates: invalidates,
		Run: func(ctx context.Context, args A) (Void, error) {
			_, err := doer.Do(ctx, build(args))
			return Void{}, err
		},
	}
}

func pageValues(p entities.PageParams) url.Values {
	return url.Values{
		"page_size": {strconv.Itoa(p.PageSize)},
		"page":      {strconv.Itoa(p.Page)},
	}
}

func filterValues(f entities.Filter) url.Values {
	v := pageValues(f.PageParams)
	v.Set("query", f.Query)
	return v
}

func idValues(id int) url.Values {
	return url.Values{"id": {strconv.Itoa(id)}}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
