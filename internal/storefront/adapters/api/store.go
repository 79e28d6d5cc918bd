package api

import (
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/storefront/adapters/transport"
	"storefront/internal/storefront/app/querycache"
	"storefront/internal/storefront/domain/entities"
)

// Поля multipart форм.
const (
	FieldName           = "name"
	FieldDescription    = "description"
	FieldPrice          = "price"
	FieldImage          = "image"
	FieldImageURL       = "image_url"
	FieldImagesData     = "images_data"
	FieldExistingImages = "existing_images"
	FieldCategoryIDs    = "category_ids"
)

// StoreAPI - декларации эндпоинтов витрины. Чтения объявляют предоставляемые теги,
// записи инвалидируют ровно тег своего вида ресурса.
type StoreAPI struct {
	GetCategories        querycache.Query[entities.Filter, entities.Page[entities.Category]]
	GetCategory          querycache.Query[int, entities.Category]
	GetPopularCategories querycache.Query[entities.PageParams, entities.Page[entities.CategoryCard]]
	GetCategoriesNames   querycache.Query[Void, []entities.CategoryName]
	AddCategory          querycache.Mutation[entities.CategoryInput, Void]
	UpdateCategory       querycache.Mutation[entities.CategoryUpdate, Void]
	DeleteCategory       querycache.Mutation[int, Void]

	GetBase64Image querycache.Mutation[string, entities.EncodedImage]

	GetProducts        querycache.Query[entities.Filter, entities.Page[entities.Product]]
	GetProduct         querycache.Query[entities.ProductParams, entities.Product]
	GetRecommendations querycache.Query[entities.ProductFilter, entities.Page[entities.ProductCard]]
	GetRelatedProducts querycache.Query[entities.RelatedParams, entities.Page[entities.ProductCard]]
	AddProduct         querycache.Mutation[entities.ProductInput, Void]
	UpdateProduct      querycache.Mutation[entities.ProductUpdate, Void]
	DeleteProduct      querycache.Mutation[int, Void]

	GetStatistics querycache.Query[Void, []entities.Statistic]

	GetCart        querycache.Query[entities.PageParams, entities.Page[entities.CartItem]]
	AddCartItem    querycache.Mutation[entities.CartItemInput, Void]
	DeleteCartItem querycache.Mutation[int, Void]

	GetUser querycache.Query[Void, entities.User]
}

// NewStoreAPI строит декларации поверх doer. doer должен прикреплять access токен.
func NewStoreAPI(doer transport.Doer) *StoreAPI {
	return &StoreAPI{
		// категории
		GetCategories: query[entities.Filter, entities.Page[entities.Category]](doer, "getCategories",
			func(f entities.Filter) *transport.Request {
				return &transport.Request{Method: http.MethodGet, Path: "categories", Query: filterValues(f)}
			}, querycache.TagCategory),
		GetCategory: query[int, entities.Category](doer, "getCategory",
			func(id int) *transport.Request {
				return &transport.Request{Method: http.MethodGet, Path: "category/" + strconv.Itoa(id) + "/"}
			}, querycache.TagCategory),
		GetPopularCategories: query[entities.PageParams, entities.Page[entities.CategoryCard]](doer, "getPopularCategories",
			func(p entities.PageParams) *transport.Request {
				return &transport.Request{Method: http.MethodGet, Path: "popular-categories", Query: pageValues(p)}
			}, querycache.TagCategory),
		GetCategoriesNames: query[Void, []entities.CategoryName](doer, "getCategoriesNames",
			func(Void) *transport.Request {
				return &transport.Request{Method: http.MethodGet, Path: "categories/names"}
			}, querycache.TagCategory),
		AddCategory: command(doer, "addCategory",
			func(c entities.CategoryInput) *transport.Request {
				return &transport.Request{Method: http.MethodPost, Path: "categories", Body: categoryForm(c)}
			}, querycache.TagCategory),
		UpdateCategory: command(doer, "updateCategory",
			func(c entities.CategoryUpdate) *transport.Request {
				return &transport.Request{Method: http.MethodPut, Path: "categories", Query: idValues(c.ID), Body: categoryForm(c.CategoryInput)}
			}, querycache.TagCategory),
		DeleteCategory: command(doer, "deleteCategory",
			func(id int) *transport.Request {
				return &transport.Request{Method: http.MethodDelete, Path: "categories", Query: idValues(id)}
			}, querycache.TagCategory),

		// изображения
		GetBase64Image: mutation[string, entities.EncodedImage](doer, "getBase64Image",
			func(u string) *transport.Request {
				return &transport.Request{
					Method: http.MethodPost,
					Path:   "image-decode",
					Body:   transport.JSONBody(map[string]string{"url": u}),
				}
			}),

		// товары
		GetProducts: query[entities.Filter, entities.Page[entities.Product]](doer, "getProducts",
			func(f entities.Filter) *transport.Request {
				return &transport.Request{Method: http.MethodGet, Path: "products", Query: filterValues(f)}
			}, querycache.TagProduct),
		GetProduct: query[entities.ProductParams, entities.Product](doer, "getProduct",
			func(p entities.ProductParams) *transport.Request {
				v := url.Values{}
				if p.Query != "" {
					v.Set("query", p.Query)
				}
				if p.Source != "" {
					v.Set("source", p.Source)
				}
				return &transport.Request{Method: http.MethodGet, Path: "product/" + strconv.Itoa(p.ID) + "/", Query: v}
			}, querycache.TagProduct),
		GetRecommendations: query[entities.ProductFilter, entities.Page[entities.ProductCard]](doer, "getRecommendsProducts",
			func(f entities.ProductFilter) *transport.Request {
				return &transport.Request{Method: http.MethodGet, Path: "recommendation/", Query: recommendationValues(f)}
			}, querycache.TagProduct),
		GetRelatedProducts: query[entities.RelatedParams, entities.Page[entities.ProductCard]](doer, "getRelatedProducts",
			func(p entities.RelatedParams) *transport.Request {
				return &transport.Request{Method: http.MethodGet, Path: "similar/" + strconv.Itoa(p.Product) + "/", Query: pageValues(p.PageParams)}
			}, querycache.TagProduct),
		AddProduct: command(doer, "addProduct",
			func(p entities.ProductInput) *transport.Request {
				return &transport.Request{Method: http.MethodPost, Path: "products", Body: productForm(p, nil)}
			}, querycache.TagProduct),
		UpdateProduct: command(doer, "updateProduct",
			func(p entities.ProductUpdate) *transport.Request {
				return &transport.Request{Method: http.MethodPut, Path: "products", Query: idValues(p.ID), Body: productForm(p.ProductInput, p.ExistingImages)}
			}, querycache.TagProduct),
		DeleteProduct: command(doer, "deleteProduct",
			func(id int) *transport.Request {
				return &transport.Request{Method: http.MethodDelete, Path: "products", Query: idValues(id)}
			}, querycache.TagProduct),

		// статистика
		GetStatistics: query[Void, []entities.Statistic](doer, "getStatistics",
			func(Void) *transport.Request {
				return &transport.Request{Method: http.MethodGet, Path: "statistics"}
			}, querycache.TagProduct, querycache.TagCategory),

		// корзина
		GetCart: query[entities.PageParams, entities.Page[entities.CartItem]](doer, "getCart",
			func(p entities.PageParams) *transport.Request {
				return &transport.Request{Method: http.MethodGet, Path: "cart", Query: pageValues(p)}
			}, querycache.TagCart),
		AddCartItem: command(doer, "addCartItem",
			func(item entities.CartItemInput) *transport.Request {
				return &transport.Request{Method: http.MethodPost, Path: "cart", Body: transport.JSONBody(item)}
			}, querycache.TagCart),
		DeleteCartItem: command(doer, "deleteCartItem",
			func(id int) *transport.Request {
				return &transport.Request{Method: http.MethodDelete, Path: "cart", Query: idValues(id)}
			}, querycache.TagCart),

		// пользователь
		GetUser: query[Void, entities.User](doer, "getUser",
			func(Void) *transport.Request {
				return &transport.Request{Method: http.MethodGet, Path: "auth/user-info/"}
			}, querycache.TagUser),
	}
}

func categoryForm(c entities.CategoryInput) *transport.Form {
	form := transport.NewForm().
		Add(FieldName, c.Name).
		Add(FieldDescription, c.Description)
	if c.Image != nil {
		form.AddFile(FieldImage, c.Image.Name, c.Image.MimeType, c.Image.Data)
	}
	if c.ImageURL != "" {
		form.Add(FieldImageURL, c.ImageURL)
	}
	return form
}

func productForm(p entities.ProductInput, existing []string) *transport.Form {
	form := transport.NewForm().
		Add(FieldName, p.Name).
		Add(FieldDescription, p.Description).
		Add(FieldPrice, formatPrice(p.Price))
	for _, img := range p.Images {
		form.AddFile(FieldImagesData, img.Name, img.MimeType, img.Data)
	}
	for _, name := range existing {
		form.Add(FieldExistingImages, name)
	}
	for _, id := range p.CategoryIDs {
		form.AddInt(FieldCategoryIDs, id)
	}
	return form
}

func recommendationValues(f entities.ProductFilter) url.Values {
	v := pageValues(f.PageParams)
	for _, c := range f.Categories {
		v.Add("categories", strconv.Itoa(c))
	}
	if f.PriceMin != 0 {
		v.Set("price_min", formatPrice(f.PriceMin))
	}
	if f.PriceMax != 0 {
		v.Set("price_max", formatPrice(f.PriceMax))
	}
	if f.Sort != "" {
		v.Set("sort", string(f.Sort))
	}
	if f.Query != "" {
		v.Set("query", f.Query)
	}
	return v
}
