package admin

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"storefront/internal/storefront/app/generator"
	"storefront/internal/storefront/app/http/respond"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/ports/services"
	"storefront/pkg/logger"
)

// Поля multipart формы категории и товара.
const (
	FormName        = "name"
	FormDescription = "description"
	FormImage       = "image"
	FormImageURL    = "image_url"
	FormImages      = "images"
	FormImageURLs   = "image_urls"
	FormPrice       = "price"
	FormCategories  = "categories"
	FormPatch       = "patch"
)

// Константы для логирования.
const (
	LogHandlerSaveCategory = "admin handler: save category"
	LogHandlerSaveProduct  = "admin handler: save product"

	ErrorInvalidForm  = "invalid form"
	ErrorInvalidPatch = "invalid patch"
	ErrorInvalidPrice = "invalid price"
	ErrorInvalidID    = "invalid id"

	MessageCreated = "created"
	MessageUpdated = "updated"
)

// FormHandler принимает формы категорий и товаров админ-панели.
type FormHandler struct {
	catalog services.CatalogService
	render  *respond.Renderer
}

// NewFormHandler создает обработчик форм.
func NewFormHandler(catalog services.CatalogService, render *respond.Renderer) *FormHandler {
	return &FormHandler{catalog: catalog, render: render}
}

// CreateCategory создает категорию из multipart формы.
func (h *FormHandler) CreateCategory(ctx fiber.Ctx) error {
	form, ok, err := h.categoryForm(ctx)
	if !ok {
		return err
	}
	if err := h.catalog.AddCategory(ctx.Context(), form.Input()); err != nil {
		return h.render.Error(ctx, err, nil)
	}
	return respond.JSON(ctx, http.StatusCreated, fiber.Map{"message": MessageCreated})
}

// UpdateCategory изменяет категорию :id.
func (h *FormHandler) UpdateCategory(ctx fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil || id <= 0 {
		return respond.BadRequest(ctx, ErrorInvalidID)
	}
	form, ok, err := h.categoryForm(ctx)
	if !ok {
		return err
	}
	update := entities.CategoryUpdate{ID: id, CategoryInput: form.Input()}
	if err := h.catalog.UpdateCategory(ctx.Context(), update); err != nil {
		return h.render.Error(ctx, err, nil)
	}
	return respond.JSON(ctx, http.StatusOK, fiber.Map{"message": MessageUpdated})
}

// CreateProduct создает товар из multipart формы.
func (h *FormHandler) CreateProduct(ctx fiber.Ctx) error {
	form, ok, err := h.productForm(ctx)
	if !ok {
		return err
	}
	if err := h.catalog.AddProduct(ctx.Context(), form.Input()); err != nil {
		return h.render.Error(ctx, err, nil)
	}
	return respond.JSON(ctx, http.StatusCreated, fiber.Map{"message": MessageCreated})
}

// UpdateProduct изменяет товар :id. Загруженные ранее изображения передаются в image_urls.
func (h *FormHandler) UpdateProduct(ctx fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil || id <= 0 {
		return respond.BadRequest(ctx, ErrorInvalidID)
	}
	form, ok, err := h.productForm(ctx)
	if !ok {
		return err
	}
	if err := h.catalog.UpdateProduct(ctx.Context(), form.Update(id)); err != nil {
		return h.render.Error(ctx, err, nil)
	}
	return respond.JSON(ctx, http.StatusOK, fiber.Map{"message": MessageUpdated})
}

// categoryForm читает форму категории и применяет патч. Если ok == false, ответ уже отправлен.
func (h *FormHandler) categoryForm(ctx fiber.Ctx) (generator.CategoryForm, bool, error) {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerSaveCategory)

	mf, err := ctx.MultipartForm()
	if err != nil {
		log.Warn(requestCtx, ErrorInvalidForm, zap.Error(err))
		return generator.CategoryForm{}, false, respond.BadRequest(ctx, ErrorInvalidForm)
	}

	form := generator.CategoryForm{
		Name:        value(mf, FormName),
		Description: value(mf, FormDescription),
		ImageURL:    value(mf, FormImageURL),
	}
	if headers := mf.File[FormImage]; len(headers) > 0 {
		file, err := readFile(headers[0])
		if err != nil {
			log.Warn(requestCtx, ErrorInvalidImage, zap.Error(err))
			return generator.CategoryForm{}, false, respond.BadRequest(ctx, ErrorInvalidImage)
		}
		form.Image = &file
		form.ImageURL = ""
	}

	if raw := value(mf, FormPatch); raw != "" {
		var dto CategoryPatchDTO
		if err := json.Unmarshal([]byte(raw), &dto); err != nil {
			return generator.CategoryForm{}, false, respond.BadRequest(ctx, ErrorInvalidPatch)
		}
		patch, err := dto.patch()
		if err != nil {
			return generator.CategoryForm{}, false, respond.BadRequest(ctx, ErrorInvalidPatch)
		}
		form.Apply(patch)
	}

	if form.Name == "" {
		return generator.CategoryForm{}, false, h.render.Error(ctx, generator.ErrValidation,
			map[string]string{generator.FieldName: generator.MessageCategoryNameRequired})
	}
	return form, true, nil
}

// productForm читает форму товара и применяет патч. Если ok == false, ответ уже отправлен.
func (h *FormHandler) productForm(ctx fiber.Ctx) (generator.ProductForm, bool, error) {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerSaveProduct)

	mf, err := ctx.MultipartForm()
	if err != nil {
		log.Warn(requestCtx, ErrorInvalidForm, zap.Error(err))
		return generator.ProductForm{}, false, respond.BadRequest(ctx, ErrorInvalidForm)
	}

	form := generator.ProductForm{
		Name:        value(mf, FormName),
		Description: value(mf, FormDescription),
		Categories:  ids(mf.Value[FormCategories]),
	}
	if raw := value(mf, FormPrice); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			return generator.ProductForm{}, false, respond.BadRequest(ctx, ErrorInvalidPrice)
		}
		form.Price = price
	}
	for _, url := range mf.Value[FormImageURLs] {
		if url = strings.TrimSpace(url); url != "" {
			form.Images = append(form.Images, generator.FormImage{URL: url})
		}
	}
	for _, header := range mf.File[FormImages] {
		file, err := readFile(header)
		if err != nil {
			log.Warn(requestCtx, ErrorInvalidImage, zap.Error(err))
			return generator.ProductForm{}, false, respond.BadRequest(ctx, ErrorInvalidImage)
		}
		form.Images = append(form.Images, generator.FormImage{File: &file})
	}

	if raw := value(mf, FormPatch); raw != "" {
		var dto ProductPatchDTO
		if err := json.Unmarshal([]byte(raw), &dto); err != nil {
			return generator.ProductForm{}, false, respond.BadRequest(ctx, ErrorInvalidPatch)
		}
		patch, err := dto.patch()
		if err != nil {
			return generator.ProductForm{}, false, respond.BadRequest(ctx, ErrorInvalidPatch)
		}
		form.Apply(patch)
	}

	if form.Name == "" {
		return generator.ProductForm{}, false, h.render.Error(ctx, generator.ErrValidation,
			map[string]string{generator.FieldName: generator.MessageProductNameRequired})
	}
	return form, true, nil
}

func value(mf *multipart.Form, key string) string {
	if values := mf.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

// ids принимает как повторяющиеся поля, так и список через запятую.
func ids(values []string) []int {
	var out []int
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				out = append(out, id)
			}
		}
	}
	return out
}

func readFile(header *multipart.FileHeader) (entities.File, error) {
	f, err := header.Open()
	if err != nil {
		return entities.File{}, fmt.Errorf("open %s: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return entities.File{}, fmt.Errorf("read %s: %w", header.Filename, err)
	}
	mimeType := header.Header.Get(fiber.HeaderContentType)
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return entities.File{Name: header.Filename, MimeType: mimeType, Data: data}, nil
}
