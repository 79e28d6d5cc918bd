// Package generator формирует подсказки для форм категорий и товаров.
// Ветки генерации выполняются параллельно, ошибка одной ветки не влияет на остальные.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront/internal/storefront/adapters/ai"
	"storefront/internal/storefront/app/querycache"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/metrics"
	ports "storefront/internal/storefront/ports/ai"
	"storefront/pkg/logger"
)

// Поля форм.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldImage       = "image"
	FieldImages      = "images"
	FieldPrice       = "price"
	FieldCategories  = "categories"
)

// Сообщения об ошибках полей.
const (
	MessageCategoryNameRequired = "Category name is required"
	MessageProductNameRequired  = "Product name is required"
	MessageImageRequired        = "At least one image is required"
	MessageCategoriesRequired   = "Category list is required"
	MessageImageUnreadable      = "Error reading image"

	MessageDescriptionFailed = "Error generating description"
	MessageIconFailed        = "Error generating icon"
	MessagePriceFailed       = "Error generating price"
	MessageCategoriesFailed  = "Error generating categories"
	MessageImageFailed       = "Error generating image"
)

// Константы для логирования.
const (
	LogGenerateCategory = "generator: category"
	LogGenerateProduct  = "generator: product"
	LogBranchFailed     = "generator: branch failed"
)

// Ошибки пакета generator.
var (
	ErrValidation = errors.New("generation input is invalid")
	ErrNoSVG      = errors.New("response contains no svg element")
	ErrBadPrice   = errors.New("response is not a valid price")
	ErrNoDecoder  = errors.New("no image decoder configured")
)

var (
	svgPattern   = regexp.MustCompile(`(?s)<svg.*?</svg>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// ImageDecoder загружает изображение по URL и возвращает его в base64.
type ImageDecoder func(ctx context.Context, url string) (entities.EncodedImage, error)

// Result - итог генерации: патч с успешными полями, ошибки полей и статусы веток.
type Result[P any] struct {
	Patch    P
	Errors   map[string]string
	Branches map[string]querycache.Status
}

// Failed сообщает, есть ли ошибки полей.
func (r Result[P]) Failed() bool {
	return len(r.Errors) > 0
}

// Generator запускает параллельные ветки генерации.
type Generator struct {
	chat    ports.ChatCompleter
	images  ports.ImageGenerator
	decode  ImageDecoder
	metrics *metrics.Metrics
}

// New создает генератор.
func New(chat ports.ChatCompleter, images ports.ImageGenerator, decode ImageDecoder, m *metrics.Metrics) *Generator {
	return &Generator{chat: chat, images: images, decode: decode, metrics: m}
}

// GenerateCategory генерирует описание и иконку категории.
// Ошибка возвращается только при невалидном входе, ошибки веток попадают в Result.Errors.
func (g *Generator) GenerateCategory(ctx context.Context, name string) (Result[CategoryPatch], error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogGenerateCategory, zap.String("name", name))

	res := Result[CategoryPatch]{Errors: map[string]string{}, Branches: map[string]querycache.Status{}}
	if strings.TrimSpace(name) == "" {
		res.Errors[FieldName] = MessageCategoryNameRequired
		return res, ErrValidation
	}

	b := g.fanOut(ctx, res.Errors, res.Branches)

	b.run(FieldDescription, MessageDescriptionFailed, func(ctx context.Context) (func(), error) {
		text, err := g.chat.Complete(ctx, ai.CategoryDescription.Model,
			[]ports.ContentItem{ports.Text(ai.CategoryDescription.Render(name))})
		if err != nil {
			return nil, err
		}
		return func() { res.Patch.Description = &text }, nil
	})

	b.run(FieldImage, MessageIconFailed, func(ctx context.Context) (func(), error) {
		text, err := g.chat.Complete(ctx, ai.CategoryIcon.Model,
			[]ports.ContentItem{ports.Text(ai.CategoryIcon.Render(name))})
		if err != nil {
			return nil, err
		}
		svg := svgPattern.FindString(text)
		if svg == "" {
			return nil, ErrNoSVG
		}
		icon := entities.File{
			Name:     IconFileName(name),
			MimeType: "image/svg+xml",
			Data:     []byte(svg),
		}
		return func() { res.Patch.Icon = &icon }, nil
	})

	b.wait()
	return res, nil
}

// ProductDraft - исходные данные генерации товара.
type ProductDraft struct {
	Name   string
	Images []FormImage
}

// GenerateProduct генерирует описание, цену, категории и изображение товара.
// Первое изображение черновика передается моделям вместе с названием.
func (g *Generator) GenerateProduct(ctx context.Context, draft ProductDraft, categories []entities.CategoryName) (Result[ProductPatch], error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogGenerateProduct, zap.String("name", draft.Name), zap.Int("images", len(draft.Images)))

	res := Result[ProductPatch]{Errors: map[string]string{}, Branches: map[string]querycache.Status{}}
	switch {
	case strings.TrimSpace(draft.Name) == "":
		res.Errors[FieldName] = MessageProductNameRequired
	case len(draft.Images) == 0:
		res.Errors[FieldImages] = MessageImageRequired
	case categories == nil:
		res.Errors[FieldCategories] = MessageCategoriesRequired
	}
	if res.Failed() {
		return res, ErrValidation
	}

	image, err := g.resolve(ctx, draft.Images[0])
	if err != nil {
		log.Warn(ctx, LogBranchFailed, zap.String("field", FieldImages), zap.Error(err))
		res.Errors[FieldImages] = MessageImageUnreadable
		return res, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	name := draft.Name
	withImage := func(prompt string) []ports.ContentItem {
		return []ports.ContentItem{ports.Text(prompt), ports.Image(image)}
	}

	b := g.fanOut(ctx, res.Errors, res.Branches)

	b.run(FieldDescription, MessageDescriptionFailed, func(ctx context.Context) (func(), error) {
		text, err := g.chat.Complete(ctx, ai.ProductDescription.Model, withImage(ai.ProductDescription.Render(name)))
		if err != nil {
			return nil, err
		}
		return func() { res.Patch.Description = &text }, nil
	})

	b.run(FieldPrice, MessagePriceFailed, func(ctx context.Context) (func(), error) {
		text, err := g.chat.Complete(ctx, ai.ProductPrice.Model, withImage(ai.ProductPrice.Render(name)))
		if err != nil {
			return nil, err
		}
		price, err := ParsePrice(text)
		if err != nil {
			return nil, err
		}
		return func() { res.Patch.Price = &price }, nil
	})

	b.run(FieldCategories, MessageCategoriesFailed, func(ctx context.Context) (func(), error) {
		prompt := ai.ProductCategories.Render(ai.CategoryList(categories), name)
		text, err := g.chat.Complete(ctx, ai.ProductCategories.Model, []ports.ContentItem{ports.Text(prompt)})
		if err != nil {
			return nil, err
		}
		ids := ParseCategoryIDs(text)
		return func() { res.Patch.Categories = ids }, nil
	})

	b.run(FieldImages, MessageImageFailed, func(ctx context.Context) (func(), error) {
		generated, err := g.images.Generate(ctx, ai.ProductImage.Render(name), image)
		if err != nil {
			return nil, err
		}
		file, err := generated.File("image-" + uuid.NewString() + "." + generated.Extension())
		if err != nil {
			return nil, err
		}
		return func() { res.Patch.Images = append(res.Patch.Images, file) }, nil
	})

	b.wait()
	return res, nil
}

func (g *Generator) resolve(ctx context.Context, img FormImage) (entities.EncodedImage, error) {
	if img.File != nil {
		return img.File.Encode(), nil
	}
	if g.decode == nil {
		return entities.EncodedImage{}, ErrNoDecoder
	}
	return g.decode(ctx, img.URL)
}

// branches собирает результаты параллельных веток. Ветки не прерывают друг друга.
type branches struct {
	ctx      context.Context
	group    errgroup.Group
	mu       sync.Mutex
	failures map[string]string
	statuses map[string]querycache.Status
	metrics  *metrics.Metrics
}

func (g *Generator) fanOut(ctx context.Context, failures map[string]string, statuses map[string]querycache.Status) *branches {
	return &branches{ctx: ctx, failures: failures, statuses: statuses, metrics: g.metrics}
}

// run запускает ветку field. При успехе apply выполняется под блокировкой.
func (b *branches) run(field, message string, fn func(ctx context.Context) (func(), error)) {
	b.mu.Lock()
	b.statuses[field] = querycache.StatusPending
	b.mu.Unlock()

	b.group.Go(func() error {
		apply, err := fn(b.ctx)
		b.metrics.RecordBranch(field, err)

		b.mu.Lock()
		defer b.mu.Unlock()
		if err != nil {
			logger.Log(b.ctx).Warn(b.ctx, LogBranchFailed, zap.String("field", field), zap.Error(err))
			b.failures[field] = message
			b.statuses[field] = querycache.StatusFailed
			return nil
		}
		apply()
		b.statuses[field] = querycache.StatusSucceeded
		return nil
	})
}

func (b *branches) wait() {
	_ = b.group.Wait()
}

// IconFileName возвращает имя файла иконки: пробелы заменяются на "_", добавляется uuid.
func IconFileName(name string) string {
	return spacePattern.ReplaceAllString(name, "_") + "-" + uuid.NewString() + ".svg"
}

// ParsePrice разбирает цену из ответа модели.
func ParsePrice(text string) (float64, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(text), "$")
	price, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadPrice, text)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadPrice, text)
	}
	return price, nil
}

// ParseCategoryIDs разбирает список идентификаторов через запятую, пропуская нечисловые значения.
func ParseCategoryIDs(text string) []int {
	ids := make([]int, 0)
	for _, part := range strings.Split(text, ",") {
		id, err := strconv.Atoi(strings.Trim(strings.TrimSpace(part), `"'`))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
