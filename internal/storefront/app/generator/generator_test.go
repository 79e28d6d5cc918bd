package generator_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/storefront/adapters/ai"
	"storefront/internal/storefront/app/generator"
	"storefront/internal/storefront/app/querycache"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/metrics"
	ports "storefront/internal/storefront/ports/ai"
)

type chatReply struct {
	text string
	err  error
}

// fakeChat отвечает по первому совпавшему фрагменту запроса.
type fakeChat struct {
	mu      sync.Mutex
	replies map[string]chatReply
	calls   []string
	images  int
}

func (f *fakeChat) Complete(_ context.Context, model string, content []ports.ContentItem) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prompt := content[0].Text
	f.calls = append(f.calls, model)
	for _, item := range content {
		if item.Type == ports.ContentImage {
			f.images++
		}
	}
	for marker, reply := range f.replies {
		if strings.Contains(prompt, marker) {
			return reply.text, reply.err
		}
	}
	return "", errors.New("unexpected prompt")
}

type fakeImages struct {
	got entities.EncodedImage
	out entities.EncodedImage
	err error
}

func (f *fakeImages) Generate(_ context.Context, _ string, image entities.EncodedImage) (entities.EncodedImage, error) {
	f.got = image
	return f.out, f.err
}

const (
	markerCategoryDescription = "AI copywriter"
	markerIcon                = "AI icon designer"
	markerProductDescription  = "product description generator"
	markerPrice               = "pricing assistant"
	markerCategories          = "AI categorizer"
)

func TestGenerateCategoryPartialSuccess(t *testing.T) {
	chat := &fakeChat{replies: map[string]chatReply{
		markerCategoryDescription: {err: errors.New("rate limited")},
		markerIcon:                {text: "Sure! <svg viewBox=\"0 0 24 24\"><path d=\"M0 0\"/></svg> enjoy"},
	}}
	reg := prometheus.NewRegistry()
	gen := generator.New(chat, nil, nil, metrics.New("test", reg))

	res, err := gen.GenerateCategory(context.Background(), "Home garden")
	require.NoError(t, err)

	assert.Nil(t, res.Patch.Description)
	require.NotNil(t, res.Patch.Icon)
	assert.Equal(t, `<svg viewBox="0 0 24 24"><path d="M0 0"/></svg>`, string(res.Patch.Icon.Data))
	assert.Equal(t, "image/svg+xml", res.Patch.Icon.MimeType)
	assert.True(t, strings.HasPrefix(res.Patch.Icon.Name, "Home_garden-"))
	assert.True(t, strings.HasSuffix(res.Patch.Icon.Name, ".svg"))

	assert.Equal(t, map[string]string{generator.FieldDescription: generator.MessageDescriptionFailed}, res.Errors)
	assert.Equal(t, map[string]querycache.Status{
		generator.FieldDescription: querycache.StatusFailed,
		generator.FieldImage:       querycache.StatusSucceeded,
	}, res.Branches)

	form := generator.CategoryForm{Name: "Home garden", Description: "typed by hand"}
	form.Apply(res.Patch)
	assert.Equal(t, "typed by hand", form.Description)
	require.NotNil(t, form.Image)
	assert.Equal(t, res.Patch.Icon.Name, form.Image.Name)

	count, err := testutil.GatherAndCount(reg, "test_ai_branches_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGenerateCategoryIconWithoutSVG(t *testing.T) {
	chat := &fakeChat{replies: map[string]chatReply{
		markerCategoryDescription: {text: "Fresh and tasty"},
		markerIcon:                {text: "I cannot draw"},
	}}
	gen := generator.New(chat, nil, nil, nil)

	res, err := gen.GenerateCategory(context.Background(), "Food")
	require.NoError(t, err)
	require.NotNil(t, res.Patch.Description)
	assert.Equal(t, "Fresh and tasty", *res.Patch.Description)
	assert.Nil(t, res.Patch.Icon)
	assert.Equal(t, generator.MessageIconFailed, res.Errors[generator.FieldImage])
}

func TestGenerateCategoryRequiresName(t *testing.T) {
	chat := &fakeChat{}
	gen := generator.New(chat, nil, nil, nil)

	res, err := gen.GenerateCategory(context.Background(), "  ")
	require.ErrorIs(t, err, generator.ErrValidation)
	assert.Equal(t, generator.MessageCategoryNameRequired, res.Errors[generator.FieldName])
	assert.Empty(t, chat.calls)
}

func productChat() *fakeChat {
	return &fakeChat{replies: map[string]chatReply{
		markerProductDescription: {text: "Crunchy apple"},
		markerPrice:              {text: " 4.99 "},
		markerCategories:         {text: "1, 3,x, 7"},
	}}
}

func TestGenerateProductAllBranches(t *testing.T) {
	chat := productChat()
	images := &fakeImages{out: entities.EncodedImage{MimeType: "image/png", Data: "aGVsbG8="}}
	gen := generator.New(chat, images, nil, nil)

	draft := generator.ProductDraft{
		Name:   "Apple",
		Images: []generator.FormImage{{File: &entities.File{Name: "a.jpg", MimeType: "image/jpeg", Data: []byte("abc")}}},
	}
	res, err := gen.GenerateProduct(context.Background(), draft, []entities.CategoryName{{ID: 1, Name: "Fruit"}})
	require.NoError(t, err)
	assert.Empty(t, res.Errors)

	require.NotNil(t, res.Patch.Description)
	assert.Equal(t, "Crunchy apple", *res.Patch.Description)
	require.NotNil(t, res.Patch.Price)
	assert.InDelta(t, 4.99, *res.Patch.Price, 1e-9)
	assert.Equal(t, []int{1, 3, 7}, res.Patch.Categories)
	require.Len(t, res.Patch.Images, 1)
	assert.Equal(t, []byte("hello"), res.Patch.Images[0].Data)
	assert.True(t, strings.HasSuffix(res.Patch.Images[0].Name, ".png"))

	assert.Equal(t, entities.EncodedImage{MimeType: "image/jpeg", Data: "YWJj"}, images.got)
	assert.Equal(t, 2, chat.images)
	assert.ElementsMatch(t, []string{ai.ModelGemma, ai.ModelQwen, ai.ModelQwen}, chat.calls)

	existing := generator.FormImage{URL: "https://cdn/apple.jpg"}
	form := generator.ProductForm{Name: "Apple", Images: []generator.FormImage{existing}}
	form.Apply(res.Patch)
	assert.Equal(t, "Crunchy apple", form.Description)
	assert.Equal(t, []int{1, 3, 7}, form.Categories)
	require.Len(t, form.Images, 2)
	assert.Equal(t, existing, form.Images[0])

	update := form.Update(9)
	assert.Equal(t, []string{"https://cdn/apple.jpg"}, update.ExistingImages)
	assert.Len(t, update.Images, 1)
}

func TestGenerateProductBranchFailuresAreIndependent(t *testing.T) {
	chat := productChat()
	chat.replies[markerPrice] = chatReply{text: "about five dollars"}
	images := &fakeImages{err: errors.New("quota")}

	decoded := ""
	decode := func(_ context.Context, url string) (entities.EncodedImage, error) {
		decoded = url
		return entities.EncodedImage{MimeType: "image/webp", Data: "AAAA"}, nil
	}
	gen := generator.New(chat, images, decode, nil)

	draft := generator.ProductDraft{Name: "Pear", Images: []generator.FormImage{{URL: "https://cdn/pear.webp"}}}
	res, err := gen.GenerateProduct(context.Background(), draft, []entities.CategoryName{})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn/pear.webp", decoded)
	assert.Equal(t, "image/webp", images.got.MimeType)
	assert.Equal(t, map[string]string{
		generator.FieldPrice:  generator.MessagePriceFailed,
		generator.FieldImages: generator.MessageImageFailed,
	}, res.Errors)
	assert.NotNil(t, res.Patch.Description)
	assert.Nil(t, res.Patch.Price)
	assert.Empty(t, res.Patch.Images)

	form := generator.ProductForm{Price: 3}
	form.Apply(res.Patch)
	assert.InDelta(t, 3, form.Price, 1e-9)
}

func TestGenerateProductValidation(t *testing.T) {
	image := []generator.FormImage{{File: &entities.File{MimeType: "image/png"}}}
	cases := []struct {
		name       string
		draft      generator.ProductDraft
		categories []entities.CategoryName
		field      string
		message    string
	}{
		{"missing name", generator.ProductDraft{Images: image}, []entities.CategoryName{}, generator.FieldName, generator.MessageProductNameRequired},
		{"missing image", generator.ProductDraft{Name: "Pear"}, []entities.CategoryName{}, generator.FieldImages, generator.MessageImageRequired},
		{"missing categories", generator.ProductDraft{Name: "Pear", Images: image}, nil, generator.FieldCategories, generator.MessageCategoriesRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chat := productChat()
			gen := generator.New(chat, &fakeImages{}, nil, nil)

			res, err := gen.GenerateProduct(context.Background(), tc.draft, tc.categories)
			require.ErrorIs(t, err, generator.ErrValidation)
			assert.Equal(t, map[string]string{tc.field: tc.message}, res.Errors)
			assert.Empty(t, chat.calls)
		})
	}
}

func TestGenerateProductUnreadableImage(t *testing.T) {
	chat := productChat()
	decode := func(context.Context, string) (entities.EncodedImage, error) {
		return entities.EncodedImage{}, errors.New("404")
	}
	gen := generator.New(chat, &fakeImages{}, decode, nil)

	draft := generator.ProductDraft{Name: "Pear", Images: []generator.FormImage{{URL: "https://cdn/missing.png"}}}
	res, err := gen.GenerateProduct(context.Background(), draft, []entities.CategoryName{})
	require.ErrorIs(t, err, generator.ErrValidation)
	assert.Equal(t, generator.MessageImageUnreadable, res.Errors[generator.FieldImages])
	assert.Empty(t, chat.calls)
}

func TestParsers(t *testing.T) {
	price, err := generator.ParsePrice("$12.50")
	require.NoError(t, err)
	assert.InDelta(t, 12.5, price, 1e-9)

	for _, bad := range []string{"", "free", "-3", "NaN", "Inf"} {
		_, err := generator.ParsePrice(bad)
		assert.ErrorIs(t, err, generator.ErrBadPrice, bad)
	}

	assert.Equal(t, []int{2, 5}, generator.ParseCategoryIDs(`"2", 5, none`))
	assert.Equal(t, []int{}, generator.ParseCategoryIDs("No Categories generated"))
}
