package admin

import (
	"storefront/internal/storefront/app/generator"
	"storefront/internal/storefront/app/querycache"
	"storefront/internal/storefront/domain/entities"
)

// GenerateCategoryRequest - запрос генерации полей категории.
type GenerateCategoryRequest struct {
	Name string `json:"name"`
}

// ImageDTO - изображение черновика: URL загруженного или новый файл в base64.
type ImageDTO struct {
	URL      string `json:"url,omitempty"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Data     string `json:"data,omitempty"`
}

// GenerateProductRequest - запрос генерации полей товара.
type GenerateProductRequest struct {
	Name   string     `json:"name"`
	Images []ImageDTO `json:"images"`
}

// FileDTO - сгенерированный файл.
type FileDTO struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// CategoryPatchDTO - сгенерированные поля категории.
type CategoryPatchDTO struct {
	Description *string  `json:"description,omitempty"`
	Icon        *FileDTO `json:"icon,omitempty"`
}

// ProductPatchDTO - сгенерированные поля товара.
type ProductPatchDTO struct {
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Categories  []int     `json:"categories,omitempty"`
	Images      []FileDTO `json:"images,omitempty"`
}

// ResultDTO - ответ генерации.
type ResultDTO[P any] struct {
	Patch    P                            `json:"patch"`
	Errors   map[string]string            `json:"errors"`
	Branches map[string]querycache.Status `json:"branches"`
}

func fileDTO(f entities.File) FileDTO {
	encoded := f.Encode()
	return FileDTO{Name: f.Name, MimeType: encoded.MimeType, Data: encoded.Data}
}

func categoryResult(res generator.Result[generator.CategoryPatch]) ResultDTO[CategoryPatchDTO] {
	out := ResultDTO[CategoryPatchDTO]{
		Patch:    CategoryPatchDTO{Description: res.Patch.Description},
		Errors:   res.Errors,
		Branches: res.Branches,
	}
	if res.Patch.Icon != nil {
		icon := fileDTO(*res.Patch.Icon)
		out.Patch.Icon = &icon
	}
	return out
}

func productResult(res generator.Result[generator.ProductPatch]) ResultDTO[ProductPatchDTO] {
	out := ResultDTO[ProductPatchDTO]{
		Patch: ProductPatchDTO{
			Description: res.Patch.Description,
			Price:       res.Patch.Price,
			Categories:  res.Patch.Categories,
		},
		Errors:   res.Errors,
		Branches: res.Branches,
	}
	for _, img := range res.Patch.Images {
		out.Patch.Images = append(out.Patch.Images, fileDTO(img))
	}
	return out
}

// draft переводит запрос в черновик генератора.
func (r GenerateProductRequest) draft() (generator.ProductDraft, error) {
	d := generator.ProductDraft{Name: r.Name}
	for _, img := range r.Images {
		if img.URL != "" {
			d.Images = append(d.Images, generator.FormImage{URL: img.URL})
			continue
		}
		file, err := entities.EncodedImage{MimeType: img.MimeType, Data: img.Data}.File(img.Name)
		if err != nil {
			return generator.ProductDraft{}, err
		}
		d.Images = append(d.Images, generator.FormImage{File: &file})
	}
	return d, nil
}

func (f FileDTO) file() (entities.File, error) {
	return entities.EncodedImage{MimeType: f.MimeType, Data: f.Data}.File(f.Name)
}

// patch переводит присланный клиентом результат генерации в патч формы категории.
func (p CategoryPatchDTO) patch() (generator.CategoryPatch, error) {
	out := generator.CategoryPatch{Description: p.Description}
	if p.Icon != nil {
		icon, err := p.Icon.file()
		if err != nil {
			return generator.CategoryPatch{}, err
		}
		out.Icon = &icon
	}
	return out, nil
}

// patch переводит присланный клиентом результат генерации в патч формы товара.
func (p ProductPatchDTO) patch() (generator.ProductPatch, error) {
	out := generator.ProductPatch{
		Description: p.Description,
		Price:       p.Price,
		Categories:  p.Categories,
	}
	for _, img := range p.Images {
		file, err := img.file()
		if err != nil {
			return generator.ProductPatch{}, err
		}
		out.Images = append(out.Images, file)
	}
	return out, nil
}
