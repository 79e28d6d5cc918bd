package generator

import "storefront/internal/storefront/domain/entities"

// CategoryPatch - сгенерированные поля категории. nil означает, что поле не сгенерировано.
type CategoryPatch struct {
	Description *string
	Icon        *entities.File
}

// CategoryForm - состояние формы категории.
type CategoryForm struct {
	Name        string
	Description string
	Image       *entities.File
	ImageURL    string
}

// Apply применяет патч к форме целиком.
func (f *CategoryForm) Apply(p CategoryPatch) {
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Icon != nil {
		icon := *p.Icon
		f.Image = &icon
		f.ImageURL = ""
	}
}

// Input возвращает данные для создания категории.
func (f CategoryForm) Input() entities.CategoryInput {
	return entities.CategoryInput{
		Name:        f.Name,
		Description: f.Description,
		Image:       f.Image,
		ImageURL:    f.ImageURL,
	}
}

// FormImage - изображение формы товара: уже загруженное (URL) или новый файл.
type FormImage struct {
	URL  string
	File *entities.File
}

// ProductPatch - сгенерированные поля товара. Categories равен nil, если ветка не завершилась успешно.
type ProductPatch struct {
	Description *string
	Price       *float64
	Categories  []int
	Images      []entities.File
}

// ProductForm - состояние формы товара.
type ProductForm struct {
	Name        string
	Description string
	Price       float64
	Categories  []int
	Images      []FormImage
}

// Apply применяет патч к форме целиком. Сгенерированные изображения добавляются к существующим.
func (f *ProductForm) Apply(p ProductPatch) {
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Price != nil {
		f.Price = *p.Price
	}
	if p.Categories != nil {
		f.Categories = append([]int(nil), p.Categories...)
	}
	for i := range p.Images {
		img := p.Images[i]
		f.Images = append(f.Images, FormImage{File: &img})
	}
}

// Input возвращает данные для создания товара.
func (f ProductForm) Input() entities.ProductInput {
	input := entities.ProductInput{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		CategoryIDs: append([]int(nil), f.Categories...),
	}
	for _, img := range f.Images {
		if img.File != nil {
			input.Images = append(input.Images, *img.File)
		}
	}
	return input
}

// Update возвращает данные для изменения товара id с сохранением загруженных изображений.
func (f ProductForm) Update(id int) entities.ProductUpdate {
	update := entities.ProductUpdate{ID: id, ProductInput: f.Input()}
	for _, img := range f.Images {
		if img.File == nil && img.URL != "" {
			update.ExistingImages = append(update.ExistingImages, img.URL)
		}
	}
	return update
}
