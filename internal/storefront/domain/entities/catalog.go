package entities

// CategoryName - минимальное представление категории.
type CategoryName struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CategoryCard - категория с иконкой.
type CategoryCard struct {
	CategoryName
	Icon string `json:"icon"`
}

// Category - полная категория.
type Category struct {
	CategoryCard
	Description      string `json:"description"`
	Products         int    `json:"products"`
	TimeSinceCreated string `json:"time_since_created"`
}

// CategoryInput - данные для создания категории. Image и ImageURL взаимоисключающие.
type CategoryInput struct {
	Name        string
	Description string
	Image       *File
	ImageURL    string
}

// CategoryUpdate - данные для изменения категории.
type CategoryUpdate struct {
	ID int
	CategoryInput
}

// ProductCard - краткое представление товара.
type ProductCard struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// Product - полный товар.
type Product struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Price            float64  `json:"price"`
	Categories       []int    `json:"categories"`
	Images           []string `json:"images"`
	TimeSinceCreated string   `json:"time_since_created"`
}

// ProductParams - параметры получения одного товара.
type ProductParams struct {
	ID     int    `json:"id"`
	Query  string `json:"query,omitempty"`
	Source string `json:"source,omitempty"`
}

// ProductInput - данные для создания товара.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	CategoryIDs []int
	Images      []File
}

// ProductUpdate - данные для изменения товара.
type ProductUpdate struct {
	ID int
	ProductInput
	ExistingImages []string
}

// Sort - порядок сортировки рекомендаций.
type Sort string

// Значения Sort в том виде, в котором их ожидает бэкенд.
const (
	SortPopularity     Sort = "popularity"
	SortNewest         Sort = "newest"
	SortPriceLowToHigh Sort = "priceLowToHigh"
	SortPriceHighToLow Sort = "priceHightToLow"
)

// ProductFilter - фильтр рекомендаций.
type ProductFilter struct {
	PageParams
	Categories []int   `json:"categories,omitempty"`
	PriceMin   float64 `json:"price_min,omitempty"`
	PriceMax   float64 `json:"price_max,omitempty"`
	Sort       Sort    `json:"sort,omitempty"`
	Query      string  `json:"query,omitempty"`
}

// RelatedParams - параметры похожих товаров.
type RelatedParams struct {
	PageParams
	Product int `json:"product"`
}

// Statistic - карточка статистики админ-панели.
type Statistic struct {
	Title  string `json:"title"`
	Count  string `json:"count"`
	Change string `json:"change"`
}
