package entities

// Page - ответ любого списочного эндпоинта.
type Page[T any] struct {
	Count   int `json:"count"`
	Pages   int `json:"pages"`
	Results []T `json:"results"`
}

// PageParams - параметры пагинации.
type PageParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Filter - пагинация с поисковой строкой.
type Filter struct {
	PageParams
	Query string `json:"query"`
}
