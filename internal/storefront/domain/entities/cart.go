package entities

// CartItemInput - добавление товара в корзину.
type CartItemInput struct {
	Product  int `json:"product"`
	Quantity int `json:"quantity"`
}

// CartItem - позиция корзины.
type CartItem struct {
	ID       int         `json:"id"`
	Product  ProductCard `json:"product"`
	Quantity int         `json:"quantity"`
}
