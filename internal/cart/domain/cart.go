package domain

import "errors"

var (
	ErrItemNotFound = errors.New("item not found in cart")
	ErrEmptyCart    = errors.New("cart is empty")
)

// Item is a pending line: a live product reference plus a quantity. Price and
// name are not frozen here; checkout snapshots them.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Line is an Item resolved against the live product record.
type Line struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImgURL    string `json:"imgUrl,omitempty"`
	Quantity  int    `json:"quantity"`
	// Stock is the product's on-hand quantity at resolution time.
	Stock int `json:"-"`
}
