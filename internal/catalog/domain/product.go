package domain

import (
	"errors"
	"time"
)

type Category string

const (
	CategoryMouse     Category = "Mouse"
	CategoryMousepad  Category = "Mousepad"
	CategoryMousefeet Category = "Mousefeet"
)

func ValidCategory(c Category) bool {
	switch c {
	case CategoryMouse, CategoryMousepad, CategoryMousefeet:
		return true
	}
	return false
}

var (
	ErrNotFound          = errors.New("product not found")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product. Price is satang; Quantity is on-hand stock and is mutated only by
// inventory reservations and admin restocks.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Price       int64      `json:"price"`
	Quantity    int        `json:"quantity"`
	Brand       string     `json:"brand,omitempty"`
	Category    Category   `json:"category"`
	Description string     `json:"description,omitempty"`
	ImgURL      string     `json:"imgUrl,omitempty"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (p Product) Deleted() bool { return p.DeletedAt != nil }

// PartialUpdate carries the optional product fields an admin may change.
type PartialUpdate struct {
	Name        *string
	Price       *int64
	Quantity    *int
	Brand       *string
	Category    *Category
	Description *string
	ImgURL      *string
}
