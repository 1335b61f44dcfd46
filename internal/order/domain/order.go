package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

var (
	ErrNotFound       = errors.New("order not found")
	ErrEmptyOrder     = errors.New("cart is empty")
	ErrMissingAddress = errors.New("shipping address is required")
	ErrInvalidStatus  = errors.New("invalid order status")
)

// Item freezes the product name and price at materialization time, so later
// catalog edits never alter order history.
type Item struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

type Order struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	Items           []Item        `json:"items"`
	TotalAmount     int64         `json:"totalAmount"`
	Status          Status        `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	ShippingAddress string        `json:"shippingAddress"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// New materializes an order from frozen line items. The total is always the
// sum of price x quantity over the lines.
func New(userID string, items []Item, shippingAddress string, payment PaymentStatus) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	if strings.TrimSpace(shippingAddress) == "" {
		return Order{}, ErrMissingAddress
	}
	var total int64
	for _, it := range items {
		total += it.Price * int64(it.Quantity)
	}
	now := time.Now().UTC()
	return Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           items,
		TotalAmount:     total,
		Status:          StatusPending,
		PaymentStatus:   payment,
		ShippingAddress: shippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// StatusUpdate carries the independently optional status fields. Values are
// checked against the enums but transitions are not constrained.
type StatusUpdate struct {
	Status        *Status
	PaymentStatus *PaymentStatus
}

func (u StatusUpdate) Validate() error {
	if u.Status != nil && !ValidStatus(*u.Status) {
		return ErrInvalidStatus
	}
	if u.PaymentStatus != nil && !ValidPaymentStatus(*u.PaymentStatus) {
		return ErrInvalidStatus
	}
	return nil
}
