package domain

// OrderPlaced is published through the outbox in the same transaction that
// creates the order.
type OrderPlaced struct {
	OrderID       string        `json:"orderId"`
	UserID        string        `json:"userId"`
	TotalAmount   int64         `json:"totalAmount"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Items         []Item        `json:"items"`
}

type OrderStatusChanged struct {
	OrderID       string        `json:"orderId"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}
