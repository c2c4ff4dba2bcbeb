package order

import "time"

// Line is one product line inside a remote order.
type Line struct {
	ProductID string  `json:"pizzaId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
}

// Order is the locally cached, read-only view of a remote order.
type Order struct {
	ID            string    `json:"id"`
	Lines         []Line    `json:"items"`
	Status        Status    `json:"status"`
	Total         float64   `json:"total"`
	AddressID     string    `json:"addressId"`
	PaymentMethod string    `json:"paymentMethod"`
	EstimatedTime string    `json:"estimatedDeliveryTime,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
