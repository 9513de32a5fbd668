package events

import "time"

// CartCheckedOut is the legacy flat body, published when envelopes are off.
type CartCheckedOut struct {
	EventType   string          `json:"eventType"`
	CartID      string          `json:"cartId"`
	Items       []CartItemEvent `json:"items"`
	TotalAmount float64         `json:"totalAmount"`
	Timestamp   time.Time       `json:"timestamp"`
}

type CartItemEvent struct {
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}
