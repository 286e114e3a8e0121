package models

import "time"

type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusPaid    OrderStatus = "paid"
)

// Order is a gateway order opened for a team's registration fee.
// The document id is the gateway's order id.
type Order struct {
	ID        string      `json:"order_id" bson:"_id"`
	Receipt   string      `json:"receipt" bson:"receipt"`
	EventID   string      `json:"event_id" bson:"event_id"`
	TeamID    string      `json:"team_id" bson:"team_id"`
	Amount    int64       `json:"amount" bson:"amount"`
	Currency  string      `json:"currency" bson:"currency"`
	Status    OrderStatus `json:"status" bson:"status"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}

// Payment is a verified gateway payment. Keyed by the gateway payment id,
// which makes re-verification idempotent.
type Payment struct {
	ID         string    `json:"payment_id" bson:"_id"`
	OrderID    string    `json:"order_id" bson:"order_id"`
	EventID    string    `json:"event_id" bson:"event_id"`
	TeamID     string    `json:"team_id" bson:"team_id"`
	Amount     int64     `json:"amount" bson:"amount"`
	VerifiedAt time.Time `json:"verified_at" bson:"verified_at"`
}
