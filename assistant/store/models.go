package store

import (
	"time"

	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderPending         OrderStatus = "pending"
	OrderShipped         OrderStatus = "shipped"
	OrderDelivered       OrderStatus = "delivered"
	OrderReturnRequested OrderStatus = "return_requested"
)

// Returnable reports whether an order in this status may enter the
// return flow. Pending orders have not shipped; return_requested is
// terminal.
func (s OrderStatus) Returnable() bool {
	return s == OrderShipped || s == OrderDelivered
}

type ReturnStatus string

const (
	ReturnRequested ReturnStatus = "requested"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
)

// User is one conversation profile, keyed by the stable session id.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	SessionID     string    `bun:"session_id,unique,notnull" json:"session_id"`
	Name          string    `bun:"name" json:"name"`
	Address       string    `bun:"address" json:"address"`
	PaymentMethod string    `bun:"payment_method" json:"payment_method"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// UserPatch carries a partial profile update. Empty fields are left
// untouched.
type UserPatch struct {
	Name          string
	Address       string
	PaymentMethod string
}

func (p UserPatch) Empty() bool {
	return p.Name == "" && p.Address == "" && p.PaymentMethod == ""
}

// Order belongs to exactly one user. TotalAmount is computed at
// creation from quantity and unit price and never mutated afterward.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID           int64       `bun:"id,pk,autoincrement" json:"id"`
	UserID       int64       `bun:"user_id,notnull" json:"user_id"`
	ProductID    string      `bun:"product_id" json:"product_id"`
	ProductName  string      `bun:"product_name" json:"product_name"`
	Quantity     int         `bun:"quantity,notnull" json:"quantity"`
	PricePerItem float64     `bun:"price_per_item" json:"price_per_item"`
	TotalAmount  float64     `bun:"total_amount" json:"total_amount"`
	Status       OrderStatus `bun:"status,notnull" json:"status"`
	OrderDate    time.Time   `bun:"order_date,nullzero,notnull,default:current_timestamp" json:"order_date"`
}

// Return is one return request against a parent order.
type Return struct {
	bun.BaseModel `bun:"table:returns"`

	ID         int64        `bun:"id,pk,autoincrement" json:"id"`
	OrderID    int64        `bun:"order_id,notnull" json:"order_id"`
	Reason     string       `bun:"reason" json:"reason"`
	Status     ReturnStatus `bun:"status,notnull" json:"status"`
	ReturnDate time.Time    `bun:"return_date,nullzero,notnull,default:current_timestamp" json:"return_date"`
}
