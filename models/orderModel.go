package models

import (
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusServed    OrderStatus = "served"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
)

// Order is the read-only snapshot handed to the printing core. Field names
// on the wire follow the relay protocol.
type Order struct {
	ID            string      `json:"id" bson:"id"`
	OrderNumber   string      `json:"numero_orden" bson:"numero_orden" validate:"required"`
	TableID       string      `json:"mesa_id" bson:"mesa_id"`
	Status        OrderStatus `json:"estado" bson:"estado" validate:"required,eq=pending|eq=preparing|eq=ready|eq=served|eq=paid|eq=cancelled"`
	Total         float64     `json:"total" bson:"total"`
	Note          *string     `json:"nota,omitempty" bson:"nota,omitempty"`
	CreatedAt     time.Time   `json:"created_at" bson:"created_at"`
	PaymentMethod *string     `json:"metodo_pago,omitempty" bson:"metodo_pago,omitempty"`
	PaidAt        *time.Time  `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	Table         *TableRef   `json:"mesas,omitempty" bson:"mesas,omitempty"`
}

type TableRef struct {
	Number int `json:"numero" bson:"numero"`
}

// TableNumber returns the table number and whether the order is bound to a table.
func (o Order) TableNumber() (int, bool) {
	if o.Table == nil || o.Table.Number == 0 {
		return 0, false
	}
	return o.Table.Number, true
}

func (o Order) HasNote() bool {
	return o.Note != nil && *o.Note != ""
}

func (o Order) HasPayment() bool {
	return o.PaymentMethod != nil && *o.PaymentMethod != ""
}
