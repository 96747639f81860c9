package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatusType string

const (
	OrderStatusPending    OrderStatusType = "PENDING"
	OrderStatusPaid       OrderStatusType = "PAID"
	OrderStatusProcessing OrderStatusType = "PROCESSING"
	OrderStatusShipped    OrderStatusType = "SHIPPED"
	OrderStatusDelivered  OrderStatusType = "DELIVERED"
	OrderStatusCancelled  OrderStatusType = "CANCELLED"
	OrderStatusRefunded   OrderStatusType = "REFUNDED"
)

type Order struct {
	ID             uuid.UUID       `json:"id"`
	OrderNumber    string          `json:"order_number"`
	CustomerEmail  string          `json:"customer_email"`
	CustomerName   string          `json:"customer_name"`
	Status         OrderStatusType `json:"status"`
	TrackingNumber *string         `json:"tracking_number,omitempty"`
	Carrier        *string         `json:"carrier,omitempty"`
	InternalNote   *string         `json:"internal_note,omitempty"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
	CreatedAt      time.Time       `json:"created_at"`
	Versioned
}

func (o *Order) GetID() uuid.UUID { return o.ID }
