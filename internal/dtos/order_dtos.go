package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
)

const MaxBulkIDs = 500

// UpdateOrderRequest patches an order. ExpectedUpdatedAt is the updated_at
// value the admin's copy was read with.
type UpdateOrderRequest struct {
	ExpectedUpdatedAt time.Time               `json:"expected_updated_at" validate:"required"`
	Status            *models.OrderStatusType `json:"status,omitempty" validate:"omitempty,oneof=PENDING PAID PROCESSING SHIPPED DELIVERED CANCELLED REFUNDED"`
	TrackingNumber    *string                 `json:"tracking_number,omitempty" validate:"omitempty,max=64"`
	Carrier           *string                 `json:"carrier,omitempty" validate:"omitempty,max=64"`
	InternalNote      *string                 `json:"internal_note,omitempty" validate:"omitempty,max=2000"`
}

type BulkUpdateOrderStatusRequest struct {
	OrderIDs []uuid.UUID            `json:"order_ids" validate:"required,min=1,max=500,dive,required"`
	Status   models.OrderStatusType `json:"status" validate:"required,oneof=PENDING PAID PROCESSING SHIPPED DELIVERED CANCELLED REFUNDED"`
}

// BulkUpdateResponse reports how many of the requested rows actually changed.
type BulkUpdateResponse struct {
	Requested int   `json:"requested"`
	Updated   int64 `json:"updated"`
}

type ListOrdersRequest struct {
	Status *models.OrderStatusType `validate:"omitempty,oneof=PENDING PAID PROCESSING SHIPPED DELIVERED CANCELLED REFUNDED"`
	Limit  int                     `validate:"gte=1,lte=500"`
}
