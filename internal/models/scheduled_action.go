package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ScheduledActionType string

const (
	ActionPublishProduct ScheduledActionType = "PUBLISH_PRODUCT"
	ActionArchiveProduct ScheduledActionType = "ARCHIVE_PRODUCT"
	ActionSetPrice       ScheduledActionType = "SET_PRICE"
)

type ScheduledActionStatusType string

const (
	ScheduledStatusPending   ScheduledActionStatusType = "PENDING"
	ScheduledStatusRunning   ScheduledActionStatusType = "RUNNING"
	ScheduledStatusDone      ScheduledActionStatusType = "DONE"
	ScheduledStatusFailed    ScheduledActionStatusType = "FAILED"
	ScheduledStatusCancelled ScheduledActionStatusType = "CANCELLED"
)

// ScheduledAction is a merchandising change queued to run at RunAt.
type ScheduledAction struct {
	ID         uuid.UUID                 `json:"id"`
	ActionType ScheduledActionType       `json:"action_type"`
	ProductID  uuid.UUID                 `json:"product_id"`
	NewPrice   *decimal.Decimal          `json:"new_price,omitempty"`
	RunAt      time.Time                 `json:"run_at"`
	Status     ScheduledActionStatusType `json:"status"`
	LastError  *string                   `json:"last_error,omitempty"`
	CreatedBy  uuid.UUID                 `json:"created_by"`
	CreatedAt  time.Time                 `json:"created_at"`
	Versioned
}

func (a *ScheduledAction) GetID() uuid.UUID { return a.ID }
