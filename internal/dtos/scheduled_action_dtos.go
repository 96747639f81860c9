package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
)

type CreateScheduledActionRequest struct {
	ActionType models.ScheduledActionType `json:"action_type" validate:"required,oneof=PUBLISH_PRODUCT ARCHIVE_PRODUCT SET_PRICE"`
	ProductID  uuid.UUID                  `json:"product_id" validate:"required"`
	NewPrice   *decimal.Decimal           `json:"new_price,omitempty" validate:"required_if=ActionType SET_PRICE"`
	RunAt      time.Time                  `json:"run_at" validate:"required"`
}

type CancelScheduledActionRequest struct {
	ExpectedUpdatedAt time.Time `json:"expected_updated_at" validate:"required"`
}

// RunDueActionsResult summarises one pass of the scheduled action runner.
type RunDueActionsResult struct {
	Done      int `json:"done"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Recovered int `json:"recovered"`
}
