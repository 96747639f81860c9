package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
)

type ModerateReviewRequest struct {
	ExpectedUpdatedAt time.Time               `json:"expected_updated_at" validate:"required"`
	Status            models.ReviewStatusType `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
	ModerationNote    *string                 `json:"moderation_note,omitempty" validate:"omitempty,max=2000"`
}

type BulkModerateReviewsRequest struct {
	ReviewIDs []uuid.UUID             `json:"review_ids" validate:"required,min=1,max=500,dive,required"`
	Status    models.ReviewStatusType `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
}

type BulkDeleteReviewsRequest struct {
	ReviewIDs []uuid.UUID `json:"review_ids" validate:"required,min=1,max=500,dive,required"`
}
