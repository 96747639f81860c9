package models

import (
	"time"

	"github.com/google/uuid"
)

type ReviewStatusType string

const (
	ReviewStatusPending  ReviewStatusType = "PENDING"
	ReviewStatusApproved ReviewStatusType = "APPROVED"
	ReviewStatusRejected ReviewStatusType = "REJECTED"
)

type Review struct {
	ID             uuid.UUID        `json:"id"`
	ProductID      uuid.UUID        `json:"product_id"`
	AuthorName     string           `json:"author_name"`
	Rating         int              `json:"rating"`
	Title          string           `json:"title"`
	Body           string           `json:"body"`
	Status         ReviewStatusType `json:"status"`
	ModerationNote *string          `json:"moderation_note,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	Versioned
}

func (r *Review) GetID() uuid.UUID { return r.ID }
