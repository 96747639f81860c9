package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditCreate     AuditAction = "CREATE"
	AuditUpdate     AuditAction = "UPDATE"
	AuditDelete     AuditAction = "DELETE"
	AuditBulkUpdate AuditAction = "BULK_UPDATE"
	AuditGenerate   AuditAction = "GENERATE"
)

type AuditTargetType string

const (
	TargetOrder           AuditTargetType = "ORDER"
	TargetProduct         AuditTargetType = "PRODUCT"
	TargetProductVariant  AuditTargetType = "PRODUCT_VARIANT"
	TargetReview          AuditTargetType = "REVIEW"
	TargetScheduledAction AuditTargetType = "SCHEDULED_ACTION"
	TargetStoreSettings   AuditTargetType = "STORE_SETTINGS"
)

type AdminAuditLog struct {
	ID          uuid.UUID       `json:"id"`
	AdminID     uuid.UUID       `json:"admin_id"`
	Action      AuditAction     `json:"action"`
	TargetID    *uuid.UUID      `json:"target_id,omitempty"`
	TargetType  AuditTargetType `json:"target_type"`
	TargetLabel string          `json:"target_label"`
	Details     json.RawMessage `json:"details,omitempty"` // JSONB: field diff or bulk summary
	CreatedAt   time.Time       `json:"created_at"`
}
