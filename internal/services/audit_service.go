package services

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/metrics"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/repositories"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

const auditWriteTimeout = 10 * time.Second

// Fields that change on every write and carry no meaning for a reviewer.
var diffIgnoredFields = map[string]bool{"updated_at": true}

type AuditEntry struct {
	AdminID     uuid.UUID
	Action      models.AuditAction
	TargetID    *uuid.UUID
	TargetType  models.AuditTargetType
	TargetLabel string
	Details     any
}

type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// AuditService appends admin audit entries in the background. A failed
// append is logged and counted; it never fails the write it describes.
type AuditService struct {
	repo    repositories.AdminAuditLogRepository
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAuditService(repo repositories.AdminAuditLogRepository) *AuditService {
	return &AuditService{repo: repo, timeout: auditWriteTimeout}
}

func (s *AuditService) Record(entry AuditEntry) {
	logEntry := &models.AdminAuditLog{
		ID:          uuid.New(),
		AdminID:     entry.AdminID,
		Action:      entry.Action,
		TargetID:    entry.TargetID,
		TargetType:  entry.TargetType,
		TargetLabel: entry.TargetLabel,
	}
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			utils.Logger.WithError(err).Warn("Could not encode audit details; recording entry without them")
		} else {
			logEntry.Details = raw
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.repo.Create(ctx, logEntry); err != nil {
			metrics.AuditFailures.Inc()
			utils.Logger.WithError(err).WithFields(logrus.Fields{
				"admin_id":    logEntry.AdminID,
				"action":      logEntry.Action,
				"target_type": logEntry.TargetType,
				"target_id":   logEntry.TargetID,
			}).Error("Failed to write admin audit entry")
		}
	}()
}

// RecordChange records an UPDATE entry with the field-level diff of two
// states of the same record.
func (s *AuditService) RecordChange(adminID uuid.UUID, targetType models.AuditTargetType, targetID uuid.UUID, label string, before, after any) {
	changes, err := FieldDiff(before, after)
	if err != nil {
		utils.Logger.WithError(err).Warn("Could not diff record for audit entry")
	}
	s.Record(AuditEntry{
		AdminID:     adminID,
		Action:      models.AuditUpdate,
		TargetID:    &targetID,
		TargetType:  targetType,
		TargetLabel: label,
		Details:     map[string]any{"changes": changes},
	})
}

// Wait blocks until every pending entry has been written or has failed.
func (s *AuditService) Wait() {
	s.wg.Wait()
}

func (s *AuditService) List(ctx context.Context, targetID *uuid.UUID, limit int) ([]*models.AdminAuditLog, error) {
	entries, err := s.repo.List(ctx, targetID, limit)
	if err != nil {
		return nil, internalError("Failed to list audit logs", err)
	}
	if entries == nil {
		entries = []*models.AdminAuditLog{}
	}
	return entries, nil
}

// FieldDiff compares the JSON encodings of before and after key by key.
// Keys present on only one side are reported with a null counterpart.
func FieldDiff(before, after any) (map[string]FieldChange, error) {
	from, err := toJSONObject(before)
	if err != nil {
		return nil, err
	}
	to, err := toJSONObject(after)
	if err != nil {
		return nil, err
	}

	changes := map[string]FieldChange{}
	for k, fv := range from {
		if diffIgnoredFields[k] {
			continue
		}
		tv, ok := to[k]
		if !ok || !reflect.DeepEqual(fv, tv) {
			changes[k] = FieldChange{From: fv, To: tv}
		}
	}
	for k, tv := range to {
		if diffIgnoredFields[k] {
			continue
		}
		if _, ok := from[k]; !ok {
			changes[k] = FieldChange{From: nil, To: tv}
		}
	}
	return changes, nil
}

func toJSONObject(v any) (map[string]any, error) {
	out := map[string]any{}
	if v == nil {
		return out, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
