package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
)

type AdminAuditLogRepository interface {
	Create(ctx context.Context, logEntry *models.AdminAuditLog) error
	List(ctx context.Context, targetID *uuid.UUID, limit int) ([]*models.AdminAuditLog, error)
}

type adminAuditLogRepo struct {
	db DB
}

func NewAdminAuditLogRepository(db DB) AdminAuditLogRepository {
	return &adminAuditLogRepo{db: db}
}

func (r *adminAuditLogRepo) Create(ctx context.Context, logEntry *models.AdminAuditLog) error {
	details := pgtype.JSONB{Status: pgtype.Null}
	if len(logEntry.Details) > 0 {
		if err := details.Set([]byte(logEntry.Details)); err != nil {
			return fmt.Errorf("encoding audit details: %w", err)
		}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO admin_audit_logs (
			id, admin_id, action, target_id, target_type, target_label, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		logEntry.ID,
		logEntry.AdminID,
		string(logEntry.Action),
		logEntry.TargetID,
		string(logEntry.TargetType),
		logEntry.TargetLabel,
		&details,
	)
	return err
}

func (r *adminAuditLogRepo) List(ctx context.Context, targetID *uuid.UUID, limit int) ([]*models.AdminAuditLog, error) {
	q := `
		SELECT id, admin_id, action, target_id, target_type, target_label, details, created_at
		FROM admin_audit_logs`
	args := []any{}
	if targetID != nil {
		q += " WHERE target_id=$1"
		args = append(args, *targetID)
	}
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit logs: %w", err)
	}
	defer rows.Close()

	var out []*models.AdminAuditLog
	for rows.Next() {
		var e models.AdminAuditLog
		var action, targetType string
		var details pgtype.JSONB
		if err := rows.Scan(
			&e.ID, &e.AdminID, &action, &e.TargetID, &targetType, &e.TargetLabel, &details, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Action = models.AuditAction(action)
		e.TargetType = models.AuditTargetType(targetType)
		if details.Status == pgtype.Present {
			e.Details = details.Bytes
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
