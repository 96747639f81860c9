package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
)

type ReviewRepository interface {
	Create(ctx context.Context, rv *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListByStatus(ctx context.Context, status models.ReviewStatusType, limit int) ([]*models.Review, error)

	UpdateIfVersion(ctx context.Context, rv *models.Review, expected time.Time) (*models.Review, error)
	SaveIfVersion(ctx context.Context, rv *models.Review, expected time.Time) (*models.Review, error)

	// Unconditional batch paths, no token check.
	BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status models.ReviewStatusType) (int64, error)
	BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type reviewRepo struct {
	*BaseVersionedRepo[*models.Review]
	db DB
}

func NewReviewRepository(db DB) ReviewRepository {
	r := &reviewRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectReview()+" WHERE id=$1", scanReview)
	return r
}

func (r *reviewRepo) Create(ctx context.Context, rv *models.Review) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO reviews (
			id, product_id, author_name, rating, title, body, status, moderation_note,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW(), NOW())
		RETURNING created_at, updated_at`,
		rv.ID, rv.ProductID, rv.AuthorName, rv.Rating, rv.Title, rv.Body,
		string(rv.Status), rv.ModerationNote,
	)
	return row.Scan(&rv.CreatedAt, &rv.UpdatedAt)
}

func (r *reviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id)
}

func (r *reviewRepo) ListByStatus(ctx context.Context, status models.ReviewStatusType, limit int) ([]*models.Review, error) {
	rows, err := r.db.Query(ctx,
		baseSelectReview()+" WHERE status=$1 ORDER BY created_at DESC LIMIT $2",
		string(status), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var out []*models.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *reviewRepo) UpdateIfVersion(ctx context.Context, rv *models.Review, expected time.Time) (*models.Review, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE reviews SET
			status=$1, moderation_note=$2,
			updated_at=`+nextVersionToken+`
		WHERE id=$3 AND updated_at=$4
		RETURNING `+reviewColumns,
		string(rv.Status), rv.ModerationNote,
		rv.ID, expected,
	)
	return scanReview(row)
}

func (r *reviewRepo) SaveIfVersion(ctx context.Context, rv *models.Review, expected time.Time) (*models.Review, error) {
	return r.BaseVersionedRepo.SaveIfVersion(ctx, rv, expected, r.UpdateIfVersion)
}

func (r *reviewRepo) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status models.ReviewStatusType) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE reviews SET status=$1, updated_at=`+nextVersionToken+`
		WHERE id = ANY($2::uuid[])`,
		string(status), uuidStrings(ids),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *reviewRepo) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const reviewColumns = `
	id, product_id, author_name, rating, title, body, status, moderation_note,
	created_at, updated_at`

func baseSelectReview() string {
	return "SELECT " + reviewColumns + " FROM reviews"
}

func scanReview(row pgx.Row) (*models.Review, error) {
	var rv models.Review
	var status string
	err := row.Scan(
		&rv.ID, &rv.ProductID, &rv.AuthorName, &rv.Rating, &rv.Title, &rv.Body, &status, &rv.ModerationNote,
		&rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rv.Status = models.ReviewStatusType(status)
	return &rv, nil
}
