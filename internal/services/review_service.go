package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/dtos"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/repositories"
)

type ReviewService struct {
	reviewRepo repositories.ReviewRepository
	audit      *AuditService
}

func NewReviewService(reviewRepo repositories.ReviewRepository, audit *AuditService) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, audit: audit}
}

func (s *ReviewService) ListReviews(ctx context.Context, status models.ReviewStatusType, limit int) ([]*models.Review, error) {
	reviews, err := s.reviewRepo.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, internalError("Failed to list reviews", err)
	}
	if reviews == nil {
		reviews = []*models.Review{}
	}
	return reviews, nil
}

func (s *ReviewService) ModerateReview(ctx context.Context, adminID, reviewID uuid.UUID, req dtos.ModerateReviewRequest) (*models.Review, error) {
	before, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, internalError("Failed to load review", err)
	}
	if before == nil {
		return nil, notFound("Review")
	}

	edit := *before
	edit.Status = req.Status
	if req.ModerationNote != nil {
		edit.ModerationNote = req.ModerationNote
	}

	updated, err := s.reviewRepo.SaveIfVersion(ctx, &edit, req.ExpectedUpdatedAt)
	if err != nil {
		return nil, writeError[*models.Review]("review", "Review by "+before.AuthorName, err)
	}
	writeSucceeded("review")

	s.audit.RecordChange(adminID, models.TargetReview, updated.ID, updated.Title, before, updated)
	return updated, nil
}

// BulkModerate and BulkDelete skip the version check; see OrderService.BulkUpdateStatus.
func (s *ReviewService) BulkModerate(ctx context.Context, adminID uuid.UUID, req dtos.BulkModerateReviewsRequest) (*dtos.BulkUpdateResponse, error) {
	n, err := s.reviewRepo.BulkUpdateStatus(ctx, req.ReviewIDs, req.Status)
	if err != nil {
		return nil, internalError("Failed to moderate reviews", err)
	}
	s.audit.Record(AuditEntry{
		AdminID:     adminID,
		Action:      models.AuditBulkUpdate,
		TargetType:  models.TargetReview,
		TargetLabel: fmt.Sprintf("%d reviews", len(req.ReviewIDs)),
		Details:     map[string]any{"ids": req.ReviewIDs, "status": req.Status, "updated": n},
	})
	return &dtos.BulkUpdateResponse{Requested: len(req.ReviewIDs), Updated: n}, nil
}

func (s *ReviewService) BulkDelete(ctx context.Context, adminID uuid.UUID, req dtos.BulkDeleteReviewsRequest) (*dtos.BulkUpdateResponse, error) {
	n, err := s.reviewRepo.BulkDelete(ctx, req.ReviewIDs)
	if err != nil {
		return nil, internalError("Failed to delete reviews", err)
	}
	s.audit.Record(AuditEntry{
		AdminID:     adminID,
		Action:      models.AuditDelete,
		TargetType:  models.TargetReview,
		TargetLabel: fmt.Sprintf("%d reviews", len(req.ReviewIDs)),
		Details:     map[string]any{"ids": req.ReviewIDs, "deleted": n},
	})
	return &dtos.BulkUpdateResponse{Requested: len(req.ReviewIDs), Updated: n}, nil
}
