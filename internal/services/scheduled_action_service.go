package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/cache"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/constants"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/dtos"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/metrics"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/repositories"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

type ScheduledActionService struct {
	actionRepo  repositories.ScheduledActionRepository
	productRepo repositories.ProductRepository
	cache       cache.ProductCache
	audit       *AuditService
}

func NewScheduledActionService(
	actionRepo repositories.ScheduledActionRepository,
	productRepo repositories.ProductRepository,
	productCache cache.ProductCache,
	audit *AuditService,
) *ScheduledActionService {
	if productCache == nil {
		productCache = cache.NoopProductCache{}
	}
	return &ScheduledActionService{
		actionRepo:  actionRepo,
		productRepo: productRepo,
		cache:       productCache,
		audit:       audit,
	}
}

func (s *ScheduledActionService) CreateAction(ctx context.Context, adminID uuid.UUID, req dtos.CreateScheduledActionRequest) (*models.ScheduledAction, error) {
	p, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, internalError("Failed to load product", err)
	}
	if p == nil {
		return nil, notFound("Product")
	}

	a := &models.ScheduledAction{
		ID:         uuid.New(),
		ActionType: req.ActionType,
		ProductID:  req.ProductID,
		RunAt:      req.RunAt.UTC(),
		Status:     models.ScheduledStatusPending,
		CreatedBy:  adminID,
	}
	if req.ActionType == models.ActionSetPrice {
		if req.NewPrice == nil {
			return nil, validationError("new_price is required for SET_PRICE", nil)
		}
		if err := checkPrice("new_price", *req.NewPrice); err != nil {
			return nil, err
		}
		a.NewPrice = req.NewPrice
	}

	if err := s.actionRepo.Create(ctx, a); err != nil {
		return nil, internalError("Failed to schedule action", err)
	}
	s.audit.Record(AuditEntry{
		AdminID:     adminID,
		Action:      models.AuditCreate,
		TargetID:    &a.ID,
		TargetType:  models.TargetScheduledAction,
		TargetLabel: fmt.Sprintf("%s %s", a.ActionType, p.Name),
		Details:     a,
	})
	return a, nil
}

func (s *ScheduledActionService) ListActions(ctx context.Context, status *models.ScheduledActionStatusType, limit int) ([]*models.ScheduledAction, error) {
	actions, err := s.actionRepo.List(ctx, status, limit)
	if err != nil {
		return nil, internalError("Failed to list scheduled actions", err)
	}
	if actions == nil {
		actions = []*models.ScheduledAction{}
	}
	return actions, nil
}

// CancelAction moves a PENDING action to CANCELLED under the version check.
func (s *ScheduledActionService) CancelAction(ctx context.Context, adminID, actionID uuid.UUID, req dtos.CancelScheduledActionRequest) (*models.ScheduledAction, error) {
	before, err := s.actionRepo.GetByID(ctx, actionID)
	if err != nil {
		return nil, internalError("Failed to load scheduled action", err)
	}
	if before == nil {
		return nil, notFound("Scheduled action")
	}
	if before.Status != models.ScheduledStatusPending {
		return nil, &utils.AppError{
			StatusCode: http.StatusConflict,
			Code:       utils.ErrCodeConflict,
			Message:    "Only pending actions can be cancelled",
			Details:    before,
		}
	}

	edit := *before
	edit.Status = models.ScheduledStatusCancelled
	updated, err := s.actionRepo.SaveIfVersion(ctx, &edit, req.ExpectedUpdatedAt)
	if err != nil {
		return nil, writeError[*models.ScheduledAction]("scheduled_action", "Scheduled action", err)
	}
	writeSucceeded("scheduled_action")

	s.audit.RecordChange(adminID, models.TargetScheduledAction, updated.ID, string(updated.ActionType), before, updated)
	return updated, nil
}

/*
RunDueActions executes every PENDING action whose run_at has passed.

Each action is first claimed with a conditional write PENDING → RUNNING, so
when several instances tick at once only one of them runs it. The product
change is itself a conditional write on the product read just before; if
an admin edits the product in between, the action is marked FAILED rather
than overwriting their edit. Nothing is retried automatically.

The outcome is written on a context detached from ctx, so a job timeout
that fires mid-action still records DONE or FAILED. No new action is
claimed once ctx is done. A RUNNING row whose outcome was lost anyway is
marked FAILED by a later pass once it is older than
constants.ScheduledActionStaleAfter.
*/
func (s *ScheduledActionService) RunDueActions(ctx context.Context, now time.Time) (dtos.RunDueActionsResult, error) {
	var res dtos.RunDueActionsResult

	recovered, err := s.recoverStaleActions(ctx, now)
	res.Recovered = recovered
	if err != nil {
		return res, err
	}

	due, err := s.actionRepo.ListDue(ctx, now, constants.ScheduledActionsBatchSize)
	if err != nil {
		return res, fmt.Errorf("listing due actions: %w", err)
	}

	for i, a := range due {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("left %d of %d due actions unclaimed: %w", len(due)-i, len(due), err)
		}
		log := utils.Logger.WithFields(logrus.Fields{"action_id": a.ID, "action_type": a.ActionType, "product_id": a.ProductID})

		claim := *a
		claim.Status = models.ScheduledStatusRunning
		claimed, err := s.actionRepo.SaveIfVersion(ctx, &claim, a.UpdatedAt)
		metrics.ObserveOCCWrite("scheduled_action", err)
		if err != nil {
			// Someone else claimed or cancelled it.
			log.WithError(err).Debug("Skipping scheduled action")
			res.Skipped++
			metrics.ScheduledActions.WithLabelValues("skipped").Inc()
			continue
		}

		before, after, applyErr := s.apply(ctx, claimed)

		final := *claimed
		if applyErr != nil {
			msg := applyErr.Error()
			final.Status = models.ScheduledStatusFailed
			final.LastError = &msg
			res.Failed++
			metrics.ScheduledActions.WithLabelValues("failed").Inc()
			log.WithError(applyErr).Warn("Scheduled action failed")
		} else {
			final.Status = models.ScheduledStatusDone
			res.Done++
			metrics.ScheduledActions.WithLabelValues("done").Inc()
			log.Info("Scheduled action applied")
			s.audit.RecordChange(a.CreatedBy, models.TargetProduct, after.ID, after.Name, before, after)
		}
		s.recordOutcome(ctx, &final, claimed.UpdatedAt, log)
	}
	return res, nil
}

func (s *ScheduledActionService) recordOutcome(ctx context.Context, final *models.ScheduledAction, claimedAt time.Time, log *logrus.Entry) {
	outcomeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ScheduledActionOutcomeTimeout)
	defer cancel()

	_, err := s.actionRepo.SaveIfVersion(outcomeCtx, final, claimedAt)
	metrics.ObserveOCCWrite("scheduled_action", err)
	if err != nil {
		log.WithError(err).Error("Failed to record scheduled action outcome")
	}
}

// recoverStaleActions fails RUNNING actions whose runner died or lost the
// outcome write. The product may or may not have been changed.
func (s *ScheduledActionService) recoverStaleActions(ctx context.Context, now time.Time) (int, error) {
	stale, err := s.actionRepo.ListStaleRunning(ctx, now.Add(-constants.ScheduledActionStaleAfter), constants.ScheduledActionsBatchSize)
	if err != nil {
		return 0, fmt.Errorf("listing stale running actions: %w", err)
	}

	recovered := 0
	for _, a := range stale {
		log := utils.Logger.WithFields(logrus.Fields{"action_id": a.ID, "action_type": a.ActionType, "product_id": a.ProductID})

		edit := *a
		msg := constants.ScheduledActionAbandonedReason
		edit.Status = models.ScheduledStatusFailed
		edit.LastError = &msg
		_, err := s.actionRepo.SaveIfVersion(ctx, &edit, a.UpdatedAt)
		metrics.ObserveOCCWrite("scheduled_action", err)
		if err != nil {
			log.WithError(err).Debug("Stale scheduled action changed underneath recovery")
			continue
		}
		recovered++
		metrics.ScheduledActions.WithLabelValues("recovered").Inc()
		log.Warn("Marked stale running scheduled action as failed")
	}
	return recovered, nil
}

func (s *ScheduledActionService) apply(ctx context.Context, a *models.ScheduledAction) (*models.Product, *models.Product, error) {
	p, err := s.productRepo.GetByID(ctx, a.ProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading product: %w", err)
	}
	if p == nil {
		return nil, nil, errors.New("product no longer exists")
	}

	edit := *p
	switch a.ActionType {
	case models.ActionPublishProduct:
		edit.Status = models.ProductStatusActive
	case models.ActionArchiveProduct:
		edit.Status = models.ProductStatusArchived
	case models.ActionSetPrice:
		if a.NewPrice == nil {
			return nil, nil, errors.New("SET_PRICE action has no price")
		}
		edit.BasePrice = *a.NewPrice
	default:
		return nil, nil, fmt.Errorf("unknown action type %q", a.ActionType)
	}

	updated, err := s.productRepo.SaveIfVersion(ctx, &edit, p.UpdatedAt)
	metrics.ObserveOCCWrite("product", err)
	s.cache.Invalidate(ctx, p.ID)
	if err != nil {
		if errors.Is(err, utils.ErrRowVersionConflict) {
			return nil, nil, fmt.Errorf("%s: %w", constants.ScheduledActionSystemReason, err)
		}
		return nil, nil, err
	}
	return p, updated, nil
}
