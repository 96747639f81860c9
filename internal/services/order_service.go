package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/dtos"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/repositories"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

type OrderService struct {
	orderRepo repositories.OrderRepository
	audit     *AuditService
	notifier  *NotificationService
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	audit *AuditService,
	notifier *NotificationService,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		audit:     audit,
		notifier:  notifier,
	}
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, internalError("Failed to load order", err)
	}
	if o == nil {
		return nil, notFound("Order")
	}
	return o, nil
}

func (s *OrderService) ListOrders(ctx context.Context, req dtos.ListOrdersRequest) ([]*models.Order, error) {
	orders, err := s.orderRepo.List(ctx, req.Status, req.Limit)
	if err != nil {
		return nil, internalError("Failed to list orders", err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

// UpdateOrder applies the patch on top of the admin's copy only if nobody
// has written the order since ExpectedUpdatedAt.
func (s *OrderService) UpdateOrder(ctx context.Context, adminID, orderID uuid.UUID, req dtos.UpdateOrderRequest) (*models.Order, error) {
	before, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	edit := *before
	if req.Status != nil {
		edit.Status = *req.Status
	}
	if req.TrackingNumber != nil {
		edit.TrackingNumber = req.TrackingNumber
	}
	if req.Carrier != nil {
		edit.Carrier = req.Carrier
	}
	if req.InternalNote != nil {
		edit.InternalNote = req.InternalNote
	}

	updated, err := s.orderRepo.SaveIfVersion(ctx, &edit, req.ExpectedUpdatedAt)
	if err != nil {
		return nil, writeError[*models.Order]("order", "Order "+before.OrderNumber, err)
	}
	writeSucceeded("order")

	s.audit.RecordChange(adminID, models.TargetOrder, updated.ID, updated.OrderNumber, before, updated)
	if updated.Status == models.OrderStatusShipped && before.Status != models.OrderStatusShipped {
		s.notifier.OrderShipped(updated)
	}
	return updated, nil
}

// BulkUpdateStatus sets the status of every listed order regardless of
// concurrent edits. The last writer wins for each row.
func (s *OrderService) BulkUpdateStatus(ctx context.Context, adminID uuid.UUID, req dtos.BulkUpdateOrderStatusRequest) (*dtos.BulkUpdateResponse, error) {
	if len(req.OrderIDs) > dtos.MaxBulkIDs {
		return nil, &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeValidation,
			Message:    fmt.Sprintf("At most %d orders can be updated at once", dtos.MaxBulkIDs),
		}
	}
	n, err := s.orderRepo.BulkUpdateStatus(ctx, req.OrderIDs, req.Status)
	if err != nil {
		return nil, internalError("Failed to update orders", err)
	}

	s.audit.Record(AuditEntry{
		AdminID:     adminID,
		Action:      models.AuditBulkUpdate,
		TargetType:  models.TargetOrder,
		TargetLabel: fmt.Sprintf("%d orders", len(req.OrderIDs)),
		Details: map[string]any{
			"ids":     req.OrderIDs,
			"status":  req.Status,
			"updated": n,
		},
	})
	return &dtos.BulkUpdateResponse{Requested: len(req.OrderIDs), Updated: n}, nil
}
