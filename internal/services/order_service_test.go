package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/dtos"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

func requireAppError(t *testing.T, err error, status int, code string) *utils.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected *utils.AppError, got %T", err)
	assert.Equal(t, status, appErr.StatusCode)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

type orderFixture struct {
	repo     *fakeOrderRepo
	auditLog *fakeAuditRepo
	mailer   *fakeMailer
	audit    *AuditService
	notifier *NotificationService
	svc      *OrderService
	adminID  uuid.UUID
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		repo:     newFakeOrderRepo(),
		auditLog: &fakeAuditRepo{},
		mailer:   &fakeMailer{},
		adminID:  uuid.New(),
	}
	f.audit = NewAuditService(f.auditLog)
	f.notifier = NewNotificationService(testConfig(), f.mailer)
	f.svc = NewOrderService(f.repo, f.audit, f.notifier)
	return f
}

func (f *orderFixture) seed(number string, status models.OrderStatusType) *models.Order {
	return f.repo.put(&models.Order{
		ID:            uuid.New(),
		OrderNumber:   number,
		CustomerEmail: "ada@example.com",
		CustomerName:  "Ada",
		Status:        status,
		Total:         decimal.RequireFromString("42.00"),
		Currency:      "USD",
	})
}

func (f *orderFixture) drain() {
	f.audit.Wait()
	f.notifier.Wait()
}

func TestUpdateOrder_Success(t *testing.T) {
	f := newOrderFixture()
	o := f.seed("MB-1001", models.OrderStatusPaid)

	note := "gift wrap"
	updated, err := f.svc.UpdateOrder(context.Background(), f.adminID, o.ID, dtos.UpdateOrderRequest{
		ExpectedUpdatedAt: o.UpdatedAt,
		InternalNote:      &note,
	})
	require.NoError(t, err)
	assert.Equal(t, "gift wrap", *updated.InternalNote)
	assert.True(t, updated.UpdatedAt.After(o.UpdatedAt))

	f.drain()
	entries := f.auditLog.snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditUpdate, entries[0].Action)
	assert.Equal(t, models.TargetOrder, entries[0].TargetType)
	assert.Contains(t, string(entries[0].Details), `"internal_note"`)
	assert.NotContains(t, string(entries[0].Details), `"updated_at"`)
	assert.Empty(t, f.mailer.sent)
}

func TestUpdateOrder_StaleTokenReturnsCurrentOrder(t *testing.T) {
	f := newOrderFixture()
	o := f.seed("MB-1002", models.OrderStatusPaid)
	ctx := context.Background()

	tracking := "1Z999"
	shipped := models.OrderStatusShipped
	_, err := f.svc.UpdateOrder(ctx, f.adminID, o.ID, dtos.UpdateOrderRequest{
		ExpectedUpdatedAt: o.UpdatedAt,
		Status:            &shipped,
		TrackingNumber:    &tracking,
	})
	require.NoError(t, err)

	note := "call customer"
	_, err = f.svc.UpdateOrder(ctx, f.adminID, o.ID, dtos.UpdateOrderRequest{
		ExpectedUpdatedAt: o.UpdatedAt,
		InternalNote:      &note,
	})
	appErr := requireAppError(t, err, http.StatusConflict, utils.ErrCodeRowVersionConflict)
	current, ok := appErr.Details.(*models.Order)
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusShipped, current.Status)
	assert.Nil(t, current.InternalNote)
	assert.ErrorIs(t, err, utils.ErrRowVersionConflict)

	stored, _ := f.repo.GetByID(ctx, o.ID)
	assert.Nil(t, stored.InternalNote, "the losing write must not land")
	f.drain()
}

func TestUpdateOrder_DeletedOrder(t *testing.T) {
	f := newOrderFixture()
	o := f.seed("MB-1003", models.OrderStatusPaid)
	f.repo.remove(o.ID)

	_, err := f.svc.UpdateOrder(context.Background(), f.adminID, o.ID, dtos.UpdateOrderRequest{ExpectedUpdatedAt: o.UpdatedAt})
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
}

func TestUpdateOrder_DeletedBetweenReadAndWrite(t *testing.T) {
	f := newOrderFixture()
	o := f.seed("MB-1004", models.OrderStatusPaid)

	edit := *o
	f.repo.remove(o.ID)
	_, err := f.repo.SaveIfVersion(context.Background(), &edit, o.UpdatedAt)
	err = writeError[*models.Order]("order", "Order", err)
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
}

func TestUpdateOrder_TransientFailure(t *testing.T) {
	f := newOrderFixture()
	o := f.seed("MB-1005", models.OrderStatusPaid)
	f.repo.failWrites = errConnReset

	_, err := f.svc.UpdateOrder(context.Background(), f.adminID, o.ID, dtos.UpdateOrderRequest{ExpectedUpdatedAt: o.UpdatedAt})
	requireAppError(t, err, http.StatusServiceUnavailable, utils.ErrCodeTransientFailure)
	assert.ErrorIs(t, err, utils.ErrTransientWrite)

	f.drain()
	assert.Empty(t, f.auditLog.snapshot(), "failed writes are not audited")
}

func TestUpdateOrder_ShippedSendsEmail(t *testing.T) {
	f := newOrderFixture()
	o := f.seed("MB-1006", models.OrderStatusProcessing)

	shipped := models.OrderStatusShipped
	tracking := "1Z123"
	_, err := f.svc.UpdateOrder(context.Background(), f.adminID, o.ID, dtos.UpdateOrderRequest{
		ExpectedUpdatedAt: o.UpdatedAt,
		Status:            &shipped,
		TrackingNumber:    &tracking,
	})
	require.NoError(t, err)

	f.drain()
	require.Len(t, f.mailer.sent, 1)
	assert.Contains(t, f.mailer.sent[0].Subject, "MB-1006")
}

func TestUpdateOrder_EmailFailureDoesNotFailWrite(t *testing.T) {
	f := newOrderFixture()
	f.mailer.fail = errors.New("sendgrid down")
	o := f.seed("MB-1007", models.OrderStatusProcessing)

	shipped := models.OrderStatusShipped
	updated, err := f.svc.UpdateOrder(context.Background(), f.adminID, o.ID, dtos.UpdateOrderRequest{
		ExpectedUpdatedAt: o.UpdatedAt,
		Status:            &shipped,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	f.drain()
}

func TestBulkUpdateStatus_IgnoresTokens(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	a := f.seed("MB-2001", models.OrderStatusPaid)
	b := f.seed("MB-2002", models.OrderStatusPaid)

	// Someone edits b after the bulk selection was made.
	note := "hold"
	_, err := f.svc.UpdateOrder(ctx, f.adminID, b.ID, dtos.UpdateOrderRequest{ExpectedUpdatedAt: b.UpdatedAt, InternalNote: &note})
	require.NoError(t, err)
	f.drain()

	res, err := f.svc.BulkUpdateStatus(ctx, f.adminID, dtos.BulkUpdateOrderStatusRequest{
		OrderIDs: []uuid.UUID{a.ID, b.ID, uuid.New()},
		Status:   models.OrderStatusShipped,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Requested)
	assert.EqualValues(t, 2, res.Updated)

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		o, _ := f.repo.GetByID(ctx, id)
		assert.Equal(t, models.OrderStatusShipped, o.Status)
	}

	f.drain()
	entries := f.auditLog.snapshot()
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditBulkUpdate, entries[1].Action)
	assert.Empty(t, f.mailer.sent, "bulk path sends no emails")
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newOrderFixture()
	_, err := f.svc.GetOrder(context.Background(), uuid.New())
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
}

func TestListOrders_FiltersByStatus(t *testing.T) {
	f := newOrderFixture()
	f.seed("MB-3001", models.OrderStatusPaid)
	f.seed("MB-3002", models.OrderStatusShipped)

	paid := models.OrderStatusPaid
	orders, err := f.svc.ListOrders(context.Background(), dtos.ListOrdersRequest{Status: &paid, Limit: 10})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "MB-3001", orders[0].OrderNumber)
}
