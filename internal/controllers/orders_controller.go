package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/constants"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/dtos"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/services"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

var orderStatuses = []models.OrderStatusType{
	models.OrderStatusPending,
	models.OrderStatusPaid,
	models.OrderStatusProcessing,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
	models.OrderStatusCancelled,
	models.OrderStatusRefunded,
}

type OrdersController struct {
	orderService  *services.OrderService
	exportService *services.ExportService
	validate      *validator.Validate
}

func NewOrdersController(orderService *services.OrderService, exportService *services.ExportService) *OrdersController {
	return &OrdersController{
		orderService:  orderService,
		exportService: exportService,
		validate:      validator.New(),
	}
}

// GET /api/v1/admin/orders?status=&limit=
func (c *OrdersController) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	status, err := queryEnum(r, "status", orderStatuses...)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	orders, err := c.orderService.ListOrders(r.Context(), dtos.ListOrdersRequest{Status: status, Limit: limit})
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// GET /api/v1/admin/orders/{id}
func (c *OrdersController) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	order, err := c.orderService.GetOrder(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// PATCH /api/v1/admin/orders/{id}
func (c *OrdersController) UpdateOrderHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.UpdateOrderRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	order, err := c.orderService.UpdateOrder(r.Context(), adminID, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// POST /api/v1/admin/orders/bulk-status
func (c *OrdersController) BulkUpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.BulkUpdateOrderStatusRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	resp, err := c.orderService.BulkUpdateStatus(r.Context(), adminID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/admin/orders/export?format=xlsx|csv&status=
func (c *OrdersController) ExportOrdersHandler(w http.ResponseWriter, r *http.Request) {
	format, err := services.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	status, err := queryEnum(r, "status", orderStatuses...)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	// Buffered so a failure halfway through still gets a proper error response.
	var buf bytes.Buffer
	if err := c.exportService.ExportOrders(r.Context(), &buf, format, status); err != nil {
		utils.HandleAppError(w, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.%s", time.Now().UTC().Format(constants.ExportFileDateLayout), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
