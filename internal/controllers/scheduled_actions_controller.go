package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/dtos"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/services"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

type ScheduledActionsController struct {
	actionService *services.ScheduledActionService
	validate      *validator.Validate
}

func NewScheduledActionsController(actionService *services.ScheduledActionService) *ScheduledActionsController {
	return &ScheduledActionsController{
		actionService: actionService,
		validate:      validator.New(),
	}
}

// POST /api/v1/admin/scheduled-actions
func (c *ScheduledActionsController) CreateActionHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateScheduledActionRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	action, err := c.actionService.CreateAction(r.Context(), adminID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, action)
}

// GET /api/v1/admin/scheduled-actions?status=&limit=
func (c *ScheduledActionsController) ListActionsHandler(w http.ResponseWriter, r *http.Request) {
	status, err := queryEnum(r, "status",
		models.ScheduledStatusPending,
		models.ScheduledStatusRunning,
		models.ScheduledStatusDone,
		models.ScheduledStatusFailed,
		models.ScheduledStatusCancelled,
	)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	actions, err := c.actionService.ListActions(r.Context(), status, limit)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, actions)
}

// POST /api/v1/admin/scheduled-actions/{id}/cancel
func (c *ScheduledActionsController) CancelActionHandler(w http.ResponseWriter, r *http.Request) {
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

	var req dtos.CancelScheduledActionRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	action, err := c.actionService.CancelAction(r.Context(), adminID, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, action)
}
