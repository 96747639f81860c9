package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/services"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

type AuditLogsController struct {
	auditService *services.AuditService
}

func NewAuditLogsController(auditService *services.AuditService) *AuditLogsController {
	return &AuditLogsController{auditService: auditService}
}

// GET /api/v1/admin/audit-logs?target_id=&limit=
func (c *AuditLogsController) ListAuditLogsHandler(w http.ResponseWriter, r *http.Request) {
	var targetID *uuid.UUID
	if raw := r.URL.Query().Get("target_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid target_id", nil, err)
			return
		}
		targetID = &id
	}
	limit, err := queryLimit(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	entries, err := c.auditService.List(r.Context(), targetID, limit)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, entries)
}
