package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/dtos"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/services"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

type SettingsController struct {
	settingsService *services.SettingsService
	validate        *validator.Validate
}

func NewSettingsController(settingsService *services.SettingsService) *SettingsController {
	return &SettingsController{
		settingsService: settingsService,
		validate:        validator.New(),
	}
}

// GET /api/v1/admin/settings
func (c *SettingsController) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := c.settingsService.GetSettings(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, settings)
}

// PATCH /api/v1/admin/settings
func (c *SettingsController) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.UpdateStoreSettingsRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	settings, err := c.settingsService.UpdateSettings(r.Context(), adminID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, settings)
}
