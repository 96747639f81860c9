package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/dtos"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/repositories"
)

type SettingsService struct {
	settingsRepo repositories.StoreSettingsRepository
	audit        *AuditService
}

func NewSettingsService(settingsRepo repositories.StoreSettingsRepository, audit *AuditService) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, audit: audit}
}

func (s *SettingsService) GetSettings(ctx context.Context) (*models.StoreSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, internalError("Failed to load store settings", err)
	}
	if settings == nil {
		return nil, notFound("Store settings")
	}
	return settings, nil
}

func (s *SettingsService) UpdateSettings(ctx context.Context, adminID uuid.UUID, req dtos.UpdateStoreSettingsRequest) (*models.StoreSettings, error) {
	before, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	edit := *before
	if req.StoreName != nil {
		edit.StoreName = *req.StoreName
	}
	if req.SupportEmail != nil {
		edit.SupportEmail = *req.SupportEmail
	}
	if req.Currency != nil {
		edit.Currency = *req.Currency
	}
	if req.LowStockThreshold != nil {
		edit.LowStockThreshold = *req.LowStockThreshold
	}
	if req.FreeShippingThreshold != nil {
		if err := checkPrice("free_shipping_threshold", *req.FreeShippingThreshold); err != nil {
			return nil, err
		}
		edit.FreeShippingThreshold = *req.FreeShippingThreshold
	}

	updated, err := s.settingsRepo.SaveIfVersion(ctx, &edit, req.ExpectedUpdatedAt)
	if err != nil {
		return nil, writeError[*models.StoreSettings]("store_settings", "Store settings", err)
	}
	writeSucceeded("store_settings")

	s.audit.RecordChange(adminID, models.TargetStoreSettings, updated.ID, updated.StoreName, before, updated)
	return updated, nil
}
