package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/repositories"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/services"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

// SentinelProductID is used to check if seeding has already occurred.
const SentinelProductID = "5eed0000-0000-4000-8000-000000000001"

// SeedAllTestData creates a small demo catalog, a handful of orders and a
// pending review queue. It is idempotent: nothing is written if the
// sentinel product already exists.
func SeedAllTestData(
	ctx context.Context,
	productRepo repositories.ProductRepository,
	orderRepo repositories.OrderRepository,
	reviewRepo repositories.ReviewRepository,
) error {
	sentinelID := uuid.MustParse(SentinelProductID)

	existing, err := productRepo.GetByID(ctx, sentinelID)
	if err != nil {
		return fmt.Errorf("failed to check for sentinel product: %w", err)
	}
	if existing != nil {
		utils.Logger.Info("Seed data already present; skipping seeding.")
		return nil
	}

	lip := &models.Product{
		ID:          sentinelID,
		Name:        "Velvet Matte Lipstick",
		Slug:        "velvet-matte-lipstick",
		SKUPrefix:   "LIP",
		Description: "Long-wear matte lipstick.",
		BasePrice:   decimal.RequireFromString("24.00"),
		Status:      models.ProductStatusActive,
		Options: []models.ProductOption{
			{ID: uuid.New(), ProductID: sentinelID, Name: "Shade", Values: []string{"Rose", "Ruby", "Nude"}, Position: 0},
			{ID: uuid.New(), ProductID: sentinelID, Name: "Size", Values: []string{"Mini", "Full"}, Position: 1},
		},
	}
	if err := productRepo.Create(ctx, lip); err != nil {
		return fmt.Errorf("seed product: %w", err)
	}

	variants, err := services.GenerateVariantMatrix(lip.SKUPrefix, lip.BasePrice, lip.Options)
	if err != nil {
		return fmt.Errorf("seed variant matrix: %w", err)
	}
	for i := range variants {
		variants[i].ID = uuid.New()
		variants[i].ProductID = lip.ID
		variants[i].Stock = 25
	}
	if _, err := productRepo.SaveVariantsIfVersion(ctx, lip, lip.UpdatedAt, variants); err != nil {
		return fmt.Errorf("seed variants: %w", err)
	}

	statuses := []models.OrderStatusType{
		models.OrderStatusPaid,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	}
	for i, st := range statuses {
		o := &models.Order{
			ID:            uuid.New(),
			OrderNumber:   fmt.Sprintf("MB-SEED-%04d", i+1),
			CustomerEmail: fmt.Sprintf("customer%d@example.com", i+1),
			CustomerName:  fmt.Sprintf("Seed Customer %d", i+1),
			Status:        st,
			Total:         decimal.RequireFromString("48.00"),
			Currency:      "USD",
		}
		if st == models.OrderStatusShipped || st == models.OrderStatusDelivered {
			o.Carrier = utils.Ptr("UPS")
			o.TrackingNumber = utils.Ptr(fmt.Sprintf("1ZSEED%06d", i+1))
		}
		if err := orderRepo.Create(ctx, o); err != nil {
			return fmt.Errorf("seed order %s: %w", o.OrderNumber, err)
		}
	}

	for i, title := range []string{"Gorgeous colour", "Dries out my lips", "Perfect nude"} {
		rv := &models.Review{
			ID:         uuid.New(),
			ProductID:  lip.ID,
			AuthorName: fmt.Sprintf("Reviewer %d", i+1),
			Rating:     5 - i,
			Title:      title,
			Body:       title + ".",
			Status:     models.ReviewStatusPending,
		}
		if err := reviewRepo.Create(ctx, rv); err != nil {
			return fmt.Errorf("seed review: %w", err)
		}
	}

	utils.Logger.Info("Seeding completed successfully.")
	return nil
}
