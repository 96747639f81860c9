//go:build integration

package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/repositories"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

// These tests run against a migrated database named by DB_URL.
var (
	pool         *pgxpool.Pool
	orderRepo    repositories.OrderRepository
	productRepo  repositories.ProductRepository
	variantRepo  repositories.VariantRepository
	reviewRepo   repositories.ReviewRepository
	actionRepo   repositories.ScheduledActionRepository
	settingsRepo repositories.StoreSettingsRepository
	auditRepo    repositories.AdminAuditLogRepository
)

func TestMain(m *testing.M) {
	utils.InitLogger("mbeauty-admin-integration")
	_ = godotenv.Load()

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Println("DB_URL not set; skipping integration tests")
		os.Exit(0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	var err error
	pool, err = pgxpool.Connect(ctx, dbURL)
	cancel()
	if err != nil {
		log.Fatalf("connecting to %s: %v", dbURL, err)
	}

	orderRepo = repositories.NewOrderRepository(pool)
	productRepo = repositories.NewProductRepository(pool)
	variantRepo = repositories.NewVariantRepository(pool)
	reviewRepo = repositories.NewReviewRepository(pool)
	actionRepo = repositories.NewScheduledActionRepository(pool)
	settingsRepo = repositories.NewStoreSettingsRepository(pool)
	auditRepo = repositories.NewAdminAuditLogRepository(pool)

	code := m.Run()
	pool.Close()
	os.Exit(code)
}

func createOrder(t *testing.T) *models.Order {
	t.Helper()
	o := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "IT-" + uuid.NewString()[:8],
		CustomerEmail: "integration@example.com",
		CustomerName:  "Integration",
		Status:        models.OrderStatusPaid,
		Total:         decimal.RequireFromString("19.99"),
		Currency:      "USD",
	}
	require.NoError(t, orderRepo.Create(context.Background(), o))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM orders WHERE id=$1`, o.ID)
	})
	return o
}

func createProduct(t *testing.T, options ...models.ProductOption) *models.Product {
	t.Helper()
	id := uuid.New()
	for i := range options {
		options[i].ID = uuid.New()
		options[i].ProductID = id
		options[i].Position = i
	}
	p := &models.Product{
		ID:        id,
		Name:      "Velvet Lip",
		Slug:      "velvet-lip-" + id.String()[:8],
		SKUPrefix: "LIP",
		BasePrice: decimal.RequireFromString("24.00"),
		Status:    models.ProductStatusDraft,
		Options:   options,
	}
	require.NoError(t, productRepo.Create(context.Background(), p))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM products WHERE id=$1`, p.ID)
	})
	return p
}
