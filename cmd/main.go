package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/app"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/cache"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/config"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/constants"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/controllers"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/metrics"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/middleware"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/repositories"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/routes"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/services"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize app:", err)
	}
	defer application.Close()

	orderRepo := repositories.NewOrderRepository(application.DB)
	productRepo := repositories.NewProductRepository(application.DB)
	variantRepo := repositories.NewVariantRepository(application.DB)
	reviewRepo := repositories.NewReviewRepository(application.DB)
	actionRepo := repositories.NewScheduledActionRepository(application.DB)
	settingsRepo := repositories.NewStoreSettingsRepository(application.DB)
	auditRepo := repositories.NewAdminAuditLogRepository(application.DB)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedAllTestData(context.Background(), productRepo, orderRepo, reviewRepo); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		}
	}

	productCache, err := cache.NewProductCache(context.Background(), cfg.RedisURL)
	if err != nil {
		utils.Logger.WithError(err).Warn("Product cache unavailable, reading products from DB only")
		productCache = cache.NoopProductCache{}
	}
	if closer, ok := productCache.(io.Closer); ok {
		defer closer.Close()
	}

	var mailer services.Mailer
	if cfg.SendgridAPIKey != "" {
		mailer = services.NewSendgridMailer(cfg.SendgridAPIKey)
	} else {
		utils.Logger.Warn("SENDGRID_API_KEY not set; customer emails are disabled")
	}

	auditService := services.NewAuditService(auditRepo)
	notificationService := services.NewNotificationService(cfg, mailer)
	orderService := services.NewOrderService(orderRepo, auditService, notificationService)
	exportService := services.NewExportService(orderRepo)
	productService := services.NewProductService(productRepo, variantRepo, productCache, auditService)
	reviewService := services.NewReviewService(reviewRepo, auditService)
	actionService := services.NewScheduledActionService(actionRepo, productRepo, productCache, auditService)
	settingsService := services.NewSettingsService(settingsRepo, auditService)

	healthController := controllers.NewHealthController(application)
	ordersController := controllers.NewOrdersController(orderService, exportService)
	productsController := controllers.NewProductsController(productService)
	reviewsController := controllers.NewReviewsController(reviewService)
	actionsController := controllers.NewScheduledActionsController(actionService)
	settingsController := controllers.NewSettingsController(settingsService)
	auditLogsController := controllers.NewAuditLogsController(auditService)

	router := mux.NewRouter()
	router.Use(middleware.MetricsMiddleware)

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(routes.Metrics, promhttp.Handler()).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AdminAuthMiddleware(cfg.AuthPublicKey))

	// Fixed paths before the {id} ones.
	secured.HandleFunc(routes.AdminOrders, ordersController.ListOrdersHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminOrdersExport, ordersController.ExportOrdersHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminOrdersBulkStatus, ordersController.BulkUpdateStatusHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AdminOrder, ordersController.GetOrderHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminOrder, ordersController.UpdateOrderHandler).Methods(http.MethodPatch)

	secured.HandleFunc(routes.AdminProducts, productsController.CreateProductHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AdminProduct, productsController.GetProductHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminProduct, productsController.UpdateProductHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.AdminProductOptions, productsController.ReplaceOptionsHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.AdminProductVariantsPreview, productsController.PreviewVariantsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminProductVariantsRegenerate, productsController.RegenerateVariantsHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AdminProductVariants, productsController.ListVariantsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminVariant, productsController.UpdateVariantHandler).Methods(http.MethodPatch)

	secured.HandleFunc(routes.AdminReviews, reviewsController.ListReviewsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminReviewsBulkModerate, reviewsController.BulkModerateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AdminReviewsBulkDelete, reviewsController.BulkDeleteHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AdminReview, reviewsController.ModerateReviewHandler).Methods(http.MethodPatch)

	secured.HandleFunc(routes.AdminScheduledActions, actionsController.CreateActionHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AdminScheduledActions, actionsController.ListActionsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminScheduledActionCancel, actionsController.CancelActionHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.AdminSettings, settingsController.GetSettingsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminSettings, settingsController.UpdateSettingsHandler).Methods(http.MethodPatch)

	secured.HandleFunc(routes.AdminAuditLogs, auditLogsController.ListAuditLogsHandler).Methods(http.MethodGet)

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if cfg.LDFlag_RunScheduledActions {
		_, cronErr := c.AddFunc(constants.ScheduledActionsCronSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), constants.ScheduledActionsJobTimeout)
			defer cancel()
			res, e := actionService.RunDueActions(ctx, time.Now().UTC())
			if e != nil {
				utils.Logger.WithError(e).WithField("result", res).Error("Scheduled action run failed")
				metrics.ScheduledActions.WithLabelValues("run_error").Inc()
				return
			}
			if res.Done+res.Failed+res.Skipped+res.Recovered > 0 {
				utils.Logger.WithField("result", res).Info("Scheduled actions processed")
			}
		})
		if cronErr != nil {
			utils.Logger.WithError(cronErr).Fatal("Failed to schedule scheduled actions cron")
		}
	} else {
		utils.Logger.Info("Scheduled action runner disabled by flag")
	}
	c.Start()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           co.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("Server failed to start:", err)
		}
	}()

	<-ctx.Done()
	utils.Logger.Info("Shutting down")

	cronCtx := c.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.WithError(err).Error("HTTP server shutdown failed")
	}
	select {
	case <-cronCtx.Done():
	case <-shutdownCtx.Done():
		utils.Logger.Warn("Scheduled action run still in progress at shutdown")
	}

	// Let in-flight audit entries and emails finish before the pool closes.
	auditService.Wait()
	notificationService.Wait()
}
