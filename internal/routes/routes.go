package routes

const (
	Health  = "/health"
	Metrics = "/metrics"

	AdminBase = "/api/v1/admin"

	// Orders
	AdminOrders           = AdminBase + "/orders"
	AdminOrder            = AdminBase + "/orders/{id}"
	AdminOrdersBulkStatus = AdminBase + "/orders/bulk-status"
	AdminOrdersExport     = AdminBase + "/orders/export"

	// Products and variants
	AdminProducts                  = AdminBase + "/products"
	AdminProduct                   = AdminBase + "/products/{id}"
	AdminProductOptions            = AdminBase + "/products/{id}/options"
	AdminProductVariants           = AdminBase + "/products/{id}/variants"
	AdminProductVariantsPreview    = AdminBase + "/products/{id}/variants/preview"
	AdminProductVariantsRegenerate = AdminBase + "/products/{id}/variants/regenerate"
	AdminVariant                   = AdminBase + "/variants/{id}"

	// Reviews
	AdminReviews             = AdminBase + "/reviews"
	AdminReview              = AdminBase + "/reviews/{id}"
	AdminReviewsBulkModerate = AdminBase + "/reviews/bulk-moderate"
	AdminReviewsBulkDelete   = AdminBase + "/reviews/bulk-delete"

	// Scheduled actions
	AdminScheduledActions      = AdminBase + "/scheduled-actions"
	AdminScheduledActionCancel = AdminBase + "/scheduled-actions/{id}/cancel"

	AdminSettings  = AdminBase + "/settings"
	AdminAuditLogs = AdminBase + "/audit-logs"
)
