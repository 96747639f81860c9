package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/dtos"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/services"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

type ReviewsController struct {
	reviewService *services.ReviewService
	validate      *validator.Validate
}

func NewReviewsController(reviewService *services.ReviewService) *ReviewsController {
	return &ReviewsController{
		reviewService: reviewService,
		validate:      validator.New(),
	}
}

// GET /api/v1/admin/reviews?status=&limit=
// The moderation queue (PENDING) is listed when no status is given.
func (c *ReviewsController) ListReviewsHandler(w http.ResponseWriter, r *http.Request) {
	status, err := queryEnum(r, "status",
		models.ReviewStatusPending, models.ReviewStatusApproved, models.ReviewStatusRejected)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if status == nil {
		status = utils.Ptr(models.ReviewStatusPending)
	}

	reviews, err := c.reviewService.ListReviews(r.Context(), *status, limit)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, reviews)
}

// PATCH /api/v1/admin/reviews/{id}
func (c *ReviewsController) ModerateReviewHandler(w http.ResponseWriter, r *http.Request) {
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

	var req dtos.ModerateReviewRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	review, err := c.reviewService.ModerateReview(r.Context(), adminID, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, review)
}

// POST /api/v1/admin/reviews/bulk-moderate
func (c *ReviewsController) BulkModerateHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.BulkModerateReviewsRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	resp, err := c.reviewService.BulkModerate(r.Context(), adminID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/admin/reviews/bulk-delete
func (c *ReviewsController) BulkDeleteHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.BulkDeleteReviewsRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	resp, err := c.reviewService.BulkDelete(r.Context(), adminID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
