package controllers

import (
	"net/http"
	"strconv"

	"conference-api/services"

	"github.com/gin-gonic/gin"
)

// SubmitReview records a reviewer's assessment
func (api *API) SubmitReview(c *gin.Context) {
	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Malformed JSON")
		return
	}

	review, err := api.Reviews.SubmitReview(c.Request.Context(), input)
	if err != nil {
		api.respondError(c, err, "Failed to submit review")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Review submitted successfully",
		"review":  review,
	})
}

// ListReviews lists reviews filtered by abstract, reviewer or recommendation
func (api *API) ListReviews(c *gin.Context) {
	filter := services.ReviewFilter{
		ReviewerEmail:  c.Query("reviewer_email"),
		Recommendation: c.Query("recommendation"),
	}
	if raw := c.Query("abstract_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, "Invalid abstract_id")
			return
		}
		filter.AbstractID = uint(id)
	}

	reviews, err := api.Reviews.List(c.Request.Context(), filter)
	if err != nil {
		api.respondError(c, err, "Failed to fetch reviews")
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// GetReview returns one review
func (api *API) GetReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	review, err := api.Reviews.Get(c.Request.Context(), id)
	if err != nil {
		api.respondError(c, err, "Failed to fetch review")
		return
	}
	c.JSON(http.StatusOK, review)
}

// UpdateReview changes score, recommendation, comments or feedback
func (api *API) UpdateReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var patch services.ReviewPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Malformed JSON")
		return
	}

	review, err := api.Reviews.Update(c.Request.Context(), id, patch)
	if err != nil {
		api.respondError(c, err, "Failed to update review")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Review updated successfully",
		"review":  review,
	})
}

// DeleteReview removes one review
func (api *API) DeleteReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := api.Reviews.Delete(c.Request.Context(), id); err != nil {
		api.respondError(c, err, "Failed to delete review")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

// GetAbstractReviews returns the reviews of one abstract with a summary
func (api *API) GetAbstractReviews(c *gin.Context) {
	id, ok := parseID(c, "abstractId")
	if !ok {
		return
	}
	reviews, summary, err := api.Reviews.Summarize(c.Request.Context(), id)
	if err != nil {
		api.respondError(c, err, "Failed to fetch reviews")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"summary": summary,
	})
}

// GetReviewerReviews lists everything one reviewer has submitted
func (api *API) GetReviewerReviews(c *gin.Context) {
	email := c.Param("email")
	reviews, err := api.Reviews.ListByReviewer(c.Request.Context(), email)
	if err != nil {
		api.respondError(c, err, "Failed to fetch reviews")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviewer_email": email,
		"total_reviews":  len(reviews),
		"reviews":        reviews,
	})
}

// GetReviewStats returns review totals and the reviewer leaderboard
func (api *API) GetReviewStats(c *gin.Context) {
	stats, err := api.Reviews.StatsOverview(c.Request.Context())
	if err != nil {
		api.respondError(c, err, "Failed to fetch review statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
