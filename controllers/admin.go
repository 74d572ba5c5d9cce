package controllers

import (
	"net/http"

	"conference-api/services"
	"conference-api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type bulkReviewRequest struct {
	IDs    []uint  `json:"ids"`
	Action string  `json:"action"`
	Notes  *string `json:"admin_notes"`
}

// Login handles admin authentication
func (api *API) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required")
		return
	}

	token, claims, err := api.Auth.Login(req.Email, req.Password)
	if err != nil {
		api.Log.Warn("admin login failed", zap.String("email", utils.NormalizeEmail(req.Email)))
		api.respondError(c, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      token,
		"expires_at": claims.ExpiresAt.Time,
		"user": gin.H{
			"email": claims.Email,
			"role":  claims.Role,
		},
	})
}

// GetDashboard returns the admin overview
func (api *API) GetDashboard(c *gin.Context) {
	dashboard, err := api.Dashboard.Get(c.Request.Context())
	if err != nil {
		api.respondError(c, err, "Failed to fetch dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ListFormSubmissions lists the cross-entity review queue
func (api *API) ListFormSubmissions(c *gin.Context) {
	page, limit := utils.ParsePage(c.Query("page"), c.Query("limit"))
	result, err := api.Forms.List(c.Request.Context(), services.FormSubmissionFilter{
		FormType: c.Query("form_type"),
		Status:   c.Query("status"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		api.respondError(c, err, "Failed to fetch submissions")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetFormSubmissionStats summarizes the review queue
func (api *API) GetFormSubmissionStats(c *gin.Context) {
	stats, err := api.Forms.Stats(c.Request.Context())
	if err != nil {
		api.respondError(c, err, "Failed to fetch submission statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// BulkReviewFormSubmissions approves, rejects or reopens queue rows
func (api *API) BulkReviewFormSubmissions(c *gin.Context) {
	var req bulkReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Malformed JSON")
		return
	}

	result, err := api.Forms.BulkReview(c.Request.Context(), req.IDs, req.Action, req.Notes)
	if err != nil {
		api.respondError(c, err, "Failed to update submissions")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Submissions updated successfully",
		"updated":   result.Affected,
		"requested": result.Requested,
		"ids":       result.IDs,
	})
}
