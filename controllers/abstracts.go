package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"conference-api/services"
	"conference-api/utils"

	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status           string  `json:"status"`
	AdminNotes       *string `json:"admin_notes"`
	ReviewComments   *string `json:"review_comments"`
	ReviewerComments *string `json:"reviewer_comments"`
}

func (r statusRequest) change(by string) services.StatusChange {
	comments := r.ReviewComments
	if comments == nil {
		comments = r.ReviewerComments
	}
	return services.StatusChange{
		Status:           strings.TrimSpace(r.Status),
		AdminNotes:       r.AdminNotes,
		ReviewerComments: comments,
		ChangedBy:        by,
	}
}

type bulkStatusRequest struct {
	IDs []uint `json:"ids"`
	statusRequest
}

type bulkIDsRequest struct {
	IDs []uint `json:"ids"`
}

// GetTracks lists the tracks and cross-cutting themes
func (api *API) GetTracks(c *gin.Context) {
	taxonomy := api.Abstracts.Taxonomy()
	c.JSON(http.StatusOK, gin.H{
		"tracks":             taxonomy.Tracks(),
		"crossCuttingThemes": taxonomy.CrossCuttingThemes(),
	})
}

// CreateAbstract accepts a new submission
func (api *API) CreateAbstract(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Invalid body")
		return
	}
	var input services.AbstractInput
	if err := json.Unmarshal(raw, &input); err != nil {
		badRequest(c, "Malformed JSON")
		return
	}

	abstract, err := api.Abstracts.Create(c.Request.Context(), input, raw)
	if err != nil {
		api.respondError(c, err, "Failed to submit abstract")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Abstract submitted successfully",
		"abstract": abstract,
		"status":   abstract.Status,
	})
}

// GetAbstract returns an abstract with its reviews
func (api *API) GetAbstract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	abstract, err := api.Abstracts.Get(c.Request.Context(), id)
	if err != nil {
		api.respondError(c, err, "Failed to fetch abstract")
		return
	}
	c.JSON(http.StatusOK, abstract)
}

// GetAbstractsByTrack lists the program of one track
func (api *API) GetAbstractsByTrack(c *gin.Context) {
	track := c.Param("track")
	abstracts, err := api.Abstracts.ListByTrack(c.Request.Context(), track, c.Query("status"))
	if err != nil {
		api.respondError(c, err, "Failed to fetch abstracts")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"track":     track,
		"count":     len(abstracts),
		"abstracts": abstracts,
	})
}

// ListAbstracts is the admin listing with filters, search and sorting
func (api *API) ListAbstracts(c *gin.Context) {
	page, limit := utils.ParsePage(c.Query("page"), c.Query("limit"))
	result, err := api.Abstracts.List(c.Request.Context(), services.AbstractFilter{
		Status:    c.Query("status"),
		Track:     c.Query("track"),
		Search:    c.Query("search"),
		Page:      page,
		Limit:     limit,
		SortBy:    queryAlias(c, "sortBy", "sort_by", "created_at"),
		SortOrder: queryAlias(c, "sortOrder", "sort_order", "DESC"),
	})
	if err != nil {
		api.respondError(c, err, "Failed to fetch abstracts")
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateAbstract replaces an abstract
func (api *API) UpdateAbstract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input services.AbstractInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Malformed JSON")
		return
	}

	abstract, err := api.Abstracts.Update(c.Request.Context(), id, input, changedBy(c))
	if err != nil {
		api.respondError(c, err, "Failed to update abstract")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Abstract updated successfully",
		"abstract": abstract,
	})
}

// UpdateAbstractStatus records an admin decision
func (api *API) UpdateAbstractStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Malformed JSON")
		return
	}

	abstract, err := api.Abstracts.SetStatus(c.Request.Context(), id, req.change(changedBy(c)))
	if err != nil {
		api.respondError(c, err, "Failed to update status")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Abstract status updated successfully",
		"abstract": abstract,
	})
}

// BulkUpdateStatus applies one status to many abstracts
func (api *API) BulkUpdateStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Malformed JSON")
		return
	}

	result, err := api.Bulk.BulkSetStatus(c.Request.Context(), req.IDs, req.change(changedBy(c)))
	if err != nil {
		api.respondError(c, err, "Failed to update abstracts")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Abstracts updated successfully",
		"updated":   result.Affected,
		"requested": result.Requested,
		"ids":       result.IDs,
	})
}

// BulkDeleteAbstracts removes many abstracts with their reviews
func (api *API) BulkDeleteAbstracts(c *gin.Context) {
	var req bulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Malformed JSON")
		return
	}

	result, err := api.Bulk.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		api.respondError(c, err, "Failed to delete abstracts")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Abstracts deleted successfully",
		"deleted":   result.Affected,
		"requested": result.Requested,
		"ids":       result.IDs,
	})
}

// DeleteAbstract removes an abstract and its reviews
func (api *API) DeleteAbstract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := api.Abstracts.Delete(c.Request.Context(), id); err != nil {
		api.respondError(c, err, "Failed to delete abstract")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Abstract deleted successfully"})
}

// GetAbstractStats returns counts by status, submission type and track
func (api *API) GetAbstractStats(c *gin.Context) {
	stats, err := api.Abstracts.StatsOverview(c.Request.Context())
	if err != nil {
		api.respondError(c, err, "Failed to fetch statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetAbstractHistory returns the status trail of an abstract
func (api *API) GetAbstractHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	history, err := api.Abstracts.History(c.Request.Context(), id)
	if err != nil {
		api.respondError(c, err, "Failed to fetch history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"abstract_id": id, "history": history})
}
