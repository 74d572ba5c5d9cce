package routes

import (
	"net/http"
	"time"

	"conference-api/controllers"
	"conference-api/middleware"
	"conference-api/services"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, api *controllers.API) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", api.HealthCheck)

		// Credentials are passed through unsanitized
		v1.POST("/admin/login", api.Login)

		// Public routes
		public := v1.Group("")
		public.Use(middleware.SanitizeInputMiddleware())
		{
			public.GET("/abstracts/tracks", api.GetTracks)
			public.POST("/abstracts", api.CreateAbstract)
			public.GET("/abstracts/track/:track", api.GetAbstractsByTrack)
			public.GET("/abstracts/:id", api.GetAbstract)

			public.POST("/reviews", api.SubmitReview)
		}

		// Admin routes (require an admin token)
		admin := v1.Group("")
		admin.Use(
			middleware.AuthMiddleware(api.Auth),
			middleware.RequireRole(services.RoleAdmin),
			middleware.SanitizeInputMiddleware(),
		)
		{
			abstracts := admin.Group("/abstracts")
			{
				abstracts.GET("", api.ListAbstracts)
				abstracts.GET("/stats/overview", api.GetAbstractStats)
				abstracts.PATCH("/bulk/status", api.BulkUpdateStatus)
				abstracts.DELETE("/bulk", api.BulkDeleteAbstracts)
				abstracts.PUT("/:id", api.UpdateAbstract)
				abstracts.PATCH("/:id/status", api.UpdateAbstractStatus)
				abstracts.GET("/:id/history", api.GetAbstractHistory)
				abstracts.DELETE("/:id", api.DeleteAbstract)
			}

			reviews := admin.Group("/reviews")
			{
				reviews.GET("", api.ListReviews)
				reviews.GET("/stats/overview", api.GetReviewStats)
				reviews.GET("/abstract/:abstractId", api.GetAbstractReviews)
				reviews.GET("/reviewer/:email", api.GetReviewerReviews)
				reviews.GET("/:id", api.GetReview)
				reviews.PUT("/:id", api.UpdateReview)
				reviews.DELETE("/:id", api.DeleteReview)
			}

			adminArea := admin.Group("/admin")
			{
				adminArea.GET("/dashboard", api.GetDashboard)
				adminArea.GET("/submissions", api.ListFormSubmissions)
				adminArea.GET("/submissions/stats", api.GetFormSubmissionStats)
				adminArea.PATCH("/submissions/bulk", api.BulkReviewFormSubmissions)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Route not found",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}
