package controllers

import (
	"conference-api/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles the services behind the HTTP handlers.
type API struct {
	DB         *gorm.DB
	Abstracts  *services.AbstractService
	Reviews    *services.ReviewService
	Bulk       *services.BulkService
	Forms      *services.FormSubmissionService
	Dashboard  *services.DashboardService
	Auth       *services.AuthService
	Log        *zap.Logger
	Production bool
}

// NewAPI wires every service over db with shared options.
func NewAPI(db *gorm.DB, taxonomy *services.Taxonomy, auth *services.AuthService, opts services.Options, production bool) *API {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	abstracts := services.NewAbstractService(db, taxonomy, opts)
	reviews := services.NewReviewService(db, opts)
	forms := services.NewFormSubmissionService(db, opts)
	return &API{
		DB:         db,
		Abstracts:  abstracts,
		Reviews:    reviews,
		Bulk:       services.NewBulkService(db, opts),
		Forms:      forms,
		Dashboard:  services.NewDashboardService(abstracts, reviews, forms),
		Auth:       auth,
		Log:        opts.Logger,
		Production: production,
	}
}
