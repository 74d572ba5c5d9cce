package services

import (
	"context"
	"time"

	"conference-api/config"
	"conference-api/models"
	"conference-api/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FormSubmissionService owns the cross-entity admin review queue.
type FormSubmissionService struct {
	db   *gorm.DB
	opts Options
}

// FormSubmissionFilter narrows the queue listing.
type FormSubmissionFilter struct {
	FormType string
	Status   string
	Page     int
	Limit    int
}

// FormSubmissionPage is one page of the queue.
type FormSubmissionPage struct {
	Items      []models.FormSubmission `json:"submissions"`
	Pagination utils.Pagination        `json:"pagination"`
}

// FormSubmissionStats summarizes the queue.
type FormSubmissionStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByFormType map[string]int64 `json:"by_form_type"`
}

var bulkReviewActions = map[string]string{
	"approve":      models.StatusApproved,
	"reject":       models.StatusRejected,
	"under_review": models.StatusUnderReview,
}

func NewFormSubmissionService(db *gorm.DB, opts Options) *FormSubmissionService {
	if db == nil {
		db = config.DB
	}
	return &FormSubmissionService{db: db, opts: opts.withDefaults()}
}

// record writes the shadow row for a new entity inside the caller's transaction.
func (s *FormSubmissionService) record(tx *gorm.DB, formType string, entityID uint, submittedBy string, payload []byte, now time.Time) error {
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	row := models.FormSubmission{
		FormType:       formType,
		EntityID:       entityID,
		SubmittedBy:    submittedBy,
		SubmissionData: datatypes.JSON(payload),
		Status:         models.StatusSubmitted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return tx.Create(&row).Error
}

// syncStatus mirrors an entity status change onto its shadow rows. Callers run
// it after their own commit and only log its failure.
func (s *FormSubmissionService) syncStatus(ctx context.Context, formType string, entityIDs []uint, status string, adminNotes, reviewComments *string, reviewed bool) error {
	if len(entityIDs) == 0 {
		return nil
	}
	ctx, cancel := withStoreTimeout(persistentContext(ctx), s.opts.Timeout)
	defer cancel()

	now := s.opts.Now()
	updates := map[string]any{
		"status":     status,
		"updated_at": now,
	}
	if adminNotes != nil {
		updates["admin_notes"] = *adminNotes
	}
	if reviewComments != nil {
		updates["review_comments"] = *reviewComments
	}
	if reviewed {
		updates["reviewed_at"] = now
	}
	err := s.db.WithContext(ctx).Model(&models.FormSubmission{}).
		Where("form_type = ? AND entity_id IN ?", formType, entityIDs).
		Updates(updates).Error
	return storeErr("sync form submission status", err)
}

// syncStatusBestEffort logs instead of returning.
func (s *FormSubmissionService) syncStatusBestEffort(ctx context.Context, formType string, entityIDs []uint, status string, adminNotes, reviewComments *string, reviewed bool) {
	if err := s.syncStatus(ctx, formType, entityIDs, status, adminNotes, reviewComments, reviewed); err != nil {
		s.opts.Logger.Warn("form submission shadow out of sync",
			zap.String("form_type", formType),
			zap.Uints("entity_ids", entityIDs),
			zap.String("status", status),
			zap.Error(err))
	}
}

// List returns queue rows newest first.
func (s *FormSubmissionService) List(ctx context.Context, f FormSubmissionFilter) (*FormSubmissionPage, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	page, limit := utils.NormalizePage(f.Page, f.Limit)
	scope := func(db *gorm.DB) *gorm.DB {
		if f.FormType != "" && f.FormType != "all" {
			db = db.Where("form_type = ?", f.FormType)
		}
		if f.Status != "" && f.Status != "all" {
			db = db.Where("status = ?", f.Status)
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.FormSubmission{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, storeErr("count form submissions", err)
	}

	items := make([]models.FormSubmission, 0)
	if err := s.db.WithContext(ctx).Scopes(scope).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, storeErr("list form submissions", err)
	}

	return &FormSubmissionPage{Items: items, Pagination: utils.NewPagination(total, page, limit)}, nil
}

// Stats groups queue rows by status and by form type.
func (s *FormSubmissionService) Stats(ctx context.Context) (*FormSubmissionStats, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	stats := &FormSubmissionStats{}
	if err := s.db.WithContext(ctx).Model(&models.FormSubmission{}).Count(&stats.Total).Error; err != nil {
		return nil, storeErr("count form submissions", err)
	}
	var err error
	if stats.ByStatus, err = countBy(ctx, s.db, &models.FormSubmission{}, "status"); err != nil {
		return nil, storeErr("form submissions by status", err)
	}
	if stats.ByFormType, err = countBy(ctx, s.db, &models.FormSubmission{}, "form_type"); err != nil {
		return nil, storeErr("form submissions by type", err)
	}
	return stats, nil
}

// BulkReview moves queue rows (not the entities they mirror) to the status
// implied by action.
func (s *FormSubmissionService) BulkReview(ctx context.Context, ids []uint, action string, notes *string) (*BulkResult, error) {
	status, ok := bulkReviewActions[action]
	if !ok {
		return nil, ErrInvalidBulkAction
	}
	unique, err := normalizeIDs(ids, s.opts.BulkMaxItems)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	result := &BulkResult{Requested: len(unique), IDs: []uint{}}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []uint
		if err := tx.Model(&models.FormSubmission{}).Where("id IN ?", unique).Order("id ASC").Pluck("id", &existing).Error; err != nil {
			return err
		}
		if len(existing) == 0 {
			return nil
		}
		now := s.opts.Now()
		updates := map[string]any{"status": status, "reviewed_at": now, "updated_at": now}
		if notes != nil {
			updates["admin_notes"] = *notes
		}
		if err := tx.Model(&models.FormSubmission{}).Where("id IN ?", existing).Updates(updates).Error; err != nil {
			return err
		}
		result.IDs = existing
		result.Affected = len(existing)
		return nil
	})
	if err != nil {
		return nil, storeErr("bulk review form submissions", err)
	}
	return result, nil
}
