package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"conference-api/config"
	"conference-api/models"
	"conference-api/utils"

	"gorm.io/gorm"
)

// AbstractService is the submission store. It owns the abstract status
// machine; every mutation refreshes updated_at.
type AbstractService struct {
	db        *gorm.DB
	taxonomy  *Taxonomy
	validator *AbstractValidator
	forms     *FormSubmissionService
	opts      Options
}

// AbstractDetail is an abstract with its reviews, newest first. Reviews is never nil.
type AbstractDetail struct {
	models.Abstract
	Reviews []models.Review `json:"reviews"`
}

// StatusChange is an admin status update.
type StatusChange struct {
	Status           string
	AdminNotes       *string
	ReviewerComments *string
	ChangedBy        string
}

// AbstractFilter narrows and orders the admin listing.
type AbstractFilter struct {
	Status    string
	Track     string
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// AbstractPage is one page of the admin listing.
type AbstractPage struct {
	Items      []models.Abstract `json:"abstracts"`
	Pagination utils.Pagination  `json:"pagination"`
}

// TrackCount is the number of abstracts filed under a track.
type TrackCount struct {
	Track string `json:"track"`
	Count int64  `json:"count"`
}

// AbstractStats is the read-only aggregate for dashboards.
type AbstractStats struct {
	Overview         map[string]int64 `json:"overview"`
	BySubmissionType map[string]int64 `json:"by_submission_type"`
	ByTrack          []TrackCount     `json:"by_track"`
}

var abstractSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"status":     true,
	"track":      true,
}

func NewAbstractService(db *gorm.DB, taxonomy *Taxonomy, opts Options) *AbstractService {
	if db == nil {
		db = config.DB
	}
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	opts = opts.withDefaults()
	return &AbstractService{
		db:        db,
		taxonomy:  taxonomy,
		validator: NewAbstractValidator(taxonomy),
		forms:     NewFormSubmissionService(db, opts),
		opts:      opts,
	}
}

// Taxonomy exposes the registry the service validates against.
func (s *AbstractService) Taxonomy() *Taxonomy {
	return s.taxonomy
}

// Create validates and stores a new abstract in the submitted state together
// with its form submission shadow row. raw is kept as the payload snapshot.
func (s *AbstractService) Create(ctx context.Context, in AbstractInput, raw []byte) (*AbstractDetail, error) {
	abstract, err := s.validator.Validate(in)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	now := s.opts.Now()
	abstract.Status = models.StatusSubmitted
	abstract.CreatedAt = now
	abstract.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(abstract).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.AbstractStatusHistory{
			AbstractID: abstract.ID,
			NewStatus:  models.StatusSubmitted,
			ChangedBy:  abstract.CorrespondingAuthorEmail,
			CreatedAt:  now,
		}).Error; err != nil {
			return err
		}
		return s.forms.record(tx, models.FormTypeAbstract, abstract.ID, abstract.CorrespondingAuthorEmail, raw, now)
	})
	if err != nil {
		return nil, storeErr("create abstract", err)
	}

	s.opts.Notifier.AbstractSubmitted(*abstract)
	return &AbstractDetail{Abstract: *abstract, Reviews: []models.Review{}}, nil
}

// Get loads an abstract and its reviews.
func (s *AbstractService) Get(ctx context.Context, id uint) (*AbstractDetail, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()
	return s.load(ctx, id)
}

func (s *AbstractService) load(ctx context.Context, id uint) (*AbstractDetail, error) {
	var abstract models.Abstract
	if err := s.db.WithContext(ctx).First(&abstract, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAbstractNotFound
		}
		return nil, storeErr("get abstract", err)
	}

	reviews := make([]models.Review, 0)
	if err := s.db.WithContext(ctx).
		Where("abstract_id = ?", id).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error; err != nil {
		return nil, storeErr("get abstract reviews", err)
	}
	return &AbstractDetail{Abstract: abstract, Reviews: reviews}, nil
}

// Update replaces every client-editable field. The payload is re-validated
// against the taxonomy; an empty status keeps the current one.
func (s *AbstractService) Update(ctx context.Context, id uint, in AbstractInput, changedBy string) (*AbstractDetail, error) {
	abstract, err := s.validator.Validate(in)
	if err != nil {
		return nil, err
	}
	status := strings.TrimSpace(in.Status)
	if status != "" && !models.IsCanonicalStatus(status) {
		return nil, ErrInvalidStatus
	}

	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var oldStatus string
	now := s.opts.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Abstract
		if err := tx.Select("id", "status").First(&existing, id).Error; err != nil {
			return err
		}
		oldStatus = existing.Status

		updates := map[string]any{
			"title":                      abstract.Title,
			"abstract":                   abstract.Abstract,
			"keywords":                   abstract.Keywords,
			"authors":                    abstract.Authors,
			"corresponding_author_email": abstract.CorrespondingAuthorEmail,
			"submission_type":            abstract.SubmissionType,
			"track":                      abstract.Track,
			"subcategory":                abstract.Subcategory,
			"cross_cutting_themes":       abstract.CrossCuttingThemes,
			"file_url":                   abstract.FileURL,
			"format":                     abstract.Format,
			"updated_at":                 now,
		}
		if status != "" && status != oldStatus {
			updates["status"] = status
		}
		if err := tx.Model(&models.Abstract{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if status != "" && status != oldStatus {
			return recordStatusChange(tx, id, oldStatus, status, changedBy, nil, now)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAbstractNotFound
		}
		return nil, storeErr("update abstract", err)
	}

	detail, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if status != "" && status != oldStatus {
		s.forms.syncStatusBestEffort(ctx, models.FormTypeAbstract, []uint{id}, status, nil, nil, true)
		s.opts.Notifier.StatusChanged(detail.Abstract, oldStatus)
	}
	return detail, nil
}

// SetStatus moves an abstract to a canonical status and records admin notes.
// The shadow row follows after commit and may lag on failure.
func (s *AbstractService) SetStatus(ctx context.Context, id uint, change StatusChange) (*AbstractDetail, error) {
	if !models.IsCanonicalStatus(change.Status) {
		return nil, ErrInvalidStatus
	}

	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var oldStatus string
	now := s.opts.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Abstract
		if err := tx.Select("id", "status").First(&existing, id).Error; err != nil {
			return err
		}
		oldStatus = existing.Status

		if err := tx.Model(&models.Abstract{}).Where("id = ?", id).Updates(statusUpdates(change, now)).Error; err != nil {
			return err
		}
		if oldStatus != change.Status {
			return recordStatusChange(tx, id, oldStatus, change.Status, change.ChangedBy, change.AdminNotes, now)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAbstractNotFound
		}
		return nil, storeErr("set abstract status", err)
	}

	s.forms.syncStatusBestEffort(ctx, models.FormTypeAbstract, []uint{id}, change.Status, change.AdminNotes, change.ReviewerComments, true)

	detail, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.opts.Notifier.StatusChanged(detail.Abstract, oldStatus)
	return detail, nil
}

// Delete removes an abstract, its reviews and its status history in one transaction.
func (s *AbstractService) Delete(ctx context.Context, id uint) error {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Abstract
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			return err
		}
		return deleteAbstracts(tx, []uint{id})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAbstractNotFound
		}
		return storeErr("delete abstract", err)
	}
	return nil
}

// List returns one page of abstracts. Unknown sort fields or directions fall
// back to created_at DESC.
func (s *AbstractService) List(ctx context.Context, f AbstractFilter) (*AbstractPage, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	page, limit := utils.NormalizePage(f.Page, f.Limit)
	scope := func(db *gorm.DB) *gorm.DB {
		if f.Status != "" && f.Status != "all" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Track != "" && f.Track != "all" {
			db = db.Where("track = ?", s.trackValue(f.Track))
		}
		if search := strings.TrimSpace(f.Search); search != "" {
			term := "%" + strings.ToLower(search) + "%"
			db = db.Where("(LOWER(title) LIKE ? OR LOWER(abstract) LIKE ? OR LOWER(corresponding_author_email) LIKE ?)", term, term, term)
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Abstract{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, storeErr("count abstracts", err)
	}

	items := make([]models.Abstract, 0)
	if err := s.db.WithContext(ctx).Scopes(scope).
		Order(abstractOrder(f.SortBy, f.SortOrder)).
		Offset((page - 1) * limit).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, storeErr("list abstracts", err)
	}

	return &AbstractPage{Items: items, Pagination: utils.NewPagination(total, page, limit)}, nil
}

// ListByTrack returns the abstracts of one track in one status, by title.
// An empty status means accepted.
func (s *AbstractService) ListByTrack(ctx context.Context, track, status string) ([]models.Abstract, error) {
	if status == "" {
		status = models.StatusAccepted
	}
	if !models.IsCanonicalStatus(status) {
		return nil, ErrInvalidStatus
	}

	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	items := make([]models.Abstract, 0)
	if err := s.db.WithContext(ctx).
		Where("track = ? AND status = ?", s.trackValue(track), status).
		Order("title ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, storeErr("list abstracts by track", err)
	}
	return items, nil
}

// StatsOverview counts abstracts per status, submission type and track.
func (s *AbstractService) StatsOverview(ctx context.Context) (*AbstractStats, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Abstract{}).Count(&total).Error; err != nil {
		return nil, storeErr("count abstracts", err)
	}

	byStatus, err := countBy(ctx, s.db, &models.Abstract{}, "status")
	if err != nil {
		return nil, storeErr("abstracts by status", err)
	}
	overview := map[string]int64{"total_submissions": total}
	for _, st := range models.CanonicalStatuses {
		overview[st] = byStatus[st]
	}

	byType, err := countBy(ctx, s.db, &models.Abstract{}, "submission_type")
	if err != nil {
		return nil, storeErr("abstracts by submission type", err)
	}
	types := make(map[string]int64, len(models.SubmissionTypes))
	for _, t := range models.SubmissionTypes {
		types[t] = byType[t]
	}

	byTrack := make([]TrackCount, 0)
	if err := s.db.WithContext(ctx).Model(&models.Abstract{}).
		Select("track, COUNT(*) AS count").
		Where("track IS NOT NULL AND track <> ''").
		Group("track").
		Order("COUNT(*) DESC").Order("track ASC").
		Scan(&byTrack).Error; err != nil {
		return nil, storeErr("abstracts by track", err)
	}

	return &AbstractStats{Overview: overview, BySubmissionType: types, ByTrack: byTrack}, nil
}

// CountSince counts abstracts created at or after since.
func (s *AbstractService) CountSince(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Abstract{}).Where("created_at >= ?", since).Count(&n).Error; err != nil {
		return 0, storeErr("count recent abstracts", err)
	}
	return n, nil
}

// History returns the status transitions of an abstract, oldest first.
func (s *AbstractService) History(ctx context.Context, id uint) ([]models.AbstractStatusHistory, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var existing models.Abstract
	if err := s.db.WithContext(ctx).Select("id").First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAbstractNotFound
		}
		return nil, storeErr("get abstract", err)
	}

	rows := make([]models.AbstractStatusHistory, 0)
	if err := s.db.WithContext(ctx).Where("abstract_id = ?", id).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, storeErr("abstract history", err)
	}
	return rows, nil
}

// trackValue maps a track name to its value; unknown identifiers pass through.
func (s *AbstractService) trackValue(identifier string) string {
	if track, ok := s.taxonomy.ResolveTrack(identifier); ok {
		return track.Value
	}
	return strings.TrimSpace(identifier)
}

func abstractOrder(sortBy, sortOrder string) string {
	if !abstractSortFields[sortBy] {
		sortBy = "created_at"
	}
	order := strings.ToUpper(sortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return sortBy + " " + order + ", id " + order
}

func statusUpdates(change StatusChange, now time.Time) map[string]any {
	updates := map[string]any{
		"status":     change.Status,
		"updated_at": now,
	}
	if change.AdminNotes != nil {
		updates["admin_notes"] = *change.AdminNotes
	}
	if change.ReviewerComments != nil {
		updates["reviewer_comments"] = *change.ReviewerComments
	}
	return updates
}

func recordStatusChange(tx *gorm.DB, id uint, oldStatus, newStatus, changedBy string, notes *string, now time.Time) error {
	return tx.Create(&models.AbstractStatusHistory{
		AbstractID: id,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		ChangedBy:  changedBy,
		Notes:      notes,
		CreatedAt:  now,
	}).Error
}

// deleteAbstracts removes owned rows first, then the abstracts.
func deleteAbstracts(tx *gorm.DB, ids []uint) error {
	if err := tx.Where("abstract_id IN ?", ids).Delete(&models.Review{}).Error; err != nil {
		return err
	}
	if err := tx.Where("abstract_id IN ?", ids).Delete(&models.AbstractStatusHistory{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Abstract{}).Error
}
