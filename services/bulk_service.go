package services

import (
	"context"
	"sort"

	"conference-api/config"
	"conference-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BulkResult reports a bulk operation. Requested is the deduplicated id count;
// IDs lists the rows that existed and were affected.
type BulkResult struct {
	Requested int    `json:"requested"`
	Affected  int    `json:"affected"`
	IDs       []uint `json:"ids"`
}

// BulkService applies one status or one deletion to many abstracts atomically.
type BulkService struct {
	db    *gorm.DB
	forms *FormSubmissionService
	opts  Options
}

func NewBulkService(db *gorm.DB, opts Options) *BulkService {
	if db == nil {
		db = config.DB
	}
	opts = opts.withDefaults()
	return &BulkService{db: db, forms: NewFormSubmissionService(db, opts), opts: opts}
}

// normalizeIDs drops zeros and duplicates, keeping ascending order.
func normalizeIDs(ids []uint, max int) ([]uint, error) {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, ErrEmptyIDSet
	}
	if max > 0 && len(out) > max {
		return nil, ErrBulkTooLarge
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// BulkSetStatus sets status (and notes when given) on every existing id.
// Missing ids are skipped and not counted.
func (s *BulkService) BulkSetStatus(ctx context.Context, ids []uint, change StatusChange) (*BulkResult, error) {
	if !models.IsCanonicalStatus(change.Status) {
		return nil, ErrInvalidStatus
	}
	unique, err := normalizeIDs(ids, s.opts.BulkMaxItems)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	result := &BulkResult{Requested: len(unique), IDs: []uint{}}
	var before []models.Abstract
	now := s.opts.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "status").Where("id IN ?", unique).Order("id ASC").Find(&before).Error; err != nil {
			return err
		}
		if len(before) == 0 {
			return nil
		}
		existing := make([]uint, len(before))
		for i, a := range before {
			existing[i] = a.ID
		}

		if err := tx.Model(&models.Abstract{}).Where("id IN ?", existing).Updates(statusUpdates(change, now)).Error; err != nil {
			return err
		}
		for _, a := range before {
			if a.Status == change.Status {
				continue
			}
			if err := recordStatusChange(tx, a.ID, a.Status, change.Status, change.ChangedBy, change.AdminNotes, now); err != nil {
				return err
			}
		}
		result.IDs = existing
		result.Affected = len(existing)
		return nil
	})
	if err != nil {
		return nil, storeErr("bulk update abstract status", err)
	}
	if result.Affected == 0 {
		return result, nil
	}

	s.forms.syncStatusBestEffort(ctx, models.FormTypeAbstract, result.IDs, change.Status, change.AdminNotes, change.ReviewerComments, true)
	s.notify(ctx, before, change.Status)

	s.opts.Logger.Info("bulk status update",
		zap.String("status", change.Status),
		zap.Int("requested", result.Requested),
		zap.Int("affected", result.Affected))
	return result, nil
}

// BulkDelete removes every existing id with its reviews and history.
func (s *BulkService) BulkDelete(ctx context.Context, ids []uint) (*BulkResult, error) {
	unique, err := normalizeIDs(ids, s.opts.BulkMaxItems)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	result := &BulkResult{Requested: len(unique), IDs: []uint{}}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []uint
		if err := tx.Model(&models.Abstract{}).Where("id IN ?", unique).Order("id ASC").Pluck("id", &existing).Error; err != nil {
			return err
		}
		if len(existing) == 0 {
			return nil
		}
		if err := deleteAbstracts(tx, existing); err != nil {
			return err
		}
		result.IDs = existing
		result.Affected = len(existing)
		return nil
	})
	if err != nil {
		return nil, storeErr("bulk delete abstracts", err)
	}

	s.opts.Logger.Info("bulk delete",
		zap.Int("requested", result.Requested),
		zap.Int("affected", result.Affected))
	return result, nil
}

// notify mails authors whose abstract reached a decision status.
func (s *BulkService) notify(ctx context.Context, before []models.Abstract, status string) {
	if s.opts.Notifier == nil || !models.IsDecisionStatus(status) {
		return
	}
	changed := make([]uint, 0, len(before))
	for _, a := range before {
		if a.Status != status {
			changed = append(changed, a.ID)
		}
	}
	if len(changed) == 0 {
		return
	}

	rctx, cancel := withStoreTimeout(persistentContext(ctx), s.opts.Timeout)
	defer cancel()
	var rows []models.Abstract
	if err := s.db.WithContext(rctx).Where("id IN ?", changed).Find(&rows).Error; err != nil {
		s.opts.Logger.Warn("bulk notify: reload failed", zap.Error(err))
		return
	}
	for _, a := range rows {
		s.opts.Notifier.StatusChanged(a, "")
	}
}
