package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"conference-api/config"
	"conference-api/models"
	"conference-api/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	scoreMin          = 1
	scoreMax          = 10
	commentsMaxLen    = 5000
	topReviewersLimit = 10
)

// ReviewService records reviews and aggregates them per abstract.
type ReviewService struct {
	db    *gorm.DB
	forms *FormSubmissionService
	opts  Options
}

// ReviewInput is a reviewer's submission.
type ReviewInput struct {
	AbstractID       uint            `json:"abstract_id"`
	ReviewerName     string          `json:"reviewer_name"`
	ReviewerEmail    string          `json:"reviewer_email"`
	Score            *int            `json:"score"`
	Recommendation   string          `json:"recommendation"`
	Comments         *string         `json:"comments"`
	DetailedFeedback json.RawMessage `json:"detailed_feedback"`
}

// ReviewPatch changes the given fields of a review; nil fields are kept.
type ReviewPatch struct {
	Score            *int            `json:"score"`
	Recommendation   *string         `json:"recommendation"`
	Comments         *string         `json:"comments"`
	DetailedFeedback json.RawMessage `json:"detailed_feedback"`
}

// ReviewFilter narrows the review listing. Zero values match everything.
type ReviewFilter struct {
	AbstractID     uint
	ReviewerEmail  string
	Recommendation string
}

// ReviewListItem is a review annotated with the abstract it belongs to.
type ReviewListItem struct {
	models.Review
	AbstractTitle  string `json:"abstract_title"`
	Track          string `json:"track,omitempty"`
	SubmissionType string `json:"submission_type,omitempty"`
}

// ReviewSummary aggregates the reviews of one abstract.
type ReviewSummary struct {
	TotalReviews    int              `json:"total_reviews"`
	AverageScore    *float64         `json:"average_score"`
	Recommendations map[string]int64 `json:"recommendations"`
}

// ReviewerStat is one row of the reviewer leaderboard.
type ReviewerStat struct {
	ReviewerEmail string  `json:"reviewer_email"`
	ReviewerName  string  `json:"reviewer_name"`
	ReviewCount   int64   `json:"review_count"`
	AvgScoreGiven float64 `json:"avg_score_given"`
}

// ReviewOverview counts reviews across all abstracts.
type ReviewOverview struct {
	TotalReviews       int64    `json:"total_reviews"`
	UniqueReviewers    int64    `json:"unique_reviewers"`
	ReviewedAbstracts  int64    `json:"reviewed_abstracts"`
	AverageScore       *float64 `json:"average_score"`
	AcceptCount        int64    `json:"accept_count"`
	RejectCount        int64    `json:"reject_count"`
	MinorRevisionCount int64    `json:"minor_revision_count"`
	MajorRevisionCount int64    `json:"major_revision_count"`
}

type reviewTotals struct {
	TotalReviews      int64
	UniqueReviewers   int64
	ReviewedAbstracts int64
	AverageScore      *float64
}

// ReviewStats is the reviewer-facing aggregate.
type ReviewStats struct {
	Overview     ReviewOverview `json:"overview"`
	TopReviewers []ReviewerStat `json:"top_reviewers"`
}

func NewReviewService(db *gorm.DB, opts Options) *ReviewService {
	if db == nil {
		db = config.DB
	}
	opts = opts.withDefaults()
	return &ReviewService{db: db, forms: NewFormSubmissionService(db, opts), opts: opts}
}

// SubmitReview stores a review. The first review of a submitted abstract moves
// it to under_review through a conditional update, so concurrent first
// reviews transition it once.
func (s *ReviewService) SubmitReview(ctx context.Context, in ReviewInput) (*models.Review, error) {
	review, err := validateReview(in)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	now := s.opts.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	transitioned := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var abstract models.Abstract
		if err := tx.Select("id").First(&abstract, review.AbstractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAbstractNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("abstract_id = ? AND reviewer_email = ?", review.AbstractID, review.ReviewerEmail).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateReview
		}

		if err := tx.Create(review).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicateReview
			}
			return err
		}

		res := tx.Model(&models.Abstract{}).
			Where("id = ? AND status = ?", review.AbstractID, models.StatusSubmitted).
			Updates(map[string]any{"status": models.StatusUnderReview, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			transitioned = true
			return recordStatusChange(tx, review.AbstractID, models.StatusSubmitted, models.StatusUnderReview, review.ReviewerEmail, nil, now)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAbstractNotFound) || errors.Is(err, ErrDuplicateReview) {
			return nil, err
		}
		if isDuplicateKey(err) {
			return nil, ErrDuplicateReview
		}
		return nil, storeErr("submit review", err)
	}

	if transitioned {
		s.forms.syncStatusBestEffort(ctx, models.FormTypeAbstract, []uint{review.AbstractID}, models.StatusUnderReview, nil, nil, false)
	}
	s.opts.Logger.Info("review submitted",
		zap.Uint("abstract_id", review.AbstractID),
		zap.Uint("review_id", review.ID),
		zap.Bool("transitioned", transitioned))
	return review, nil
}

// Summarize returns the reviews of one abstract with their summary. An
// unknown abstract yields an empty list.
func (s *ReviewService) Summarize(ctx context.Context, abstractID uint) ([]models.Review, ReviewSummary, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	reviews := make([]models.Review, 0)
	if err := s.db.WithContext(ctx).
		Where("abstract_id = ?", abstractID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error; err != nil {
		return nil, ReviewSummary{}, storeErr("list abstract reviews", err)
	}
	return reviews, summarizeReviews(reviews), nil
}

// summarizeReviews averages scores to two decimals and tallies recommendations.
func summarizeReviews(reviews []models.Review) ReviewSummary {
	summary := ReviewSummary{
		TotalReviews:    len(reviews),
		Recommendations: map[string]int64{},
	}
	if len(reviews) == 0 {
		return summary
	}
	total := 0
	for _, r := range reviews {
		total += r.Score
		summary.Recommendations[r.Recommendation]++
	}
	avg := round2(float64(total) / float64(len(reviews)))
	summary.AverageScore = &avg
	return summary
}

// List returns matching reviews newest first, each with its abstract title.
func (s *ReviewService) List(ctx context.Context, f ReviewFilter) ([]ReviewListItem, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	q := s.db.WithContext(ctx).Model(&models.Review{})
	if f.AbstractID != 0 {
		q = q.Where("abstract_id = ?", f.AbstractID)
	}
	if email := strings.TrimSpace(f.ReviewerEmail); email != "" {
		q = q.Where("reviewer_email = ?", utils.NormalizeEmail(email))
	}
	if f.Recommendation != "" {
		q = q.Where("recommendation = ?", f.Recommendation)
	}

	var reviews []models.Review
	if err := q.Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		return nil, storeErr("list reviews", err)
	}
	return s.annotate(ctx, reviews)
}

// ListByReviewer returns every review by one reviewer.
func (s *ReviewService) ListByReviewer(ctx context.Context, email string) ([]ReviewListItem, error) {
	return s.List(ctx, ReviewFilter{ReviewerEmail: email})
}

// Get loads one review with its abstract title.
func (s *ReviewService) Get(ctx context.Context, id uint) (*ReviewListItem, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, storeErr("get review", err)
	}
	items, err := s.annotate(ctx, []models.Review{review})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Update applies a partial change. A provided score is range-checked again.
func (s *ReviewService) Update(ctx context.Context, id uint, patch ReviewPatch) (*models.Review, error) {
	updates := map[string]any{}
	if patch.Score != nil {
		if *patch.Score < scoreMin || *patch.Score > scoreMax {
			return nil, invalid(KindInvalidScore, "score", "Score must be between 1 and 10")
		}
		updates["score"] = *patch.Score
	}
	if patch.Recommendation != nil {
		if !models.IsValidRecommendation(*patch.Recommendation) {
			return nil, invalid(KindInvalidRecommendation, "recommendation", "Invalid recommendation")
		}
		updates["recommendation"] = *patch.Recommendation
	}
	if patch.Comments != nil {
		comments := strings.TrimSpace(*patch.Comments)
		if len([]rune(comments)) > commentsMaxLen {
			return nil, invalid(KindTooLong, "comments", "Comments must not exceed 5000 characters")
		}
		updates["comments"] = comments
	}
	if len(patch.DetailedFeedback) > 0 {
		feedback, err := feedbackJSON(patch.DetailedFeedback)
		if err != nil {
			return nil, err
		}
		updates["detailed_feedback"] = feedback
	}

	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, id).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		updates["updated_at"] = s.opts.Now()
		if err := tx.Model(&models.Review{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&review, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, storeErr("update review", err)
	}
	return &review, nil
}

// Delete removes one review. The abstract status is left as is.
func (s *ReviewService) Delete(ctx context.Context, id uint) error {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Review{})
	if res.Error != nil {
		return storeErr("delete review", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// StatsOverview returns review totals and the ten most active reviewers.
func (s *ReviewService) StatsOverview(ctx context.Context) (*ReviewStats, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var totals reviewTotals
	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("COUNT(*) AS total_reviews, COUNT(DISTINCT reviewer_email) AS unique_reviewers, " +
			"COUNT(DISTINCT abstract_id) AS reviewed_abstracts, AVG(score) AS average_score").
		Scan(&totals).Error; err != nil {
		return nil, storeErr("review totals", err)
	}

	byRecommendation, err := countBy(ctx, s.db, &models.Review{}, "recommendation")
	if err != nil {
		return nil, storeErr("reviews by recommendation", err)
	}

	overview := ReviewOverview{
		TotalReviews:       totals.TotalReviews,
		UniqueReviewers:    totals.UniqueReviewers,
		ReviewedAbstracts:  totals.ReviewedAbstracts,
		AcceptCount:        byRecommendation[models.RecommendationAccept],
		RejectCount:        byRecommendation[models.RecommendationReject],
		MinorRevisionCount: byRecommendation[models.RecommendationMinorRevision],
		MajorRevisionCount: byRecommendation[models.RecommendationMajorRevision],
	}
	if totals.AverageScore != nil {
		avg := round2(*totals.AverageScore)
		overview.AverageScore = &avg
	}

	top := make([]ReviewerStat, 0)
	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("reviewer_email, MAX(reviewer_name) AS reviewer_name, COUNT(*) AS review_count, AVG(score) AS avg_score_given").
		Group("reviewer_email").
		Order("COUNT(*) DESC").Order("reviewer_email ASC").
		Limit(topReviewersLimit).
		Scan(&top).Error; err != nil {
		return nil, storeErr("top reviewers", err)
	}
	for i := range top {
		top[i].AvgScoreGiven = round2(top[i].AvgScoreGiven)
	}

	return &ReviewStats{Overview: overview, TopReviewers: top}, nil
}

// annotate attaches abstract title, track and submission type to each review.
func (s *ReviewService) annotate(ctx context.Context, reviews []models.Review) ([]ReviewListItem, error) {
	items := make([]ReviewListItem, 0, len(reviews))
	if len(reviews) == 0 {
		return items, nil
	}

	ids := make([]uint, 0, len(reviews))
	seen := make(map[uint]struct{}, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.AbstractID]; !ok {
			seen[r.AbstractID] = struct{}{}
			ids = append(ids, r.AbstractID)
		}
	}

	var abstracts []models.Abstract
	if err := s.db.WithContext(ctx).
		Select("id", "title", "track", "submission_type").
		Where("id IN ?", ids).
		Find(&abstracts).Error; err != nil {
		return nil, storeErr("review abstract titles", err)
	}
	byID := make(map[uint]models.Abstract, len(abstracts))
	for _, a := range abstracts {
		byID[a.ID] = a
	}

	for _, r := range reviews {
		a := byID[r.AbstractID]
		items = append(items, ReviewListItem{
			Review:         r,
			AbstractTitle:  a.Title,
			Track:          a.Track,
			SubmissionType: a.SubmissionType,
		})
	}
	return items, nil
}

func validateReview(in ReviewInput) (*models.Review, error) {
	name := utils.SanitizeInput(in.ReviewerName)
	email := utils.SanitizeInput(in.ReviewerEmail)
	recommendation := strings.ToLower(utils.SanitizeInput(in.Recommendation))

	if in.AbstractID == 0 || name == "" || email == "" || in.Score == nil || recommendation == "" {
		return nil, invalid(KindMissingField, "", "Abstract ID, reviewer name, reviewer email, score, and recommendation are required")
	}
	if !utils.ValidateEmail(email) {
		return nil, invalid(KindInvalidEmail, "reviewer_email", "Valid reviewer email is required")
	}
	if *in.Score < scoreMin || *in.Score > scoreMax {
		return nil, invalid(KindInvalidScore, "score", "Score must be between 1 and 10")
	}
	if !models.IsValidRecommendation(recommendation) {
		return nil, invalid(KindInvalidRecommendation, "recommendation", "Invalid recommendation")
	}

	review := &models.Review{
		AbstractID:     in.AbstractID,
		ReviewerName:   name,
		ReviewerEmail:  utils.NormalizeEmail(email),
		Score:          *in.Score,
		Recommendation: recommendation,
	}
	if in.Comments != nil {
		comments := strings.TrimSpace(*in.Comments)
		if len([]rune(comments)) > commentsMaxLen {
			return nil, invalid(KindTooLong, "comments", "Comments must not exceed 5000 characters")
		}
		if comments != "" {
			review.Comments = &comments
		}
	}
	if len(in.DetailedFeedback) > 0 {
		feedback, err := feedbackJSON(in.DetailedFeedback)
		if err != nil {
			return nil, err
		}
		review.DetailedFeedback = feedback
	}
	return review, nil
}

// feedbackJSON accepts a JSON object or null; null maps to no value.
func feedbackJSON(raw json.RawMessage) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var obj map[string]any
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &obj) != nil {
		return nil, invalid(KindInvalidField, "detailed_feedback", "Detailed feedback must be a JSON object")
	}
	return datatypes.JSON(trimmed), nil
}
