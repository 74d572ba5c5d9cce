package services

import (
	"context"
	"testing"

	"conference-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardAggregates(t *testing.T) {
	db := newTestDB(t)
	clock := newTestClock()
	opts := testOptions(clock)
	abstracts := NewAbstractService(db, nil, opts)
	reviews := NewReviewService(db, opts)
	forms := NewFormSubmissionService(db, opts)
	ctx := context.Background()

	first := createAbstract(t, abstracts)
	second := createAbstract(t, abstracts)
	_, err := reviews.SubmitReview(ctx, reviewInput(first.ID, "r@example.org", 9))
	require.NoError(t, err)
	_, err = abstracts.SetStatus(ctx, second.ID, StatusChange{Status: models.StatusRejected})
	require.NoError(t, err)

	dash, err := NewDashboardService(abstracts, reviews, forms).Get(ctx)
	require.NoError(t, err)

	require.NotNil(t, dash.Abstracts)
	assert.Equal(t, int64(2), dash.Abstracts.Overview["total_submissions"])
	require.NotNil(t, dash.Reviews)
	assert.Equal(t, int64(1), dash.Reviews.Overview.TotalReviews)
	require.NotNil(t, dash.FormSubmissions)
	assert.Equal(t, int64(2), dash.FormSubmissions.Total)
	assert.Equal(t, int64(1), dash.FormSubmissions.ByStatus[models.StatusRejected])
	assert.Equal(t, int64(2), dash.NewThisWeek)
	assert.False(t, dash.GeneratedAt.IsZero())
}

func TestDashboardFailsWhenStoreFails(t *testing.T) {
	db := newTestDB(t)
	opts := testOptions(newTestClock())
	svc := NewDashboardService(NewAbstractService(db, nil, opts), NewReviewService(db, opts), NewFormSubmissionService(db, opts))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = svc.Get(context.Background())
	assert.Error(t, err)
}
