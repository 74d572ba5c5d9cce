package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Dashboard is the admin landing payload.
type Dashboard struct {
	Abstracts       *AbstractStats       `json:"abstracts"`
	Reviews         *ReviewStats         `json:"reviews"`
	FormSubmissions *FormSubmissionStats `json:"form_submissions"`
	NewThisWeek     int64                `json:"new_this_week"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// DashboardService gathers the independent aggregates concurrently.
type DashboardService struct {
	abstracts *AbstractService
	reviews   *ReviewService
	forms     *FormSubmissionService
	now       func() time.Time
}

func NewDashboardService(abstracts *AbstractService, reviews *ReviewService, forms *FormSubmissionService) *DashboardService {
	return &DashboardService{
		abstracts: abstracts,
		reviews:   reviews,
		forms:     forms,
		now:       abstracts.opts.Now,
	}
}

// Get fails if any of the aggregates fails.
func (s *DashboardService) Get(ctx context.Context) (*Dashboard, error) {
	out := &Dashboard{GeneratedAt: s.now()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.abstracts.StatsOverview(gctx)
		out.Abstracts = stats
		return err
	})
	g.Go(func() error {
		stats, err := s.reviews.StatsOverview(gctx)
		out.Reviews = stats
		return err
	})
	g.Go(func() error {
		stats, err := s.forms.Stats(gctx)
		out.FormSubmissions = stats
		return err
	})
	g.Go(func() error {
		n, err := s.abstracts.CountSince(gctx, out.GeneratedAt.AddDate(0, 0, -7))
		out.NewThisWeek = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
