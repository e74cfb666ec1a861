package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"spacos/internal/analytics"
	"spacos/internal/auth"
	"spacos/internal/models"
	"spacos/internal/repository"
)

// dashboardService assembles the organization overview.
type dashboardService struct {
	dashboard repository.DashboardRepository
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(dashboard repository.DashboardRepository) DashboardServicer {
	return &dashboardService{dashboard: dashboard}
}

// GetOverview runs the dashboard queries in parallel and derives the
// deadline, funnel and filing figures as of now.
func (s *dashboardService) GetOverview(ctx context.Context, ac auth.Context, now time.Time) (*Overview, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}

	var (
		counts   map[models.SPACStatus]int64
		spacs    []models.SPAC
		inputs   []analytics.FunnelInput
		upcoming []UpcomingFiling
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.dashboard.StatusCounts(gctx, ac.OrgID)
		return err
	})
	g.Go(func() error {
		var err error
		spacs, err = s.dashboard.DeadlineCandidates(gctx, ac.OrgID)
		return err
	})
	g.Go(func() error {
		var err error
		inputs, err = s.dashboard.FunnelInputs(gctx, ac.OrgID, nil)
		return err
	})
	g.Go(func() error {
		var err error
		upcoming, err = upcomingFilings(gctx, s.dashboard, ac.OrgID, defaultUpcomingDays, now)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, models.ErrUnknownValue) {
			return nil, wrapAnalytics(err)
		}
		return nil, passthrough(err)
	}

	overview := &Overview{
		StatusCounts:    counts,
		UrgentDeadlines: []DeadlineItem{},
		UpcomingFilings: upcoming,
	}
	for _, n := range counts {
		overview.TotalSPACs += n
	}
	for _, spac := range spacs {
		d := analytics.DeadlineMetrics(spac, now)
		if !d.IsUrgent {
			continue
		}
		overview.UrgentDeadlines = append(overview.UrgentDeadlines, DeadlineItem{
			SPACID:   spac.ID,
			Name:     spac.Name,
			Ticker:   spac.Ticker,
			Deadline: d,
		})
	}

	funnel, err := analytics.Funnel(inputs)
	if err != nil {
		return nil, wrapAnalytics(err)
	}
	overview.Funnel = funnel
	overview.ActivePipelineValue = analytics.ActivePipelineValue(funnel)
	return overview, nil
}
