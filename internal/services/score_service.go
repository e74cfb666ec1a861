package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"spacos/internal/analytics"
	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/logger"
	"spacos/internal/models"
	"spacos/internal/observability"
	"spacos/internal/scoring"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// scoreService appends to per-target score histories. Appends for one
// target are serialized so sequences follow call order.
type scoreService struct {
	db      *gorm.DB
	scorer  TargetScorer
	metrics *observability.Metrics

	locks sync.Map // target ID -> *sync.Mutex
}

// NewScoreService creates a new ScoreServicer. scorer may be nil when no
// scoring endpoint is configured; metrics may be nil.
func NewScoreService(db *gorm.DB, scorer TargetScorer, metrics *observability.Metrics) ScoreServicer {
	return &scoreService{db: db, scorer: scorer, metrics: metrics}
}

func (s *scoreService) lock(targetID string) func() {
	mu, _ := s.locks.LoadOrStore(targetID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func validScore(v *int) bool {
	return v == nil || (*v >= 0 && *v <= 100)
}

// RecordScore appends a completed scoring to the target's history, updates
// the target's evaluation score, and returns the refreshed history.
func (s *scoreService) RecordScore(ac auth.Context, targetID string, in ScoreInput) (*ScoreHistory, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	for _, v := range []*int{&in.OverallScore, in.Management, in.Market, in.Financial, in.Operational, in.Transaction} {
		if !validScore(v) {
			return nil, apperrors.ErrInvalidScore
		}
	}
	if _, err := findOwned[models.Target](s.db, ac.OrgID, targetID, apperrors.ErrTargetNotFound); err != nil {
		return nil, err
	}

	unlock := s.lock(targetID)
	defer unlock()

	entry := &models.ScoreHistoryEntry{
		OrganizationID: ac.OrgID,
		TargetID:       targetID,
		OverallScore:   in.OverallScore,
		Management:     in.Management,
		Market:         in.Market,
		Financial:      in.Financial,
		Operational:    in.Operational,
		Transaction:    in.Transaction,
		Thesis:         in.Thesis,
		Model:          in.Model,
		CreatedAt:      time.Now(),
	}
	if len(in.RawResponse) > 0 {
		entry.RawResponse = datatypes.JSON(in.RawResponse)
	}
	if ac.UserID != "" {
		uid := ac.UserID
		entry.CreatedBy = &uid
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&models.ScoreHistoryEntry{}).
			Where("target_id = ?", targetID).
			Select("COALESCE(MAX(sequence), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		entry.Sequence = last + 1
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.Target{}).
			Where("id = ? AND organization_id = ?", targetID, ac.OrgID).
			Update("evaluation_score", in.OverallScore).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	history, err := s.history(ac.OrgID, targetID, defaultHistoryLimit)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordScore(string(history.Trend.Trend))
	logger.Get().Infow("Recorded target score",
		"target_id", targetID, "sequence", entry.Sequence, "overall_score", entry.OverallScore, "trend", history.Trend.Trend)
	return history, nil
}

// ScoreTarget asks the scoring endpoint to evaluate the target and records
// the result.
func (s *scoreService) ScoreTarget(ctx context.Context, ac auth.Context, targetID string) (*ScoreHistory, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	if s.scorer == nil {
		return nil, apperrors.ErrScoringUnavailable
	}
	target, err := findOwned[models.Target](s.db, ac.OrgID, targetID, apperrors.ErrTargetNotFound)
	if err != nil {
		return nil, err
	}

	req := scoring.Request{
		TargetID:        target.ID,
		Name:            target.Name,
		Industry:        target.Industry,
		Description:     target.Description,
		Headquarters:    target.Headquarters,
		EnterpriseValue: target.EnterpriseValue.String(),
		Stage:           string(target.Stage),
	}
	if target.SPACID != nil {
		if spac, err := orgSPAC(s.db, ac.OrgID, *target.SPACID); err == nil {
			req.SPACName = spac.Name
		}
	}

	result, err := s.scorer.Score(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrScoringUnavailable, err)
	}

	return s.RecordScore(ac, targetID, ScoreInput{
		OverallScore: result.OverallScore,
		Management:   result.Categories.Management,
		Market:       result.Categories.Market,
		Financial:    result.Categories.Financial,
		Operational:  result.Categories.Operational,
		Transaction:  result.Categories.Transaction,
		Thesis:       result.Thesis,
		Model:        result.Model,
		RawResponse:  result.Raw,
	})
}

// GetHistory returns up to limit entries, newest first. The trend compares
// the two newest scores and the count and average cover every score.
func (s *scoreService) history(orgID, targetID string, limit int) (*ScoreHistory, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	scope := s.db.Model(&models.ScoreHistoryEntry{}).
		Where("organization_id = ? AND target_id = ?", orgID, targetID)

	var entries []models.ScoreHistoryEntry
	if err := scope.Session(&gorm.Session{}).
		Order("sequence DESC").
		Limit(max(limit, 2)).
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var totals struct {
		ScoreCount int64
		ScoreSum   int64
	}
	if err := scope.Session(&gorm.Session{}).
		Select("COUNT(*) AS score_count, COALESCE(SUM(overall_score), 0) AS score_sum").
		Scan(&totals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	points := analytics.ScorePoints(entries)
	trend := analytics.ComputeTrend(points[:min(len(points), 2)]).WithTotals(int(totals.ScoreCount), totals.ScoreSum)
	entries = entries[:min(len(entries), limit)]
	return &ScoreHistory{
		TargetID:  targetID,
		Entries:   entries,
		Trend:     trend,
		Sparkline: analytics.Sparkline(points[:len(entries)]),
	}, nil
}
