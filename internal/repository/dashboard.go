package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"spacos/internal/analytics"
	"spacos/internal/models"
)

// TargetQuery filters a target search. Zero values do not filter.
type TargetQuery struct {
	OrgID    string
	SPACID   *string
	Stage    *models.DealStage
	Industry string
	MinScore *int
	Search   string
	Limit    int
	Offset   int
}

// DashboardRepository runs the read-side queries whose filters are dynamic.
// Statements are built with squirrel and executed through gorm.
type DashboardRepository interface {
	StatusCounts(ctx context.Context, orgID string) (map[models.SPACStatus]int64, error)
	FunnelInputs(ctx context.Context, orgID string, spacID *string) ([]analytics.FunnelInput, error)
	DeadlineCandidates(ctx context.Context, orgID string) ([]models.SPAC, error)
	PendingFilings(ctx context.Context, orgID string) ([]models.Filing, error)
	SearchTargets(ctx context.Context, q TargetQuery) ([]models.Target, int64, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a DashboardRepository.
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func live(orgID string) sq.Eq {
	return sq.Eq{"organization_id": orgID, "deleted_at": nil}
}

func (r *dashboardRepository) raw(ctx context.Context, b sq.Sqlizer, dest interface{}) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error
}

func (r *dashboardRepository) StatusCounts(ctx context.Context, orgID string) (map[models.SPACStatus]int64, error) {
	var rows []struct {
		Status string
		N      int64
	}
	q := sq.Select("status", "COUNT(*) AS n").
		From("spacs").
		Where(live(orgID)).
		GroupBy("status")
	if err := r.raw(ctx, q, &rows); err != nil {
		return nil, err
	}

	out := make(map[models.SPACStatus]int64, models.NumSPACStatuses)
	for _, s := range models.AllSPACStatuses() {
		out[s] = 0
	}
	for _, row := range rows {
		status, err := models.ParseSPACStatus(row.Status)
		if err != nil {
			return nil, err
		}
		out[status] = row.N
	}
	return out, nil
}

func (r *dashboardRepository) FunnelInputs(ctx context.Context, orgID string, spacID *string) ([]analytics.FunnelInput, error) {
	var rows []struct {
		Stage           string
		EnterpriseValue decimal.Decimal
	}
	where := live(orgID)
	if spacID != nil {
		where["spac_id"] = *spacID
	}
	q := sq.Select("stage", "enterprise_value").From("targets").Where(where)
	if err := r.raw(ctx, q, &rows); err != nil {
		return nil, err
	}

	out := make([]analytics.FunnelInput, len(rows))
	for i, row := range rows {
		out[i] = analytics.FunnelInput{Stage: models.DealStage(row.Stage), EnterpriseValue: row.EnterpriseValue}
	}
	return out, nil
}

// DeadlineCandidates returns live SPACs with a deadline, soonest first.
func (r *dashboardRepository) DeadlineCandidates(ctx context.Context, orgID string) ([]models.SPAC, error) {
	var spacs []models.SPAC
	q := sq.Select("*").
		From("spacs").
		Where(live(orgID)).
		Where(sq.NotEq{"deadline_date": nil}).
		Where(sq.NotEq{"status": []string{string(models.SPACStatusCompleted), string(models.SPACStatusLiquidated)}}).
		OrderBy("deadline_date ASC")
	if err := r.raw(ctx, q, &spacs); err != nil {
		return nil, err
	}
	return spacs, nil
}

// PendingFilings returns unfiled filings that have a due date.
func (r *dashboardRepository) PendingFilings(ctx context.Context, orgID string) ([]models.Filing, error) {
	var filings []models.Filing
	q := sq.Select("*").
		From("filings").
		Where(live(orgID)).
		Where(sq.Eq{"filed_date": nil}).
		Where(sq.NotEq{"due_date": nil}).
		Where(sq.Eq{"status": []string{
			string(models.FilingStatusDraft),
			string(models.FilingStatusUnderReview),
			string(models.FilingStatusRejected),
		}}).
		OrderBy("due_date ASC")
	if err := r.raw(ctx, q, &filings); err != nil {
		return nil, err
	}
	return filings, nil
}

func (r *dashboardRepository) SearchTargets(ctx context.Context, tq TargetQuery) ([]models.Target, int64, error) {
	conds := sq.And{live(tq.OrgID)}
	if tq.SPACID != nil {
		conds = append(conds, sq.Eq{"spac_id": *tq.SPACID})
	}
	if tq.Stage != nil {
		conds = append(conds, sq.Eq{"stage": string(*tq.Stage)})
	}
	if tq.Industry != "" {
		conds = append(conds, sq.Eq{"industry": tq.Industry})
	}
	if tq.MinScore != nil {
		conds = append(conds, sq.GtOrEq{"evaluation_score": *tq.MinScore})
	}
	if s := strings.TrimSpace(tq.Search); s != "" {
		conds = append(conds, sq.Expr("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%"))
	}

	var total int64
	if err := r.raw(ctx, sq.Select("COUNT(*)").From("targets").Where(conds), &total); err != nil {
		return nil, 0, err
	}

	q := sq.Select("*").From("targets").Where(conds).OrderBy("updated_at DESC", "id DESC")
	if tq.Limit > 0 {
		q = q.Limit(uint64(tq.Limit)).Offset(uint64(tq.Offset))
	}
	var targets []models.Target
	if err := r.raw(ctx, q, &targets); err != nil {
		return nil, 0, err
	}
	return targets, total, nil
}
