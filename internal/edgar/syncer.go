package edgar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spacos/internal/logger"
	"spacos/internal/models"
	"spacos/internal/observability"
)

// DefaultForms are the form types tracked for a SPAC.
var DefaultForms = []string{
	"S-1", "S-1/A", "424B4", "8-K", "8-K/A", "10-K", "10-K/A", "10-Q", "10-Q/A",
	"S-4", "S-4/A", "F-4", "425", "DEF 14A", "DEFM14A", "PRE 14A", "SC TO-T", "25-NSE",
}

// SubmissionsFetcher is the part of Client the syncer needs.
type SubmissionsFetcher interface {
	Submissions(ctx context.Context, cik string) (*Submissions, error)
}

// UpsertOutcome says what an upsert did.
type UpsertOutcome int

const (
	Unchanged UpsertOutcome = iota
	Created
	Updated
)

// FilingStore persists synced filings.
type FilingStore interface {
	// ListSyncable returns every SPAC with a CIK that is not terminal.
	ListSyncable(ctx context.Context) ([]models.SPAC, error)
	// UpsertFiling matches on SPAC and accession number.
	UpsertFiling(ctx context.Context, f *models.Filing) (UpsertOutcome, error)
}

// SyncResult summarizes one SPAC sync.
type SyncResult struct {
	SPACID    string `json:"spac_id"`
	Fetched   int    `json:"fetched"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Failed    int    `json:"failed"`
}

// RunSummary summarizes a pass over all SPACs.
type RunSummary struct {
	SPACs    int           `json:"spacs"`
	Failed   int           `json:"failed"`
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Skipped  int           `json:"skipped_filings"`
	Duration time.Duration `json:"duration"`
}

// Syncer copies EDGAR filings into the filings table.
type Syncer struct {
	fetcher SubmissionsFetcher
	store   FilingStore
	forms   []string
	metrics *observability.Metrics
}

// NewSyncer creates a Syncer. Nil forms tracks DefaultForms.
func NewSyncer(fetcher SubmissionsFetcher, store FilingStore, forms []string, metrics *observability.Metrics) *Syncer {
	if forms == nil {
		forms = DefaultForms
	}
	return &Syncer{fetcher: fetcher, store: store, forms: forms, metrics: metrics}
}

// SyncSPAC fetches the SPAC's filings and upserts each by accession number.
// A filing that fails to upsert is logged and counted in Failed; the rest
// of the batch still runs.
func (s *Syncer) SyncSPAC(ctx context.Context, spac models.SPAC) (SyncResult, error) {
	res := SyncResult{SPACID: spac.ID}
	if spac.CIK == nil || *spac.CIK == "" {
		return res, fmt.Errorf("spac %s: %w", spac.ID, ErrInvalidCIK)
	}

	sub, err := s.fetcher.Submissions(ctx, *spac.CIK)
	if err != nil {
		s.metrics.RecordEdgarSync("error", 0)
		return res, fmt.Errorf("spac %s: %w", spac.ID, err)
	}
	filings, err := RecentFilings(sub, s.forms...)
	if err != nil {
		s.metrics.RecordEdgarSync("error", 0)
		return res, fmt.Errorf("spac %s: %w", spac.ID, err)
	}
	res.Fetched = len(filings)

	log := logger.Named("edgar-sync")
	for _, f := range filings {
		if err := ctx.Err(); err != nil {
			s.metrics.RecordEdgarSync("error", res.Created+res.Updated)
			return res, err
		}
		accession := f.AccessionNumber
		filed := f.FilingDate
		row := &models.Filing{
			OrganizationID:  spac.OrganizationID,
			SPACID:          spac.ID,
			FormType:        f.Form,
			FiledDate:       &filed,
			Status:          models.FilingStatusAccepted,
			EdgarURL:        f.URL,
			AccessionNumber: &accession,
			Description:     f.Description,
		}
		outcome, err := s.store.UpsertFiling(ctx, row)
		if err != nil {
			res.Failed++
			log.Warnw("upserting filing failed", "spac_id", spac.ID, "accession", accession, "error", err)
			continue
		}
		switch outcome {
		case Created:
			res.Created++
		case Updated:
			res.Updated++
		default:
			res.Unchanged++
		}
	}

	outcome := "success"
	if res.Failed > 0 {
		outcome = "partial"
	}
	s.metrics.RecordEdgarSync(outcome, res.Created+res.Updated)
	return res, nil
}

// RunOnce syncs every syncable SPAC. A failing SPAC is logged and counted;
// it does not stop the pass. Only listing failures and cancellation are
// returned as errors.
func (s *Syncer) RunOnce(ctx context.Context) (RunSummary, error) {
	start := time.Now()
	log := logger.Named("edgar-sync")

	spacs, err := s.store.ListSyncable(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("listing spacs: %w", err)
	}

	summary := RunSummary{SPACs: len(spacs)}
	for _, spac := range spacs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		res, err := s.SyncSPAC(ctx, spac)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			summary.Failed++
			log.Warnw("EDGAR sync failed", "spac_id", spac.ID, "ticker", spac.Ticker, "error", err)
			continue
		}
		summary.Created += res.Created
		summary.Updated += res.Updated
		summary.Skipped += res.Failed
		log.Debugw("EDGAR sync completed", "spac_id", spac.ID,
			"fetched", res.Fetched, "created", res.Created, "updated", res.Updated, "failed", res.Failed)
	}

	summary.Duration = time.Since(start)
	log.Infow("EDGAR sync pass finished",
		"spacs", summary.SPACs, "failed", summary.Failed,
		"created", summary.Created, "updated", summary.Updated,
		"skipped_filings", summary.Skipped, "duration", summary.Duration)
	return summary, nil
}

// Run syncs immediately and then on every tick until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("edgar sync interval must be positive, got %s", interval)
	}

	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		logger.Named("edgar-sync").Errorw("EDGAR sync pass failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Named("edgar-sync").Errorw("EDGAR sync pass failed", "error", err)
			}
		}
	}
}
