package edgar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"spacos/internal/models"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	subs  map[string]*Submissions
	errs  map[string]error
}

func (f *fakeFetcher) Submissions(_ context.Context, cik string) (*Submissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[cik]; err != nil {
		return nil, err
	}
	return f.subs[cik], nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memoryStore struct {
	mu      sync.Mutex
	spacs   []models.SPAC
	filings map[string]models.Filing // key: spac id + accession
	failOn  map[string]error         // key: accession
}

func newMemoryStore(spacs ...models.SPAC) *memoryStore {
	return &memoryStore{spacs: spacs, filings: map[string]models.Filing{}}
}

func (s *memoryStore) ListSyncable(context.Context) ([]models.SPAC, error) {
	return s.spacs, nil
}

func (s *memoryStore) UpsertFiling(_ context.Context, f *models.Filing) (UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[*f.AccessionNumber]; err != nil {
		return Unchanged, err
	}
	key := f.SPACID + "/" + *f.AccessionNumber
	existing, ok := s.filings[key]
	if !ok {
		s.filings[key] = *f
		return Created, nil
	}
	if existing.EdgarURL == f.EdgarURL && existing.FormType == f.FormType {
		return Unchanged, nil
	}
	s.filings[key] = *f
	return Updated, nil
}

func strPtr(s string) *string { return &s }

func fixtureSubmissions() *Submissions {
	sub := &Submissions{CIK: "1819584"}
	sub.Filings.Recent = RecentBlock{
		AccessionNumber: []string{"0001819584-24-000012", "0001819584-24-000007", "0001104659-23-112233"},
		FilingDate:      []string{"2024-05-14", "2024-03-28", "2023-10-02"},
		Form:            []string{"10-Q", "10-K", "SC 13G"},
		PrimaryDocument: []string{"q.htm", "k.htm", "g.htm"},
	}
	return sub
}

func TestSyncSPAC_UpsertsByAccession(t *testing.T) {
	fetcher := &fakeFetcher{subs: map[string]*Submissions{"1819584": fixtureSubmissions()}}
	store := newMemoryStore()
	syncer := NewSyncer(fetcher, store, nil, nil)

	spac := models.SPAC{Base: models.Base{ID: "spac-1"}, OrganizationID: "org-1", CIK: strPtr("1819584")}

	res, err := syncer.SyncSPAC(context.Background(), spac)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Fetched, "SC 13G is not a tracked form")
	assert.Equal(t, 2, res.Created)

	stored := store.filings["spac-1/0001819584-24-000012"]
	assert.Equal(t, "10-Q", stored.FormType)
	assert.Equal(t, models.FilingStatusAccepted, stored.Status)
	assert.Equal(t, "org-1", stored.OrganizationID)
	require.NotNil(t, stored.FiledDate)

	res, err = syncer.SyncSPAC(context.Background(), spac)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Equal(t, 2, res.Unchanged, "second sync is idempotent")
}

func TestSyncSPAC_ContinuesPastFailedUpsert(t *testing.T) {
	fetcher := &fakeFetcher{subs: map[string]*Submissions{"1819584": fixtureSubmissions()}}
	store := newMemoryStore()
	store.failOn = map[string]error{"0001819584-24-000012": errors.New("UNIQUE constraint failed")}
	syncer := NewSyncer(fetcher, store, nil, nil)

	spac := models.SPAC{Base: models.Base{ID: "spac-1"}, OrganizationID: "org-1", CIK: strPtr("1819584")}
	res, err := syncer.SyncSPAC(context.Background(), spac)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Fetched)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Created, "the 10-K after the failing 10-Q is still stored")
	assert.Contains(t, store.filings, "spac-1/0001819584-24-000007")
}

func TestSyncSPAC_RequiresCIK(t *testing.T) {
	syncer := NewSyncer(&fakeFetcher{}, newMemoryStore(), nil, nil)
	_, err := syncer.SyncSPAC(context.Background(), models.SPAC{})
	assert.ErrorIs(t, err, ErrInvalidCIK)
}

func TestRunOnce_ContinuesPastFailures(t *testing.T) {
	fetcher := &fakeFetcher{
		subs: map[string]*Submissions{"1819584": fixtureSubmissions()},
		errs: map[string]error{"42": ErrUpstream},
	}
	store := newMemoryStore(
		models.SPAC{Base: models.Base{ID: "bad"}, CIK: strPtr("42")},
		models.SPAC{Base: models.Base{ID: "good"}, CIK: strPtr("1819584")},
	)
	syncer := NewSyncer(fetcher, store, nil, nil)

	summary, err := syncer.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SPACs)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Created)
}

func TestRunOnce_StopsOnCancellation(t *testing.T) {
	store := newMemoryStore(models.SPAC{Base: models.Base{ID: "a"}, CIK: strPtr("1")})
	syncer := NewSyncer(&fakeFetcher{}, store, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := syncer.RunOnce(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{subs: map[string]*Submissions{"1819584": fixtureSubmissions()}}
	store := newMemoryStore(models.SPAC{Base: models.Base{ID: "s"}, CIK: strPtr("1819584")})
	syncer := NewSyncer(fetcher, store, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- syncer.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return fetcher.callCount() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRun_RejectsNonPositiveInterval(t *testing.T) {
	syncer := NewSyncer(&fakeFetcher{}, newMemoryStore(), nil, nil)
	assert.Error(t, syncer.Run(context.Background(), 0))
}
