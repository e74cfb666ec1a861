package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacos/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline *time.Time
		want     *int
	}{
		{"nil deadline", nil, nil},
		{"earlier today has passed", ptr(time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)), ptr(-1)},
		{"one hour ago", ptr(now.Add(-time.Hour)), ptr(-1)},
		{"later today", ptr(time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)), ptr(0)},
		{"tomorrow morning is under a day away", ptr(time.Date(2024, 6, 2, 0, 30, 0, 0, time.UTC)), ptr(0)},
		{"exactly one day", ptr(now.AddDate(0, 0, 1)), ptr(1)},
		{"thirty days", ptr(date(2024, 7, 1)), ptr(29)},
		{"yesterday", ptr(date(2024, 5, 31)), ptr(-2)},
		{"across leap day", ptr(date(2024, 2, 28)), ptr(-95)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(tt.deadline, now))
		})
	}
}

func TestDaysUntilNormalizesTimeZones(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	// 2024-06-02 08:00 JST is 2024-06-01 23:00 UTC.
	deadline := time.Date(2024, 6, 2, 8, 0, 0, 0, tokyo)
	assert.Equal(t, 0, *DaysUntil(&deadline, now))
}

// Every deadline strictly before now is negative and critical.
func TestPastDeadlinesAreNegativeAndCritical(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	for _, back := range []time.Duration{time.Second, time.Minute, time.Hour, 9 * time.Hour, 30 * time.Hour} {
		d := now.Add(-back)
		days := DaysUntil(&d, now)
		require.NotNil(t, days)
		assert.Less(t, *days, 0, d)
		assert.True(t, ClassifyUrgency(days).IsCritical, d)
	}
	for back := 1; back <= 400; back += 7 {
		d := date(2024, 6, 1).AddDate(0, 0, -back)
		days := DaysUntil(&d, now)
		require.NotNil(t, days)
		assert.Less(t, *days, 0, d)
		assert.True(t, ClassifyUrgency(days).IsCritical, d)
	}
}

func TestClassifyUrgency(t *testing.T) {
	tests := []struct {
		days         *int
		urgent, crit bool
	}{
		{nil, false, false},
		{ptr(-5), true, true},
		{ptr(0), true, true},
		{ptr(14), true, true},
		{ptr(15), true, false},
		{ptr(30), true, false},
		{ptr(31), false, false},
	}
	for _, tt := range tests {
		u := ClassifyUrgency(tt.days)
		assert.Equal(t, tt.urgent, u.IsUrgent, "urgent for %v", tt.days)
		assert.Equal(t, tt.crit, u.IsCritical, "critical for %v", tt.days)
		if u.IsCritical {
			assert.True(t, u.IsUrgent, "critical implies urgent")
		}
	}
}

func TestNilDaysAreNeitherUrgentNorCritical(t *testing.T) {
	days := DaysUntil(nil, time.Now())
	assert.Nil(t, days)
	assert.Equal(t, Urgency{}, ClassifyUrgency(days))
}

func TestTrustPerShare(t *testing.T) {
	t.Run("computed from shares outstanding", func(t *testing.T) {
		ps := TrustPerShare(decimal.NewFromInt(232_300_000), ptr(int64(23_000_000)))
		assert.False(t, ps.IsPlaceholder)
		assert.Equal(t, "10.10", ps.Value.StringFixed(2))
	})

	t.Run("placeholder when shares unknown", func(t *testing.T) {
		ps := TrustPerShare(decimal.NewFromInt(100), nil)
		assert.True(t, ps.IsPlaceholder)
		assert.True(t, ps.Value.Equal(decimal.NewFromInt(10)))
	})

	t.Run("placeholder when shares zero", func(t *testing.T) {
		ps := TrustPerShare(decimal.NewFromInt(100), ptr(int64(0)))
		assert.True(t, ps.IsPlaceholder)
	})
}

func TestDeadlineMetrics(t *testing.T) {
	now := date(2024, 6, 1)
	spac := models.SPAC{
		DeadlineDate:      ptr(date(2024, 6, 11)),
		TrustAmount:       decimal.NewFromInt(100_000_000),
		SharesOutstanding: ptr(int64(10_000_000)),
	}
	m := DeadlineMetrics(spac, now)
	require.NotNil(t, m.Days)
	assert.Equal(t, 10, *m.Days)
	assert.True(t, m.IsUrgent)
	assert.True(t, m.IsCritical)
	assert.Equal(t, "10.00", m.TrustPerShare.Value.StringFixed(2))
	assert.False(t, m.TrustPerShare.IsPlaceholder)

	m = DeadlineMetrics(models.SPAC{}, now)
	assert.Nil(t, m.Days)
	assert.False(t, m.IsUrgent)
	assert.True(t, m.TrustPerShare.IsPlaceholder)
}
