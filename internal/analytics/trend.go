package analytics

import (
	"math"
	"time"

	"spacos/internal/models"
)

// Trend classifies the direction of the two most recent scores.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
	TrendNew       Trend = "new"
)

// ScorePoint is one entry of a score history.
type ScorePoint struct {
	OverallScore int       `json:"overall_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// ScoreTrend is recomputed from history on every read; it is never stored.
type ScoreTrend struct {
	Trend         Trend   `json:"trend"`
	ChangePercent float64 `json:"change_percent"`
	PreviousScore *int    `json:"previous_score"`
	CurrentScore  *int    `json:"current_score"`
	ScoreCount    int     `json:"score_count"`
	AverageScore  float64 `json:"average_score"`
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

// ComputeTrend classifies a history ordered newest first. Fewer than two
// entries is a new trend. The change percent is relative to the previous
// score and is 0 when that score is 0. Averages and percents are rounded to
// one decimal.
func ComputeTrend(history []ScorePoint) ScoreTrend {
	t := ScoreTrend{Trend: TrendNew, ScoreCount: len(history)}
	if len(history) == 0 {
		return t
	}

	current := history[0].OverallScore
	t.CurrentScore = &current

	total := 0
	for _, p := range history {
		total += p.OverallScore
	}
	t.AverageScore = roundOneDecimal(float64(total) / float64(len(history)))

	if len(history) == 1 {
		return t
	}

	previous := history[1].OverallScore
	t.PreviousScore = &previous
	if previous != 0 {
		t.ChangePercent = roundOneDecimal(float64(current-previous) / float64(previous) * 100)
	}
	switch {
	case current > previous:
		t.Trend = TrendImproving
	case current < previous:
		t.Trend = TrendDeclining
	default:
		t.Trend = TrendStable
	}
	return t
}

// WithTotals replaces the count and average, which ComputeTrend takes from
// the points it was given, with figures over the full history.
func (t ScoreTrend) WithTotals(count int, sum int64) ScoreTrend {
	t.ScoreCount = count
	t.AverageScore = 0
	if count > 0 {
		t.AverageScore = roundOneDecimal(float64(sum) / float64(count))
	}
	return t
}

// Sparkline returns the overall scores oldest to newest from a history
// ordered newest first.
func Sparkline(history []ScorePoint) []int {
	out := make([]int, len(history))
	for i, p := range history {
		out[len(history)-1-i] = p.OverallScore
	}
	return out
}

// ScorePoints converts stored entries, which must already be newest first.
func ScorePoints(entries []models.ScoreHistoryEntry) []ScorePoint {
	out := make([]ScorePoint, len(entries))
	for i, e := range entries {
		out[i] = ScorePoint{OverallScore: e.OverallScore, CreatedAt: e.CreatedAt}
	}
	return out
}
