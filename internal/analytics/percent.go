package analytics

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrFractionOutOfRange is returned for a fraction outside [0, 1].
var ErrFractionOutOfRange = errors.New("fraction out of range")

// FractionToPercent is the single x100 step between a stored 0-1 fraction
// and a percent. Applying it to a value that is already a percent is a bug
// in the caller and is not detected here.
func FractionToPercent(f float64) float64 {
	return f * 100
}

// FormatPercent renders a percent with a fixed number of decimals.
func FormatPercent(pct float64, decimals int) string {
	return strconv.FormatFloat(pct, 'f', decimals, 64) + "%"
}

// FormatFraction renders a stored fraction, e.g. 0.325 as "32.5%".
func FormatFraction(f float64) string {
	return FormatPercent(FractionToPercent(f), 1)
}

// Percentage returns part as a percent of whole, or 0 when whole is zero.
func Percentage(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// Redemption is the split of the trust between redeeming and remaining
// public shareholders.
type Redemption struct {
	Rate      *float64        `json:"rate"`
	Redeemed  decimal.Decimal `json:"redeemed"`
	Remaining decimal.Decimal `json:"remaining"`
}

// RedemptionImpact applies a redemption fraction to the trust balance. A nil
// rate means nothing has been redeemed.
func RedemptionImpact(trust decimal.Decimal, rate *float64) (Redemption, error) {
	if rate == nil {
		return Redemption{Redeemed: decimal.Zero, Remaining: trust}, nil
	}
	if err := ValidateFraction(*rate); err != nil {
		return Redemption{}, err
	}
	redeemed := trust.Mul(decimal.NewFromFloat(*rate)).Round(2)
	return Redemption{
		Rate:      rate,
		Redeemed:  redeemed,
		Remaining: trust.Sub(redeemed),
	}, nil
}

// ValidateFraction checks that f lies in [0, 1].
func ValidateFraction(f float64) error {
	if math.IsNaN(f) || f < 0 || f > 1 {
		return fmt.Errorf("%v: %w", f, ErrFractionOutOfRange)
	}
	return nil
}
