package analytics

import (
	"errors"
	"fmt"
	"math"

	"spacos/internal/models"
)

// PercentTolerance is the allowed drift when checking that percentages
// add up to 100.
const PercentTolerance = 0.1

var (
	ErrHolderSum       = errors.New("holder shares do not sum to class total")
	ErrPercentageDrift = errors.New("percentages do not sum to 100")
)

// HolderLine is one holder within a class.
type HolderLine struct {
	Name              string            `json:"name"`
	HolderType        models.HolderType `json:"holder_type"`
	Shares            int64             `json:"shares"`
	PercentageOfClass float64           `json:"percentage_of_class"`
}

// ClassLine is one class of the computed cap table.
type ClassLine struct {
	Class               models.ShareClassKind `json:"class"`
	TotalShares         int64                 `json:"total_shares"`
	PercentageOfBasic   float64               `json:"percentage_of_basic"`
	PercentageOfDiluted float64               `json:"percentage_of_diluted"`
	VotingPower         float64               `json:"voting_power"`
	Holders             []HolderLine          `json:"holders"`
}

// CapTableSummary is the computed cap table of a SPAC.
type CapTableSummary struct {
	Classes       []ClassLine `json:"classes"`
	BasicShares   int64       `json:"basic_shares"`
	DilutedShares int64       `json:"diluted_shares"`
}

// CapTable computes basic and fully diluted percentages. Only class A and
// class B count toward basic shares; every class counts toward diluted.
func CapTable(classes []models.ShareClass) (CapTableSummary, error) {
	var sum CapTableSummary
	for _, c := range classes {
		if !c.Class.Valid() {
			return CapTableSummary{}, fmt.Errorf("cap table: share class %q: %w", c.Class, models.ErrUnknownValue)
		}
		sum.DilutedShares += c.TotalShares
		if c.Class.IsBasic() {
			sum.BasicShares += c.TotalShares
		}
	}

	sum.Classes = make([]ClassLine, 0, len(classes))
	for _, c := range classes {
		line := ClassLine{
			Class:               c.Class,
			TotalShares:         c.TotalShares,
			PercentageOfDiluted: ratioPercent(c.TotalShares, sum.DilutedShares),
			VotingPower:         c.VotingPower,
			Holders:             make([]HolderLine, 0, len(c.Holders)),
		}
		if c.Class.IsBasic() {
			line.PercentageOfBasic = ratioPercent(c.TotalShares, sum.BasicShares)
		}
		for _, h := range c.Holders {
			if !h.HolderType.Valid() {
				return CapTableSummary{}, fmt.Errorf("cap table: holder type %q: %w", h.HolderType, models.ErrUnknownValue)
			}
			line.Holders = append(line.Holders, HolderLine{
				Name:              h.Name,
				HolderType:        h.HolderType,
				Shares:            h.Shares,
				PercentageOfClass: ratioPercent(h.Shares, c.TotalShares),
			})
		}
		sum.Classes = append(sum.Classes, line)
	}
	return sum, nil
}

func ratioPercent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// Validate checks the cap table invariants: itemized holders sum to their
// class total, basic percentages sum to 100 and diluted percentages sum to
// 100. Classes without itemized holders are not checked for the holder sum.
// All violations are returned joined.
func Validate(sum CapTableSummary) error {
	var errs []error
	var basic, diluted float64
	for _, c := range sum.Classes {
		basic += c.PercentageOfBasic
		diluted += c.PercentageOfDiluted
		if len(c.Holders) == 0 {
			continue
		}
		var held int64
		for _, h := range c.Holders {
			held += h.Shares
		}
		if held != c.TotalShares {
			errs = append(errs, fmt.Errorf("%s: holders %d, total %d: %w", c.Class, held, c.TotalShares, ErrHolderSum))
		}
	}
	if sum.BasicShares > 0 && math.Abs(basic-100) > PercentTolerance {
		errs = append(errs, fmt.Errorf("basic %.3f%%: %w", basic, ErrPercentageDrift))
	}
	if sum.DilutedShares > 0 && math.Abs(diluted-100) > PercentTolerance {
		errs = append(errs, fmt.Errorf("diluted %.3f%%: %w", diluted, ErrPercentageDrift))
	}
	return errors.Join(errs...)
}
