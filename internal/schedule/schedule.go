// Package schedule generates bond coupon period boundaries, the way
// benritz-gilts/internal/types.CompleteBond derives NextCouponDate and
// PrevCouponDate, generalized from a single semiannual gilt to
// arbitrary frequency, explicit issue/first-coupon handling, and stub
// periods.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/quillhorn/bondengine/internal/convention"
)

// ErrScheduleEmpty is returned when no period boundaries could be
// generated (e.g. maturity not after issue).
var ErrScheduleEmpty = fmt.Errorf("schedule: generation produced no period boundaries")

// Period is one coupon period boundary pair.
type Period struct {
	Start time.Time // unadjusted period start (used for day-count reference periods)
	End   time.Time // business-day-adjusted payment date
	Stub  bool
}

// Schedule is the ordered, strictly-increasing list of coupon periods
// from the first period after issue through maturity.
type Schedule struct {
	Periods  []Period
	Issue    time.Time
	Maturity time.Time
}

// Boundaries returns just the adjusted payment dates, in order,
// including the implicit period-start before the first coupon.
func (s Schedule) Boundaries() []time.Time {
	if len(s.Periods) == 0 {
		return nil
	}
	out := make([]time.Time, 0, len(s.Periods)+1)
	out = append(out, s.Periods[0].Start)
	for _, p := range s.Periods {
		out = append(out, p.End)
	}
	return out
}

// Build generates the coupon schedule:
//   - generate backward from maturity at the frequency's period length
//   - apply the business-day convention to each boundary
//   - force end-of-month alignment when eom is set and maturity is EOM
//   - honor an explicit first-coupon date as a stub boundary
//   - when issue is unknown (zero issueOrCutoff), generate backward
//     until stepBackward's safety bound; Build never performs
//     "maturity - N years" arithmetic to invent a cutoff.
func Build(issueOrCutoff, firstCoupon, maturity time.Time, freq convention.Frequency, bdc convention.BusinessDayConvention, cal convention.Calendar, eom bool) (Schedule, error) {
	if maturity.IsZero() {
		return Schedule{}, ErrScheduleEmpty
	}
	if !issueOrCutoff.IsZero() && !maturity.After(issueOrCutoff) {
		return Schedule{}, ErrScheduleEmpty
	}

	if freq == convention.Zero {
		return buildZeroCoupon(issueOrCutoff, maturity, bdc, cal)
	}

	months := freq.PeriodMonths()
	forceEOM := eom && convention.EndOfMonth(maturity)

	// Generate unadjusted boundaries backward from maturity.
	raw := stepBackward(maturity, issueOrCutoff, months, forceEOM)

	// raw is newest-first; reverse to oldest-first.
	sort.Slice(raw, func(i, j int) bool { return raw[i].Before(raw[j]) })

	// Insert a stub boundary for an explicit first coupon that doesn't
	// align with the backward generation.
	if !firstCoupon.IsZero() {
		raw = insertFirstCoupon(raw, firstCoupon)
	}

	if len(raw) < 2 {
		return Schedule{}, ErrScheduleEmpty
	}

	periods := make([]Period, 0, len(raw)-1)
	for i := 0; i < len(raw)-1; i++ {
		start := raw[i]
		end := bdc.Adjust(raw[i+1], cal)
		stub := !isRegularSpan(start, raw[i+1], months)
		periods = append(periods, Period{Start: start, End: end, Stub: stub})
	}

	issue := issueOrCutoff
	if issue.IsZero() {
		issue = raw[0]
	}

	return Schedule{Periods: periods, Issue: issue, Maturity: bdc.Adjust(maturity, cal)}, nil
}

// buildZeroCoupon produces the single-period schedule a zero-coupon
// bond needs. When issue is unknown, the stand-in start boundary is
// derived by the same backward-stepping stepBackward uses for the
// coupon-bearing path (walking annual strides, since Zero's
// periods-per-year is 1, down to the safety bound), never a direct
// maturity - N years subtraction.
func buildZeroCoupon(issueOrCutoff, maturity time.Time, bdc convention.BusinessDayConvention, cal convention.Calendar) (Schedule, error) {
	raw := stepBackward(maturity, issueOrCutoff, 12, false)
	start := raw[len(raw)-1]
	return Schedule{
		Periods:  []Period{{Start: start, End: bdc.Adjust(maturity, cal), Stub: false}},
		Issue:    start,
		Maturity: bdc.Adjust(maturity, cal),
	}, nil
}

// stepBackward generates unadjusted boundaries backward from maturity
// at strideMonths per step, stopping at the last boundary on or before
// cutoff. When cutoff is unknown (zero), it stops after a safety bound
// instead of inventing a cutoff by arithmetic.
func stepBackward(maturity, cutoff time.Time, strideMonths int, forceEOM bool) []time.Time {
	var raw []time.Time
	cur := maturity
	raw = append(raw, cur)
	for {
		prev := cur.AddDate(0, -strideMonths, 0)
		if forceEOM {
			prev = convention.EndOfMonthDate(prev)
		}
		raw = append(raw, prev)
		cur = prev
		if !cutoff.IsZero() && !cur.After(cutoff) {
			break
		}
		if cutoff.IsZero() && len(raw) > 2400 {
			// Safety bound: 2400 strides (200 years of monthly strides).
			// Prevents a runaway loop when a cutoff was never supplied.
			break
		}
	}
	return raw
}

// insertFirstCoupon inserts firstCoupon into the oldest-first
// boundaries in date order, unless a boundary already falls on it.
// Every generated boundary is kept, so the periods on either side of
// firstCoupon come out short; no long leading stub is formed.
func insertFirstCoupon(raw []time.Time, firstCoupon time.Time) []time.Time {
	for i, d := range raw {
		if d.Equal(firstCoupon) {
			return raw
		}
		if d.After(firstCoupon) {
			out := make([]time.Time, 0, len(raw)+1)
			out = append(out, raw[:i]...)
			out = append(out, firstCoupon)
			out = append(out, raw[i:]...)
			return out
		}
	}
	return append(raw, firstCoupon)
}

func isRegularSpan(start, end time.Time, months int) bool {
	if months == 0 {
		return true
	}
	expect := start.AddDate(0, months, 0)
	return expect.Equal(end)
}

// PeriodContaining returns the coupon period whose closed [Start, End]
// span contains date d, and true if found; on a boundary shared by two
// periods the earlier one is returned. Used by the pricing engine to
// locate the accrual reference period for a settlement date.
func (s Schedule) PeriodContaining(d time.Time) (Period, bool) {
	for _, p := range s.Periods {
		if !d.Before(p.Start) && !d.After(p.End) {
			return p, true
		}
	}
	return Period{}, false
}

// FutureCashflowPeriods returns the periods whose End is strictly after
// settlement, in order: the set the pricing engine discounts.
func (s Schedule) FutureCashflowPeriods(settlement time.Time) []Period {
	var out []Period
	for _, p := range s.Periods {
		if p.End.After(settlement) {
			out = append(out, p)
		}
	}
	return out
}
