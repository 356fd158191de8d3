package pricing

import (
	"time"

	"github.com/quillhorn/bondengine/internal/convention"
	"github.com/quillhorn/bondengine/internal/schedule"
)

// flow is one discounting cash flow: amount per 100 of face, and its
// year fraction from settlement under the bond's day-count.
type flow struct {
	t      float64
	amount float64
}

// buildFlows enumerates the future cash flows from sch and computes
// each one's year fraction from settlement: "t_i are
// year-fractions from settlement under the day-count... c_i are cash
// flows on period boundaries with the final including principal."
func buildFlows(sch schedule.Schedule, settlement time.Time, coupon float64, conv convention.Conventions) ([]flow, error) {
	periods := sch.FutureCashflowPeriods(settlement)
	if len(periods) == 0 {
		return nil, ErrScheduleEmpty
	}

	f := conv.Frequency.PeriodsPerYear()
	couponCash := coupon * 100.0 / float64(f)
	if conv.Frequency == convention.Zero {
		couponCash = 0
	}

	flows := make([]flow, 0, len(periods))
	cum := 0.0
	for i, p := range periods {
		var dt float64
		var err error
		if i == 0 {
			dt, err = conv.DayCount.YearFraction(settlement, p.End, p.Start, p.End, f)
		} else {
			dt, err = conv.DayCount.YearFraction(periods[i-1].End, p.End, p.Start, p.End, f)
		}
		if err != nil {
			return nil, err
		}
		cum += dt

		amount := couponCash
		if i == len(periods)-1 {
			amount += 100.0
		}
		flows = append(flows, flow{t: cum, amount: amount})
	}

	return flows, nil
}
