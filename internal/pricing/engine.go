// Package pricing implements the Pricing Engine: the price<->yield
// equation and the duration/convexity/spread family built on top of
// it. It generalizes the Newton-Raphson gilt solver in
// benritz-gilts/internal/types.DirtyPriceYieldToMaturity to a bracketed
// Brent solver over arbitrary day-count/frequency conventions, and adds
// the duration, convexity, PVBP, and spread formulas that solver never
// computed.
//
// Every function here is pure and re-entrant: no package state, no
// shared mutable data, safe to call concurrently across requests.
package pricing

import (
	"math"
	"time"

	"github.com/quillhorn/bondengine/internal/bond"
	"github.com/quillhorn/bondengine/internal/convention"
	"github.com/quillhorn/bondengine/internal/curve"
	"github.com/quillhorn/bondengine/internal/schedule"
)

// Input is the PricingInput: a resolved BondSpec, a clean price,
// and a settlement date. It is constructed once per request and never
// mutated thereafter.
type Input struct {
	Spec           bond.Spec
	CleanPrice     float64
	SettlementDate time.Time
}

// Analytics is the computed record.
type Analytics struct {
	YTM                float64 // bond-native periodic-compounding yield, decimal
	YTMAnnual          float64 // effective annual yield, decimal
	Duration           float64 // modified duration, bond-native basis
	DurationAnnual     float64
	MacaulayDuration   float64
	Convexity          float64
	PVBP               float64 // per 100 face
	AccruedInterest    float64 // per 100 face
	DaysAccrued        int
	CleanPrice         float64
	DirtyPrice         float64
	GSpread            *float64 // basis points; nil when not applicable
	ZSpread            *float64 // basis points; nil when curve unavailable
	SettlementDate     time.Time
}

// buildSchedule generates the coupon schedule for spec's BondSpec,
// using the issue date when known and otherwise deferring entirely to
// the Schedule Builder's backward generation. It never synthesizes
// "maturity - N years" as a stand-in issue date.
func buildSchedule(b bond.Spec) (schedule.Schedule, error) {
	issueOrCutoff := b.Issue // may be zero; Build treats zero as "unknown"
	return schedule.Build(
		issueOrCutoff,
		b.FirstCoupon,
		b.Maturity,
		b.Conventions.Frequency,
		b.Conventions.BusinessDay,
		b.Conventions.Calendar,
		b.Conventions.EndOfMonth,
	)
}

// AccruedInterest computes accrued interest per 100 of face:
//
//	coupon/periods_per_year * year_fraction(prev, settlement) /
//	  year_fraction(prev, next) * 100
func AccruedInterest(b bond.Spec, settlement time.Time, sch schedule.Schedule) (amount float64, days int, err error) {
	if b.Conventions.Frequency == convention.Zero {
		return 0, 0, nil
	}

	period, ok := sch.PeriodContaining(settlement)
	if !ok {
		return 0, 0, ErrScheduleEmpty
	}

	f := b.Conventions.Frequency.PeriodsPerYear()
	dc := b.Conventions.DayCount

	elapsed, err := dc.YearFraction(period.Start, settlement, period.Start, period.End, f)
	if err != nil {
		return 0, 0, err
	}
	full, err := dc.YearFraction(period.Start, period.End, period.Start, period.End, f)
	if err != nil {
		return 0, 0, err
	}
	if full == 0 {
		return 0, 0, ErrScheduleEmpty
	}

	amount = b.Coupon / float64(f) * (elapsed / full) * 100.0
	days = int(math.Round(settlement.Sub(period.Start).Hours() / 24))
	return amount, days, nil
}

// discountFactor implements d(y, t) = (1 + y/f)^(-f*t).
func discountFactor(y float64, t float64, f int) float64 {
	return math.Pow(1+y/float64(f), -float64(f)*t)
}

// presentValue sums c_i * d(y, t_i) over flows.
func presentValue(y float64, flows []flow, f int) float64 {
	sum := 0.0
	for _, c := range flows {
		sum += c.amount * discountFactor(y, c.t, f)
	}
	return sum
}

// SolveYield finds y such that presentValue(y, flows) == dirtyPrice,
//: bracketed root finder, bracket [-0.5, 2.0], tolerance
// 1e-10 on y.
func SolveYield(flows []flow, dirtyPrice float64, f int) (float64, error) {
	y, err := brent(func(y float64) float64 {
		return presentValue(y, flows, f) - dirtyPrice
	}, -0.5, 2.0, 1e-10)
	if err != nil {
		return 0, ErrYieldNotFound
	}
	return y, nil
}

// Compute runs the full pricing equation set for in
// curveSnap may be nil; spreads are then left nil rather than erroring
// (the facade adds a "treasury curve unavailable" warning in that case).
func Compute(in Input, curveSnap *curve.Snapshot) (Analytics, error) {
	b := in.Spec

	if !b.Maturity.After(in.SettlementDate) {
		return Analytics{}, &InvalidInputError{Field: "settlement_date", Reason: "maturity must be after settlement"}
	}
	if in.CleanPrice <= 0 {
		return Analytics{}, &InvalidInputError{Field: "clean_price", Reason: "must be positive"}
	}

	sch, err := buildSchedule(b)
	if err != nil {
		return Analytics{}, err
	}

	accrued, daysAccrued, err := AccruedInterest(b, in.SettlementDate, sch)
	if err != nil {
		return Analytics{}, err
	}

	dirty := in.CleanPrice + accrued

	flows, err := buildFlows(sch, in.SettlementDate, b.Coupon, b.Conventions)
	if err != nil {
		return Analytics{}, err
	}

	f := b.Conventions.Frequency.PeriodsPerYear()

	y, err := SolveYield(flows, dirty, f)
	if err != nil {
		return Analytics{}, err
	}

	modDur, macDur, convexity := durationFamily(y, flows, f, dirty)
	yAnnual := math.Pow(1+y/float64(f), float64(f)) - 1
	durAnnual := modDur * (1 + y/float64(f)) / (1 + yAnnual)
	pvbp := modDur * dirty * 1e-4

	a := Analytics{
		YTM:              y,
		YTMAnnual:        yAnnual,
		Duration:         modDur,
		DurationAnnual:   durAnnual,
		MacaulayDuration: macDur,
		Convexity:        convexity,
		PVBP:             pvbp,
		AccruedInterest:  accrued,
		DaysAccrued:      daysAccrued,
		CleanPrice:       in.CleanPrice,
		DirtyPrice:       dirty,
		SettlementDate:   in.SettlementDate,
	}

	if curveSnap != nil {
		tenor := yearsBetween(in.SettlementDate, b.Maturity)
		if !b.IsUSTreasury {
			if gs, ok := gSpread(y, tenor, curveSnap); ok {
				a.GSpread = &gs
			}
		}
		if zs, err := zSpread(flows, dirty, curveSnap, in.SettlementDate); err == nil {
			a.ZSpread = &zs
		}
	}

	return a, nil
}

// durationFamily computes modified duration, Macaulay duration, and
// convexity analytically from the same flows/yield used to solve price,
//'s three formulas.
func durationFamily(y float64, flows []flow, f int, price float64) (modDur, macDur, convexity float64) {
	var sumT, sumConv float64
	onePlus := 1 + y/float64(f)

	for _, c := range flows {
		d := discountFactor(y, c.t, f)
		sumT += c.t * c.amount * d
		sumConv += c.t * (c.t + 1/float64(f)) * c.amount * d
	}

	macDur = sumT / price
	modDur = (1 / onePlus) * sumT / price
	convexity = (1 / price) * sumConv / (onePlus * onePlus)
	return
}

// gSpread computes the G-spread: ytm minus the treasury
// par yield at the bond's maturity tenor, in basis points. Returns
// ok=false when the tenor is outside the curve.
func gSpread(ytm, tenorYears float64, snap *curve.Snapshot) (float64, bool) {
	par, ok := snap.ParYield(tenorYears)
	if !ok {
		return 0, false
	}
	return (ytm - par) * 10000.0, true
}

// zSpread solves for the constant continuously-compounded spread z
// such that discounting flows off (zero(t)+z) reproduces dirtyPrice,
//
func zSpread(flows []flow, dirtyPrice float64, snap *curve.Snapshot, settlement time.Time) (float64, error) {
	pv := func(z float64) float64 {
		sum := 0.0
		for _, c := range flows {
			zero, ok := snap.ZeroYield(c.t)
			if !ok {
				zero = 0
			}
			sum += c.amount * math.Exp(-(zero+z)*c.t)
		}
		return sum - dirtyPrice
	}

	z, err := brent(pv, -0.10, 0.10, 1e-10)
	if err != nil {
		return 0, ErrZSpreadNotFound
	}
	return z * 10000.0, nil
}

func yearsBetween(d1, d2 time.Time) float64 {
	return d2.Sub(d1).Hours() / 24 / 365.25
}
