// Package cashflow implements the Cash-Flow Projector:
// enumerating a bond's forward cash-flow stream after settlement, with
// all/next/period(days) filters, and merging across a portfolio's
// holdings.
package cashflow

import (
	"sort"
	"time"

	"github.com/quillhorn/bondengine/internal/bond"
	"github.com/quillhorn/bondengine/internal/convention"
	"github.com/quillhorn/bondengine/internal/schedule"
)

// Kind classifies a single cash flow
type Kind string

const (
	Coupon            Kind = "coupon"
	Principal         Kind = "principal"
	CouponAndPrincipal Kind = "coupon+principal"
)

// Flow is the CashFlow type: per-nominal amount, not per-100.
type Flow struct {
	Date            time.Time
	Amount          float64 // per nominal unit (i.e. per 1.0 of face)
	Kind            Kind
	DaysFromSettle  int
}

// Filter selects which future flows to include
type Filter struct {
	Mode       FilterMode
	PeriodDays int // only meaningful when Mode == FilterPeriod
}

type FilterMode string

const (
	FilterAll    FilterMode = "all"
	FilterNext   FilterMode = "next"
	FilterPeriod FilterMode = "period"
)

// Project enumerates b's cash flows strictly after settlement, applying
// filter Amounts are expressed per nominal unit (1.0 =
// full face); multiply by a holding's nominal to get currency amounts.
func Project(b bond.Spec, settlement time.Time, filter Filter) ([]Flow, error) {
	sch, err := schedule.Build(
		b.Issue, b.FirstCoupon, b.Maturity,
		b.Conventions.Frequency, b.Conventions.BusinessDay, b.Conventions.Calendar, b.Conventions.EndOfMonth,
	)
	if err != nil {
		return nil, err
	}

	periods := sch.FutureCashflowPeriods(settlement)
	if len(periods) == 0 {
		return nil, nil
	}

	f := b.Conventions.Frequency.PeriodsPerYear()
	couponFrac := b.Coupon / float64(f)
	if b.Conventions.Frequency == convention.Zero {
		couponFrac = 0
	}

	var flows []Flow
	for i, p := range periods {
		kind := Coupon
		amount := couponFrac
		if i == len(periods)-1 {
			amount += 1.0
			kind = CouponAndPrincipal
			if couponFrac == 0 {
				kind = Principal
			}
		}
		days := int(p.End.Sub(settlement).Hours() / 24)
		flows = append(flows, Flow{Date: p.End, Amount: amount, Kind: kind, DaysFromSettle: days})
	}

	return applyFilter(flows, settlement, filter), nil
}

func applyFilter(flows []Flow, settlement time.Time, filter Filter) []Flow {
	switch filter.Mode {
	case FilterNext:
		if len(flows) == 0 {
			return nil
		}
		return flows[:1]
	case FilterPeriod:
		cutoff := settlement.AddDate(0, 0, filter.PeriodDays)
		var out []Flow
		for _, f := range flows {
			if !f.Date.After(cutoff) {
				out = append(out, f)
			}
		}
		return out
	default: // FilterAll
		return flows
	}
}

// MergePortfolio merges flows from multiple bonds (each pre-scaled by
// its holding's nominal), sorting by date and summing amounts that
// recur on the same date within a single holding's stream.
func MergePortfolio(perHolding [][]Flow) []Flow {
	var all []Flow
	for _, flows := range perHolding {
		merged := sumSameDate(flows)
		all = append(all, merged...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	return all
}

func sumSameDate(flows []Flow) []Flow {
	if len(flows) == 0 {
		return nil
	}
	byDate := map[time.Time]*Flow{}
	var order []time.Time
	for _, f := range flows {
		if existing, ok := byDate[f.Date]; ok {
			existing.Amount += f.Amount
			if existing.Kind != f.Kind {
				existing.Kind = CouponAndPrincipal
			}
		} else {
			cp := f
			byDate[f.Date] = &cp
			order = append(order, f.Date)
		}
	}
	out := make([]Flow, 0, len(order))
	for _, d := range order {
		out = append(out, *byDate[d])
	}
	return out
}
