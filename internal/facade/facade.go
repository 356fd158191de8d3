package facade

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillhorn/bondengine/internal/cashflow"
	"github.com/quillhorn/bondengine/internal/convention"
	"github.com/quillhorn/bondengine/internal/curve"
	"github.com/quillhorn/bondengine/internal/portfolio"
	"github.com/quillhorn/bondengine/internal/pricing"
	"github.com/quillhorn/bondengine/internal/refstore"
	"github.com/quillhorn/bondengine/internal/resolver"
)

// Facade is the single entry point adapters (CLI, Lambda, a future HTTP
// layer) call into. It holds the process-wide, read-only handles that
// every request shares: the Reference Store connection pool and the
// curve snapshot pointer. It constructs nothing request-scoped beyond
// the resolver call itself, sharing immutable/pooled resources and
// never sharing mutable per-request state.
type Facade struct {
	resolver   *resolver.Resolver
	curveStore *curve.Store
	log        zerolog.Logger
}

func New(store *refstore.Store, curveStore *curve.Store, log zerolog.Logger) *Facade {
	return &Facade{
		resolver:   resolver.New(store, log),
		curveStore: curveStore,
		log:        log,
	}
}

func settlementOrToday(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return priorMonthEnd(time.Now().UTC())
}

// priorMonthEnd returns the prior calendar month-end, rolled to a
// business day under the engine's default calendar, used whenever a
// request omits settlement_date. Bond-specific calendars are not yet
// known at this point in a request (resolution hasn't run), so this
// uses the engine's own default (US-Government, Preceding) rather than
// waiting on a resolved BondSpec.
func priorMonthEnd(now time.Time) time.Time {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastOfPriorMonth := firstOfMonth.AddDate(0, 0, -1)
	return convention.Preceding.Adjust(lastOfPriorMonth, convention.USGovernment)
}

func toResolverOverrides(o RequestOverrides) resolver.Overrides {
	return resolver.Overrides{
		Coupon:      o.Coupon,
		Maturity:    o.Maturity,
		DayCount:    o.DayCount,
		Frequency:   o.Frequency,
		BusinessDay: o.BusinessDay,
		Calendar:    o.Calendar,
	}
}

// AnalyzeBond implements the analyze_bond operation: resolve,
// then price, surfacing InputError for malformed requests, ErrUnresolved
// when the resolver can't place the bond, and the pricing engine's own
// errors, returned unwrapped, otherwise.
func (f *Facade) AnalyzeBond(ctx context.Context, req AnalyzeBondRequest) (AnalyzeBondResponse, error) {
	if err := validateStruct(req); err != nil {
		return AnalyzeBondResponse{}, err
	}

	settlement := settlementOrToday(req.SettlementDate)

	res, err := f.resolver.Resolve(ctx, resolver.Request{
		Identifier:  req.Identifier,
		Description: req.Description,
		Overrides:   toResolverOverrides(req.Overrides),
		Now:         settlement,
	})
	if err != nil {
		if errors.Is(err, resolver.ErrInsufficientInput) {
			return AnalyzeBondResponse{}, &InputError{Field: "identifier", Reason: "supply an identifier or a description"}
		}
		return AnalyzeBondResponse{}, &DataSourceError{Source: "reference_store", Cause: err}
	}
	if res.Unresolved {
		return AnalyzeBondResponse{}, ErrUnresolved
	}

	var snap *curve.Snapshot
	if f.curveStore != nil {
		snap = f.curveStore.Current()
	}

	analytics, err := pricing.Compute(pricing.Input{
		Spec:           res.Spec,
		CleanPrice:     req.CleanPrice,
		SettlementDate: settlement,
	}, snap)
	if err != nil {
		return AnalyzeBondResponse{}, err
	}

	var warnings []string
	if snap == nil {
		warnings = append(warnings, "treasury curve unavailable; spreads omitted")
	}

	return AnalyzeBondResponse{
		Spec:             res.Spec,
		Analytics:        analytics,
		ResolutionTag:    res.Source,
		Confidence:       res.Confidence,
		OverridesApplied: res.OverridesApplied,
		Warnings:         warnings,
	}, nil
}

// resolveHoldings resolves each HoldingRequest, isolating per-holding
// resolution failures into warnings rather than failing the whole
// request, matching the pricing stage's own partial-failure policy
// extended one stage earlier to resolution.
func (f *Facade) resolveHoldings(ctx context.Context, reqs []HoldingRequest, settlement time.Time) ([]portfolio.Holding, []resolver.Source, []map[string]bool, []string) {
	holdings := make([]portfolio.Holding, 0, len(reqs))
	tags := make([]resolver.Source, 0, len(reqs))
	applied := make([]map[string]bool, 0, len(reqs))
	var warnings []string

	for i, hr := range reqs {
		res, err := f.resolver.Resolve(ctx, resolver.Request{
			Identifier:  hr.Identifier,
			Description: hr.Description,
			Overrides:   toResolverOverrides(hr.Overrides),
			Now:         settlement,
		})
		if err != nil || res.Unresolved {
			reason := err
			if reason == nil {
				reason = ErrUnresolved
			}
			warnings = append(warnings, unresolvedWarning(i, hr.Identifier, hr.Description, reason))
			continue
		}

		holdings = append(holdings, portfolio.Holding{
			Spec:    res.Spec,
			Price:   hr.CleanPrice,
			Weight:  hr.Weight,
			Nominal: hr.Nominal,
		})
		tags = append(tags, res.Source)
		applied = append(applied, res.OverridesApplied)
	}

	return holdings, tags, applied, warnings
}

// AnalyzePortfolio implements the analyze_portfolio operation.
func (f *Facade) AnalyzePortfolio(ctx context.Context, req AnalyzePortfolioRequest) (AnalyzePortfolioResponse, error) {
	if err := validateStruct(req); err != nil {
		return AnalyzePortfolioResponse{}, err
	}

	settlement := settlementOrToday(req.SettlementDate)
	holdings, tags, applied, warnings := f.resolveHoldings(ctx, req.Holdings, settlement)

	var snap *curve.Snapshot
	if f.curveStore != nil {
		snap = f.curveStore.Current()
	}
	if snap == nil {
		warnings = append(warnings, "treasury curve unavailable; spreads omitted")
	}

	agg := portfolio.Aggregate(ctx, holdings, settlement, snap)

	results := make([]HoldingResult, len(agg.PerBond))
	for i, pb := range agg.PerBond {
		hr := HoldingResult{Spec: pb.Holding.Spec, Analytics: pb.Analytics}
		if i < len(tags) {
			hr.ResolutionTag = tags[i]
			hr.OverridesApplied = applied[i]
		}
		results[i] = hr
	}
	for _, fail := range agg.Failures {
		results = append(results, HoldingResult{
			Spec:          fail.Spec,
			Failed:        true,
			FailureReason: fail.Reason.Error(),
		})
	}

	return AnalyzePortfolioResponse{
		Metrics:  agg.Metrics,
		Holdings: results,
		Warnings: warnings,
	}, nil
}

func toCashflowFilter(mode CashFlowFilterMode, periodDays int) cashflow.Filter {
	switch mode {
	case FilterNext:
		return cashflow.Filter{Mode: cashflow.FilterNext}
	case FilterPeriod:
		return cashflow.Filter{Mode: cashflow.FilterPeriod, PeriodDays: periodDays}
	default:
		return cashflow.Filter{Mode: cashflow.FilterAll}
	}
}

// CashFlows implements the cash_flows operation: resolve each
// holding, project its forward cash-flow stream scaled by nominal, and
// merge across the portfolio.
func (f *Facade) CashFlows(ctx context.Context, req CashFlowRequest) (CashFlowResponse, error) {
	if err := validateStruct(req); err != nil {
		return CashFlowResponse{}, err
	}

	settlement := settlementOrToday(req.SettlementDate)
	holdings, _, _, warnings := f.resolveHoldings(ctx, req.Holdings, settlement)

	filter := toCashflowFilter(req.Filter, req.PeriodDays)
	perHolding := make([][]cashflow.Flow, 0, len(holdings))

	for _, h := range holdings {
		flows, err := cashflow.Project(h.Spec, settlement, filter)
		if err != nil {
			warnings = append(warnings, "holding "+h.Spec.ID+": "+err.Error())
			continue
		}
		nominal := h.Nominal
		if nominal == 0 {
			nominal = h.Spec.FaceValue
		}
		scaled := make([]cashflow.Flow, len(flows))
		for i, fl := range flows {
			fl.Amount *= nominal
			scaled[i] = fl
		}
		perHolding = append(perHolding, scaled)
	}

	return CashFlowResponse{
		PerHolding: perHolding,
		Merged:     cashflow.MergePortfolio(perHolding),
		Warnings:   warnings,
	}, nil
}
