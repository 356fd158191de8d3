// Package facade implements the Core Facade: the typed,
// language-neutral entry points (analyze_bond, analyze_portfolio,
// cash_flows) that adapters call. It composes every other component,
// isolating per-holding failures so one bad holding never aborts
// computation of the others.
package facade

import "time"

// AnalyzeBondRequest is a single-bond analysis request.
type AnalyzeBondRequest struct {
	Identifier     string             `validate:"required_without=Description"`
	Description    string             `validate:"required_without=Identifier"`
	CleanPrice     float64            `validate:"required,gt=0"`
	SettlementDate *time.Time
	Overrides      RequestOverrides
	SpreadBasis    string // reserved for future curve-selection; unused by the default curve
}

// RequestOverrides mirrors resolver.Overrides at the wire-neutral layer
// so adapters don't need to import internal/resolver directly.
type RequestOverrides struct {
	Coupon      *float64
	Maturity    *time.Time
	DayCount    *string
	Frequency   *string
	BusinessDay *string
	Calendar    *string
}

// HoldingRequest is one entry of a portfolio/cash-flow request.
type HoldingRequest struct {
	Identifier  string  `validate:"required_without=Description"`
	Description string  `validate:"required_without=Identifier"`
	CleanPrice  float64 `validate:"required,gt=0"`
	Weight      float64 `validate:"gte=0"`
	Nominal     float64 `validate:"gte=0"`
	Overrides   RequestOverrides
}

// AnalyzePortfolioRequest is a portfolio analysis request.
type AnalyzePortfolioRequest struct {
	Holdings       []HoldingRequest `validate:"required,min=1,dive"`
	SettlementDate *time.Time
}

// CashFlowFilterMode mirrors cashflow.FilterMode at the wire-neutral layer.
type CashFlowFilterMode string

const (
	FilterAll    CashFlowFilterMode = "all"
	FilterNext   CashFlowFilterMode = "next"
	FilterPeriod CashFlowFilterMode = "period"
)

// CashFlowRequest is a cash-flow projection request.
type CashFlowRequest struct {
	Holdings       []HoldingRequest `validate:"required,min=1,dive"`
	Filter         CashFlowFilterMode
	PeriodDays     int
	SettlementDate *time.Time
}
