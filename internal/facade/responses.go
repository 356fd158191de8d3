package facade

import (
	"strconv"
	"time"

	"github.com/quillhorn/bondengine/internal/bond"
	"github.com/quillhorn/bondengine/internal/cashflow"
	"github.com/quillhorn/bondengine/internal/portfolio"
	"github.com/quillhorn/bondengine/internal/pricing"
	"github.com/quillhorn/bondengine/internal/resolver"
)

// AnalyzeBondResponse is the result of a single-bond analysis.
type AnalyzeBondResponse struct {
	Spec             bond.Spec
	Analytics        pricing.Analytics
	ResolutionTag    resolver.Source
	Confidence       resolver.Confidence
	OverridesApplied map[string]bool
	Warnings         []string
}

// HoldingResult is one priced holding inside a portfolio response.
type HoldingResult struct {
	Spec             bond.Spec
	Analytics        *pricing.Analytics // nil on failure
	ResolutionTag    resolver.Source
	OverridesApplied map[string]bool
	Failed           bool
	FailureReason    string
}

// AnalyzePortfolioResponse is the result of a portfolio analysis.
type AnalyzePortfolioResponse struct {
	Metrics  portfolio.Metrics
	Holdings []HoldingResult
	Warnings []string
}

// CashFlowResponse is the result of a cash-flow projection.
type CashFlowResponse struct {
	PerHolding [][]cashflow.Flow
	Merged     []cashflow.Flow
	Warnings   []string
}

// unresolvedWarning renders a per-holding resolution failure into the
// response's warnings list rather than failing the whole request.
func unresolvedWarning(index int, identifier, description string, reason error) string {
	label := identifier
	if label == "" {
		label = description
	}
	ts := time.Now().UTC().Format(time.RFC3339)
	return ts + " holding " + strconv.Itoa(index) + " (" + label + "): " + reason.Error()
}
