package facade

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhorn/bondengine/internal/cashflow"
	"github.com/quillhorn/bondengine/internal/curve"
	"github.com/quillhorn/bondengine/internal/refstore"
	"github.com/quillhorn/bondengine/internal/refstore/testdata"
)

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	dir := t.TempDir()
	validatedDSN := filepath.Join(dir, "validated.db")
	primaryDSN := filepath.Join(dir, "primary.db")
	secondaryDSN := filepath.Join(dir, "secondary.db")

	require.NoError(t, testdata.Seed(validatedDSN, testdata.ValidatedRows))
	require.NoError(t, testdata.Seed(primaryDSN, testdata.PrimaryRows))
	require.NoError(t, testdata.Seed(secondaryDSN, testdata.SecondaryRows))

	store, err := refstore.Open(refstore.Config{ValidatedDSN: validatedDSN, PrimaryDSN: primaryDSN, SecondaryDSN: secondaryDSN})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return New(store, curve.NewStore(), zerolog.Nop())
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestAnalyzeBond_ByIdentifier(t *testing.T) {
	f := newTestFacade(t)
	resp, err := f.AnalyzeBond(context.Background(), AnalyzeBondRequest{
		Identifier:     "US912810TM17",
		CleanPrice:     71.66,
		SettlementDate: ptrTime(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.04899, resp.Analytics.YTM, 0.0001)
	assert.Contains(t, resp.Warnings, "treasury curve unavailable; spreads omitted")
}

func TestAnalyzeBond_MissingIdentifierAndDescription(t *testing.T) {
	f := newTestFacade(t)
	_, err := f.AnalyzeBond(context.Background(), AnalyzeBondRequest{CleanPrice: 100})
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
}

func TestAnalyzeBond_AllStoresUnreachable(t *testing.T) {
	dir := t.TempDir()
	store, err := refstore.Open(refstore.Config{
		ValidatedDSN: filepath.Join(dir, "validated.db"),
		PrimaryDSN:   filepath.Join(dir, "primary.db"),
		SecondaryDSN: filepath.Join(dir, "secondary.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := New(store, curve.NewStore(), zerolog.Nop())
	_, err = f.AnalyzeBond(context.Background(), AnalyzeBondRequest{
		Identifier: "US912810TM17",
		CleanPrice: 100,
	})
	var dsErr *DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, "reference_store", dsErr.Source)
}

func TestAnalyzeBond_Unresolved(t *testing.T) {
	f := newTestFacade(t)
	_, err := f.AnalyzeBond(context.Background(), AnalyzeBondRequest{
		Identifier: "NOT-A-REAL-BOND",
		CleanPrice: 100,
	})
	assert.True(t, errors.Is(err, ErrUnresolved))
}

// TestAnalyzePortfolio_S4FiftyFifty exercises spec scenario S4.
func TestAnalyzePortfolio_S4FiftyFifty(t *testing.T) {
	f := newTestFacade(t)
	resp, err := f.AnalyzePortfolio(context.Background(), AnalyzePortfolioRequest{
		Holdings: []HoldingRequest{
			{Identifier: "US912810TM17", CleanPrice: 71.66, Weight: 0.5},
			{Identifier: "US91282CJL54", CleanPrice: 99.5, Weight: 0.5},
		},
		SettlementDate: ptrTime(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	require.Len(t, resp.Holdings, 2)
	assert.Equal(t, 1.0, resp.Metrics.SuccessRate)

	mean := (resp.Holdings[0].Analytics.YTM + resp.Holdings[1].Analytics.YTM) / 2
	assert.InDelta(t, mean, resp.Metrics.WeightedYTM, 0.0005)
}

func TestAnalyzePortfolio_PartialResolutionFailure(t *testing.T) {
	f := newTestFacade(t)
	resp, err := f.AnalyzePortfolio(context.Background(), AnalyzePortfolioRequest{
		Holdings: []HoldingRequest{
			{Identifier: "US912810TM17", CleanPrice: 71.66, Weight: 0.5},
			{Identifier: "NOT-A-REAL-BOND", CleanPrice: 100, Weight: 0.5},
		},
		SettlementDate: ptrTime(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	require.Len(t, resp.Holdings, 1)
	require.NotEmpty(t, resp.Warnings)
}

func TestCashFlows_FilterNext(t *testing.T) {
	f := newTestFacade(t)
	resp, err := f.CashFlows(context.Background(), CashFlowRequest{
		Holdings: []HoldingRequest{
			{Identifier: "US91282CJL54", CleanPrice: 99.5, Weight: 1, Nominal: 1_000_000},
		},
		Filter:         FilterNext,
		SettlementDate: ptrTime(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	require.Len(t, resp.Merged, 1)
	assert.Equal(t, time.August, resp.Merged[0].Date.Month())
	assert.Equal(t, 15, resp.Merged[0].Date.Day())
	assert.InDelta(t, 1_000_000*0.041/2, resp.Merged[0].Amount, 1e-6)
	assert.Equal(t, cashflow.Coupon, resp.Merged[0].Kind)
}

func TestPriorMonthEnd(t *testing.T) {
	// 2025-06-30 is itself a Monday business day, so it should be
	// returned unadjusted as the prior month-end for any day in July.
	got := priorMonthEnd(time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), got)

	// 2025-11-30 is a Sunday; Preceding rolls it back to Friday 11-28.
	got = priorMonthEnd(time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.November, 28, 0, 0, 0, 0, time.UTC), got)
}

func TestAnalyzeBond_DefaultSettlementIsPriorMonthEnd(t *testing.T) {
	f := newTestFacade(t)
	resp, err := f.AnalyzeBond(context.Background(), AnalyzeBondRequest{
		Identifier: "US912810TM17",
		CleanPrice: 71.66,
	})
	require.NoError(t, err)
	assert.True(t, resp.Analytics.SettlementDate.Equal(priorMonthEnd(time.Now().UTC())))
}

func TestAnalyzeBond_S6Override(t *testing.T) {
	f := newTestFacade(t)
	baseline, err := f.AnalyzeBond(context.Background(), AnalyzeBondRequest{
		Description:    "AAPL 3.45 02/09/29",
		CleanPrice:     97.25,
		SettlementDate: ptrTime(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	override := 0.0375
	overridden, err := f.AnalyzeBond(context.Background(), AnalyzeBondRequest{
		Description:    "AAPL 3.45 02/09/29",
		CleanPrice:     97.25,
		SettlementDate: ptrTime(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)),
		Overrides:      RequestOverrides{Coupon: &override},
	})
	require.NoError(t, err)

	assert.True(t, overridden.OverridesApplied["coupon"])
	assert.Greater(t, overridden.Analytics.YTM, baseline.Analytics.YTM)
}
