// Package portfolio implements the Portfolio Aggregator: per-holding
// pricing with failure isolation, weighted roll-up of
// yield/duration/convexity/spread. Weighted means use
// gonum.org/v1/gonum/stat.Mean, the way abdoElHodaky/tradSys and
// aristath/sentinel both pull in gonum for numerical work. No file in
// the retrieval pack aggregates a portfolio (gilts pricing handles one
// bond per CLI invocation), so this package is new.
package portfolio

import (
	"context"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/quillhorn/bondengine/internal/bond"
	"github.com/quillhorn/bondengine/internal/curve"
	"github.com/quillhorn/bondengine/internal/pricing"
)

// Holding is one position in a portfolio.
type Holding struct {
	Spec    bond.Spec
	Price   float64
	Weight  float64
	Nominal float64 // optional; 0 means "not tracked", excluded from market-value totals
}

// Failure records one holding's pricing failure, preserving per-bond
// isolation.
type Failure struct {
	Index  int
	Spec   bond.Spec
	Reason error
}

// Metrics is the weighted portfolio-level roll-up.
type Metrics struct {
	WeightedYTM           float64
	WeightedDuration      float64
	WeightedConvexity     float64
	WeightedSpread        *float64 // nil unless every contributing bond has a spread
	TotalAccruedInterest  float64
	TotalMarketValue      float64
	SuccessRate           float64
}

// PerBond pairs a holding with its computed analytics (nil on failure).
type PerBond struct {
	Holding   Holding
	Analytics *pricing.Analytics
}

// Response is the full result of aggregating a portfolio.
type Response struct {
	Metrics  Metrics
	PerBond  []PerBond
	Failures []Failure
}

// Aggregate invokes the pricing engine per holding with per-bond
// isolation (a holding's failure never fails the portfolio),
// renormalizes weights across successful bonds only, and reports a
// success-rate figure. Holdings are priced concurrently, one goroutine
// per holding with request-scoped state only, each isolated by a
// recover so a panic in one holding's pricing (e.g. a
// schedule-generation edge case) can't take down the others; it
// surfaces as an ordinary per-bond Failure instead.
func Aggregate(ctx context.Context, holdings []Holding, settlement time.Time, curveSnap *curve.Snapshot) Response {
	results := make([]PerBond, len(holdings))
	failures := make([]Failure, 0)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, h := range holdings {
		wg.Add(1)
		go func(i int, h Holding) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					failures = append(failures, Failure{Index: i, Spec: h.Spec, Reason: panicToErr(r)})
					mu.Unlock()
				}
			}()

			analytics, err := pricing.Compute(pricing.Input{
				Spec:           h.Spec,
				CleanPrice:     h.Price,
				SettlementDate: settlement,
			}, curveSnap)

			if err != nil {
				mu.Lock()
				failures = append(failures, Failure{Index: i, Spec: h.Spec, Reason: err})
				mu.Unlock()
				return
			}

			mu.Lock()
			results[i] = PerBond{Holding: h, Analytics: &analytics}
			mu.Unlock()
		}(i, h)
	}
	wg.Wait()

	return Response{
		Metrics:  computeMetrics(results, holdings),
		PerBond:  results,
		Failures: failures,
	}
}

func computeMetrics(results []PerBond, holdings []Holding) Metrics {
	var ytms, durs, convs, weights []float64
	var spreads []float64
	spreadCount := 0
	totalAccrued := 0.0
	totalMV := 0.0
	successes := 0

	for _, pb := range results {
		if pb.Analytics == nil {
			continue
		}
		successes++
		ytms = append(ytms, pb.Analytics.YTM)
		durs = append(durs, pb.Analytics.Duration)
		convs = append(convs, pb.Analytics.Convexity)
		weights = append(weights, pb.Holding.Weight)

		if pb.Analytics.GSpread != nil {
			spreads = append(spreads, *pb.Analytics.GSpread)
			spreadCount++
		}

		if pb.Holding.Nominal > 0 {
			totalAccrued += pb.Holding.Weight * pb.Analytics.AccruedInterest * pb.Holding.Nominal / 100.0
			totalMV += pb.Holding.Nominal * pb.Analytics.DirtyPrice / 100.0
		}
	}

	m := Metrics{SuccessRate: successRate(successes, len(holdings))}
	if successes == 0 {
		return m
	}

	normWeights := normalize(weights)
	m.WeightedYTM = stat.Mean(ytms, normWeights)
	m.WeightedDuration = stat.Mean(durs, normWeights)
	m.WeightedConvexity = stat.Mean(convs, normWeights)
	m.TotalAccruedInterest = totalAccrued
	m.TotalMarketValue = totalMV

	if spreadCount == successes && spreadCount > 0 {
		ws := stat.Mean(spreads, normWeights)
		m.WeightedSpread = &ws
	}

	return m
}

// normalize renormalizes a weight vector to sum to 1
// ("Weights are renormalized across successful bonds only").
func normalize(weights []float64) []float64 {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return weights
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w / sum
	}
	return out
}

func successRate(successes, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(successes) / float64(total)
}

func panicToErr(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicErr{r}
}

type panicErr struct{ v any }

func (p *panicErr) Error() string { return "portfolio: recovered panic during pricing" }
