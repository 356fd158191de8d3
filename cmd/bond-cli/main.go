// bond-cli exercises the Core Facade from a terminal, in the same
// flag-driven, no-framework style as benritz-gilts' cmd/calc-ytm: a
// flat set of flag.Float64/flag.String declarations, a flag.Visit scan
// for "was this actually supplied", then direct printf-style reporting.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillhorn/bondengine/internal/config"
	"github.com/quillhorn/bondengine/internal/curve"
	"github.com/quillhorn/bondengine/internal/facade"
	"github.com/quillhorn/bondengine/internal/refstore"
)

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func main() {
	identifier := flag.String("identifier", "", "bond identifier (e.g. ISIN)")
	description := flag.String("description", "", "free-text bond description, used when -identifier is unset or unresolved")
	cleanPrice := flag.Float64("cleanprice", 0.0, "clean price of the bond")
	settlementDateStr := flag.String("settlementdate", "", "settlement date (YYYY-MM-DD); defaults to the prior month-end business day")
	couponOverride := flag.Float64("coupon", 0.0, "override the resolved coupon rate (%)")
	helpFlag := flag.Bool("help", false, "print this help message")
	flag.Parse()

	flagsSet := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { flagsSet[f.Name] = true })

	if *helpFlag || (!flagsSet["identifier"] && !flagsSet["description"]) || !flagsSet["cleanprice"] {
		fmt.Printf("Usage: %s -identifier=<isin> -cleanprice=<price> [-settlementdate=YYYY-MM-DD]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	settlement, err := parseDate(*settlementDateStr)
	if err != nil {
		fmt.Printf("Error: invalid settlement date: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Str("cmd", "bond-cli").Logger()

	store, err := refstore.Open(refstore.Config{
		ValidatedDSN: cfg.ValidatedDSN,
		PrimaryDSN:   cfg.PrimaryDSN,
		SecondaryDSN: cfg.SecondaryDSN,
	})
	if err != nil {
		fmt.Printf("Error: opening reference store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	f := facade.New(store, curve.NewStore(), log)

	req := facade.AnalyzeBondRequest{
		Identifier:  *identifier,
		Description: *description,
		CleanPrice:  *cleanPrice,
	}
	if !settlement.IsZero() {
		req.SettlementDate = &settlement
	}
	if flagsSet["coupon"] {
		c := *couponOverride / 100
		req.Overrides.Coupon = &c
	}

	resp, err := f.AnalyzeBond(context.Background(), req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	a := resp.Analytics
	fmt.Printf("Bond Analytics:\n")
	fmt.Printf("\tIssuer: %s (%s)\n", resp.Spec.IssuerName, resp.Spec.Issuer)
	fmt.Printf("\tMaturity: %s\n", resp.Spec.Maturity.Format("2006-01-02"))
	fmt.Printf("\tResolution: %s (%s confidence)\n", resp.ResolutionTag, resp.Confidence)
	fmt.Printf("\tClean Price: %.4f\n", a.CleanPrice)
	fmt.Printf("\tDirty Price: %.4f\n", a.DirtyPrice)
	fmt.Printf("\tAccrued Interest: %.4f (%d days)\n", a.AccruedInterest, a.DaysAccrued)
	fmt.Printf("\tYield to Maturity: %.6f%%\n", a.YTM*100)
	fmt.Printf("\tModified Duration: %.6f\n", a.Duration)
	fmt.Printf("\tMacaulay Duration: %.6f\n", a.MacaulayDuration)
	fmt.Printf("\tConvexity: %.6f\n", a.Convexity)
	fmt.Printf("\tPVBP: %.6f\n", a.PVBP)
	if a.GSpread != nil {
		fmt.Printf("\tG-Spread: %.2f bp\n", *a.GSpread)
	}
	if a.ZSpread != nil {
		fmt.Printf("\tZ-Spread: %.2f bp\n", *a.ZSpread)
	}
	for _, w := range resp.Warnings {
		fmt.Printf("\tWarning: %s\n", w)
	}
}
