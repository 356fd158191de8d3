// Package parser implements the Description Parser: extracting issuer
// class, coupon, and maturity from heterogeneous free-text bond
// descriptions. Its coupon-fraction handling is grounded on
// benritz-gilts/internal/collect.parseCouponPercentage, which parses UK
// gilt descriptions like "3½% Treasury Gilt 2025"; maturity extraction
// and issuer classification are new, generalized beyond the single
// fixed UK-gilts source that package parses.
package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/quillhorn/bondengine/internal/bond"
	"github.com/quillhorn/bondengine/internal/convention"
)

// ErrUnparsed is returned, wrapping a human-readable reason, when
// coupon or maturity cannot be extracted from the description.
var ErrUnparsed = errors.New("parser: description could not be parsed")

// Result is what the parser hands back to the Resolver: enough to
// build a BondSpec.
type Result struct {
	Issuer       bond.IssuerClass
	IssuerName   string
	Country      string // set for non-US sovereigns, used for convention lookup
	Coupon       float64
	Maturity     time.Time
	Conventions  convention.Conventions
	IsUSTreasury bool
}

// treasuryAliases are the leading tokens that identify a US Treasury
// description.
var treasuryAliases = map[string]bool{
	"T":              true,
	"UST":            true,
	"TREASURY":       true,
	"US TREASURY N/B": true,
	"USTREASURY":     true,
}

// sovereignIssuers maps a leading token (after normalization) to the
// country name used for SovereignDefaults lookup. This is a fixed,
// small dictionary; unrecognized leading tokens fall through to
// corporate classification.
var sovereignIssuers = map[string]string{
	"GERMANY": "GERMANY",
	"FRANCE":  "FRANCE",
	"JAPAN":   "JAPAN",
	"UK":      "UK",
	"GILT":    "UK",
	"PANAMA":  "PANAMA",
	"BRAZIL":  "BRAZIL",
	"MEXICO":  "MEXICO",
	"TURKEY":  "TURKEY",
	"EGYPT":   "EGYPT",
}

// emergingMarketCountries is the subset of sovereignIssuers classified
// sovereign-emerging rather than sovereign-developed.
var emergingMarketCountries = map[string]bool{
	"PANAMA": true,
	"BRAZIL": true,
	"MEXICO": true,
	"TURKEY": true,
	"EGYPT":  true,
}

var (
	couponRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

	dateSlashRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b`)
	dateDashMonRe = regexp.MustCompile(`(?i)\b(\d{1,2})-([A-Za-z]{3,})-(\d{2,4})\b`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Parse implements the five steps against raw, a free-text
// bond description, using now as the reference point for two-digit
// year disambiguation ("nearest year within [current-30, current+70]").
func Parse(raw string, now time.Time) (Result, error) {
	norm := normalize(raw)
	if norm == "" {
		return Result{}, ErrUnparsed
	}

	issuer, issuerName, country, isTreasury := classify(norm)

	coupon, ok := extractCoupon(norm)
	if !ok {
		return Result{}, ErrUnparsed
	}

	maturity, ok := extractMaturity(norm, issuer, now)
	if !ok {
		return Result{}, ErrUnparsed
	}

	var conv convention.Conventions
	switch {
	case isTreasury:
		conv = convention.USTreasuryDefaults()
	case issuer == bond.SovereignDeveloped || issuer == bond.SovereignEmerging:
		conv = convention.SovereignDefaults(country)
	default:
		conv = convention.CorporateDefaults()
	}

	return Result{
		Issuer:       issuer,
		IssuerName:   issuerName,
		Country:      country,
		Coupon:       coupon,
		Maturity:     maturity,
		Conventions:  conv,
		IsUSTreasury: isTreasury,
	}, nil
}

// normalize trims, collapses whitespace, strips punctuation noise, and
// uppercases issuer tokens.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, ",", " ")
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// classify determines issuer class from the leading token(s); unknown
// leading tokens default to corporate.
func classify(norm string) (class bond.IssuerClass, issuerName, country string, isTreasury bool) {
	if strings.HasPrefix(norm, "US TREASURY N/B") {
		return bond.SovereignDeveloped, "US TREASURY N/B", "US", true
	}

	fields := strings.Fields(norm)
	if len(fields) == 0 {
		return bond.Corporate, "", "", false
	}
	lead := fields[0]

	if treasuryAliases[lead] {
		return bond.SovereignDeveloped, lead, "US", true
	}

	if ctry, ok := sovereignIssuers[lead]; ok {
		if emergingMarketCountries[ctry] {
			return bond.SovereignEmerging, lead, ctry, false
		}
		return bond.SovereignDeveloped, lead, ctry, false
	}

	return bond.Corporate, lead, "", false
}

// extractCoupon pulls the first numeric token interpretable as a
// percentage: accepts "3", "3.0", "3%", "3.125".
// A bare number (no "%") is only accepted when it appears before any
// date-shaped token, to avoid mistaking a maturity year for a coupon.
func extractCoupon(norm string) (float64, bool) {
	if m := couponRe.FindStringSubmatch(norm); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return v / 100.0, true
		}
	}

	// Fall back to a bare decimal/integer token that precedes the
	// first recognizable date token: handles "T 3 15/08/52" where no
	// "%" is present.
	for _, tok := range strings.Fields(norm) {
		if dateSlashRe.MatchString(tok) || dateDashMonRe.MatchString(tok) {
			break
		}
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			return v / 100.0, true
		}
	}

	return 0, false
}

// extractMaturity accepts dd/mm/yy(yy), dd-Mon-yy(yy), and similar date
// shapes, and applies the dd/mm vs mm/dd disambiguation rule: non-US-corporate
// issuers prefer dd/mm, US-corporate prefers mm/dd, when both slots are
// ambiguous (<=12); explicit month-name forms are unambiguous.
func extractMaturity(norm string, issuer bond.IssuerClass, now time.Time) (time.Time, bool) {
	if m := dateDashMonRe.FindStringSubmatch(norm); m != nil {
		day, err1 := strconv.Atoi(m[1])
		mon, ok := monthNames[strings.ToLower(m[2][:3])]
		year, err2 := parseYear(m[3], now)
		if err1 == nil && ok && err2 == nil {
			return time.Date(year, mon, day, 0, 0, 0, 0, time.UTC), true
		}
	}

	if m := dateSlashRe.FindStringSubmatch(norm); m != nil {
		a, err1 := strconv.Atoi(m[1])
		b2, err2 := strconv.Atoi(m[2])
		year, err3 := parseYear(m[3], now)
		if err1 != nil || err2 != nil || err3 != nil {
			return time.Time{}, false
		}

		day, month := a, b2
		preferDDMM := issuer != bond.Corporate
		if a <= 12 && b2 <= 12 {
			if preferDDMM {
				day, month = a, b2
			} else {
				day, month = b2, a
			}
		} else if a > 12 {
			// a must be the day.
			day, month = a, b2
		} else {
			// b2 must be the day.
			day, month = b2, a
		}

		if month < 1 || month > 12 || day < 1 || day > 31 {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

// parseYear maps a 2- or 4-digit year token to an absolute year.
// Two-digit years map to the nearest year within [now-30, now+70].
func parseYear(tok string, now time.Time) (int, error) {
	y, err := strconv.Atoi(tok)
	if err != nil {
		return 0, err
	}
	if len(tok) >= 4 {
		return y, nil
	}

	base := now.Year()
	century := (base / 100) * 100
	candidate := century + y

	lo, hi := base-30, base+70
	for candidate < lo {
		candidate += 100
	}
	for candidate > hi {
		candidate -= 100
	}
	return candidate, nil
}
