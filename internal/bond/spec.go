// Package bond holds the fully resolved instrument type (BondSpec) that
// every downstream component consumes: schedule builder, pricing
// engine, portfolio aggregator, cash-flow projector. A BondSpec is a
// value type: once constructed it is never mutated in place, and is
// safe to share read-only across goroutines within a request.
package bond

import (
	"time"

	"github.com/google/uuid"

	"github.com/quillhorn/bondengine/internal/convention"
)

// IssuerClass is the closed enumeration of issuer categories the
// Description Parser and Resolver classify instruments into. It drives
// which convention defaults apply.
type IssuerClass string

const (
	SovereignDeveloped IssuerClass = "sovereign-developed"
	SovereignEmerging  IssuerClass = "sovereign-emerging"
	Corporate          IssuerClass = "corporate"
	Supranational      IssuerClass = "supranational"
	Agency             IssuerClass = "agency"
)

// specIDNamespace is a fixed UUID namespace (generated once, hardcoded)
// used to derive a stable, opaque BondSpec identifier from whatever
// string uniquely identifies the bond on the inbound request: an ISIN
// when present, otherwise the normalized description. Using UUIDv5
// means the same input always yields the same ID without a shared
// counter or database round-trip, the same way the gilts collector this
// is grounded on keys parquet rows by ISIN: identity is derived, not
// assigned.
var specIDNamespace = uuid.MustParse("6f1b1e2a-7c3d-4c2a-9e3f-2b6a8c9d0e11")

// NewSpecID derives the opaque BondSpec identifier from a natural key
// (ISIN if known, else the normalized description).
func NewSpecID(naturalKey string) string {
	return uuid.NewSHA1(specIDNamespace, []byte(naturalKey)).String()
}

// Spec is the fully resolved instrument.
type Spec struct {
	ID           string
	Issuer       IssuerClass
	IssuerName   string
	Coupon       float64 // decimal, annualized (e.g. 0.03 for 3%)
	Maturity     time.Time
	Issue        time.Time // optional; zero value means "unknown"
	FirstCoupon  time.Time // optional; zero value means "unknown"
	FaceValue    float64
	Currency     string
	Conventions  convention.Conventions
	ISIN         string
	Description  string
	IsUSTreasury bool // true for US Treasury issues; drives G-spread nullability
}

// HasIssue reports whether an explicit issue date is known.
func (s Spec) HasIssue() bool { return !s.Issue.IsZero() }

// HasFirstCoupon reports whether an explicit first-coupon date is known.
func (s Spec) HasFirstCoupon() bool { return !s.FirstCoupon.IsZero() }

// Validate checks the invariants placed on BondSpec: coupon >= 0, and
// issue <= first-coupon <= maturity when both present.
func (s Spec) Validate() error {
	if s.Coupon < 0 {
		return ErrNegativeCoupon
	}
	if s.FaceValue <= 0 {
		return ErrInvalidFaceValue
	}
	if s.Maturity.IsZero() {
		return ErrMissingMaturity
	}
	if s.HasIssue() && s.HasFirstCoupon() && s.Issue.After(s.FirstCoupon) {
		return ErrIssueAfterFirstCoupon
	}
	if s.HasFirstCoupon() && s.FirstCoupon.After(s.Maturity) {
		return ErrFirstCouponAfterMaturity
	}
	if s.HasIssue() && s.Issue.After(s.Maturity) {
		return ErrIssueAfterMaturity
	}
	return nil
}

// ZeroIssue is the zero time that stands for "issue date unknown". An
// unknown issue date must NEVER be synthesized as "maturity minus N
// years": such arithmetic has produced multi-year duration errors on
// long Treasuries. Instead the placeholder is the earliest schedule
// boundary the backward generation produces; this value exists only
// to give callers a name for "unknown" prior to schedule generation,
// not to compute the placeholder itself (the Schedule Builder owns
// that; see internal/schedule).
var ZeroIssue = time.Time{}
