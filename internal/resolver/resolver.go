// Package resolver implements the Identifier Resolver: the
// deterministic, short-circuiting lookup hierarchy that turns an
// incoming identifier/description/overrides triple into a fully
// specified BondSpec. No file in the retrieval pack does multi-source
// resolution (gilts pricing takes a single CLI-supplied bond directly),
// so this package is new, in the idiom of an ordered list of store
// adapters rather than a chain of if/else.
package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillhorn/bondengine/internal/bond"
	"github.com/quillhorn/bondengine/internal/parser"
	"github.com/quillhorn/bondengine/internal/refstore"
)

// Source records which path resolved the bond; the confidence level is
// the separate Confidence type.
type Source string

const (
	SourceValidated Source = "validated"
	SourceParsed    Source = "parsed"
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ErrInsufficientInput is returned when neither identifier nor
// description is supplied.
var ErrInsufficientInput = errors.New("resolver: insufficient input: supply an identifier or a description")

// ErrAllStoresUnreachable is returned when the validated, primary, and
// secondary stores all failed to answer the lookup, the one fatal data-
// source condition this package defines. The facade maps it to a
// DataSourceError.
var ErrAllStoresUnreachable = errors.New("resolver: all reference stores unreachable")

// Overrides is the user-supplied override map from the request, a
// subset of BondSpec/Conventions fields.
type Overrides struct {
	Coupon      *float64
	Maturity    *time.Time
	DayCount    *string
	Frequency   *string
	BusinessDay *string
	Calendar    *string
}

// Request is the Resolver's input.
type Request struct {
	Identifier  string
	Description string
	Overrides   Overrides
	Now         time.Time // reference point for two-digit year disambiguation
}

// Result is the outcome of a resolution attempt.
type Result struct {
	Spec             bond.Spec
	Source           Source
	Confidence       Confidence
	OverridesApplied map[string]bool
	Unresolved       bool
	Reason           string
}

// Resolver holds the one shared, read-only Reference Store handle.
type Resolver struct {
	store *refstore.Store
	log   zerolog.Logger
}

func New(store *refstore.Store, log zerolog.Logger) *Resolver {
	return &Resolver{store: store, log: log}
}

// Resolve implements the four-step algorithm, then applies
// overrides field-by-field per the tie-break rule: validated > user
// override > parsed > stored, with coupon and maturity always
// overridable and day-count only overridable when source != validated.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Result, error) {
	if req.Identifier == "" && req.Description == "" {
		return Result{Unresolved: true, Reason: "no identifier or description supplied"}, ErrInsufficientInput
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var validatedErr, primaryErr, secondaryErr error

	// Step 1: validated store by identifier.
	if req.Identifier != "" {
		spec, _, ok, err := r.store.LookupByIdentifier(ctx, req.Identifier)
		if err != nil {
			validatedErr = err
			r.log.Warn().Err(err).Str("identifier", req.Identifier).Msg("validated store lookup failed")
		}
		if ok {
			r.log.Debug().Str("identifier", req.Identifier).Msg("resolved via validated store")
			applied := applyOverrides(&spec, req.Overrides, SourceValidated)
			return Result{Spec: spec, Source: SourceValidated, Confidence: ConfidenceHigh, OverridesApplied: applied}, nil
		}
	}

	// Step 2: description supplied -> parse.
	if req.Description != "" {
		parsed, err := parser.Parse(req.Description, now)
		if err == nil {
			spec := bond.Spec{
				ID:           bond.NewSpecID(req.Description),
				Issuer:       parsed.Issuer,
				IssuerName:   parsed.IssuerName,
				Coupon:       parsed.Coupon,
				Maturity:     parsed.Maturity,
				FaceValue:    100,
				Currency:     "USD",
				Conventions:  parsed.Conventions,
				Description:  req.Description,
				ISIN:         req.Identifier,
				IsUSTreasury: parsed.IsUSTreasury,
			}
			r.log.Debug().Str("description", req.Description).Msg("resolved via description parser")
			applied := applyOverrides(&spec, req.Overrides, SourceParsed)
			return Result{Spec: spec, Source: SourceParsed, Confidence: ConfidenceMedium, OverridesApplied: applied}, nil
		}
	}

	// Step 3: identifier present -> primary then secondary.
	if req.Identifier != "" {
		tier := refstore.Primary
		spec, ok, err := r.store.LookupPrimary(ctx, req.Identifier)
		primaryErr = err
		if err != nil {
			r.log.Warn().Err(err).Str("identifier", req.Identifier).Msg("primary store lookup failed")
		}
		if !ok {
			tier = refstore.Secondary
			spec, ok, err = r.store.LookupSecondary(ctx, req.Identifier)
			secondaryErr = err
			if err != nil {
				r.log.Warn().Err(err).Str("identifier", req.Identifier).Msg("secondary store lookup failed")
			}
		}
		if ok {
			// The parser refines conventions from the stored description
			// when one is available: a Treasury's ActualActual-Bond
			// day-count always wins regardless of lookup path, even if the
			// stored row itself carries a stale day-count.
			if desc, found := r.store.LookupDescriptionForIdentifier(ctx, req.Identifier); found {
				if parsed, perr := parser.Parse(desc, now); perr == nil {
					spec.Conventions = parsed.Conventions
					spec.IsUSTreasury = parsed.IsUSTreasury
				}
			}

			src := SourcePrimary
			if tier == refstore.Secondary {
				src = SourceSecondary
			}
			r.log.Debug().Str("identifier", req.Identifier).Str("tier", string(tier)).Msg("resolved via database fallback")
			applied := applyOverrides(&spec, req.Overrides, src)
			return Result{Spec: spec, Source: src, Confidence: ConfidenceLow, OverridesApplied: applied}, nil
		}
	}

	if refstore.AllUnreachable(validatedErr, primaryErr, secondaryErr) {
		return Result{Unresolved: true, Reason: "all reference stores unreachable"}, ErrAllStoresUnreachable
	}

	return Result{Unresolved: true, Reason: "identifier not found in any store and no parsable description"}, nil
}

// applyOverrides mutates a local copy's fields per the tie-break rule:
// coupon and maturity are always overridable; day-count, frequency,
// business-day convention, and calendar are only overridable when
// source != validated. It returns the set of field names actually
// changed.
func applyOverrides(spec *bond.Spec, ov Overrides, source Source) map[string]bool {
	applied := map[string]bool{}

	if ov.Coupon != nil && *ov.Coupon != spec.Coupon {
		spec.Coupon = *ov.Coupon
		applied["coupon"] = true
	}
	if ov.Maturity != nil && !ov.Maturity.Equal(spec.Maturity) {
		spec.Maturity = *ov.Maturity
		applied["maturity"] = true
	}

	if source != SourceValidated {
		if ov.DayCount != nil {
			if dc, err := parseDayCountOverride(*ov.DayCount); err == nil && dc != spec.Conventions.DayCount {
				spec.Conventions.DayCount = dc
				applied["day_count"] = true
			}
		}
		if ov.Frequency != nil {
			if f, err := parseFrequencyOverride(*ov.Frequency); err == nil && f != spec.Conventions.Frequency {
				spec.Conventions.Frequency = f
				applied["frequency"] = true
			}
		}
		if ov.BusinessDay != nil {
			if b, err := parseBusinessDayOverride(*ov.BusinessDay); err == nil && b != spec.Conventions.BusinessDay {
				spec.Conventions.BusinessDay = b
				applied["business_day"] = true
			}
		}
		if ov.Calendar != nil {
			if c, err := parseCalendarOverride(*ov.Calendar); err == nil && c != spec.Conventions.Calendar {
				spec.Conventions.Calendar = c
				applied["calendar"] = true
			}
		}
	}

	return applied
}
