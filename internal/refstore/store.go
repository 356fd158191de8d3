// Package refstore implements the Reference Store: a three-link
// read-only chain (validated, primary, secondary) over SQLite-backed
// bond reference tables, queried through sqlx the way
// abdoElHodaky/tradSys wires jmoiron/sqlx over its Postgres stores.
// benritz-gilts never writes to a reference database; it only reads
// gilt prices from a scraped, transient in-memory list, so the schema
// and query shape here are new, but the open-once, query-repeatedly,
// single-row-read lifecycle follows that same read-only,
// bounded-point-lookup model.
package refstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sony/gobreaker"
	_ "modernc.org/sqlite"

	"github.com/quillhorn/bondengine/internal/bond"
	"github.com/quillhorn/bondengine/internal/convention"
)

// Tier identifies which of the three ordered sources answered a
// lookup's ResolutionResult source tag.
type Tier string

const (
	Validated Tier = "validated"
	Primary   Tier = "primary"
	Secondary Tier = "secondary"
)

// Row is the raw reference-store record's schema:
// {identifier, description, coupon, maturity, day_count, frequency,
// issuer, country, currency}. The validated store additionally flags
// convention fields as authoritative, which this type always carries
// (Authoritative is simply false for primary/secondary rows).
type Row struct {
	Identifier     string `db:"identifier"`
	Description    string `db:"description"`
	Coupon         float64 `db:"coupon"`
	Maturity       string `db:"maturity"` // YYYY-MM-DD
	DayCount       string `db:"day_count"`
	Frequency      string `db:"frequency"`
	BusinessDay    string `db:"business_day"`
	Calendar       string `db:"calendar"`
	EndOfMonth     bool   `db:"end_of_month"`
	SettlementDays int    `db:"settlement_days"`
	Issuer         string `db:"issuer"`
	Country        string `db:"country"`
	Currency       string `db:"currency"`
	Authoritative  bool   `db:"authoritative"`
}

// ToSpec converts a reference-store row into a (mostly) resolved
// BondSpec. Issue and first-coupon are left zero since the schema
// doesn't carry them, deferring to the Schedule Builder's backward
// generation.
func (r Row) ToSpec() (bond.Spec, error) {
	maturity, err := time.Parse("2006-01-02", r.Maturity)
	if err != nil {
		return bond.Spec{}, fmt.Errorf("refstore: invalid maturity %q: %w", r.Maturity, err)
	}

	dc, err := convention.ParseDayCount(r.DayCount)
	if err != nil {
		return bond.Spec{}, err
	}
	freq, err := convention.ParseFrequency(r.Frequency)
	if err != nil {
		return bond.Spec{}, err
	}
	bdc, err := convention.ParseBusinessDayConvention(r.BusinessDay)
	if err != nil {
		return bond.Spec{}, err
	}
	cal, err := convention.ParseCalendar(r.Calendar)
	if err != nil {
		return bond.Spec{}, err
	}

	issuer := bond.IssuerClass(r.Issuer)
	isTreasury := issuer == bond.SovereignDeveloped && r.Country == "US"

	return bond.Spec{
		ID:          bond.NewSpecID(r.Identifier),
		Issuer:      issuer,
		IssuerName:  r.Identifier,
		Coupon:      r.Coupon,
		Maturity:    maturity,
		FaceValue:   100,
		Currency:    r.Currency,
		ISIN:        r.Identifier,
		Description: r.Description,
		IsUSTreasury: isTreasury,
		Conventions: convention.Conventions{
			DayCount:       dc,
			Frequency:      freq,
			BusinessDay:    bdc,
			Calendar:       cal,
			EndOfMonth:     r.EndOfMonth,
			SettlementDays: r.SettlementDays,
		},
	}, nil
}

// source is one link in the chain: a SQLite database guarded by its own
// circuit breaker. Store unavailability is fatal only if all three are
// unreachable; the breaker lets one wedged store fail fast rather than
// blocking the chain on every request.
type source struct {
	tier    Tier
	db      *sqlx.DB
	breaker *gobreaker.CircuitBreaker
}

func newSource(tier Tier, driverDSN string) (*source, error) {
	db, err := sqlx.Open("sqlite", driverDSN)
	if err != nil {
		return nil, fmt.Errorf("refstore: opening %s store: %w", tier, err)
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        string(tier),
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &source{tier: tier, db: db, breaker: cb}, nil
}

func (s *source) lookup(ctx context.Context, identifier string) (Row, bool, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		var row Row
		err := s.db.GetContext(ctx, &row, queryByIdentifier, identifier)
		if err != nil {
			if err == sql.ErrNoRows {
				return Row{}, nil
			}
			return Row{}, err
		}
		return row, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return Row{}, false, fmt.Errorf("refstore: %s store circuit open: %w", s.tier, err)
		}
		return Row{}, false, err
	}

	row, ok := result.(Row)
	if !ok || row.Identifier == "" {
		return Row{}, false, nil
	}
	return row, true, nil
}

const queryByIdentifier = `
SELECT identifier, description, coupon, maturity, day_count, frequency,
       business_day, calendar, end_of_month, settlement_days, issuer,
       country, currency, authoritative
FROM bonds WHERE identifier = ? LIMIT 1`

// Store is the ordered three-tier reference-data chain: validated,
// primary, secondary.
type Store struct {
	validated *source
	primary   *source
	secondary *source
}

// Config names the SQLite DSNs for the three tiers. Each may point at
// a file or ":memory:"; fixtures for tests live under ./testdata.
type Config struct {
	ValidatedDSN string
	PrimaryDSN   string
	SecondaryDSN string
}

// Open opens all three stores. It does not fail if an individual store
// is empty; only open failures are returned, and the caller (Resolver)
// treats "all three unreachable" as the only fatal case.
func Open(cfg Config) (*Store, error) {
	v, err := newSource(Validated, cfg.ValidatedDSN)
	if err != nil {
		return nil, err
	}
	p, err := newSource(Primary, cfg.PrimaryDSN)
	if err != nil {
		return nil, err
	}
	s, err := newSource(Secondary, cfg.SecondaryDSN)
	if err != nil {
		return nil, err
	}
	return &Store{validated: v, primary: p, secondary: s}, nil
}

// LookupByIdentifier checks the validated store only, returning the
// resolved BondSpec and its source tag when found. Callers needing the
// fallback chain use LookupPrimarySecondary.
func (s *Store) LookupByIdentifier(ctx context.Context, id string) (bond.Spec, Tier, bool, error) {
	row, ok, err := s.validated.lookup(ctx, id)
	if err != nil {
		return bond.Spec{}, "", false, err
	}
	if !ok {
		return bond.Spec{}, "", false, nil
	}
	spec, err := row.ToSpec()
	if err != nil {
		return bond.Spec{}, "", false, err
	}
	return spec, Validated, true, nil
}

// LookupPrimary checks the primary store only.
func (s *Store) LookupPrimary(ctx context.Context, id string) (bond.Spec, bool, error) {
	return lookupTier(ctx, s.primary, id)
}

// LookupSecondary checks the secondary store only.
func (s *Store) LookupSecondary(ctx context.Context, id string) (bond.Spec, bool, error) {
	return lookupTier(ctx, s.secondary, id)
}

func lookupTier(ctx context.Context, src *source, id string) (bond.Spec, bool, error) {
	row, ok, err := src.lookup(ctx, id)
	if err != nil {
		return bond.Spec{}, false, err
	}
	if !ok {
		return bond.Spec{}, false, nil
	}
	spec, err := row.ToSpec()
	if err != nil {
		return bond.Spec{}, false, err
	}
	return spec, true, nil
}

// LookupPrimarySecondary checks primary then secondary, preferring
// primary when both have the identifier. It returns an error only when
// both tiers failed to answer (as opposed to a clean miss); callers
// that need the two tiers' errors individually (to distinguish which
// store is down) use LookupPrimary/LookupSecondary directly, as
// Resolver does for its all-stores-unreachable check.
func (s *Store) LookupPrimarySecondary(ctx context.Context, id string) (bond.Spec, Tier, bool, error) {
	spec, ok, primaryErr := s.LookupPrimary(ctx, id)
	if ok {
		return spec, Primary, true, nil
	}
	spec, ok, secondaryErr := s.LookupSecondary(ctx, id)
	if ok {
		return spec, Secondary, true, nil
	}
	if primaryErr != nil && secondaryErr != nil {
		return bond.Spec{}, "", false, fmt.Errorf("refstore: primary and secondary both unreachable: %w", secondaryErr)
	}
	return bond.Spec{}, "", false, nil
}

// LookupDescriptionForIdentifier implements the
// lookup_description_for_identifier, used by the Resolver when an
// identifier is supplied but no validated conventions exist.
func (s *Store) LookupDescriptionForIdentifier(ctx context.Context, id string) (string, bool) {
	for _, src := range []*source{s.primary, s.secondary} {
		if row, ok, err := src.lookup(ctx, id); err == nil && ok && row.Description != "" {
			return row.Description, true
		}
	}
	return "", false
}

// AllUnreachable reports whether every one of the three stores errored
// on the most recent lookup attempt, the only fatal condition this
// package defines. Callers pass the three errors they observed.
func AllUnreachable(validatedErr, primaryErr, secondaryErr error) bool {
	return validatedErr != nil && primaryErr != nil && secondaryErr != nil
}

// Close releases the underlying SQLite handles.
func (s *Store) Close() error {
	var firstErr error
	for _, src := range []*source{s.validated, s.primary, s.secondary} {
		if err := src.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
