// Package testdata ships small, self-contained SQLite fixtures for the
// three reference-store tiers so the Resolver and its tests don't
// depend on a live network or an external ETL pipeline. The ETL that
// populates the real reference databases is an external collaborator;
// seeding a handful of rows to exercise the read path is not that ETL.
package testdata

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS bonds (
	identifier      TEXT PRIMARY KEY,
	description     TEXT NOT NULL,
	coupon          REAL NOT NULL,
	maturity        TEXT NOT NULL,
	day_count       TEXT NOT NULL,
	frequency       TEXT NOT NULL,
	business_day    TEXT NOT NULL,
	calendar        TEXT NOT NULL,
	end_of_month    INTEGER NOT NULL,
	settlement_days INTEGER NOT NULL,
	issuer          TEXT NOT NULL,
	country         TEXT NOT NULL,
	currency        TEXT NOT NULL,
	authoritative   INTEGER NOT NULL
);`

// row is a single seed record; kept close to refstore.Row's shape so
// Seed doesn't need to import refstore (which would create an import
// cycle with refstore's own tests).
type row struct {
	identifier, description, dayCount, frequency, businessDay, calendar, issuer, country, currency string
	coupon                                                                                          float64
	maturity                                                                                        string
	eom                                                                                              bool
	settlementDays                                                                                   int
	authoritative                                                                                    bool
}

// ValidatedRows seeds a small, pre-verified set of US Treasuries,
// tagged authoritative.
var ValidatedRows = []row{
	{
		identifier: "US912810TM17", description: "T 3 15/08/52",
		coupon: 0.03, maturity: "2052-08-15",
		dayCount: "ActualActual-Bond", frequency: "Semiannual",
		businessDay: "Following", calendar: "US-Government",
		eom: true, settlementDays: 1,
		issuer: "sovereign-developed", country: "US", currency: "USD",
		authoritative: true,
	},
	{
		identifier: "US912828ZG87", description: "T 4.625 02/15/25",
		coupon: 0.04625, maturity: "2025-02-15",
		dayCount: "ActualActual-Bond", frequency: "Semiannual",
		businessDay: "Following", calendar: "US-Government",
		eom: true, settlementDays: 1,
		issuer: "sovereign-developed", country: "US", currency: "USD",
		authoritative: true,
	},
}

// PrimaryRows seeds a broader comprehensive reference set, enriched
// but not pre-verified.
var PrimaryRows = []row{
	{
		identifier: "US91282CJL54", description: "T 4.1 02/15/28",
		coupon: 0.041, maturity: "2028-02-15",
		dayCount: "Thirty360-BondBasis", frequency: "Semiannual",
		businessDay: "ModifiedFollowing", calendar: "US-NYSE",
		eom: false, settlementDays: 1,
		issuer: "sovereign-developed", country: "US", currency: "USD",
		authoritative: false,
	},
	{
		identifier: "US037833DY36", description: "AAPL 3.25 02/23/26",
		coupon: 0.0325, maturity: "2026-02-23",
		dayCount: "Thirty360-BondBasis", frequency: "Semiannual",
		businessDay: "ModifiedFollowing", calendar: "US-NYSE",
		eom: false, settlementDays: 2,
		issuer: "corporate", country: "US", currency: "USD",
		authoritative: false,
	},
}

// SecondaryRows seeds a Bloomberg-indexed-style set where only
// coupon+maturity are reliably populated.
var SecondaryRows = []row{
	{
		identifier: "US698299BL92", description: "PANAMA 3.87 23-Jul-2060",
		coupon: 0.0387, maturity: "2060-07-23",
		dayCount: "ActualActual-ISDA", frequency: "Semiannual",
		businessDay: "Following", calendar: "NullCalendar",
		eom: false, settlementDays: 2,
		issuer: "sovereign-emerging", country: "PANAMA", currency: "USD",
		authoritative: false,
	},
}

// Seed creates the schema and inserts rows into a sqlite DSN (a file
// path or ":memory:"), using database/sql directly so it has no
// dependency on the refstore package's sqlx wiring.
func Seed(dsn string, rows []row) error {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("testdata: opening %s: %w", dsn, err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("testdata: creating schema: %w", err)
	}

	stmt := `INSERT OR REPLACE INTO bonds
		(identifier, description, coupon, maturity, day_count, frequency,
		 business_day, calendar, end_of_month, settlement_days, issuer,
		 country, currency, authoritative)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, r := range rows {
		_, err := db.Exec(stmt,
			r.identifier, r.description, r.coupon, r.maturity, r.dayCount,
			r.frequency, r.businessDay, r.calendar, r.eom, r.settlementDays,
			r.issuer, r.country, r.currency, r.authoritative)
		if err != nil {
			return fmt.Errorf("testdata: inserting %s: %w", r.identifier, err)
		}
	}

	return nil
}
