package convention

// Conventions bundles the full set of market conventions governing a
// bond's schedule generation and pricing. The zero value is not
// meaningful; use USTreasuryDefaults, CorporateDefaults, or a sovereign
// table entry as a starting point and override individual fields.
type Conventions struct {
	DayCount       DayCount
	Frequency      Frequency
	BusinessDay    BusinessDayConvention
	Calendar       Calendar
	EndOfMonth     bool
	SettlementDays int
}

// USTreasuryDefaults returns the fixed US Treasury convention set:
// ActualActual-Bond, Semiannual, Following, US-Government, eom=true,
// settlement-days=1.
func USTreasuryDefaults() Conventions {
	return Conventions{
		DayCount:       ActualActualBond,
		Frequency:      Semiannual,
		BusinessDay:    Following,
		Calendar:       USGovernment,
		EndOfMonth:     true,
		SettlementDays: 1,
	}
}

// CorporateDefaults is applied to instruments the Description Parser
// classifies as corporate when no further data is available.
func CorporateDefaults() Conventions {
	return Conventions{
		DayCount:       Thirty360Bond,
		Frequency:      Semiannual,
		BusinessDay:    ModifiedFollowing,
		Calendar:       USNYSE,
		EndOfMonth:     false,
		SettlementDays: 2,
	}
}

// sovereignDefaults is the fixed small per-country table used by
// SovereignDefaults for non-US sovereign issuers.
var sovereignDefaults = map[string]Conventions{
	"GERMANY": {
		DayCount:       ActualActualISDA,
		Frequency:      Annual,
		BusinessDay:    Following,
		Calendar:       TARGET,
		EndOfMonth:     false,
		SettlementDays: 2,
	},
	"FRANCE": {
		DayCount:       ActualActualISDA,
		Frequency:      Annual,
		BusinessDay:    Following,
		Calendar:       TARGET,
		EndOfMonth:     false,
		SettlementDays: 2,
	},
	"UK": {
		DayCount:       ActualActualISDA,
		Frequency:      Semiannual,
		BusinessDay:    Following,
		Calendar:       UK,
		EndOfMonth:     false,
		SettlementDays: 1,
	},
	"JAPAN": {
		DayCount:       ActualActualISDA,
		Frequency:      Semiannual,
		BusinessDay:    ModifiedFollowing,
		Calendar:       NullCalendar,
		EndOfMonth:     false,
		SettlementDays: 2,
	},
}

// SovereignDefaults looks up the per-country convention table for a
// non-US sovereign issuer, falling back to a conservative
// Actual/Actual-ISDA, semiannual, Following, NullCalendar convention
// for countries outside the fixed table (e.g. Panama, most emerging
// markets). This mirrors how the gilts collector this package is
// grounded on treats any bond it doesn't specifically recognize:
// accept the data, default the mechanics conservatively.
func SovereignDefaults(country string) Conventions {
	if c, ok := sovereignDefaults[country]; ok {
		return c
	}
	return Conventions{
		DayCount:       ActualActualISDA,
		Frequency:      Semiannual,
		BusinessDay:    Following,
		Calendar:       NullCalendar,
		EndOfMonth:     false,
		SettlementDays: 2,
	}
}
