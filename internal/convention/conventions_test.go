package convention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUSTreasuryDefaults(t *testing.T) {
	c := USTreasuryDefaults()
	assert.Equal(t, ActualActualBond, c.DayCount)
	assert.Equal(t, Semiannual, c.Frequency)
	assert.Equal(t, Following, c.BusinessDay)
	assert.Equal(t, USGovernment, c.Calendar)
	assert.True(t, c.EndOfMonth)
	assert.Equal(t, 1, c.SettlementDays)
}

func TestCorporateDefaults(t *testing.T) {
	c := CorporateDefaults()
	assert.Equal(t, Thirty360Bond, c.DayCount)
	assert.Equal(t, Semiannual, c.Frequency)
	assert.Equal(t, ModifiedFollowing, c.BusinessDay)
	assert.False(t, c.EndOfMonth)
	assert.Equal(t, 2, c.SettlementDays)
}

func TestSovereignDefaults_FixedTable(t *testing.T) {
	germany := SovereignDefaults("GERMANY")
	assert.Equal(t, ActualActualISDA, germany.DayCount)
	assert.Equal(t, Annual, germany.Frequency)
	assert.Equal(t, TARGET, germany.Calendar)

	uk := SovereignDefaults("UK")
	assert.Equal(t, Semiannual, uk.Frequency)
	assert.Equal(t, UK, uk.Calendar)

	japan := SovereignDefaults("JAPAN")
	assert.Equal(t, ModifiedFollowing, japan.BusinessDay)
}

func TestSovereignDefaults_UnlistedCountryFallsBackConservatively(t *testing.T) {
	panama := SovereignDefaults("PANAMA")
	assert.Equal(t, ActualActualISDA, panama.DayCount)
	assert.Equal(t, Semiannual, panama.Frequency)
	assert.Equal(t, Following, panama.BusinessDay)
	assert.Equal(t, NullCalendar, panama.Calendar)
	assert.False(t, panama.EndOfMonth)
	assert.Equal(t, 2, panama.SettlementDays)
}
