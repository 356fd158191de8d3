package convention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	valid := []Frequency{Annual, Semiannual, Quarterly, Monthly, Zero}
	for _, f := range valid {
		parsed, err := ParseFrequency(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}

	_, err := ParseFrequency("fortnightly")
	assert.Error(t, err)
}

func TestPeriodsPerYear(t *testing.T) {
	cases := map[Frequency]int{
		Annual:     1,
		Semiannual: 2,
		Quarterly:  4,
		Monthly:    12,
		Zero:       1,
	}
	for f, want := range cases {
		assert.Equal(t, want, f.PeriodsPerYear(), "frequency %s", f)
	}
}

func TestPeriodMonths(t *testing.T) {
	cases := map[Frequency]int{
		Annual:     12,
		Semiannual: 6,
		Quarterly:  3,
		Monthly:    1,
		Zero:       0,
	}
	for f, want := range cases {
		assert.Equal(t, want, f.PeriodMonths(), "frequency %s", f)
	}
}
