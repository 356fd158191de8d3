package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhorn/bondengine/internal/bond"
	"github.com/quillhorn/bondengine/internal/convention"
)

var refNow = time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)

func TestParse_TreasuryLongBond(t *testing.T) {
	r, err := Parse("T 3 15/08/52", refNow)
	require.NoError(t, err)

	assert.Equal(t, bond.SovereignDeveloped, r.Issuer)
	assert.True(t, r.IsUSTreasury)
	assert.InDelta(t, 0.03, r.Coupon, 1e-9)
	assert.Equal(t, time.Date(2052, time.August, 15, 0, 0, 0, 0, time.UTC), r.Maturity)
	assert.Equal(t, convention.ActualActualBond, r.Conventions.DayCount)
}

func TestParse_EmergingSovereignDashMonth(t *testing.T) {
	r, err := Parse("PANAMA, 3.87%, 23-Jul-2060", refNow)
	require.NoError(t, err)

	assert.Equal(t, bond.SovereignEmerging, r.Issuer)
	assert.False(t, r.IsUSTreasury)
	assert.InDelta(t, 0.0387, r.Coupon, 1e-9)
	assert.Equal(t, time.Date(2060, time.July, 23, 0, 0, 0, 0, time.UTC), r.Maturity)
}

func TestParse_CorporateMMDD(t *testing.T) {
	r, err := Parse("AAPL 3.45 02/09/29", refNow)
	require.NoError(t, err)

	assert.Equal(t, bond.Corporate, r.Issuer)
	assert.InDelta(t, 0.0345, r.Coupon, 1e-9)
	// Corporate prefers mm/dd: month=02, day=09.
	assert.Equal(t, time.Date(2029, time.February, 9, 0, 0, 0, 0, time.UTC), r.Maturity)
}

func TestParse_NonCorporatePrefersDDMM(t *testing.T) {
	r, err := Parse("UK 4.25 07/09/35", refNow)
	require.NoError(t, err)
	// UK gilt prefers dd/mm: day=07, month=09.
	assert.Equal(t, time.Date(2035, time.September, 7, 0, 0, 0, 0, time.UTC), r.Maturity)
}

func TestParse_UnambiguousSlashDate(t *testing.T) {
	// a=25 > 12, so a must be the day regardless of issuer preference.
	r, err := Parse("AAPL 3.45 25/12/29", refNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2029, time.December, 25, 0, 0, 0, 0, time.UTC), r.Maturity)
}

func TestParse_Unparseable(t *testing.T) {
	_, err := Parse("   ", refNow)
	assert.ErrorIs(t, err, ErrUnparsed)

	_, err = Parse("SOMEBOND WITHOUT A COUPON OR DATE", refNow)
	assert.ErrorIs(t, err, ErrUnparsed)
}

func TestClassify_TreasuryAliases(t *testing.T) {
	cases := []string{"T 3 15/08/52", "UST 3 15/08/52", "TREASURY 3 15/08/52"}
	for _, desc := range cases {
		class, _, country, isTreasury := classify(normalize(desc))
		assert.Equal(t, bond.SovereignDeveloped, class)
		assert.True(t, isTreasury)
		assert.Equal(t, "US", country)
	}
}

func TestClassify_UnknownLeadTokenDefaultsCorporate(t *testing.T) {
	class, issuerName, country, isTreasury := classify(normalize("ACME CORP 5 01/01/30"))
	assert.Equal(t, bond.Corporate, class)
	assert.Equal(t, "ACME", issuerName)
	assert.Empty(t, country)
	assert.False(t, isTreasury)
}

func TestExtractCoupon_PercentForm(t *testing.T) {
	v, ok := extractCoupon(normalize("PANAMA 3.87% 23-JUL-2060"))
	require.True(t, ok)
	assert.InDelta(t, 0.0387, v, 1e-9)
}

func TestExtractCoupon_BareNumberBeforeDate(t *testing.T) {
	v, ok := extractCoupon(normalize("T 3 15/08/52"))
	require.True(t, ok)
	assert.InDelta(t, 0.03, v, 1e-9)
}

func TestExtractCoupon_Missing(t *testing.T) {
	_, ok := extractCoupon(normalize("T 15/08/52"))
	assert.False(t, ok)
}

func TestParseYear_TwoDigitWindow(t *testing.T) {
	// base year 2025: window is [1995, 2095].
	y, err := parseYear("52", refNow)
	require.NoError(t, err)
	assert.Equal(t, 2052, y)

	y, err = parseYear("96", refNow)
	require.NoError(t, err)
	assert.Equal(t, 1996, y)

	y, err = parseYear("2060", refNow)
	require.NoError(t, err)
	assert.Equal(t, 2060, y)
}
