package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrent_FindsKnownRoot(t *testing.T) {
	// f(x) = x^2 - 2, root at sqrt(2).
	root, err := brent(func(x float64) float64 { return x*x - 2 }, 0, 2, 1e-10)
	require.NoError(t, err)
	assert.InDelta(t, 1.4142135623730951, root, 1e-8)
}

func TestBrent_Linear(t *testing.T) {
	root, err := brent(func(x float64) float64 { return 3*x - 9 }, -10, 10, 1e-12)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, root, 1e-9)
}

func TestBrent_WidensBracketWhenNotBracketed(t *testing.T) {
	// Root at x=50, well outside the initial [0, 1] bracket.
	root, err := brent(func(x float64) float64 { return x - 50 }, 0, 1, 1e-9)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, root, 1e-6)
}

func TestBrent_NoRootReturnsError(t *testing.T) {
	// f(x) = x^2 + 1 never crosses zero; widening cannot bracket it.
	_, err := brent(func(x float64) float64 { return x*x + 1 }, -1, 1, 1e-9)
	assert.Error(t, err)
}
