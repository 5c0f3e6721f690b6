package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testWallet = "0:83dfd552e63729b472fcbcc8c45ebcc6691702558b68ec7527e1ba403a0f31a8"

func TestValidateWallet(t *testing.T) {
	require.NoError(t, ValidateWallet(testWallet))
	require.Error(t, ValidateWallet(""))
	require.Error(t, ValidateWallet("not-a-wallet"))
	require.Error(t, ValidateWallet("0:zzzz"))
}

func TestValidateWindow(t *testing.T) {
	require.NoError(t, ValidateWindow(1000, 5000))
	require.Error(t, ValidateWindow(5000, 5000))
	require.Error(t, ValidateWindow(5000, 1000))
}

func TestEffectiveRateNeverExceedsServerRate(t *testing.T) {
	// over-reporting clients are clamped to the server's own ceiling
	require.Equal(t, 0.5, EffectiveRate(99.0, 0.5))
	// under-reporting is taken at face value
	require.Equal(t, 0.2, EffectiveRate(0.2, 0.5))
	// negatives are treated as zero
	require.Equal(t, 0.0, EffectiveRate(-1.0, 0.5))
}

func TestCreditedPoints(t *testing.T) {
	require.Equal(t, int64(12), CreditedPoints(0.5, 24))
	require.Equal(t, int64(0), CreditedPoints(0, 30000))
	require.Equal(t, int64(0), CreditedPoints(-0.5, 30000))

	// floored, not rounded
	require.Equal(t, int64(12), CreditedPoints(0.25, 50))
}

func TestCensorWallet(t *testing.T) {
	censored := censorWallet(testWallet)
	require.NotEqual(t, testWallet, censored)
	require.Contains(t, censored, "...")
	require.Equal(t, "short", censorWallet("short"))
}
