package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateTokensBalancedSplit(t *testing.T) {
	// 300 + 700 points against a pool of 1000: no rounding loss
	awards, distributed := AllocateTokens(1000, map[string]int64{
		"wallet-a": 300,
		"wallet-b": 700,
	})

	require.Len(t, awards, 2)
	require.Equal(t, int64(1000), distributed)

	byWallet := map[string]int64{}
	for _, award := range awards {
		byWallet[award.Wallet] = award.Tokens
	}
	require.Equal(t, int64(300), byWallet["wallet-a"])
	require.Equal(t, int64(700), byWallet["wallet-b"])
}

func TestAllocateTokensFloorLoss(t *testing.T) {
	// 100+100+101=301 points against pool 10: floor(10*100/301)=3 each,
	// floor(10*101/301)=3, sum 9 < 10. Shortfall stays undistributed.
	awards, distributed := AllocateTokens(10, map[string]int64{
		"wallet-a": 100,
		"wallet-b": 100,
		"wallet-c": 101,
	})

	require.Equal(t, int64(9), distributed)
	for _, award := range awards {
		require.Equal(t, int64(3), award.Tokens)
	}
}

func TestAllocateTokensConservation(t *testing.T) {
	points := map[string]int64{
		"w1": 17, "w2": 923, "w3": 1, "w4": 400, "w5": 59, "w6": 3,
	}

	for _, pool := range []int64{0, 1, 7, 100, 999, 1_000_000} {
		awards, distributed := AllocateTokens(pool, points)
		require.LessOrEqual(t, distributed, pool)
		// floor loss is strictly below the wallet count
		require.Less(t, pool-distributed, int64(len(awards)))
	}
}

func TestAllocateTokensZeroTotal(t *testing.T) {
	awards, distributed := AllocateTokens(1000, map[string]int64{"wallet-a": 0})
	require.Equal(t, int64(0), distributed)
	require.Equal(t, int64(0), awards[0].Tokens)

	awards, distributed = AllocateTokens(1000, map[string]int64{})
	require.Empty(t, awards)
	require.Equal(t, int64(0), distributed)
}

func TestAllocateTokensNegativePointsGuard(t *testing.T) {
	// a wallet with corrupted (negative) points gets nothing and cannot
	// poison other shares beyond shrinking the grand total
	_, distributed := AllocateTokens(100, map[string]int64{
		"wallet-a": -50,
		"wallet-b": 100,
	})
	require.LessOrEqual(t, distributed, int64(100))
}

func TestAllocateTokensDeterministicOrder(t *testing.T) {
	points := map[string]int64{"b": 10, "a": 20, "c": 30}
	awards, _ := AllocateTokens(60, points)

	require.Equal(t, "a", awards[0].Wallet)
	require.Equal(t, "b", awards[1].Wallet)
	require.Equal(t, "c", awards[2].Wallet)
}
