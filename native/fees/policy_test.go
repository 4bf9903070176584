package fees

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyMultiplyThenDivide(t *testing.T) {
	policy := Policy{RateBps: 500}
	require.Equal(t, int64(5), policy.Apply(big.NewInt(100)).Int64())
	require.Equal(t, int64(4), policy.Apply(big.NewInt(99)).Int64())
	require.Equal(t, int64(0), policy.Apply(big.NewInt(19)).Int64())
	require.Equal(t, int64(0), policy.Apply(big.NewInt(0)).Int64())
	require.Equal(t, int64(0), policy.Apply(nil).Int64())
}

func TestApplyZeroRate(t *testing.T) {
	policy := Policy{}
	require.Zero(t, policy.Apply(big.NewInt(1_000_000)).Sign())
}

func TestValidateRate(t *testing.T) {
	require.NoError(t, ValidateRate(0))
	require.NoError(t, ValidateRate(DefaultRateBps))
	require.NoError(t, ValidateRate(MaxRateBps))
	require.Error(t, ValidateRate(MaxRateBps+1))
}

func TestDefaultPolicy(t *testing.T) {
	destination := [20]byte{0xFE}
	policy := DefaultPolicy(destination)
	require.Equal(t, DefaultRateBps, policy.RateBps)
	require.Equal(t, destination, policy.Destination)
}
