package textbook

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireKeypairInvariants(t *testing.T, kp *Keypair) {
	t.Helper()

	require.True(t, kp.P.ProbablyPrime(20), "p = %s is not prime", kp.P)
	require.True(t, kp.Q.ProbablyPrime(20), "q = %s is not prime", kp.Q)
	require.NotZero(t, kp.P.Cmp(kp.Q), "p == q")

	n := new(big.Int).Mul(kp.P, kp.Q)
	require.Zero(t, n.Cmp(kp.Public.N))
	require.Zero(t, kp.Public.N.Cmp(kp.Private.N))

	phi := new(big.Int).Mul(new(big.Int).Sub(kp.P, one), new(big.Int).Sub(kp.Q, one))
	require.Zero(t, phi.Cmp(kp.Phi))

	require.Equal(t, int64(1), new(big.Int).GCD(nil, nil, kp.Public.E, phi).Int64())

	ed := new(big.Int).Mul(kp.Public.E, kp.Private.D)
	require.Equal(t, int64(1), ed.Mod(ed, phi).Int64())

	require.True(t, kp.Public.E.Cmp(two) >= 0 && kp.Public.E.Cmp(phi) < 0, "e out of range")
}

func TestGenerateKeypairInvariants(t *testing.T) {
	random := NewSeededSource(2024)

	for _, bits := range []int{6, 7, 16, 64, 128, 512} {
		kp, err := GenerateKeypair(context.Background(), random, bits)
		require.NoError(t, err, "bits %d", bits)
		requireKeypairInvariants(t, kp)
		require.LessOrEqual(t, kp.P.BitLen(), bits/2)
		require.LessOrEqual(t, kp.Q.BitLen(), bits/2)
		require.LessOrEqual(t, kp.Bits(), bits)
	}
}

func TestGenerateKeypairManySmallSeeds(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		kp, err := GenerateKeypair(context.Background(), NewSeededSource(seed), 20)
		require.NoError(t, err, "seed %d", seed)
		requireKeypairInvariants(t, kp)
	}
}

func TestGenerateKeypairOddBitsTruncates(t *testing.T) {
	kp, err := GenerateKeypair(context.Background(), NewSeededSource(9), 65)
	require.NoError(t, err)
	require.LessOrEqual(t, kp.P.BitLen(), 32)
	require.LessOrEqual(t, kp.Q.BitLen(), 32)
	require.LessOrEqual(t, kp.Bits(), 64)
}

func TestGenerateKeypairRejectsTinyBitLength(t *testing.T) {
	for _, bits := range []int{-1, 0, 2, 5} {
		_, err := GenerateKeypair(context.Background(), NewSeededSource(1), bits)
		require.ErrorIs(t, err, ErrInvalidBitLength, "bits %d", bits)
	}
}

func TestGenerateKeypairDeterministic(t *testing.T) {
	a, err := GenerateKeypair(context.Background(), NewSeededSource(5), 256)
	require.NoError(t, err)
	b, err := GenerateKeypair(context.Background(), NewSeededSource(5), 256)
	require.NoError(t, err)

	require.Zero(t, a.Public.N.Cmp(b.Public.N))
	require.Zero(t, a.Public.E.Cmp(b.Public.E))
	require.Zero(t, a.Private.D.Cmp(b.Private.D))
}

func TestNewKeypairTextbook(t *testing.T) {
	kp, err := NewKeypair(big.NewInt(61), big.NewInt(53), big.NewInt(17))
	require.NoError(t, err)

	require.Equal(t, int64(3233), kp.Public.N.Int64())
	require.Equal(t, int64(3120), kp.Phi.Int64())
	require.Equal(t, int64(17), kp.Public.E.Int64())
	require.Equal(t, int64(2753), kp.Private.D.Int64())
}

func TestNewKeypairErrors(t *testing.T) {
	_, err := NewKeypair(big.NewInt(61), big.NewInt(61), big.NewInt(17))
	require.Error(t, err)

	// gcd(15, 3120) = 15
	_, err = NewKeypair(big.NewInt(61), big.NewInt(53), big.NewInt(15))
	require.ErrorIs(t, err, ErrNoInverse)
}

func TestDeriveKeypair(t *testing.T) {
	kp, err := DeriveKeypair(NewSeededSource(3), big.NewInt(61), big.NewInt(53))
	require.NoError(t, err)
	requireKeypairInvariants(t, kp)
}
