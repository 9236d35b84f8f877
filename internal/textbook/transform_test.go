package textbook

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func textbookKeypair(t *testing.T) *Keypair {
	t.Helper()
	kp, err := NewKeypair(big.NewInt(61), big.NewInt(53), big.NewInt(17))
	require.NoError(t, err)
	return kp
}

func TestTransformTextbookValues(t *testing.T) {
	kp := textbookKeypair(t)

	c := EncryptInt(big.NewInt(65), kp.Public)
	require.Equal(t, int64(2790), c.Int64())

	m := DecryptInt(big.NewInt(2790), kp.Private)
	require.Equal(t, int64(65), m.Int64())

	ciphertext := Encrypt("A", kp.Public)
	require.Len(t, ciphertext, 1)
	require.Equal(t, int64(2790), ciphertext[0].Int64())
}

func TestEncryptPreservesOrderAndDuplicates(t *testing.T) {
	kp := textbookKeypair(t)

	ciphertext := Encrypt("aa b", kp.Public)
	require.Len(t, ciphertext, 4)
	require.Zero(t, ciphertext[0].Cmp(ciphertext[1]))
	require.NotZero(t, ciphertext[0].Cmp(ciphertext[2]))

	text, err := Decrypt(ciphertext, kp.Private)
	require.NoError(t, err)
	require.Equal(t, "aa b", text)
}

func TestEmptyRoundTrip(t *testing.T) {
	kp := textbookKeypair(t)

	ciphertext := Encrypt("", kp.Public)
	require.Empty(t, ciphertext)

	text, err := Decrypt(ciphertext, kp.Private)
	require.NoError(t, err)
	require.Equal(t, "", text)
}

func TestRoundTripGeneratedKey(t *testing.T) {
	kp, err := GenerateKeypair(context.Background(), NewSeededSource(11), 512)
	require.NoError(t, err)

	messages := []string{
		"hello, world",
		"textbook RSA encrypts one code point at a time",
		"naïve café — 日本語 🙂",
		"\x00\t\n",
	}

	for _, msg := range messages {
		require.NoError(t, CheckPlaintext(msg, kp.Public))

		ciphertext := Encrypt(msg, kp.Public)
		require.Len(t, ciphertext, len([]rune(msg)))
		for _, c := range ciphertext {
			require.True(t, c.Sign() >= 0 && c.Cmp(kp.Public.N) < 0)
		}

		text, err := Decrypt(ciphertext, kp.Private)
		require.NoError(t, err)
		require.Equal(t, msg, text)
	}
}

func TestCheckPlaintextModulusTooSmall(t *testing.T) {
	kp := textbookKeypair(t)

	require.NoError(t, CheckPlaintext("plain ascii", kp.Public))

	// U+4E2D is 20013, well above n = 3233
	err := CheckPlaintext("ok 中", kp.Public)
	require.ErrorIs(t, err, ErrModulusTooSmall)

	// Encrypt still succeeds; the value just does not round trip
	ciphertext := Encrypt("中", kp.Public)
	text, err := Decrypt(ciphertext, kp.Private)
	require.NoError(t, err)
	require.NotEqual(t, "中", text)
}

func TestDecryptOutOfRange(t *testing.T) {
	kp, err := GenerateKeypair(context.Background(), NewSeededSource(4), 128)
	require.NoError(t, err)

	// d = 1 maps every value to itself
	identity := PrivateKey{D: big.NewInt(1), N: kp.Private.N}
	_, err = Decrypt([]*big.Int{big.NewInt(0x110000)}, identity)
	require.ErrorIs(t, err, ErrCodePointRange)
}
