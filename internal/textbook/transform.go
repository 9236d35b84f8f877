package textbook

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// EncryptInt returns m^e mod n.
func EncryptInt(m *big.Int, pub PublicKey) *big.Int {
	return new(big.Int).Exp(m, pub.E, pub.N)
}

// DecryptInt returns c^d mod n.
func DecryptInt(c *big.Int, priv PrivateKey) *big.Int {
	return new(big.Int).Exp(c, priv.D, priv.N)
}

// Encrypt maps every code point of plaintext to c^e mod n, in order.
//
// Code points >= n are reduced silently and will not decrypt back to the
// original character. Use CheckPlaintext to detect this ahead of time.
func Encrypt(plaintext string, pub PublicKey) []*big.Int {
	ciphertext := make([]*big.Int, 0, len(plaintext))
	m := new(big.Int)
	for _, r := range plaintext {
		m.SetInt64(int64(r))
		ciphertext = append(ciphertext, EncryptInt(m, pub))
	}
	return ciphertext
}

// Decrypt maps every value back to a code point and concatenates them.
func Decrypt(ciphertext []*big.Int, priv PrivateKey) (string, error) {
	var sb strings.Builder
	sb.Grow(len(ciphertext))
	for i, c := range ciphertext {
		v := DecryptInt(c, priv)
		if !v.IsInt64() || v.Int64() > unicode.MaxRune {
			return "", opError("Decrypt", fmt.Errorf("%w: position %d", ErrCodePointRange, i))
		}
		sb.WriteRune(rune(v.Int64()))
	}
	return sb.String(), nil
}

// CheckPlaintext reports ErrModulusTooSmall for the first code point >= n.
func CheckPlaintext(plaintext string, pub PublicKey) error {
	m := new(big.Int)
	for i, r := range []rune(plaintext) {
		m.SetInt64(int64(r))
		if m.Cmp(pub.N) >= 0 {
			return opError("CheckPlaintext", fmt.Errorf("%w: code point %U at position %d >= n (%s)", ErrModulusTooSmall, r, i, pub.N))
		}
	}
	return nil
}
