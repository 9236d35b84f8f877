package textbook

import (
	"context"
	"fmt"
	"io"
	"math/big"
)

// MinKeypairBits is the smallest bit length GenerateKeypair accepts. Below it
// each prime has at most 2 bits, 3 is the only candidate, and p != q cannot hold.
const MinKeypairBits = 6

// PublicKey is the (e, n) half of a keypair.
type PublicKey struct {
	E *big.Int `json:"e"`
	N *big.Int `json:"n"`
}

// PrivateKey is the (d, n) half of a keypair.
type PrivateKey struct {
	D *big.Int `json:"d"`
	N *big.Int `json:"n"`
}

// Keypair holds both halves plus the values they were derived from.
// Nothing in this package mutates a Keypair after it is returned.
type Keypair struct {
	Public  PublicKey  `json:"public"`
	Private PrivateKey `json:"private"`
	P       *big.Int   `json:"p"`
	Q       *big.Int   `json:"q"`
	Phi     *big.Int   `json:"phi"`
}

// Bits returns the bit length of the shared modulus.
func (k *Keypair) Bits() int {
	return k.Public.N.BitLen()
}

// GenerateKeypair generates two distinct primes of bits/2 bits each and
// derives a keypair from them. An odd bits is truncated by the halving.
func GenerateKeypair(ctx context.Context, random io.Reader, bits int) (*Keypair, error) {
	if bits < MinKeypairBits {
		return nil, opError("GenerateKeypair", fmt.Errorf("%w: %d < %d", ErrInvalidBitLength, bits, MinKeypairBits))
	}

	primeBits := bits / 2

	p, err := GenerateLargePrime(ctx, random, primeBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate prime p: %w", err)
	}

	q, err := GenerateLargePrime(ctx, random, primeBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate prime q: %w", err)
	}
	for p.Cmp(q) == 0 {
		q, err = GenerateLargePrime(ctx, random, primeBits)
		if err != nil {
			return nil, fmt.Errorf("failed to regenerate prime q: %w", err)
		}
	}

	return DeriveKeypair(random, p, q)
}

// DeriveKeypair picks a random public exponent coprime to (p-1)(q-1) and
// builds the keypair. p and q must be distinct primes.
func DeriveKeypair(random io.Reader, p, q *big.Int) (*Keypair, error) {
	phi := totient(p, q)
	if phi.Cmp(three) < 0 {
		return nil, opError("DeriveKeypair", fmt.Errorf("%w: totient %s leaves no exponent range", ErrInvalidBitLength, phi))
	}

	phiMinus1 := new(big.Int).Sub(phi, one)
	for {
		e, err := randomRange(random, two, phiMinus1)
		if err != nil {
			return nil, opError("DeriveKeypair", err)
		}
		if gcd(e, phi).Cmp(one) == 0 {
			return newKeypair(p, q, phi, e)
		}
	}
}

// NewKeypair builds a keypair from known primes and public exponent.
func NewKeypair(p, q, e *big.Int) (*Keypair, error) {
	if p.Cmp(q) == 0 {
		return nil, opError("NewKeypair", fmt.Errorf("primes must be distinct, got p = q = %s", p))
	}
	return newKeypair(p, q, totient(p, q), e)
}

func newKeypair(p, q, phi, e *big.Int) (*Keypair, error) {
	d, err := ModInverse(e, phi)
	if err != nil {
		return nil, err
	}

	n := new(big.Int).Mul(p, q)
	return &Keypair{
		Public:  PublicKey{E: new(big.Int).Set(e), N: n},
		Private: PrivateKey{D: d, N: new(big.Int).Set(n)},
		P:       new(big.Int).Set(p),
		Q:       new(big.Int).Set(q),
		Phi:     phi,
	}, nil
}

func totient(p, q *big.Int) *big.Int {
	p1 := new(big.Int).Sub(p, one)
	q1 := new(big.Int).Sub(q, one)
	return p1.Mul(p1, q1)
}
