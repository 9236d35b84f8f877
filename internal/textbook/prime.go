package textbook

import (
	"context"
	"io"
	"math/big"
)

// DefaultRounds is the Miller-Rabin round count used by GenerateLargePrime.
// A composite survives all rounds with probability at most 4^-DefaultRounds.
const DefaultRounds = 5

var (
	zero  = big.NewInt(0)
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// IsPrime reports whether n is probably prime using rounds Miller-Rabin
// rounds with witnesses drawn from random. The error is non-nil only when
// rounds is invalid or random fails.
func IsPrime(n *big.Int, rounds int, random io.Reader) (bool, error) {
	if rounds < 1 {
		return false, opError("IsPrime", ErrInvalidRounds)
	}
	if n.Cmp(one) <= 0 {
		return false, nil
	}
	if n.Cmp(three) <= 0 {
		return true, nil
	}
	if n.Bit(0) == 0 {
		return false, nil
	}

	nMinus1 := new(big.Int).Sub(n, one)
	nMinus2 := new(big.Int).Sub(n, two)

	// n-1 = d * 2^r with d odd
	d := new(big.Int).Set(nMinus1)
	r := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		r++
	}

	x := new(big.Int)
	for i := 0; i < rounds; i++ {
		a, err := randomRange(random, two, nMinus2)
		if err != nil {
			return false, opError("IsPrime", err)
		}

		x.Exp(a, d, n)
		if x.Cmp(one) == 0 || x.Cmp(nMinus1) == 0 {
			continue
		}

		witnessed := true
		for j := 0; j < r-1; j++ {
			x.Exp(x, two, n)
			if x.Cmp(nMinus1) == 0 {
				witnessed = false
				break
			}
		}
		if witnessed {
			return false, nil
		}
	}

	return true, nil
}

// GenerateLargePrime samples bits-bit random values until one is probably prime.
//
// The most significant bit of the sample is not forced to 1, so the result
// may have fewer than bits significant bits. Even samples are bumped by one.
func GenerateLargePrime(ctx context.Context, random io.Reader, bits int) (*big.Int, error) {
	if bits < 2 {
		return nil, opError("GenerateLargePrime", ErrInvalidBitLength)
	}

	for {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		candidate, err := randomBits(random, bits)
		if err != nil {
			return nil, opError("GenerateLargePrime", err)
		}
		if candidate.Bit(0) == 0 {
			candidate.Add(candidate, one)
		}

		prime, err := IsPrime(candidate, DefaultRounds, random)
		if err != nil {
			return nil, err
		}
		if prime {
			return candidate, nil
		}
	}
}
