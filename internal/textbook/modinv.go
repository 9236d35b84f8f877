package textbook

import (
	"fmt"
	"math/big"
)

// egcd returns (g, x, y) with a*x + b*y = g = gcd(a, b).
func egcd(a, b *big.Int) (g, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, new(big.Int).Sub(oldR, tmp)

		tmp.Mul(q, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)

		tmp.Mul(q, t)
		oldT, t = t, new(big.Int).Sub(oldT, tmp)
	}

	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldS.Neg(oldS)
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT
}

// ModInverse returns d in [0, phi) with e*d ≡ 1 (mod phi).
// It fails with ErrNoInverse when gcd(e, phi) != 1.
func ModInverse(e, phi *big.Int) (*big.Int, error) {
	if phi.Sign() <= 0 {
		return nil, opError("ModInverse", fmt.Errorf("%w: modulus %s is not positive", ErrNoInverse, phi))
	}

	g, x, _ := egcd(e, phi)
	if g.Cmp(one) != 0 {
		return nil, opError("ModInverse", fmt.Errorf("%w: gcd(%s, %s) = %s", ErrNoInverse, e, phi, g))
	}

	// Mod is Euclidean, so the result is already in [0, phi)
	return x.Mod(x, phi), nil
}

// gcd is the plain Euclidean algorithm, kept separate from egcd.
func gcd(a, b *big.Int) *big.Int {
	x, y := new(big.Int).Abs(a), new(big.Int).Abs(b)
	for y.Sign() != 0 {
		x, y = y, x.Mod(x, y)
	}
	return x
}
