package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/user/rsakit/internal/textbook"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <bit-length> [message]\n", os.Args[0])
		os.Exit(1)
	}

	bits, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid bit-length: %v\n", err)
		os.Exit(1)
	}
	message := "test"
	if len(os.Args) > 2 {
		message = os.Args[2]
	}

	kp, err := textbook.GenerateKeypair(context.Background(), textbook.DefaultSource(), bits)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating keypair: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Requested: %d bits\n", bits)
	fmt.Printf("Modulus size: %d bits\n", kp.Bits())
	fmt.Printf("Public exponent: %s\n", kp.Public.E)

	fmt.Println("\nValidating mathematical properties...")
	ok := true

	// math/big's own test is independent of the Miller-Rabin used to find p and q
	for _, prime := range []struct {
		name string
		v    *big.Int
	}{{"p", kp.P}, {"q", kp.Q}} {
		ok = check(prime.v.ProbablyPrime(20), prime.name+" is prime") && ok
	}
	ok = check(kp.P.Cmp(kp.Q) != 0, "p ≠ q") && ok
	ok = check(new(big.Int).Mul(kp.P, kp.Q).Cmp(kp.Public.N) == 0, "n = p × q") && ok

	one := big.NewInt(1)
	phi := new(big.Int).Mul(new(big.Int).Sub(kp.P, one), new(big.Int).Sub(kp.Q, one))
	ok = check(phi.Cmp(kp.Phi) == 0, "phi = (p-1)(q-1)") && ok
	ok = check(new(big.Int).GCD(nil, nil, kp.Public.E, phi).Cmp(one) == 0, "gcd(e, phi) = 1") && ok

	ed := new(big.Int).Mul(kp.Public.E, kp.Private.D)
	ok = check(ed.Mod(ed, phi).Cmp(one) == 0, "e × d ≡ 1 (mod phi)") && ok
	ok = check(kp.Private.D.Sign() >= 0 && kp.Private.D.Cmp(phi) < 0, "0 ≤ d < phi") && ok

	fmt.Println("\nTesting encryption/decryption...")
	if err := textbook.CheckPlaintext(message, kp.Public); err != nil {
		fmt.Printf("- Skipped: %v\n", err)
	} else {
		plaintext, err := textbook.Decrypt(textbook.Encrypt(message, kp.Public), kp.Private)
		switch {
		case err != nil:
			ok = check(false, fmt.Sprintf("Decrypt error: %v", err)) && ok
		default:
			ok = check(plaintext == message, fmt.Sprintf("Round trip of %q", message)) && ok
		}
	}

	if !ok {
		fmt.Println("\nKey validation failed!")
		os.Exit(1)
	}
	fmt.Println("\nKey validation complete!")
}

func check(passed bool, what string) bool {
	if passed {
		fmt.Printf("✓ %s\n", what)
	} else {
		fmt.Printf("✗ %s\n", what)
	}
	return passed
}
