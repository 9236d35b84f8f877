// Package textbook implements RSA from first principles: Miller-Rabin
// primality testing, prime generation, extended-Euclid modular inverse,
// keypair derivation and per-code-point modular exponentiation.
//
// This is textbook RSA. There is no padding, no constant-time arithmetic
// and no key serialization; it is not suitable for protecting real data.
//
// Every function that consumes entropy takes an explicit io.Reader so
// callers can substitute NewSeededSource for reproducible output.
package textbook
