package textbook

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInverse is returned by ModInverse when gcd(e, phi) != 1.
	ErrNoInverse = errors.New("textbook: no modular inverse exists")

	// ErrInvalidBitLength indicates a bit length too small to produce the requested value
	ErrInvalidBitLength = errors.New("textbook: invalid bit length")

	// ErrInvalidRounds indicates a non-positive Miller-Rabin round count
	ErrInvalidRounds = errors.New("textbook: invalid round count")

	// ErrModulusTooSmall indicates a plaintext code point >= n
	ErrModulusTooSmall = errors.New("textbook: modulus too small for plaintext")

	// ErrCodePointRange indicates a decrypted value outside the Unicode range
	ErrCodePointRange = errors.New("textbook: value is not a valid code point")
)

// Error records the operation that failed alongside the underlying error.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("textbook.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
