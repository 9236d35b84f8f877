package textbook

import (
	"context"
	"crypto/rand"
	"io"
	"math/big"
	mrand "math/rand"
)

// DefaultSource returns the process-wide cryptographic random source.
func DefaultSource() io.Reader {
	return rand.Reader
}

// NewSeededSource returns a deterministic source for reproducible runs.
// It must not be used for real keys and is not safe for concurrent use.
func NewSeededSource(seed int64) io.Reader {
	return mrand.New(mrand.NewSource(seed))
}

// ContextReader wraps a reader with context cancellation checks
type ContextReader struct {
	ctx    context.Context
	reader io.Reader
}

// NewContextReader returns a reader that fails with ctx.Err() once ctx is done.
func NewContextReader(ctx context.Context, reader io.Reader) *ContextReader {
	return &ContextReader{ctx: ctx, reader: reader}
}

func (cr *ContextReader) Read(p []byte) (n int, err error) {
	if cr.ctx != nil {
		select {
		case <-cr.ctx.Done():
			return 0, cr.ctx.Err()
		default:
		}
	}

	// Read in smaller chunks to allow more frequent cancellation checks
	chunkSize := 1024
	if len(p) <= chunkSize {
		return cr.reader.Read(p)
	}

	totalRead := 0
	for totalRead < len(p) {
		if cr.ctx != nil {
			select {
			case <-cr.ctx.Done():
				return totalRead, cr.ctx.Err()
			default:
			}
		}

		remaining := len(p) - totalRead
		if remaining > chunkSize {
			remaining = chunkSize
		}

		n, err := cr.reader.Read(p[totalRead : totalRead+remaining])
		totalRead += n
		if err != nil {
			return totalRead, err
		}
	}

	return totalRead, nil
}

// randomBits returns a uniform value in [0, 2^bits). The top bit is not forced.
func randomBits(random io.Reader, bits int) (*big.Int, error) {
	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(random, buf); err != nil {
		return nil, err
	}
	if excess := len(buf)*8 - bits; excess > 0 {
		buf[0] &= byte(0xff >> excess)
	}
	return new(big.Int).SetBytes(buf), nil
}

// randomRange returns a uniform value in the closed interval [lo, hi].
func randomRange(random io.Reader, lo, hi *big.Int) (*big.Int, error) {
	span := new(big.Int).Sub(hi, lo)
	span.Add(span, one)
	v, err := rand.Int(random, span)
	if err != nil {
		return nil, err
	}
	return v.Add(v, lo), nil
}
