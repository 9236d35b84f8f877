package benchmark

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/user/rsakit/internal/textbook"
)

// ParallelGenerator searches for p and q on several goroutines at once.
// Results are not reproducible even with a seeded source, because the
// order in which workers draw from it depends on scheduling.
type ParallelGenerator struct {
	workers int
}

func NewParallelGenerator(workers int) *ParallelGenerator {
	if workers < 1 {
		workers = 1
	}
	return &ParallelGenerator{workers: workers}
}

func (p *ParallelGenerator) Name() string {
	return "parallel"
}

func (p *ParallelGenerator) Generate(ctx context.Context, random io.Reader, bits int) (*textbook.Keypair, error) {
	if bits < textbook.MinKeypairBits {
		return nil, fmt.Errorf("%w: %d < %d", textbook.ErrInvalidBitLength, bits, textbook.MinKeypairBits)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shared := &lockedReader{reader: textbook.NewContextReader(ctx, random)}
	primeBits := bits / 2

	primes, err := p.findTwoPrimes(ctx, shared, primeBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate primes: %w", err)
	}

	pr, q := primes[0], primes[1]
	for pr.Cmp(q) == 0 {
		q, err = textbook.GenerateLargePrime(ctx, shared, primeBits)
		if err != nil {
			return nil, fmt.Errorf("failed to regenerate prime q: %w", err)
		}
	}

	return textbook.DeriveKeypair(shared, pr, q)
}

// findTwoPrimes runs p.workers prime searches and returns the first two
// results. It does not return until every search has stopped reading from
// random, so the caller may reuse the source afterwards.
func (p *ParallelGenerator) findTwoPrimes(ctx context.Context, random io.Reader, bits int) ([]*big.Int, error) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	// Reads fail once ctx is cancelled, so losing searches stop mid-candidate
	random = textbook.NewContextReader(ctx, random)

	primeChan := make(chan *big.Int, p.workers)
	errChan := make(chan error, 1)

	var found atomic.Int32

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for found.Load() < 2 {
				candidate, err := textbook.GenerateLargePrime(ctx, random, bits)
				if err != nil {
					select {
					case errChan <- err:
					default:
					}
					return
				}
				// primeChan holds p.workers values, so at most two sends never block
				if found.Add(1) <= 2 {
					primeChan <- candidate
				}
			}
		}()
	}

	var primes []*big.Int
	for len(primes) < 2 {
		select {
		case prime := <-primeChan:
			primes = append(primes, prime)
		case err := <-errChan:
			return nil, err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return primes, nil
}

// lockedReader serializes reads so one source can feed several workers.
type lockedReader struct {
	mu     sync.Mutex
	reader io.Reader
}

func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reader.Read(p)
}
