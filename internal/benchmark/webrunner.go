package benchmark

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/rsakit/internal/storage"
)

// WebRunner runs benchmarks for the HTTP server. Every generated keypair is
// kept in the key store so it can be used for encryption afterwards.
type WebRunner struct {
	config       Config
	keyStore     *storage.KeyStore
	progressChan chan<- ProgressUpdate
}

type WebResult struct {
	Result
	BenchmarkID string   `json:"benchmark_id"`
	KeyIDs      []string `json:"key_ids"`
}

type ProgressUpdate struct {
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Rate       float64 `json:"rate"`
	Strategy   string  `json:"strategy"`
	KeySize    int     `json:"key_size"`
}

func NewWebRunner(config Config, keyStore *storage.KeyStore) *WebRunner {
	return &WebRunner{
		config:   config,
		keyStore: keyStore,
	}
}

// SetProgressChannel sets where progress updates go. Sends never block;
// updates are dropped when the channel is full.
func (w *WebRunner) SetProgressChannel(ch chan<- ProgressUpdate) {
	w.progressChan = ch
}

func (w *WebRunner) RunWithProgress(ctx context.Context) ([]WebResult, error) {
	var results []WebResult
	processedCombos := make(map[string]bool)

	log.Printf("WebRunner: starting with strategies %v, key sizes %v, iterations %d, parallel %d",
		w.config.Strategies, w.config.KeySizes, w.config.Iterations, w.config.Parallel)

	for _, name := range w.config.Strategies {
		gen, err := getGenerator(name, w.config.Workers)
		if err != nil {
			return nil, err
		}

		for _, size := range w.config.KeySizes {
			if !isValidKeySize(size) {
				log.Printf("WebRunner: skipping invalid key size %d for %s", size, name)
				continue
			}

			comboKey := fmt.Sprintf("%s-%d", name, size)
			if processedCombos[comboKey] {
				continue
			}
			processedCombos[comboKey] = true

			result, err := w.runSingleBenchmarkWithKeys(ctx, gen, size)
			if err != nil {
				return nil, err
			}
			results = append(results, result)

			if ctx.Err() != nil {
				return results, ctx.Err()
			}
		}
	}

	return results, nil
}

func (w *WebRunner) runSingleBenchmarkWithKeys(ctx context.Context, gen Generator, keySize int) (WebResult, error) {
	benchmarkID := uuid.New().String()

	result := WebResult{
		Result: Result{
			Strategy:    gen.Name(),
			KeySize:     keySize,
			Iterations:  w.config.Iterations,
			Parallel:    w.config.Parallel,
			CompletedAt: time.Now(),
		},
		BenchmarkID: benchmarkID,
		KeyIDs:      make([]string, 0),
	}

	totalIterations := w.config.Iterations * w.config.Parallel

	ctx, cancel := w.config.withTimeout(ctx)
	defer cancel()

	var timings []time.Duration
	var errors, roundTripFailures, completed int
	var mu sync.Mutex

	probe := w.config.probe()
	startTime := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < w.config.Parallel; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			random := w.config.source(worker)

			for j := 0; j < w.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				iterStart := time.Now()
				kp, err := gen.Generate(ctx, random, keySize)
				elapsed := time.Since(iterStart)

				var keyID string
				if err == nil {
					keyID = w.keyStore.Store(kp, keySize, benchmarkID).ID
				}
				ok := err == nil && roundTrip(kp, probe)

				mu.Lock()
				if err != nil {
					errors++
				} else {
					timings = append(timings, elapsed)
					result.KeyIDs = append(result.KeyIDs, keyID)
					if !ok {
						roundTripFailures++
					}
				}
				completed++

				update := ProgressUpdate{
					Current:    completed,
					Total:      totalIterations,
					Percentage: float64(completed) / float64(totalIterations) * 100,
					Rate:       float64(completed) / time.Since(startTime).Seconds(),
					Strategy:   gen.Name(),
					KeySize:    keySize,
				}
				mu.Unlock()

				if w.progressChan != nil {
					select {
					case w.progressChan <- update:
					default:
					}
				}
			}
		}(i)
	}

	wg.Wait()

	result.TotalTime = time.Since(startTime)
	result.Errors = errors
	result.RoundTripFailures = roundTripFailures
	result.Generated = len(timings)

	if len(timings) > 0 {
		result.AverageTime = calculateAverage(timings)
		result.MinTime = calculateMin(timings)
		result.MaxTime = calculateMax(timings)
		result.StdDev = calculateStdDev(timings, result.AverageTime)
		result.KeysPerSecond = float64(len(timings)) / result.TotalTime.Seconds()
	}

	log.Printf("WebRunner: %s-%d completed, %d keys stored, %d errors",
		gen.Name(), keySize, len(result.KeyIDs), result.Errors)

	return result, nil
}
