package benchmark

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/user/rsakit/internal/textbook"
)

type Runner struct {
	config Config
}

func NewRunner(config Config) *Runner {
	return &Runner{config: config}
}

func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	var results []Result

	for _, name := range r.config.Strategies {
		gen, err := getGenerator(name, r.config.Workers)
		if err != nil {
			return nil, err
		}

		for _, size := range r.config.KeySizes {
			if !isValidKeySize(size) {
				if r.config.Verbose {
					fmt.Printf("Skipping invalid key size %d for %s\n", size, name)
				}
				continue
			}

			result, err := r.runSingleBenchmark(ctx, gen, size)
			if err != nil {
				return nil, err
			}

			results = append(results, result)
		}
	}

	return results, nil
}

func (r *Runner) runSingleBenchmark(ctx context.Context, gen Generator, keySize int) (Result, error) {
	result := Result{
		Strategy:    gen.Name(),
		KeySize:     keySize,
		Iterations:  r.config.Iterations,
		Parallel:    r.config.Parallel,
		CompletedAt: time.Now(),
	}

	totalIterations := r.config.Iterations * r.config.Parallel
	var progress *progressbar.ProgressBar

	if r.config.ShowProgress {
		progress = progressbar.NewOptions(totalIterations,
			progressbar.OptionSetDescription(fmt.Sprintf("[%s-%d]", gen.Name(), keySize)),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)
	}

	initialCPU, _ := cpu.Percent(100*time.Millisecond, false)
	initialMem, _ := mem.VirtualMemory()

	ctx, cancel := r.config.withTimeout(ctx)
	defer cancel()

	var timings []time.Duration
	var errors, roundTripFailures int
	var mu sync.Mutex

	probe := r.config.probe()
	startTime := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < r.config.Parallel; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			random := r.config.source(worker)

			for j := 0; j < r.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				iterStart := time.Now()
				kp, err := gen.Generate(ctx, random, keySize)
				elapsed := time.Since(iterStart)

				ok := err == nil && roundTrip(kp, probe)

				mu.Lock()
				if err != nil {
					errors++
				} else {
					timings = append(timings, elapsed)
					if !ok {
						roundTripFailures++
					}
				}
				mu.Unlock()

				if progress != nil {
					progress.Add(1)
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

	finalCPU, _ := cpu.Percent(100*time.Millisecond, false)
	finalMem, _ := mem.VirtualMemory()

	if len(initialCPU) > 0 && len(finalCPU) > 0 {
		result.CPUUsage = finalCPU[0] - initialCPU[0]
	}

	if initialMem != nil && finalMem != nil && finalMem.Used > initialMem.Used {
		result.MemoryUsed = finalMem.Used - initialMem.Used
	}

	// Force garbage collection to get more accurate memory readings
	runtime.GC()

	return result, nil
}

// roundTrip encrypts and decrypts probe under kp. A modulus too small for
// the probe cannot round trip by construction and is not counted as a failure.
func roundTrip(kp *textbook.Keypair, probe string) bool {
	if err := textbook.CheckPlaintext(probe, kp.Public); err != nil {
		return true
	}
	text, err := textbook.Decrypt(textbook.Encrypt(probe, kp.Public), kp.Private)
	return err == nil && text == probe
}

func getGenerator(name string, workers int) (Generator, error) {
	switch name {
	case "sequential":
		return &SequentialGenerator{}, nil
	case "parallel":
		if workers < 1 {
			workers = runtime.NumCPU()
		}
		return NewParallelGenerator(workers), nil
	default:
		return nil, fmt.Errorf("unknown strategy: %s", name)
	}
}

func isValidKeySize(size int) bool {
	return size >= textbook.MinKeypairBits
}

func calculateAverage(timings []time.Duration) time.Duration {
	if len(timings) == 0 {
		return 0
	}

	var sum time.Duration
	for _, t := range timings {
		sum += t
	}
	return sum / time.Duration(len(timings))
}

func calculateMin(timings []time.Duration) time.Duration {
	if len(timings) == 0 {
		return 0
	}

	min := timings[0]
	for _, t := range timings[1:] {
		if t < min {
			min = t
		}
	}
	return min
}

func calculateMax(timings []time.Duration) time.Duration {
	if len(timings) == 0 {
		return 0
	}

	max := timings[0]
	for _, t := range timings[1:] {
		if t > max {
			max = t
		}
	}
	return max
}

func calculateStdDev(timings []time.Duration, avg time.Duration) time.Duration {
	if len(timings) <= 1 {
		return 0
	}

	var sum float64
	avgFloat := float64(avg)

	for _, t := range timings {
		diff := float64(t) - avgFloat
		sum += diff * diff
	}

	variance := sum / float64(len(timings)-1)
	return time.Duration(math.Sqrt(variance))
}
