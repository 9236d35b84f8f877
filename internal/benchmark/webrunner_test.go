package benchmark

import (
	"context"
	"testing"
	"time"

	"github.com/user/rsakit/internal/storage"
)

func TestWebRunnerKeyGeneration(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantKeys int
	}{
		{
			name: "sequential single iteration",
			config: Config{
				Strategies: []string{"sequential"},
				KeySizes:   []int{256},
				Iterations: 1,
				Parallel:   1,
				Timeout:    30,
			},
			wantKeys: 1,
		},
		{
			name: "both strategies with duplicate sizes",
			config: Config{
				Strategies: []string{"sequential", "parallel"},
				KeySizes:   []int{128, 128, 64},
				Iterations: 2,
				Parallel:   1,
				Workers:    2,
				Timeout:    30,
			},
			wantKeys: 8, // 2 strategies * 2 sizes * 2 iterations
		},
		{
			name: "parallel benchmark workers",
			config: Config{
				Strategies: []string{"sequential"},
				KeySizes:   []int{64},
				Iterations: 5,
				Parallel:   2,
				Timeout:    30,
				Seed:       3,
			},
			wantKeys: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyStore := storage.NewKeyStore()
			runner := NewWebRunner(tt.config, keyStore)

			results, err := runner.RunWithProgress(context.Background())
			if err != nil {
				t.Fatalf("RunWithProgress() error = %v", err)
			}

			if totalKeys := keyStore.Count(); totalKeys != tt.wantKeys {
				t.Errorf("Generated %d keys, want %d", totalKeys, tt.wantKeys)
			}

			for _, result := range results {
				expectedKeys := result.Iterations * result.Parallel
				if len(result.KeyIDs) != expectedKeys {
					t.Errorf("%s-%d: got %d key IDs, want %d",
						result.Strategy, result.KeySize, len(result.KeyIDs), expectedKeys)
				}
				if got := len(keyStore.GetKeysByBenchmark(result.BenchmarkID)); got != expectedKeys {
					t.Errorf("%s-%d: key store has %d keys for benchmark, want %d",
						result.Strategy, result.KeySize, got, expectedKeys)
				}
			}
		})
	}
}

func TestWebRunnerProgress(t *testing.T) {
	config := Config{
		Strategies: []string{"sequential"},
		KeySizes:   []int{64},
		Iterations: 10,
		Parallel:   1,
		Timeout:    30,
	}

	runner := NewWebRunner(config, storage.NewKeyStore())

	progressChan := make(chan ProgressUpdate, 100)
	runner.SetProgressChannel(progressChan)

	done := make(chan struct{})
	go func() {
		runner.RunWithProgress(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Benchmark timed out")
	}
	close(progressChan)

	progressCount := 0
	last := 0
	for update := range progressChan {
		progressCount++
		if update.Current > update.Total {
			t.Errorf("Current progress %d exceeds total %d", update.Current, update.Total)
		}
		if update.Percentage < 0 || update.Percentage > 100 {
			t.Errorf("Invalid percentage: %f", update.Percentage)
		}
		last = update.Current
	}

	if progressCount != 10 {
		t.Errorf("Expected 10 progress updates, got %d", progressCount)
	}
	if last != 10 {
		t.Errorf("Expected final progress 10, got %d", last)
	}
}
