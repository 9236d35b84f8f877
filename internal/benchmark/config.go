package benchmark

import (
	"context"
	"io"
	"time"

	"github.com/user/rsakit/internal/textbook"
)

// DefaultProbe is the message every generated keypair is round-tripped with.
const DefaultProbe = "The quick brown fox jumps over the lazy dog"

type Config struct {
	Strategies   []string `json:"strategies"`
	KeySizes     []int    `json:"key_sizes"`
	Iterations   int      `json:"iterations"`
	Parallel     int      `json:"parallel"`
	Workers      int      `json:"workers"`
	ShowProgress bool     `json:"show_progress"`
	Timeout      int      `json:"timeout"`
	Verbose      bool     `json:"verbose"`
	Seed         int64    `json:"seed,omitempty"`
	Probe        string   `json:"probe,omitempty"`
}

type Result struct {
	Strategy          string        `json:"strategy"`
	KeySize           int           `json:"key_size"`
	Iterations        int           `json:"iterations"`
	Parallel          int           `json:"parallel"`
	Generated         int           `json:"generated"`
	TotalTime         time.Duration `json:"total_time"`
	AverageTime       time.Duration `json:"average_time"`
	MinTime           time.Duration `json:"min_time"`
	MaxTime           time.Duration `json:"max_time"`
	StdDev            time.Duration `json:"std_dev"`
	KeysPerSecond     float64       `json:"keys_per_second"`
	CPUUsage          float64       `json:"cpu_usage"`
	MemoryUsed        uint64        `json:"memory_used"`
	Errors            int           `json:"errors"`
	RoundTripFailures int           `json:"round_trip_failures"`
	CompletedAt       time.Time     `json:"completed_at"`
}

// Generator produces textbook keypairs for a benchmark strategy.
type Generator interface {
	Name() string
	Generate(ctx context.Context, random io.Reader, bits int) (*textbook.Keypair, error)
}

func (c Config) probe() string {
	if c.Probe == "" {
		return DefaultProbe
	}
	return c.Probe
}

// source returns the entropy source for one benchmark goroutine. Seeded
// sources are not safe for concurrent use, so each worker gets its own.
func (c Config) source(worker int) io.Reader {
	if c.Seed == 0 {
		return textbook.DefaultSource()
	}
	return textbook.NewSeededSource(c.Seed + int64(worker))
}

// withTimeout bounds ctx by Timeout seconds; zero or less means no limit.
func (c Config) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(c.Timeout)*time.Second)
}
