package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/rsakit/internal/benchmark"
	"github.com/user/rsakit/internal/output"
	"github.com/user/rsakit/pkg/sysinfo"
)

var (
	strategies   []string
	keySizes     []int
	iterations   int
	parallel     int
	workers      int
	outputFormat string
	outputFile   string
	showProgress bool
	timeout      int
	probe        string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark keypair generation",
	Long: `Benchmark textbook RSA keypair generation.

Every generated keypair is checked by encrypting and decrypting a probe
message. The "parallel" strategy searches for p and q on several goroutines.`,
	Args: cobra.NoArgs,
	RunE: runBenchmark,
}

func init() {
	benchCmd.Flags().StringSliceVarP(&strategies, "strategies", "s", []string{"sequential"}, "Generation strategies (sequential, parallel)")
	benchCmd.Flags().IntSliceVarP(&keySizes, "key-sizes", "k", []int{512, 1024}, "Key bit-lengths to test")
	benchCmd.Flags().IntVarP(&iterations, "iterations", "i", 10, "Number of iterations per test")
	benchCmd.Flags().IntVarP(&parallel, "parallel", "p", 1, "Number of concurrent benchmark goroutines")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "Prime search goroutines for the parallel strategy (0 uses all CPUs)")
	benchCmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "Output format (table, json, csv)")
	benchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	benchCmd.Flags().BoolVar(&showProgress, "progress", true, "Show progress bar")
	benchCmd.Flags().IntVarP(&timeout, "timeout", "t", 300, "Timeout in seconds per test (0 for none)")
	benchCmd.Flags().StringVar(&probe, "probe", benchmark.DefaultProbe, "Message used to round-trip every keypair")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	formatter, err := output.NewFormatter(outputFormat)
	if err != nil {
		return fmt.Errorf("invalid output format: %w", err)
	}

	sysInfo, err := sysinfo.Collect()
	if err != nil {
		return fmt.Errorf("failed to collect system info: %w", err)
	}

	if verbose {
		fmt.Println("rsakit - Textbook RSA Key Generation Benchmark")
		fmt.Println("==============================================")
		fmt.Println()
		fmt.Printf("System Information:\n")
		fmt.Printf("  OS: %s\n", sysInfo.OS)
		fmt.Printf("  Architecture: %s\n", sysInfo.Architecture)
		fmt.Printf("  CPU: %s (%d cores)\n", sysInfo.CPUModel, sysInfo.CPUCores)
		fmt.Printf("  Memory: %.2f GB\n", sysInfo.MemoryGB())
		fmt.Printf("  Go Version: %s\n", sysInfo.GoVersion)
		fmt.Println()
	}

	config := benchmark.Config{
		Strategies:   strategies,
		KeySizes:     keySizes,
		Iterations:   iterations,
		Parallel:     parallel,
		Workers:      workers,
		ShowProgress: showProgress,
		Timeout:      timeout,
		Verbose:      verbose,
		Seed:         seed,
		Probe:        probe,
	}

	results, err := benchmark.NewRunner(config).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	writer := os.Stdout
	if outputFile != "" {
		writer, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer writer.Close()
	}

	outputData := output.Data{
		SystemInfo: sysInfo,
		Results:    results,
		Config:     config,
	}
	if err := formatter.Format(writer, outputData); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	return nil
}
