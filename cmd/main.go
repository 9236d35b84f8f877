package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/user/rsakit/internal/textbook"
)

var (
	seed    int64
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rsakit",
	Short: "Textbook RSA key generation, encryption and benchmarking",
	Long: `rsakit generates textbook RSA keypairs from Miller-Rabin tested primes
and encrypts messages one code point at a time.

Run without a subcommand it starts an interactive session: it asks for a
key bit-length, generates a keypair, then encrypts and decrypts a message.

This is unpadded RSA for teaching and benchmarking. It is not secure.`,
	SilenceUsage: true,
	RunE:         runSession,
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Seed a deterministic entropy source (0 uses crypto/rand)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(sessionCmd, keygenCmd, encryptCmd, decryptCmd, benchCmd, serveCmd)
}

// entropy returns the source selected by --seed, bound to ctx.
func entropy(ctx context.Context) io.Reader {
	random := textbook.DefaultSource()
	if seed != 0 {
		random = textbook.NewSeededSource(seed)
	}
	return textbook.NewContextReader(ctx, random)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
