package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/rsakit/internal/output"
	"github.com/user/rsakit/internal/textbook"
)

var (
	keygenBits int
	keygenJSON bool
	exponent   string
	modulus    string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a textbook RSA keypair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		kp, err := textbook.GenerateKeypair(ctx, entropy(ctx), keygenBits)
		if err != nil {
			return fmt.Errorf("key generation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if keygenJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"bits":        keygenBits,
				"public_key":  kp.Public,
				"private_key": kp.Private,
			})
		}

		fmt.Fprintf(out, "Public key (e, n):  (%s, %s)\n", kp.Public.E, kp.Public.N)
		fmt.Fprintf(out, "Private key (d, n): (%s, %s)\n", kp.Private.D, kp.Private.N)
		if verbose {
			fmt.Fprintf(out, "p:   %s\nq:   %s\nphi: %s\n", kp.P, kp.Q, kp.Phi)
			fmt.Fprintf(out, "Modulus: %d bits\n", kp.Bits())
		}
		return nil
	},
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt MESSAGE",
	Short: "Encrypt a message under a public key (e, n)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := parseInt("e", exponent)
		if err != nil {
			return err
		}
		n, err := parseInt("n", modulus)
		if err != nil {
			return err
		}
		pub := textbook.PublicKey{E: e, N: n}

		if err := textbook.CheckPlaintext(args[0], pub); err != nil {
			log.Printf("Warning: %v", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), output.JoinCiphertext(textbook.Encrypt(args[0], pub)))
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt CIPHERTEXT...",
	Short: "Decrypt space separated ciphertext integers under a private key (d, n)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := parseInt("d", exponent)
		if err != nil {
			return err
		}
		n, err := parseInt("n", modulus)
		if err != nil {
			return err
		}

		// Accept a single quoted argument holding the whole ciphertext too
		fields := strings.Fields(strings.Join(args, " "))
		ciphertext := make([]*big.Int, len(fields))
		for i, field := range fields {
			c, ok := new(big.Int).SetString(field, 10)
			if !ok || c.Sign() < 0 {
				return fmt.Errorf("invalid ciphertext value %q", field)
			}
			ciphertext[i] = c
		}

		message, err := textbook.Decrypt(ciphertext, textbook.PrivateKey{D: d, N: n})
		if err != nil {
			return fmt.Errorf("decryption failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), message)
		return nil
	},
}

func init() {
	keygenCmd.Flags().IntVarP(&keygenBits, "bits", "b", 1024, "Key bit-length")
	keygenCmd.Flags().BoolVar(&keygenJSON, "json", false, "Print the keypair as JSON")

	encryptCmd.Flags().StringVarP(&exponent, "e", "e", "", "Public exponent")
	encryptCmd.Flags().StringVarP(&modulus, "n", "n", "", "Modulus")
	encryptCmd.MarkFlagRequired("e")
	encryptCmd.MarkFlagRequired("n")

	decryptCmd.Flags().StringVarP(&exponent, "d", "d", "", "Private exponent")
	decryptCmd.Flags().StringVarP(&modulus, "n", "n", "", "Modulus")
	decryptCmd.MarkFlagRequired("d")
	decryptCmd.MarkFlagRequired("n")
}

func parseInt(name, value string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok || v.Sign() <= 0 {
		return nil, fmt.Errorf("--%s must be a positive decimal integer, got %q", name, value)
	}
	return v, nil
}
