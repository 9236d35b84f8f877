package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/rsakit/internal/output"
	"github.com/user/rsakit/internal/textbook"
)

var sessionFormat string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Interactively generate a keypair and round-trip a message",
	Args:  cobra.NoArgs,
	RunE:  runSession,
}

func init() {
	sessionCmd.Flags().StringVarP(&sessionFormat, "format", "f", "table", "Output format (table, json, csv)")
	rootCmd.Flags().StringVarP(&sessionFormat, "format", "f", "table", "Output format (table, json, csv)")
}

func runSession(cmd *cobra.Command, args []string) error {
	formatter, err := output.NewFormatter(sessionFormat)
	if err != nil {
		return fmt.Errorf("invalid output format: %w", err)
	}

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	line, err := prompt(in, out, "Enter key bit-length (e.g., 1024): ")
	if err != nil {
		return err
	}
	bits, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return fmt.Errorf("invalid bit-length %q", strings.TrimSpace(line))
	}

	fmt.Fprintln(out, "Generating RSA keys...")
	ctx := cmd.Context()
	kp, err := textbook.GenerateKeypair(ctx, entropy(ctx), bits)
	if err != nil {
		return fmt.Errorf("key generation failed: %w", err)
	}
	if verbose {
		log.Printf("Generated keypair: p=%s q=%s phi=%s", kp.P, kp.Q, kp.Phi)
	}

	message, err := prompt(in, out, "Enter message to encrypt: ")
	if err != nil {
		return err
	}

	session := &output.Session{
		Bits:      bits,
		Public:    kp.Public,
		Private:   kp.Private,
		Plaintext: message,
	}
	if err := textbook.CheckPlaintext(message, kp.Public); err != nil {
		log.Printf("Warning: %v", err)
		session.Warning = err.Error()
	}

	session.Ciphertext = textbook.Encrypt(message, kp.Public)
	session.Decrypted, err = textbook.Decrypt(session.Ciphertext, kp.Private)
	if err != nil {
		return fmt.Errorf("decryption failed: %w", err)
	}

	return formatter.Format(out, output.Data{Session: session})
}

// prompt writes label and reads one line without its line terminator. A
// final line without a newline is accepted.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", fmt.Errorf("unexpected end of input")
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
