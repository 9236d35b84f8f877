package main

import (
	"bytes"
	"strings"
	"testing"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSessionRoundTrip(t *testing.T) {
	out, err := execute(t, "128\nHello, world\n", "session", "--seed", "7")
	if err != nil {
		t.Fatalf("session failed: %v\n%s", err, out)
	}

	for _, want := range []string{
		"Enter key bit-length (e.g., 1024): Generating RSA keys...\n",
		"Enter message to encrypt: ",
		"Encrypted Message:",
		"Decrypted Message:\nHello, world\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSessionRejectsBadBitLength(t *testing.T) {
	if _, err := execute(t, "lots\n", "session"); err == nil {
		t.Error("expected an error for a non-numeric bit-length")
	}
	if _, err := execute(t, "4\n", "session"); err == nil {
		t.Error("expected an error for a bit-length below the minimum")
	}
}

func TestEncryptDecryptCommands(t *testing.T) {
	out, err := execute(t, "", "encrypt", "--e", "17", "--n", "3233", "AA")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if strings.TrimSpace(out) != "2790 2790" {
		t.Errorf("Expected ciphertext '2790 2790', got %q", out)
	}

	out, err = execute(t, "", "decrypt", "--d", "2753", "--n", "3233", "2790", "2790")
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if strings.TrimSpace(out) != "AA" {
		t.Errorf("Expected 'AA', got %q", out)
	}
}
