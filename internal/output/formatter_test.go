package output

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/user/rsakit/internal/benchmark"
	"github.com/user/rsakit/internal/textbook"
	"github.com/user/rsakit/pkg/sysinfo"
)

func testData() Data {
	return Data{
		SystemInfo: &sysinfo.SystemInfo{
			OS:           "linux",
			Architecture: "amd64",
			CPUModel:     "Test CPU",
			CPUCores:     8,
			TotalMemory:  16000000000,
		},
		Results: []benchmark.Result{
			{
				Strategy:      "sequential",
				KeySize:       2048,
				Iterations:    10,
				Parallel:      1,
				Generated:     10,
				TotalTime:     5 * time.Second,
				AverageTime:   500 * time.Millisecond,
				MinTime:       400 * time.Millisecond,
				MaxTime:       600 * time.Millisecond,
				KeysPerSecond: 2.0,
				CPUUsage:      50.5,
				MemoryUsed:    1048576,
				CompletedAt:   time.Now(),
			},
		},
		Config: benchmark.Config{
			Strategies: []string{"sequential"},
			KeySizes:   []int{2048},
			Iterations: 10,
			Parallel:   1,
		},
	}
}

func testSession(t *testing.T) *Session {
	t.Helper()
	kp, err := textbook.NewKeypair(big.NewInt(61), big.NewInt(53), big.NewInt(17))
	if err != nil {
		t.Fatalf("Failed to build keypair: %v", err)
	}
	ciphertext := textbook.Encrypt("AB", kp.Public)
	return &Session{
		Bits:       12,
		Public:     kp.Public,
		Private:    kp.Private,
		Plaintext:  "AB",
		Ciphertext: ciphertext,
		Decrypted:  "AB",
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format    string
		expectErr bool
	}{
		{"table", false},
		{"json", false},
		{"csv", false},
		{"xml", true},
		{"invalid", true},
	}

	for _, test := range tests {
		_, err := NewFormatter(test.format)
		if test.expectErr && err == nil {
			t.Errorf("Expected error for format %s", test.format)
		}
		if !test.expectErr && err != nil {
			t.Errorf("Unexpected error for format %s: %v", test.format, err)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&JSONFormatter{}).Format(buf, testData()); err != nil {
		t.Fatalf("JSON formatting failed: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}

	for _, field := range []string{"system_info", "results", "summary"} {
		if _, ok := result[field]; !ok {
			t.Errorf("Missing %s in JSON output", field)
		}
	}
	if _, ok := result["session"]; ok {
		t.Error("Unexpected session in benchmark-only output")
	}
}

func TestJSONFormatterSession(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&JSONFormatter{}).Format(buf, Data{Session: testSession(t)}); err != nil {
		t.Fatalf("JSON formatting failed: %v", err)
	}

	var result struct {
		Session struct {
			PublicKey  struct{ E, N *big.Int } `json:"public_key"`
			Ciphertext []*big.Int              `json:"ciphertext"`
			Decrypted  string                  `json:"decrypted"`
		} `json:"session"`
		Summary any `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}

	if result.Session.PublicKey.N.Int64() != 3233 {
		t.Errorf("Expected n 3233, got %v", result.Session.PublicKey.N)
	}
	if len(result.Session.Ciphertext) != 2 || result.Session.Ciphertext[0].Int64() != 2790 {
		t.Errorf("Unexpected ciphertext %v", result.Session.Ciphertext)
	}
	if result.Summary != nil {
		t.Error("Unexpected summary in session-only output")
	}
}

func TestCSVFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&CSVFormatter{}).Format(buf, testData()); err != nil {
		t.Fatalf("CSV formatting failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header and one data row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "Strategy") || !strings.Contains(lines[0], "KeySize") {
		t.Errorf("CSV header missing fields: %s", lines[0])
	}
	if !strings.Contains(lines[1], "sequential") {
		t.Errorf("CSV row missing strategy: %s", lines[1])
	}
}

func TestCSVFormatterSession(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&CSVFormatter{}).Format(buf, Data{Session: testSession(t)}); err != nil {
		t.Fatalf("CSV formatting failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and two rows, got %d lines", len(lines))
	}
	if lines[1] != "0,A,65,2790,17,2753,3233" {
		t.Errorf("Unexpected first row: %s", lines[1])
	}
}

func TestTableFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TableFormatter{}).Format(buf, testData()); err != nil {
		t.Fatalf("Table formatting failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"Benchmark Results", "sequential", "2048", "Summary", "Test CPU"} {
		if !strings.Contains(output, want) {
			t.Errorf("Table output missing %q", want)
		}
	}
}

func TestTableFormatterSession(t *testing.T) {
	session := testSession(t)
	session.Warning = "modulus too small"

	buf := &bytes.Buffer{}
	if err := (&TableFormatter{}).Format(buf, Data{Session: session}); err != nil {
		t.Fatalf("Table formatting failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"3233", "2753", "Encrypted Message:", JoinCiphertext(session.Ciphertext), "Decrypted Message:", "Warning: modulus too small"} {
		if !strings.Contains(output, want) {
			t.Errorf("Table output missing %q", want)
		}
	}
	if strings.Contains(output, "Benchmark Results") {
		t.Error("Unexpected benchmark section in session output")
	}
}

func TestJoinCiphertext(t *testing.T) {
	got := JoinCiphertext([]*big.Int{big.NewInt(1), big.NewInt(22), big.NewInt(333)})
	if got != "1 22 333" {
		t.Errorf("Expected \"1 22 333\", got %q", got)
	}
	if JoinCiphertext(nil) != "" {
		t.Error("Expected empty string for empty ciphertext")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{500 * time.Nanosecond, "0.50µs"},
		{1500 * time.Microsecond, "1.50ms"},
		{2500 * time.Millisecond, "2.50s"},
		{150 * time.Second, "2.50m"},
	}

	for _, test := range tests {
		if result := formatDuration(test.duration); result != test.expected {
			t.Errorf("For duration %v, expected %s, got %s", test.duration, test.expected, result)
		}
	}
}

func TestSummarizeCountsGeneratedKeys(t *testing.T) {
	results := []benchmark.Result{
		// Timed out after 3 of 8 iterations
		{Iterations: 4, Parallel: 2, Generated: 3, TotalTime: time.Second},
		{Iterations: 5, Parallel: 1, Generated: 4, Errors: 1, TotalTime: time.Second},
	}

	totalKeys, totalSeconds := summarize(results)
	if totalKeys != 7 {
		t.Errorf("Expected 7 generated keys, got %d", totalKeys)
	}
	if totalSeconds != 2 {
		t.Errorf("Expected 2 seconds, got %f", totalSeconds)
	}

	buf := &bytes.Buffer{}
	if err := (&TableFormatter{}).Format(buf, Data{Results: results}); err != nil {
		t.Fatalf("Table formatting failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total keypairs generated: 7\n") {
		t.Errorf("Summary does not report generated keys:\n%s", buf.String())
	}
}
