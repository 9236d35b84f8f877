package output

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/user/rsakit/internal/benchmark"
	"github.com/user/rsakit/internal/textbook"
	"github.com/user/rsakit/pkg/sysinfo"
)

type Data struct {
	SystemInfo *sysinfo.SystemInfo
	Results    []benchmark.Result
	Config     benchmark.Config
	Session    *Session
}

// Session is one keygen/encrypt/decrypt round as run by the CLI.
type Session struct {
	Bits       int                 `json:"bits"`
	Public     textbook.PublicKey  `json:"public_key"`
	Private    textbook.PrivateKey `json:"private_key"`
	Plaintext  string              `json:"plaintext"`
	Ciphertext []*big.Int          `json:"ciphertext"`
	Decrypted  string              `json:"decrypted"`
	Warning    string              `json:"warning,omitempty"`
}

type Formatter interface {
	Format(w io.Writer, data Data) error
}

func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "table":
		return &TableFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "csv":
		return &CSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// JoinCiphertext renders ciphertext values separated by single spaces.
func JoinCiphertext(ciphertext []*big.Int) string {
	parts := make([]string, len(ciphertext))
	for i, c := range ciphertext {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func summarize(results []benchmark.Result) (totalKeys int, totalTime float64) {
	for _, result := range results {
		totalKeys += result.Generated
		totalTime += result.TotalTime.Seconds()
	}
	return totalKeys, totalTime
}
