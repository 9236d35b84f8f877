package output

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

type TableFormatter struct{}

func (t *TableFormatter) Format(w io.Writer, data Data) error {
	if data.Session != nil {
		t.formatSession(w, data.Session)
	}
	if len(data.Results) > 0 {
		t.formatResults(w, data)
	}
	return nil
}

func (t *TableFormatter) formatSession(w io.Writer, s *Session) {
	fmt.Fprintf(w, "\nKeypair (%d bits requested, %d bit modulus)\n", s.Bits, s.Public.N.BitLen())
	fmt.Fprintln(w, "=======")
	fmt.Fprintln(w)

	table := newTable(w)
	table.SetHeader([]string{"Key", "Exponent", "Modulus"})
	table.SetAutoWrapText(false)
	table.Append([]string{"Public", s.Public.E.String(), s.Public.N.String()})
	table.Append([]string{"Private", s.Private.D.String(), s.Private.N.String()})
	table.Render()

	if s.Warning != "" {
		fmt.Fprintf(w, "\nWarning: %s\n", s.Warning)
	}

	fmt.Fprintln(w, "\nEncrypted Message:")
	fmt.Fprintln(w, JoinCiphertext(s.Ciphertext))

	fmt.Fprintln(w, "\nDecrypted Message:")
	fmt.Fprintln(w, s.Decrypted)
}

func (t *TableFormatter) formatResults(w io.Writer, data Data) {
	fmt.Fprintln(w, "\nBenchmark Results")
	fmt.Fprintln(w, "================")
	fmt.Fprintln(w)

	table := newTable(w)
	table.SetHeader([]string{
		"Strategy",
		"Key Size",
		"Iterations",
		"Parallel",
		"Generated",
		"Total Time",
		"Avg Time",
		"Min Time",
		"Max Time",
		"Keys/Sec",
		"CPU %",
		"Memory MB",
		"Errors",
		"Round Trip Failures",
	})

	for _, result := range data.Results {
		table.Append([]string{
			result.Strategy,
			fmt.Sprintf("%d", result.KeySize),
			fmt.Sprintf("%d", result.Iterations),
			fmt.Sprintf("%d", result.Parallel),
			fmt.Sprintf("%d", result.Generated),
			formatDuration(result.TotalTime),
			formatDuration(result.AverageTime),
			formatDuration(result.MinTime),
			formatDuration(result.MaxTime),
			fmt.Sprintf("%.2f", result.KeysPerSecond),
			fmt.Sprintf("%.1f", result.CPUUsage),
			fmt.Sprintf("%.2f", float64(result.MemoryUsed)/(1024*1024)),
			fmt.Sprintf("%d", result.Errors),
			fmt.Sprintf("%d", result.RoundTripFailures),
		})
	}

	table.Render()

	fmt.Fprintln(w, "\nSummary")
	fmt.Fprintln(w, "-------")

	totalKeys, totalSeconds := summarize(data.Results)
	totalTime := time.Duration(totalSeconds * float64(time.Second))

	fmt.Fprintf(w, "Total keypairs generated: %d\n", totalKeys)
	fmt.Fprintf(w, "Total time: %s\n", formatDuration(totalTime))
	if totalSeconds > 0 {
		fmt.Fprintf(w, "Overall throughput: %.2f keys/sec\n", float64(totalKeys)/totalSeconds)
	}
	if data.SystemInfo != nil {
		fmt.Fprintf(w, "Host: %s\n", data.SystemInfo.String())
	}
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.2fµs", float64(d.Nanoseconds())/1000)
	} else if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.2fm", d.Minutes())
}
