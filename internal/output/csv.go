package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

type CSVFormatter struct{}

func (c *CSVFormatter) Format(w io.Writer, data Data) error {
	writer := csv.NewWriter(w)

	if data.Session != nil {
		if err := c.writeSession(writer, data.Session); err != nil {
			return err
		}
	}
	if len(data.Results) > 0 {
		if err := c.writeResults(writer, data); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeSession emits one row per plaintext code point.
func (c *CSVFormatter) writeSession(writer *csv.Writer, s *Session) error {
	header := []string{"Index", "Character", "CodePoint", "Ciphertext", "E", "D", "N"}
	if err := writer.Write(header); err != nil {
		return err
	}

	runes := []rune(s.Plaintext)
	for i, value := range s.Ciphertext {
		var char, codePoint string
		if i < len(runes) {
			char = string(runes[i])
			codePoint = fmt.Sprintf("%d", runes[i])
		}
		row := []string{
			fmt.Sprintf("%d", i),
			char,
			codePoint,
			value.String(),
			s.Public.E.String(),
			s.Private.D.String(),
			s.Public.N.String(),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (c *CSVFormatter) writeResults(writer *csv.Writer, data Data) error {
	header := []string{
		"Timestamp",
		"Strategy",
		"KeySize",
		"Iterations",
		"Parallel",
		"Generated",
		"TotalTime(ms)",
		"AverageTime(ms)",
		"MinTime(ms)",
		"MaxTime(ms)",
		"StdDev(ms)",
		"KeysPerSecond",
		"CPUUsage(%)",
		"MemoryUsed(MB)",
		"Errors",
		"RoundTripFailures",
		"OS",
		"Architecture",
		"CPUModel",
		"CPUCores",
	}

	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range data.Results {
		row := []string{
			result.CompletedAt.Format(time.RFC3339),
			result.Strategy,
			fmt.Sprintf("%d", result.KeySize),
			fmt.Sprintf("%d", result.Iterations),
			fmt.Sprintf("%d", result.Parallel),
			fmt.Sprintf("%d", result.Generated),
			millis(result.TotalTime),
			millis(result.AverageTime),
			millis(result.MinTime),
			millis(result.MaxTime),
			millis(result.StdDev),
			fmt.Sprintf("%.2f", result.KeysPerSecond),
			fmt.Sprintf("%.2f", result.CPUUsage),
			fmt.Sprintf("%.2f", float64(result.MemoryUsed)/(1024*1024)),
			fmt.Sprintf("%d", result.Errors),
			fmt.Sprintf("%d", result.RoundTripFailures),
		}
		if data.SystemInfo != nil {
			row = append(row,
				data.SystemInfo.OS,
				data.SystemInfo.Architecture,
				data.SystemInfo.CPUModel,
				fmt.Sprintf("%d", data.SystemInfo.CPUCores),
			)
		} else {
			row = append(row, "", "", "", "")
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.2f", float64(d.Nanoseconds())/1e6)
}
