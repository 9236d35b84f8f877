package output

import (
	"encoding/json"
	"io"
	"time"
)

type JSONFormatter struct{}

type JSONOutput struct {
	Timestamp  time.Time `json:"timestamp"`
	SystemInfo any       `json:"system_info,omitempty"`
	Config     any       `json:"config,omitempty"`
	Results    any       `json:"results,omitempty"`
	Session    *Session  `json:"session,omitempty"`
	Summary    *Summary  `json:"summary,omitempty"`
}

type Summary struct {
	TotalKeys       int           `json:"total_keys"`
	TotalTime       time.Duration `json:"total_time"`
	TotalTimeString string        `json:"total_time_string"`
	Throughput      float64       `json:"throughput_keys_per_sec"`
}

func (j *JSONFormatter) Format(w io.Writer, data Data) error {
	output := JSONOutput{
		Timestamp: time.Now(),
		Session:   data.Session,
	}
	if data.SystemInfo != nil {
		output.SystemInfo = data.SystemInfo
	}

	if len(data.Results) > 0 {
		output.Config = data.Config
		output.Results = data.Results

		totalKeys, totalSeconds := summarize(data.Results)
		totalTime := time.Duration(totalSeconds * float64(time.Second))
		output.Summary = &Summary{
			TotalKeys:       totalKeys,
			TotalTime:       totalTime,
			TotalTimeString: totalTime.String(),
		}
		if totalSeconds > 0 {
			output.Summary.Throughput = float64(totalKeys) / totalSeconds
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
