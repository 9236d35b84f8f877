// Package sysinfo collects the host facts reported next to benchmark results.
package sysinfo

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

type SystemInfo struct {
	OS           string  `json:"os"`
	Architecture string  `json:"architecture"`
	CPUModel     string  `json:"cpu_model"`
	CPUCores     int     `json:"cpu_cores"`
	CPUThreads   int     `json:"cpu_threads"`
	TotalMemory  uint64  `json:"total_memory"`
	GoVersion    string  `json:"go_version"`
	Hostname     string  `json:"hostname"`
	Platform     string  `json:"platform"`
	LoadAverage  float64 `json:"load_average"`
}

// Collect gathers what it can. Probes that fail leave their fields zero;
// only the runtime-derived fields are guaranteed.
func Collect() (*SystemInfo, error) {
	info := &SystemInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		GoVersion:    runtime.Version(),
		CPUCores:     runtime.NumCPU(),
	}

	if cpuInfo, err := cpu.Info(); err == nil && len(cpuInfo) > 0 {
		info.CPUModel = strings.TrimSpace(cpuInfo[0].ModelName)
	}

	if threads, err := cpu.Counts(true); err == nil {
		info.CPUThreads = threads
	}

	if memInfo, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = memInfo.Total
	}

	if hostInfo, err := host.Info(); err == nil {
		info.Hostname = hostInfo.Hostname
		info.Platform = hostInfo.Platform
	}

	if loadAvg, err := load.Avg(); err == nil {
		info.LoadAverage = loadAvg.Load1
	}

	return info, nil
}

// MemoryGB returns total memory in GiB.
func (s *SystemInfo) MemoryGB() float64 {
	return float64(s.TotalMemory) / (1024 * 1024 * 1024)
}

// String is a one-line summary used in verbose CLI output and table footers.
func (s *SystemInfo) String() string {
	model := s.CPUModel
	if model == "" {
		model = "unknown CPU"
	}
	return fmt.Sprintf("%s/%s, %s (%d cores), %.2f GB, %s",
		s.OS, s.Architecture, model, s.CPUCores, s.MemoryGB(), s.GoVersion)
}
