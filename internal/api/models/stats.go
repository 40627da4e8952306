package models

import "time"

// CPUStats contains system CPU statistics.
type CPUStats struct {
	NumCPU      int     `json:"num_cpu"`
	UsedPercent float64 `json:"used_percent"`
	IdlePercent float64 `json:"idle_percent"`
}

// MemoryStats contains system memory statistics.
type MemoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	FreeMB      float64 `json:"free_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// ScanStats mirrors scanner.Snapshot plus the current in-flight count,
// for JSON serving over /api/v1/stats.
type ScanStats struct {
	Initiated uint64 `json:"initiated"`
	Connected uint64 `json:"connected"`
	Completed uint64 `json:"completed"`
	Matched   uint64 `json:"matched"`
	InFlight  int    `json:"in_flight"`
}

// ServerStatsResponse contains runtime statistics for the running scan.
type ServerStatsResponse struct {
	RunID         string      `json:"run_id"`
	Uptime        string      `json:"uptime"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     time.Time   `json:"start_time"`
	CPU           CPUStats    `json:"cpu"`
	Memory        MemoryStats `json:"memory"`
	Scan          ScanStats   `json:"scan"`
}
