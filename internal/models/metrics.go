package models

// StageMetrics is the per-stage performance document produced by the
// execution backend. Field names match the wire JSON exactly.
type StageMetrics struct {
	StartedAt       string  `json:"StartedAt"`
	FinishedAt      string  `json:"FinishedAt"`
	MaxCPUPercent   float64 `json:"MaxCPUPercent"`
	MaxMemoryUsage  int64   `json:"MaxMemoryUsage"`
	NCPU            int     `json:"NCPU"`
	MemTotal        int64   `json:"MemTotal"`
	OperatingSystem string  `json:"OperatingSystem"`
}
