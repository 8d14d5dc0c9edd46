package probe

// TransferReport is the result of one successful transfer. Milestones are nil
// when the threshold was never observed.
type TransferReport struct {
	SourceURL        string   `json:"source_url"`
	TotalBytes       int64    `json:"total_bytes"`
	TotalMegabytes   float64  `json:"total_megabytes"`
	TotalTimeSeconds float64  `json:"total_time_seconds"`
	AverageSpeedMBps float64  `json:"average_speed_mbps"`
	PeakSpeedMBps    float64  `json:"peak_speed_mbps"`
	TimeTo50Seconds  *float64 `json:"time_to_50_seconds,omitempty"`
	TimeTo100Seconds *float64 `json:"time_to_100_seconds,omitempty"`
	CleanupSucceeded bool     `json:"cleanup_succeeded"`
}

type TransferRequest struct {
	SourceURL string
	SinkPath  string
}
