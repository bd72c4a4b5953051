package models

import "time"

// SystemMetrics is a point-in-time summary of gateway activity.
type SystemMetrics struct {
	CacheHitRatio             float64   `json:"cache_hit_ratio"`
	CacheHits                 uint64    `json:"cache_hits"`
	CacheMisses               uint64    `json:"cache_misses"`
	RequestsTotal             uint64    `json:"requests_total"`
	AverageRequestDurationMs  float64   `json:"average_request_duration_ms"`
	UpstreamCalls             uint64    `json:"upstream_calls"`
	UpstreamErrors            uint64    `json:"upstream_errors"`
	AverageUpstreamDurationMs float64   `json:"average_upstream_duration_ms"`
	EnquiriesAccepted         uint64    `json:"enquiries_accepted"`
	Goroutines                int       `json:"goroutines"`
	GeneratedAt               time.Time `json:"generated_at"`
}
