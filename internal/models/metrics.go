package models

import "time"

// SystemMetrics is a lightweight snapshot of runtime counters for the admin console.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	EnrollmentsCreated       uint64    `json:"enrollments_created"`
	ResetsRequested          uint64    `json:"resets_requested"`
	ResetsCompleted          uint64    `json:"resets_completed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
