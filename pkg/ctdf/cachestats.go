package ctdf

import "time"

// CacheStats describes one cached upstream entry for the stats endpoint
type CacheStats struct {
	Cache     string     `json:"cache"`
	Key       string     `json:"key"`
	Timestamp *time.Time `json:"timestamp"`
	DataValid bool       `json:"data_valid"`
	Error     string     `json:"error,omitempty"`
	Records   int        `json:"records"`
}
