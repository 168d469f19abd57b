package models

// JobRequest is the request body for POST /api/v1/jobs.
type JobRequest struct {
	// Queries is the ordered list of search queries to run.
	Queries []string `json:"queries" binding:"required"`

	// Limit caps the number of entries discovered per query.
	// Zero or negative means no cap (full exhaustion).
	Limit int `json:"limit"`

	// MaxAge enables the per-query result cache: results younger than
	// MaxAge milliseconds are served without touching the browser.
	MaxAge int `json:"max_age"`
}

// QueryResult is the outcome of one query within a job.
type QueryResult struct {
	Query   string      `json:"query"`
	Records RecordBatch `json:"records"`

	// Dropped counts entries skipped due to per-record failures.
	Dropped int `json:"dropped"`

	// CacheStatus is "hit", "miss", or empty when caching was not requested.
	CacheStatus string `json:"cache_status,omitempty"`
}

// JobResponse is the response for POST /api/v1/jobs.
type JobResponse struct {
	Success bool          `json:"success"`
	Results []QueryResult `json:"results,omitempty"`

	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // "healthy" or "degraded"
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
