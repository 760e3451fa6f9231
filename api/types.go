package api

// Run is a catalog run as returned by the API
type Run struct {
	RunID         int64  `json:"run_id"`
	RunUUID       string `json:"run_uuid"`
	Label         string `json:"label"`
	InputDir      string `json:"input_dir"`
	OutputPath    string `json:"output_path"`
	CreatedAt     int64  `json:"created_at"`
	AcceptedCount int    `json:"accepted_count"`
	SkippedCount  int    `json:"skipped_count"`
	IgnoredCount  int    `json:"ignored_count"`
}

// Record is one bundled filename
type Record struct {
	SourceName string    `json:"source_name"`
	Fields     [4]string `json:"fields"`
	Line       string    `json:"line"`
	Size       int64     `json:"size"`
	Modified   int64     `json:"modified"`
	Created    int64     `json:"created,omitempty"`
}

// SkippedEntry is a malformed filename reported during a run
type SkippedEntry struct {
	SourceName string `json:"source_name"`
	FieldCount int    `json:"field_count"`
}

// LabelStats aggregates runs sharing a label
type LabelStats struct {
	Label        string `json:"label"`
	RunCount     int    `json:"run_count"`
	RecordCount  int    `json:"record_count"`
	SkippedCount int    `json:"skipped_count"`
	LastRun      int64  `json:"last_run"`
}

// CatalogStats summarizes the whole catalog
type CatalogStats struct {
	TotalRuns    int          `json:"total_runs"`
	TotalRecords int          `json:"total_records"`
	TotalSkipped int          `json:"total_skipped"`
	LatestRunID  *int64       `json:"latest_run_id,omitempty"`
	Labels       []LabelStats `json:"labels"`
}

// PaginatedResponse represents a paginated response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	HasNext    bool        `json:"has_next"`
}
