package models

// FileRecord represents one discovered regular file.
type FileRecord struct {
	Path string `json:"path"` // Root-relative, forward-slash path
	Size uint64 `json:"size"` // Byte count, 0 when metadata could not be read
}

// SearchHit represents one matching line within a file.
type SearchHit struct {
	Path    string `json:"path"`    // Root-relative file path
	Line    int    `json:"line"`    // 1-based line number
	Content string `json:"content"` // Matched line, surrounding whitespace trimmed
}

// ExtensionCount is one row of the estimator's extension histogram.
type ExtensionCount struct {
	Extension string `json:"extension"`
	Count     int    `json:"count"`
}

// EstimateSummary is the aggregate reported by the estimator.
type EstimateSummary struct {
	TotalFiles         int              `json:"total_files"`
	SampledFiles       int              `json:"sampled_files"`
	EstimatedTotalSize uint64           `json:"estimated_total_size"`
	SampledSize        uint64           `json:"sampled_size"`
	TopExtensions      []ExtensionCount `json:"top_extensions"`
}
