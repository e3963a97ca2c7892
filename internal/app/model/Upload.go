package model

import "time"

// UploadRecord is one row of the upload ledger. Records are created at
// admission and never mutated afterwards; administrative resets delete them
// wholesale.
type UploadRecord struct {
	FileID          string    `json:"file_id"`
	Identity        string    `json:"identity"`
	SizeMB          float64   `json:"size_mb"`
	DurationSeconds float64   `json:"duration_seconds"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// Limits bounds what one identity may upload. A per-identity override, when
// present, replaces the process-wide default entirely.
type Limits struct {
	MaxVideos          int      `yaml:"max_videos" json:"maxVideos" validate:"gt=0"`
	MaxDurationMinutes float64  `yaml:"max_duration_minutes" json:"maxDurationMinutes" validate:"gt=0"`
	MaxFileSizeMB      float64  `yaml:"max_file_size_mb" json:"maxFileSizeMB" validate:"gt=0"`
	AllowedExtensions  []string `yaml:"allowed_extensions" json:"allowedExtensions" validate:"min=1"`
}

// Usage summarizes an identity's consumption against its effective limits.
type Usage struct {
	VideosCount              int     `json:"videos_count"`
	TotalDurationSeconds     float64 `json:"total_duration"`
	RemainingVideos          int     `json:"remaining_videos"`
	RemainingDurationSeconds float64 `json:"remaining_duration"`
	Limits                   Limits  `json:"limits"`
}

// LedgerStats aggregates consumption across all identities.
type LedgerStats struct {
	TotalIdentities      int     `json:"total_identities"`
	TotalVideos          int     `json:"total_videos"`
	TotalDurationSeconds float64 `json:"total_duration_seconds"`
	TotalSizeMB          float64 `json:"total_size_mb"`
}
