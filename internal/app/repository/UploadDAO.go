package repository

import (
	"time"

	"video-subtitler/internal/app/model"
)

// UploadDAO persists the upload ledger and the activity log. Implementations
// exist for sqlite (single binary deployments) and postgres.
type UploadDAO interface {
	Close() error

	// RecordUpload inserts one ledger row. FileID must be unique.
	RecordUpload(rec model.UploadRecord) error

	// Consumption returns the number of recorded uploads and their total
	// duration in seconds for one identity.
	Consumption(identity string) (videos int, totalDurationSeconds float64, err error)

	GetUpload(fileID string) (model.UploadRecord, error)

	ListByIdentity(identity string) ([]model.UploadRecord, error)

	// Reset deletes all ledger rows for one identity and reports how many
	// were removed.
	Reset(identity string) (int64, error)

	// ResetAll clears the whole ledger.
	ResetAll() (int64, error)

	Stats() (model.LedgerStats, error)

	// RecordActivity appends one activity row.
	RecordActivity(identity, action string, at time.Time) error

	// LastActivity returns the most recent activity timestamp for an
	// identity, or the zero time when none exists.
	LastActivity(identity string) (time.Time, error)
}
