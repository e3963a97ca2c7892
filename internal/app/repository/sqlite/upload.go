package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "video-subtitler/internal/app/errors"
	"video-subtitler/internal/app/model"
)

// SQLiteDB implements repository.UploadDAO on a local sqlite file.
type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(dbFilePath string) (*SQLiteDB, error) {
	db, err := Open(dbFilePath)
	if err != nil {
		return nil, err
	}
	return &SQLiteDB{db: db}, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) RecordUpload(rec model.UploadRecord) error {
	insertSQL := `INSERT INTO uploads (file_id, identity, size_mb, duration_seconds, uploaded_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.Exec(insertSQL, rec.FileID, rec.Identity, rec.SizeMB, rec.DurationSeconds, rec.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (s *SQLiteDB) Consumption(identity string) (int, float64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(duration_seconds), 0) FROM uploads WHERE identity = ?`
	var videos int
	var totalDuration float64
	if err := s.db.QueryRow(query, identity).Scan(&videos, &totalDuration); err != nil {
		return 0, 0, fmt.Errorf("query consumption: %w", err)
	}
	return videos, totalDuration, nil
}

func (s *SQLiteDB) GetUpload(fileID string) (model.UploadRecord, error) {
	query := `SELECT file_id, identity, size_mb, duration_seconds, uploaded_at FROM uploads WHERE file_id = ?`
	var rec model.UploadRecord
	err := s.db.QueryRow(query, fileID).Scan(&rec.FileID, &rec.Identity, &rec.SizeMB, &rec.DurationSeconds, &rec.UploadedAt)
	if err == sql.ErrNoRows {
		return model.UploadRecord{}, apperrors.NotFound("upload", fileID)
	}
	if err != nil {
		return model.UploadRecord{}, fmt.Errorf("query upload: %w", err)
	}
	return rec, nil
}

func (s *SQLiteDB) ListByIdentity(identity string) ([]model.UploadRecord, error) {
	query := `
		SELECT file_id, identity, size_mb, duration_seconds, uploaded_at
		FROM uploads
		WHERE identity = ?
		ORDER BY uploaded_at DESC`
	rows, err := s.db.Query(query, identity)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	records := make([]model.UploadRecord, 0)
	for rows.Next() {
		var rec model.UploadRecord
		if err := rows.Scan(&rec.FileID, &rec.Identity, &rec.SizeMB, &rec.DurationSeconds, &rec.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Reset removes the identity's upload and activity rows in one transaction
// and reports how many uploads were removed.
func (s *SQLiteDB) Reset(identity string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("reset identity: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM uploads WHERE identity = ?`, identity)
	if err != nil {
		return 0, fmt.Errorf("reset identity: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset identity: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM activity_log WHERE identity = ?`, identity); err != nil {
		return 0, fmt.Errorf("reset activity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("reset identity: %w", err)
	}
	return removed, nil
}

func (s *SQLiteDB) ResetAll() (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("reset ledger: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM uploads`)
	if err != nil {
		return 0, fmt.Errorf("reset ledger: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset ledger: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM activity_log`); err != nil {
		return 0, fmt.Errorf("reset activity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("reset ledger: %w", err)
	}
	return removed, nil
}

func (s *SQLiteDB) Stats() (model.LedgerStats, error) {
	query := `
		SELECT COUNT(DISTINCT identity), COUNT(*), COALESCE(SUM(duration_seconds), 0), COALESCE(SUM(size_mb), 0)
		FROM uploads`
	var stats model.LedgerStats
	err := s.db.QueryRow(query).Scan(&stats.TotalIdentities, &stats.TotalVideos, &stats.TotalDurationSeconds, &stats.TotalSizeMB)
	if err != nil {
		return model.LedgerStats{}, fmt.Errorf("query ledger stats: %w", err)
	}
	return stats, nil
}

func (s *SQLiteDB) RecordActivity(identity, action string, at time.Time) error {
	_, err := s.db.Exec(`INSERT INTO activity_log (identity, action, occurred_at) VALUES (?, ?, ?)`, identity, action, at)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (s *SQLiteDB) LastActivity(identity string) (time.Time, error) {
	query := `SELECT occurred_at FROM activity_log WHERE identity = ? ORDER BY occurred_at DESC LIMIT 1`
	var at time.Time
	err := s.db.QueryRow(query, identity).Scan(&at)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query last activity: %w", err)
	}
	return at, nil
}
