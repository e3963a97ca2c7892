package pg

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	apperrors "video-subtitler/internal/app/errors"
	"video-subtitler/internal/app/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS uploads (
	id SERIAL PRIMARY KEY,
	file_id TEXT NOT NULL UNIQUE,
	identity TEXT NOT NULL,
	size_mb DOUBLE PRECISION NOT NULL,
	duration_seconds DOUBLE PRECISION NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_uploads_identity ON uploads(identity);

CREATE TABLE IF NOT EXISTS activity_log (
	id SERIAL PRIMARY KEY,
	identity TEXT NOT NULL,
	action TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_identity ON activity_log(identity, occurred_at);
`

// PostgresDB implements repository.UploadDAO on postgres.
type PostgresDB struct {
	db *sql.DB
}

func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply postgres schema: %w", err)
	}
	return &PostgresDB{db: db}, nil
}

func (p *PostgresDB) Close() error {
	return p.db.Close()
}

func (p *PostgresDB) RecordUpload(rec model.UploadRecord) error {
	insertSQL := `INSERT INTO uploads (file_id, identity, size_mb, duration_seconds, uploaded_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := p.db.Exec(insertSQL, rec.FileID, rec.Identity, rec.SizeMB, rec.DurationSeconds, rec.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (p *PostgresDB) Consumption(identity string) (int, float64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(duration_seconds), 0) FROM uploads WHERE identity = $1`
	var videos int
	var totalDuration float64
	if err := p.db.QueryRow(query, identity).Scan(&videos, &totalDuration); err != nil {
		return 0, 0, fmt.Errorf("query consumption: %w", err)
	}
	return videos, totalDuration, nil
}

func (p *PostgresDB) GetUpload(fileID string) (model.UploadRecord, error) {
	query := `SELECT file_id, identity, size_mb, duration_seconds, uploaded_at FROM uploads WHERE file_id = $1`
	var rec model.UploadRecord
	err := p.db.QueryRow(query, fileID).Scan(&rec.FileID, &rec.Identity, &rec.SizeMB, &rec.DurationSeconds, &rec.UploadedAt)
	if err == sql.ErrNoRows {
		return model.UploadRecord{}, apperrors.NotFound("upload", fileID)
	}
	if err != nil {
		return model.UploadRecord{}, fmt.Errorf("query upload: %w", err)
	}
	return rec, nil
}

func (p *PostgresDB) ListByIdentity(identity string) ([]model.UploadRecord, error) {
	query := `
		SELECT file_id, identity, size_mb, duration_seconds, uploaded_at
		FROM uploads
		WHERE identity = $1
		ORDER BY uploaded_at DESC`
	rows, err := p.db.Query(query, identity)
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
func (p *PostgresDB) Reset(identity string) (int64, error) {
	tx, err := p.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("reset identity: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM uploads WHERE identity = $1`, identity)
	if err != nil {
		return 0, fmt.Errorf("reset identity: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset identity: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM activity_log WHERE identity = $1`, identity); err != nil {
		return 0, fmt.Errorf("reset activity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("reset identity: %w", err)
	}
	return removed, nil
}

func (p *PostgresDB) ResetAll() (int64, error) {
	tx, err := p.db.Begin()
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

func (p *PostgresDB) Stats() (model.LedgerStats, error) {
	query := `
		SELECT COUNT(DISTINCT identity), COUNT(*), COALESCE(SUM(duration_seconds), 0), COALESCE(SUM(size_mb), 0)
		FROM uploads`
	var stats model.LedgerStats
	err := p.db.QueryRow(query).Scan(&stats.TotalIdentities, &stats.TotalVideos, &stats.TotalDurationSeconds, &stats.TotalSizeMB)
	if err != nil {
		return model.LedgerStats{}, fmt.Errorf("query ledger stats: %w", err)
	}
	return stats, nil
}

func (p *PostgresDB) RecordActivity(identity, action string, at time.Time) error {
	_, err := p.db.Exec(`INSERT INTO activity_log (identity, action, occurred_at) VALUES ($1, $2, $3)`, identity, action, at)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (p *PostgresDB) LastActivity(identity string) (time.Time, error) {
	query := `SELECT occurred_at FROM activity_log WHERE identity = $1 ORDER BY occurred_at DESC LIMIT 1`
	var at time.Time
	err := p.db.QueryRow(query, identity).Scan(&at)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query last activity: %w", err)
	}
	return at, nil
}
