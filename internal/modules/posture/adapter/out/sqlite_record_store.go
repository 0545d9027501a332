package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"posturetrack/internal/modules/posture/domain"
	postureout "posturetrack/internal/modules/posture/port/out"
	apperrors "posturetrack/internal/platform/errors"

	_ "modernc.org/sqlite"
)

type SQLiteRecordStore struct {
	db *sql.DB
}

func NewSQLiteRecordStore(dbPath string) (*SQLiteRecordStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &SQLiteRecordStore{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

var _ postureout.RecordStore = (*SQLiteRecordStore)(nil)

func (s *SQLiteRecordStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS posture_records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  status TEXT NOT NULL,
  timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posture_records_timestamp ON posture_records(timestamp);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create posture_records table: %w", err)
	}
	return nil
}

func (s *SQLiteRecordStore) Append(ctx context.Context, status domain.Status, ts time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posture_records (status, timestamp) VALUES (?, ?);`,
		string(status), ts.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: insert record: %v", apperrors.ErrStoreUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %v", apperrors.ErrStoreUnavailable, err)
	}
	return id, nil
}

func (s *SQLiteRecordStore) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, status, timestamp
FROM posture_records
ORDER BY id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent records: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent records: %w", err)
	}
	return out, nil
}

func (s *SQLiteRecordStore) Latest(ctx context.Context) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, status, timestamp
FROM posture_records
ORDER BY id DESC
LIMIT 1;
`)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, apperrors.ErrNoRecords
	}
	return rec, err
}

func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}

func scanRecord(scan func(...any) error) (domain.Record, error) {
	var (
		rec domain.Record
		raw string
	)
	if err := scan(&rec.ID, (*string)(&rec.Status), &raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Record{}, err
		}
		return domain.Record{}, fmt.Errorf("scan record: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return domain.Record{}, fmt.Errorf("parse record timestamp: %w", err)
	}
	rec.Timestamp = ts
	return rec, nil
}
