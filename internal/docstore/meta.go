package docstore

import (
	"context"
	"database/sql"
	"strconv"
)

// watermark reads an integer key from doc_meta, defaulting to 0.
func (s *DocStore) watermark(ctx context.Context, key string) (int64, error) {
	var v string
	err := s.file.DB().QueryRowContext(ctx, `SELECT v FROM doc_meta WHERE k = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func (s *DocStore) setWatermark(ctx context.Context, key string, value int64) error {
	_, err := s.file.DB().ExecContext(ctx, `INSERT INTO doc_meta (k, v) VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, strconv.FormatInt(value, 10))
	return err
}

// GetCompactID returns the compactor's persisted watermark (§3 "compact_id").
func (s *DocStore) GetCompactID(ctx context.Context) (int64, error) { return s.watermark(ctx, "compact_id") }

// SetCompactID persists the compactor's watermark.
func (s *DocStore) SetCompactID(ctx context.Context, v int64) error { return s.setWatermark(ctx, "compact_id", v) }
