package linkstore

import (
	"context"
	"database/sql"
	"strconv"
)

func (s *LinkStore) watermark(ctx context.Context, key string) (int64, error) {
	var v string
	err := s.file.DB().QueryRowContext(ctx, `SELECT v FROM link_meta WHERE k = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func (s *LinkStore) setWatermark(ctx context.Context, key string, value int64) error {
	_, err := s.file.DB().ExecContext(ctx, `INSERT INTO link_meta (k, v) VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, strconv.FormatInt(value, 10))
	return err
}

// GetCompactID returns the compactor's persisted watermark (§3 "compact_id").
func (s *LinkStore) GetCompactID(ctx context.Context) (int64, error) { return s.watermark(ctx, "compact_id") }

// SetCompactID persists the compactor's watermark.
func (s *LinkStore) SetCompactID(ctx context.Context, v int64) error { return s.setWatermark(ctx, "compact_id", v) }

// GetCheckID returns the link checker's persisted watermark (§3 "check_id").
func (s *LinkStore) GetCheckID(ctx context.Context) (int64, error) { return s.watermark(ctx, "check_id") }

// SetCheckID persists the link checker's watermark.
func (s *LinkStore) SetCheckID(ctx context.Context, v int64) error { return s.setWatermark(ctx, "check_id", v) }
