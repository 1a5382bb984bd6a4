package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reelctl/internal/logging"
)

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var payload string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, "SELECT payload FROM collections WHERE key = ?", key).Scan(&payload)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return payload, true, nil
}

func (s *Store) put(ctx context.Context, key, payload string) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO collections (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) remove(ctx context.Context, key string) error {
	if _, err := s.execWithRetry(ctx, "DELETE FROM collections WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// readJSON decodes the payload under key into dst. A missing or undecodable
// payload leaves dst untouched and reports false.
func (s *Store) readJSON(ctx context.Context, key string, dst any) (bool, error) {
	payload, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		logging.WarnWithContext(s.logger, "discarding unreadable collection", "store_corrupt_payload",
			"collection treated as empty",
			logging.String("key", key),
			logging.Error(err),
		)
		return false, nil
	}
	return true, nil
}

func (s *Store) writeJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.put(ctx, key, string(data))
}
