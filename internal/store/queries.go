package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

func (s *sqliteStore) Get(ctx context.Context, origin, key string) (string, bool, error) {
	var v string
	err := s.stmtGet.QueryRowContext(ctx, origin, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *sqliteStore) Set(ctx context.Context, origin, key, value string) error {
	_, err := s.stmtSet.ExecContext(ctx, origin, key, value, time.Now().Unix())
	return err
}

// Delete removes keys in one statement. Deleting a missing key is not an error.
func (s *sqliteStore) Delete(ctx context.Context, origin string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, 0, len(keys)+1)
	args = append(args, origin)
	for _, k := range keys {
		args = append(args, k)
	}
	q := `DELETE FROM kv WHERE origin = ? AND key IN (?` + strings.Repeat(",?", len(keys)-1) + `)`
	_, err := s.DB.ExecContext(ctx, q, args...)
	return err
}

func (s *sqliteStore) SaveSnapshot(ctx context.Context, origin string, snap Snapshot) error {
	body, err := marshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	_, err = s.stmtSaveSnapshot.ExecContext(ctx, origin, body, savedAt.UnixMilli())
	return err
}

// LoadSnapshot returns (nil, nil) when no snapshot exists for origin.
func (s *sqliteStore) LoadSnapshot(ctx context.Context, origin string) (*Snapshot, error) {
	var body []byte
	var savedAt int64
	err := s.stmtLoadSnapshot.QueryRowContext(ctx, origin).Scan(&body, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap, err := unmarshalSnapshot(body)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.SavedAt = time.UnixMilli(savedAt)
	return &snap, nil
}

func (s *sqliteStore) DeleteSnapshot(ctx context.Context, origin string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM snapshots WHERE origin = ?`, origin)
	return err
}
