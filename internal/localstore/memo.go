package localstore

import "context"

// Memo returns the saved draft transcript.
func (s *Store) Memo(ctx context.Context) (string, error) {
	memo, _, err := s.get(ctx, KeyMemo)
	return memo, err
}

// SetMemo saves the draft transcript.
func (s *Store) SetMemo(ctx context.Context, memo string) error {
	return s.put(ctx, KeyMemo, memo)
}

// ClearMemo drops the draft transcript.
func (s *Store) ClearMemo(ctx context.Context) error {
	return s.remove(ctx, KeyMemo)
}
