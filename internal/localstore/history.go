package localstore

import (
	"context"

	"reelctl/internal/reel"
)

// History returns stored generation history in stored order.
func (s *Store) History(ctx context.Context) ([]reel.HistoryItem, error) {
	var items []reel.HistoryItem
	ok, err := s.readJSON(ctx, KeyHistory, &items)
	if err != nil {
		return nil, err
	}
	if !ok || items == nil {
		return []reel.HistoryItem{}, nil
	}
	return items, nil
}

// ReplaceHistory overwrites the history collection, enforcing the cap.
func (s *Store) ReplaceHistory(ctx context.Context, items []reel.HistoryItem) error {
	if items == nil {
		items = []reel.HistoryItem{}
	}
	return s.writeJSON(ctx, KeyHistory, reel.CapHistory(items, reel.HistoryLimit))
}

// GetHistory returns the entry with id, or nil when absent.
func (s *Store) GetHistory(ctx context.Context, id string) (*reel.HistoryItem, error) {
	items, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	if idx := reel.FindHistory(items, id); idx >= 0 {
		found := items[idx]
		return &found, nil
	}
	return nil, nil
}

// InsertHistory prepends item, evicting the oldest entries beyond the cap, and
// returns the resulting collection.
func (s *Store) InsertHistory(ctx context.Context, item reel.HistoryItem) ([]reel.HistoryItem, error) {
	items, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	items = reel.PrependHistory(items, item, reel.HistoryLimit)
	if err := s.writeJSON(ctx, KeyHistory, items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteHistory removes id and returns the remaining collection along with
// whether the entry existed.
func (s *Store) DeleteHistory(ctx context.Context, id string) ([]reel.HistoryItem, bool, error) {
	items, err := s.History(ctx)
	if err != nil {
		return nil, false, err
	}
	idx := reel.FindHistory(items, id)
	if idx < 0 {
		return items, false, nil
	}
	items = append(items[:idx], items[idx+1:]...)
	if err := s.writeJSON(ctx, KeyHistory, items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}
