package webhook

import (
	"context"

	"reelctl/internal/reel"
)

const (
	actionSyncSave        = "sync-save"
	actionSyncLoad        = "sync-load"
	actionSyncDelete      = "sync-delete"
	actionSyncSaveHistory = "sync-save-history"
	actionSyncLoadHistory = "sync-load-history"
)

// LoadScripts fetches the remote script collection.
func (c *Client) LoadScripts(ctx context.Context) ([]reel.Script, error) {
	var out struct {
		Scripts []reel.Script `json:"scripts"`
	}
	if err := c.call(ctx, actionSyncLoad, nil, &out); err != nil {
		return nil, err
	}
	if out.Scripts == nil {
		out.Scripts = []reel.Script{}
	}
	return out.Scripts, nil
}

// SaveScripts replaces the remote script collection.
func (c *Client) SaveScripts(ctx context.Context, scripts []reel.Script) error {
	if scripts == nil {
		scripts = []reel.Script{}
	}
	return c.call(ctx, actionSyncSave, map[string]any{"scripts": scripts}, nil)
}

// DeleteScript removes one script from the remote collection.
func (c *Client) DeleteScript(ctx context.Context, id string) error {
	return c.call(ctx, actionSyncDelete, map[string]any{"id": id}, nil)
}

// LoadHistory fetches the remote generation history.
func (c *Client) LoadHistory(ctx context.Context) ([]reel.HistoryItem, error) {
	var out struct {
		History []reel.HistoryItem `json:"history"`
	}
	if err := c.call(ctx, actionSyncLoadHistory, nil, &out); err != nil {
		return nil, err
	}
	if out.History == nil {
		out.History = []reel.HistoryItem{}
	}
	return out.History, nil
}

// SaveHistory replaces the remote generation history.
func (c *Client) SaveHistory(ctx context.Context, items []reel.HistoryItem) error {
	if items == nil {
		items = []reel.HistoryItem{}
	}
	return c.call(ctx, actionSyncSaveHistory, map[string]any{"history": items}, nil)
}
