package localstore

import (
	"context"
	"fmt"

	"reelctl/internal/reel"
)

// Scripts returns the stored script collection in stored order.
func (s *Store) Scripts(ctx context.Context) ([]reel.Script, error) {
	var scripts []reel.Script
	ok, err := s.readJSON(ctx, KeyScripts, &scripts)
	if err != nil {
		return nil, err
	}
	if !ok || scripts == nil {
		return []reel.Script{}, nil
	}
	return scripts, nil
}

// ReplaceScripts overwrites the whole collection.
func (s *Store) ReplaceScripts(ctx context.Context, scripts []reel.Script) error {
	if scripts == nil {
		scripts = []reel.Script{}
	}
	return s.writeJSON(ctx, KeyScripts, scripts)
}

// GetScript returns the script with id, or nil when absent.
func (s *Store) GetScript(ctx context.Context, id string) (*reel.Script, error) {
	scripts, err := s.Scripts(ctx)
	if err != nil {
		return nil, err
	}
	if idx := reel.FindScript(scripts, id); idx >= 0 {
		found := scripts[idx]
		return &found, nil
	}
	return nil, nil
}

// SaveScript inserts or updates script. Existing entries keep their position
// and CreatedAt; new entries are prepended. UpdatedAt is stamped with the
// store clock. The saved record is returned.
func (s *Store) SaveScript(ctx context.Context, script reel.Script) (reel.Script, error) {
	if script.ID == "" {
		return reel.Script{}, fmt.Errorf("save script: id is required")
	}
	scripts, err := s.Scripts(ctx)
	if err != nil {
		return reel.Script{}, err
	}

	script = script.Clone()
	script.Normalize()
	idx := reel.FindScript(scripts, script.ID)
	if idx >= 0 {
		script.CreatedAt = scripts[idx].CreatedAt
	}
	script.Touch(s.now())

	if idx >= 0 {
		scripts[idx] = script
	} else {
		scripts = append([]reel.Script{script}, scripts...)
	}
	if err := s.ReplaceScripts(ctx, scripts); err != nil {
		return reel.Script{}, err
	}
	return script, nil
}

// DeleteScript removes id and reports whether it existed.
func (s *Store) DeleteScript(ctx context.Context, id string) (bool, error) {
	scripts, err := s.Scripts(ctx)
	if err != nil {
		return false, err
	}
	idx := reel.FindScript(scripts, id)
	if idx < 0 {
		return false, nil
	}
	scripts = append(scripts[:idx], scripts[idx+1:]...)
	return true, s.ReplaceScripts(ctx, scripts)
}
