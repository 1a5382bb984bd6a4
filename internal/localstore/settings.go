package localstore

import (
	"context"
	"strings"

	"reelctl/internal/config"
	"reelctl/internal/logging"
)

// Settings implements config.SettingsProvider.
func (s *Store) Settings(ctx context.Context) (config.Settings, error) {
	var settings config.Settings
	ok, err := s.readJSON(ctx, KeySettings, &settings)
	if err != nil {
		return config.Settings{}, err
	}
	if !ok {
		return config.Settings{}, nil
	}
	return settings, nil
}

// SaveSettings merges the non-empty fields of patch into the stored record.
func (s *Store) SaveSettings(ctx context.Context, patch config.Settings) (config.Settings, error) {
	current, err := s.Settings(ctx)
	if err != nil {
		return config.Settings{}, err
	}
	merged := current.Merge(patch)
	if err := s.writeJSON(ctx, KeySettings, merged); err != nil {
		return config.Settings{}, err
	}
	return merged, nil
}

// migrateLegacySettings moves a webhook URL saved under the legacy key into
// the settings record (only when the record has none) and drops the legacy key.
func (s *Store) migrateLegacySettings(ctx context.Context) error {
	legacy, ok, err := s.get(ctx, KeyLegacyGasURL)
	if err != nil || !ok {
		return err
	}
	if url := strings.TrimSpace(legacy); url != "" {
		current, err := s.Settings(ctx)
		if err != nil {
			return err
		}
		if strings.TrimSpace(current.WebhookURL) == "" {
			current.WebhookURL = url
			if err := s.writeJSON(ctx, KeySettings, current); err != nil {
				return err
			}
			s.logger.Info("migrated legacy webhook url", logging.String("key", KeyLegacyGasURL))
		}
	}
	return s.remove(ctx, KeyLegacyGasURL)
}
