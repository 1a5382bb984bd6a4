package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"reelctl/internal/services"
)

// Downloader streams a URL into w.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Download saves url to dest through a temporary sibling so a failed
// transfer never leaves a partial file at dest.
func Download(ctx context.Context, d Downloader, url, dest string) (int64, error) {
	if url == "" {
		return 0, services.Wrap(services.ErrValidation, "render", "download", "job has no artifact", nil)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("create download dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".reel-*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	n, err := d.Download(ctx, url, tmp)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("move download into place: %w", err)
	}
	return n, nil
}
