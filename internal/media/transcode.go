package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"reelctl/internal/logging"
	"reelctl/internal/media/ffprobe"
)

// Transcoder rewrites a video into a smaller rendition and returns the new
// path. Implementations write into workDir.
type Transcoder interface {
	Name() string
	Transcode(ctx context.Context, input, workDir string) (string, error)
}

// Noop leaves files untouched.
type Noop struct{}

func (Noop) Name() string { return "none" }

func (Noop) Transcode(_ context.Context, input, _ string) (string, error) { return input, nil }

// FFmpeg scales to at most MaxWidth pixels wide at roughly BitRate bits per
// second. Clips that already fit are passed through.
type FFmpeg struct {
	Binary      string
	ProbeBinary string
	MaxWidth    int
	BitRate     int
	Logger      *slog.Logger
}

func (f FFmpeg) Name() string { return "ffmpeg" }

// Args returns the ffmpeg arguments used to transcode input into output.
func (f FFmpeg) Args(input, output string) []string {
	width := f.MaxWidth
	if width <= 0 {
		width = 720
	}
	rate := f.BitRate
	if rate <= 0 {
		rate = 2_000_000
	}
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", input,
		"-vf", fmt.Sprintf("scale='min(%d,iw)':-2", width),
		"-c:v", "libx264", "-preset", "veryfast",
		"-b:v", strconv.Itoa(rate), "-maxrate", strconv.Itoa(rate), "-bufsize", strconv.Itoa(rate * 2),
		"-c:a", "aac", "-b:a", "128k",
		"-movflags", "+faststart",
		output,
	}
}

func (f FFmpeg) Transcode(ctx context.Context, input, workDir string) (string, error) {
	logger := logging.NewComponentLogger(f.Logger, "transcode")
	if probe, err := ffprobe.Inspect(ctx, f.ProbeBinary, input); err == nil {
		if probe.Fits(f.MaxWidth, int64(f.BitRate)) {
			logger.Debug("video already within bounds", logging.String("input", input))
			return input, nil
		}
	} else {
		logger.Debug("ffprobe unavailable, transcoding unconditionally", logging.Error(err))
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	base := filepath.Base(input)
	output := filepath.Join(workDir, strings.TrimSuffix(base, filepath.Ext(base))+"-720p.mp4")

	binary := f.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, f.Args(input, output)...) //nolint:gosec
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(output)
		return "", fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	logger.Info("video transcoded", logging.String("input", input), logging.String("output", output))
	return output, nil
}

// IsVideo reports whether path looks like a video, by extension first and by
// content sniffing otherwise.
func IsVideo(path string) bool {
	return strings.HasPrefix(DetectContentType(path), "video/")
}

// videoTypes covers containers the platform MIME table often lacks.
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".3gp":  "video/3gpp",
}

// DetectContentType returns the MIME type of path.
func DetectContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := videoTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	f, err := os.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()
	head := make([]byte, 512)
	n, _ := f.Read(head)
	return http.DetectContentType(head[:n])
}
