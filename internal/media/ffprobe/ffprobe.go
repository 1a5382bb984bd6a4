package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Result is the subset of ffprobe output reelctl inspects.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes one stream in the container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	BitRate   string `json:"bit_rate"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Format is container-level metadata.
type Format struct {
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect runs ffprobe on path and decodes its JSON report.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	return Parse(output)
}

// Parse decodes raw ffprobe JSON.
func Parse(raw []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Video returns the first video stream.
func (r Result) Video() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, true
		}
	}
	return Stream{}, false
}

// VideoBitRate returns the video stream bitrate, falling back to the
// container bitrate, or 0 when neither is known.
func (r Result) VideoBitRate() int64 {
	if v, ok := r.Video(); ok {
		if rate := parseInt(v.BitRate); rate > 0 {
			return rate
		}
	}
	return parseInt(r.Format.BitRate)
}

// Fits reports whether the video is no wider than maxWidth and its bitrate,
// when known, does not exceed maxBitRate.
func (r Result) Fits(maxWidth int, maxBitRate int64) bool {
	v, ok := r.Video()
	if !ok || v.Width <= 0 {
		return false
	}
	if maxWidth > 0 && v.Width > maxWidth {
		return false
	}
	rate := r.VideoBitRate()
	if maxBitRate > 0 && (rate <= 0 || rate > maxBitRate) {
		return false
	}
	return true
}

func parseInt(value string) int64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return int64(parsed)
}
