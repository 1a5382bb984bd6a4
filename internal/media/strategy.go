package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"reelctl/internal/services"
)

// Strategy ceilings. Anything above a ceiling is rejected before a request is
// made.
const (
	MaxContentsBytes    int64 = 1 << 20
	MaxGitDataBytes     int64 = 75 << 20
	MaxReleaseBytes     int64 = 2 << 30
	MaxBackendBytes     int64 = 200 << 20
	MaxObjectStoreBytes int64 = 5 << 30
)

// Upload stages reported on UploadError.
const (
	StageRead        = "read"
	StageTranscode   = "transcode"
	StagePrecheck    = "precheck"
	StageLookup      = "lookup"
	StagePut         = "put"
	StageBlob        = "blob"
	StageRef         = "ref"
	StageCommit      = "commit"
	StageTree        = "tree"
	StageNewCommit   = "new-commit"
	StageUpdateRef   = "update-ref"
	StageRelease     = "release"
	StageDeleteAsset = "delete-asset"
	StageUploadAsset = "upload-asset"
	StagePutObject   = "put-object"
)

// ErrTooLarge reports a file above the selected strategy's ceiling.
var ErrTooLarge = errors.New("file exceeds upload limit")

// UploadError tags a failure with the strategy and the step that failed.
type UploadError struct {
	Strategy string
	Stage    string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload via %s failed at %s: %v", e.Strategy, e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

func stageErr(strategy, stage string, err error) error {
	return &UploadError{Strategy: strategy, Stage: stage, Err: err}
}

// Kind distinguishes backgrounds from overlays.
type Kind string

const (
	KindBackground Kind = "background"
	KindOverlay    Kind = "overlay"
)

// File is a normalised, size-checked upload candidate.
type File struct {
	// Name is the normalised file name.
	Name        string
	Path        string
	Size        int64
	ContentType string
	Kind        Kind
}

// Open opens the file for streaming.
func (f File) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// ReadAll loads the whole file. Only the size-bounded strategies use it.
func (f File) ReadAll() ([]byte, error) {
	return os.ReadFile(f.Path)
}

// Strategy moves a file to its destination and returns the relative token
// the render pipeline references it by.
type Strategy interface {
	Name() string
	MaxBytes() int64
	Upload(ctx context.Context, file File) (string, error)
}

func tooLarge(strategy string, size, limit int64) error {
	err := services.Wrap(services.ErrValidation, "media", "precheck",
		fmt.Sprintf("file is %s, limit for %s is %s", humanBytes(size), strategy, humanBytes(limit)), ErrTooLarge)
	return stageErr(strategy, StagePrecheck, err)
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
