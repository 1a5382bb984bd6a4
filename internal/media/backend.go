package media

import (
	"context"

	"reelctl/internal/backend"
)

// Backend posts files to the render backend's own asset endpoints.
type Backend struct {
	Client *backend.Client
}

func (Backend) Name() string    { return "backend" }
func (Backend) MaxBytes() int64 { return MaxBackendBytes }

func (s Backend) Upload(ctx context.Context, file File) (string, error) {
	var (
		res backend.UploadResult
		err error
	)
	if file.Kind == KindOverlay {
		res, err = s.Client.UploadOverlay(ctx, file.Name, file.Path)
	} else {
		res, err = s.Client.UploadBackground(ctx, file.Name, file.Path)
	}
	if err != nil {
		return "", stageErr(s.Name(), StagePut, err)
	}
	return res.Path, nil
}
