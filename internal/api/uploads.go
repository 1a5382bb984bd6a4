package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"reelctl/internal/logging"
	"reelctl/internal/media"
)

func (s *Server) upload(c *gin.Context) {
	if s.deps.Uploader == nil {
		notConfigured(c, "media upload")
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field \"file\" is required")
		return
	}
	kind := media.KindBackground
	if strings.EqualFold(strings.TrimSpace(c.PostForm("kind")), string(media.KindOverlay)) {
		kind = media.KindOverlay
	}

	base := ""
	if s.deps.Config != nil {
		base = s.deps.Config.Upload.WorkDir
	}
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			writeError(c, err)
			return
		}
	}
	dir, err := os.MkdirTemp(base, "upload-*")
	if err != nil {
		writeError(c, err)
		return
	}
	defer os.RemoveAll(dir)

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "upload"
	}
	local := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(header, local); err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	res, err := s.deps.Uploader.Upload(ctx, local, kind)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.deps.Notifier.NotifyUploadCompleted(ctx, res.Name, res.Strategy, res.Size); err != nil {
		s.logger.Debug("upload notification failed", logging.Error(err))
	}
	c.JSON(http.StatusOK, res)
}
