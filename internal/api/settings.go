package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reelctl/internal/config"
)

func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.deps.Store.Settings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings.Redacted()})
}

func (s *Server) patchSettings(c *gin.Context) {
	var patch config.Settings
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid settings body: "+err.Error())
		return
	}
	saved, err := s.deps.Store.SaveSettings(c.Request.Context(), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": saved.Redacted(), "restart_required": true})
}

func (s *Server) getMemo(c *gin.Context) {
	memo, err := s.deps.Store.Memo(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memo": memo})
}

func (s *Server) setMemo(c *gin.Context) {
	var body struct {
		Memo string `json:"memo"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid memo body: "+err.Error())
		return
	}
	if err := s.deps.Store.SetMemo(c.Request.Context(), body.Memo); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memo": body.Memo})
}

func (s *Server) clearMemo(c *gin.Context) {
	if err := s.deps.Store.ClearMemo(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
