package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"reelctl/internal/export"
	"reelctl/internal/logging"
	"reelctl/internal/reel"
	"reelctl/internal/services"
)

type scriptsResponse struct {
	Scripts     []reel.Script `json:"scripts"`
	Republished bool          `json:"republished,omitempty"`
	SyncError   string        `json:"sync_error,omitempty"`
}

type scriptResponse struct {
	Script    reel.Script `json:"script"`
	YAML      string      `json:"yaml,omitempty"`
	SyncError string      `json:"sync_error,omitempty"`
}

func (s *Server) listScripts(c *gin.Context) {
	ctx := c.Request.Context()
	if s.deps.Sync == nil {
		scripts, err := s.deps.Store.Scripts(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, scriptsResponse{Scripts: scripts})
		return
	}
	out, err := s.deps.Sync.SyncScripts(ctx)
	resp := scriptsResponse{Scripts: out.Items, Republished: out.Republished}
	if err != nil {
		if resp.Scripts == nil {
			local, loadErr := s.deps.Store.Scripts(ctx)
			if loadErr != nil {
				writeError(c, loadErr)
				return
			}
			resp.Scripts = local
		}
		resp.SyncError = err.Error()
		s.notifySyncFailed(ctx, "scripts", err)
	}
	if resp.Scripts == nil {
		resp.Scripts = []reel.Script{}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getScript(c *gin.Context) {
	script, err := s.deps.Store.GetScript(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if script == nil {
		writeError(c, services.Wrap(services.ErrNotFound, "api", "script", "script "+c.Param("id")+" not found", nil))
		return
	}
	block, err := export.MarshalYAML(*script)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scriptResponse{Script: *script, YAML: block})
}

func (s *Server) createScript(c *gin.Context) {
	var body reel.Script
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid script body: "+err.Error())
		return
	}
	now := time.Now()
	if strings.TrimSpace(body.ID) == "" {
		fresh := reel.NewScript(body.Name, body.Preset, now)
		body.ID = fresh.ID
		body.CreatedAt = fresh.CreatedAt
	}
	s.saveScript(c, body, http.StatusCreated)
}

func (s *Server) updateScript(c *gin.Context) {
	var body reel.Script
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid script body: "+err.Error())
		return
	}
	body.ID = c.Param("id")
	s.saveScript(c, body, http.StatusOK)
}

func (s *Server) saveScript(c *gin.Context, script reel.Script, status int) {
	ctx := c.Request.Context()
	script.Normalize()
	if script.UpdatedAt.Before(script.CreatedAt) {
		script.UpdatedAt = script.CreatedAt
	}
	if err := script.Validate(); err != nil && !isNoScenes(err) {
		badRequest(c, err.Error())
		return
	}
	saved, err := s.deps.Store.SaveScript(ctx, script)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := scriptResponse{Script: saved}
	if s.deps.Sync != nil {
		if _, err := s.deps.Sync.PushScripts(ctx); err != nil {
			logging.WarnWithContext(s.logger, "script push failed", "sync_push_failed",
				"remote copy is stale until the next sync",
				logging.String("script_id", saved.ID), logging.Error(err))
			resp.SyncError = err.Error()
		}
	}
	c.JSON(status, resp)
}

func (s *Server) deleteScript(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	removed, err := s.deps.Store.DeleteScript(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !removed {
		writeError(c, services.Wrap(services.ErrNotFound, "api", "script", "script "+id+" not found", nil))
		return
	}
	resp := gin.H{"deleted": id}
	if s.deps.Remote != nil && s.deps.Remote.Configured() {
		if err := s.deps.Remote.DeleteScript(ctx, id); err != nil {
			resp["sync_error"] = err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

func isNoScenes(err error) bool {
	return errors.Is(err, reel.ErrNoScenes)
}
