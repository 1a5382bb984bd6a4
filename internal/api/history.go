package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reelctl/internal/reel"
	"reelctl/internal/services"
)

type historyResponse struct {
	History     []reel.HistoryItem `json:"history"`
	Republished bool               `json:"republished,omitempty"`
	SyncError   string             `json:"sync_error,omitempty"`
}

func (s *Server) listHistory(c *gin.Context) {
	ctx := c.Request.Context()
	var resp historyResponse
	if s.deps.Sync != nil {
		out, err := s.deps.Sync.SyncHistory(ctx)
		resp.History, resp.Republished = out.Items, out.Republished
		if err != nil {
			resp.SyncError = err.Error()
			s.notifySyncFailed(ctx, "history", err)
		}
	}
	if resp.History == nil {
		items, err := s.deps.Store.History(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		resp.History = items
	}
	if resp.History == nil {
		resp.History = []reel.HistoryItem{}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getHistory(c *gin.Context) {
	item, err := s.deps.Store.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if item == nil {
		writeError(c, services.Wrap(services.ErrNotFound, "api", "history", "history item "+c.Param("id")+" not found", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (s *Server) deleteHistory(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	remaining, removed, err := s.deps.Store.DeleteHistory(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !removed {
		writeError(c, services.Wrap(services.ErrNotFound, "api", "history", "history item "+id+" not found", nil))
		return
	}
	resp := gin.H{"deleted": id}
	if s.deps.Remote != nil && s.deps.Remote.Configured() {
		if err := s.deps.Remote.SaveHistory(ctx, remaining); err != nil {
			resp["sync_error"] = err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}
