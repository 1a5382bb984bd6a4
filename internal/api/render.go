package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"reelctl/internal/logging"
	"reelctl/internal/render"
	"reelctl/internal/services"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type renderResponse struct {
	Job   render.Job   `json:"job"`
	Phase render.Phase `json:"phase"`
}

func (s *Server) dispatchRender(c *gin.Context) {
	if s.deps.Render == nil {
		notConfigured(c, "render")
		return
	}
	var body struct {
		Background string `json:"background"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid request body: "+err.Error())
			return
		}
	}
	ctx := c.Request.Context()
	script, err := s.deps.Store.GetScript(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if script == nil {
		writeError(c, services.Wrap(services.ErrNotFound, "api", "render", "script "+c.Param("id")+" not found", nil))
		return
	}
	tracker, err := s.deps.Render.Dispatch(services.WithScriptID(ctx, script.ID), *script, body.Background)
	if err != nil {
		writeError(c, err)
		return
	}
	job := tracker.Job()
	s.remember(job.ID, tracker)
	c.JSON(http.StatusAccepted, renderResponse{Job: job, Phase: tracker.Phase()})
}

func (s *Server) renderStatus(c *gin.Context) {
	if s.deps.Render == nil {
		notConfigured(c, "render")
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	job, err := s.deps.Render.Status(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := renderResponse{Job: job}
	if t := s.tracker(id); t != nil {
		t.Observe(ctx, job)
		resp.Phase = t.Phase()
		s.forget(id)
	}
	c.JSON(http.StatusOK, resp)
}

// renderStream pushes job snapshots until the job is terminal. The poll task
// is stopped as soon as the peer disconnects.
func (s *Server) renderStream(c *gin.Context) {
	if s.deps.Render == nil {
		notConfigured(c, "render")
		return
	}
	id := c.Param("id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	tracker := s.tracker(id)
	defer s.forget(id)

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	first, err := s.deps.Render.Status(ctx, id)
	if err != nil {
		s.writeFrame(conn, gin.H{"error": err.Error(), "kind": services.Kind(err)})
		s.finishStream(conn, id)
		return
	}
	if tracker != nil {
		tracker.Observe(ctx, first)
	}
	if !s.writeFrame(conn, first) || first.Terminal() {
		s.finishStream(conn, id)
		return
	}

	task := s.deps.Render.Watch(ctx, id, tracker)
	defer task.Stop()
	for job := range task.Updates() {
		if !s.writeFrame(conn, job) {
			return
		}
	}
	s.finishStream(conn, id)
}

func (s *Server) writeFrame(conn *websocket.Conn, v any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(v); err != nil {
		s.logger.Debug("websocket write failed", logging.Error(err))
		return false
	}
	return true
}

// finishStream drops a terminal tracker before the close frame goes out.
func (s *Server) finishStream(conn *websocket.Conn, id string) {
	s.forget(id)
	s.closeStream(conn)
}

func (s *Server) closeStream(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
