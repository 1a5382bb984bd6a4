// Package api serves the local HTTP API the script editor talks to.
//
// Routes are grouped under /api and share one bearer-token check when
// server.token is set. Handlers translate error markers from
// internal/services into status codes: validation and configuration
// problems are 400, missing records 404, rejected or unusable input 422, and
// upstream transport failures 502.
//
// Render progress is streamed on /ws/render/:id. Each socket owns the poll
// task feeding it and stops that task when the peer goes away.
package api
