// Package webhook talks to the script generation webhook. Every call is a
// POST of a JSON envelope `{action, ...}` sent as text/plain; responses carry
// `{ok, error?, ...}`. The same endpoint stores the remote copies of the
// script and history collections used by the merge engine.
package webhook
