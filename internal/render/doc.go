// Package render dispatches scripts for rendering and observes the resulting
// jobs. Two dispatchers exist: Direct drives the render backend and is polled
// at a short interval; Workflow fires a repository dispatch and resolves the
// workflow run it started, then reports run snapshots and the artifact URL.
//
// Observation runs on a Task, a cancellable handle that owns its goroutine
// and ticker and stops on the first terminal status, on Stop, or when its
// context ends.
package render
