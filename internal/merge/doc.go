// Package merge reconciles the local script store with the remote sync
// webhook.
//
// Scripts merge last-writer-wins on UpdatedAt (ties keep the local copy);
// history merges by id with local precedence. An Engine runs one sync cycle:
// fetch remote, merge, write back locally, and re-publish the merged
// collection when the remote copy was out of step. Re-publish failures are
// logged and recorded on the Outcome but never returned as errors.
package merge
