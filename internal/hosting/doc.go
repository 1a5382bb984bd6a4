// Package hosting is a small client for the source-hosting REST API: file
// contents, low-level git objects, releases, repository dispatch, and
// workflow runs with their artifacts. Requests are bearer-authenticated and
// paced by a token-bucket limiter.
package hosting
