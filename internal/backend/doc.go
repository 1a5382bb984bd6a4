// Package backend is the client for the render backend: preset and asset
// catalogues, direct render jobs, AI script drafts, and asset uploads for
// local-network deployments.
package backend
