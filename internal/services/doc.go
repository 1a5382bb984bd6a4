// Package services defines shared utilities consumed by the reel clients and
// the command surface.
//
// Key responsibilities:
//   - Context helpers that stamp script IDs, render run IDs, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so configuration, transport,
//     rejection, not-found, and media failures can be told apart with errors.Is.
//
// Use these helpers when wiring a new client so operational behaviour stays
// uniform across the CLI and the local API.
package services
