// Package preflight checks what reelctl needs before it talks to anything:
// a writable data directory, the transcoder binaries, and the remote
// endpoints of the features that are configured.
//
// "reelctl doctor" prints RunAll's results. Checks for features that are not
// configured are reported as skipped rather than failed.
package preflight
