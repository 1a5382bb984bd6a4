// Package main hosts the reelctl CLI entrypoint and command graph.
//
// The Cobra command tree drives the local script store, generation webhook,
// media uploads, render dispatch, and the optional local HTTP API. Config,
// store, and client construction live in commandContext so subcommands stay
// focused on presentation; behaviour belongs in the internal packages.
package main
