// Package reel defines the script data model shared by the store, the sync
// and generation clients, and the render dispatcher.
//
// Scripts are ordered scene lists with an optional call-to-action. History
// items record each successful generation together with the webhook's YAML
// markup. The package also owns the fixed enumerations (expressions,
// templates, target platforms) and identifier generation.
package reel
