// Package localstore persists scripts, generation history, the draft memo, and
// the settings record in a local SQLite database.
//
// The browser build kept each collection as one JSON document under a fixed
// key; the same layout is preserved here (one row per key) so collections are
// always read and rewritten whole. Reads of a corrupt payload degrade to an
// empty collection and are logged. Writes go through a small SQLITE_BUSY retry
// helper but there is no cross-call locking: concurrent read-modify-write
// sequences may clobber each other, and the last write wins.
package localstore
