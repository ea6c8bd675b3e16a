// Package stores persists the megaverse run journal.
//
// SQLiteStore implements engine.Journal on top of modernc.org/sqlite with
// WAL mode and embedded golang-migrate migrations. Each run gets a row in
// runs, and each cell that reached a terminal state gets a row in placements.
package stores
