// Package journal persists installation runs to a local SQLite database.
//
// Every installer invocation appends one run row plus one row per executed
// step, giving the history command a durable ledger of what was installed
// where, when, and how it ended. Admin passwords are stored only as bcrypt
// hashes: the journal is a plain file in the user's data directory.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of a flat
// log file because:
// 1. No external dependencies - the journal is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. The history command wants filtered, ordered queries, not log scans
// 4. WAL mode keeps a crashed install from corrupting earlier entries
package journal
