// Package history keeps a SQLite ledger of tagging runs.
//
// Each run gets a UUID, its start and finish times, the output directory,
// the checksum algorithm and, when it failed, the error kind and message.
// The tagged entries of a run are buffered by a Recorder and written in the
// same transaction that marks the run finished, so a crashed process leaves
// a run in the running state with no entries.
package history
