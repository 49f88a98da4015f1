// Package tagrun drives a tagging pass over enumerated resource groups.
//
// For each included resource the run computes the fingerprint, derives the
// tagged name, records the index entry and then copies the file under the
// output directory. Processing is sequential and stops at the first error;
// nothing written before the failure is rolled back. Files that already live
// under the output directory are skipped so an output nested inside a
// resource directory is never re-tagged.
//
// LockOutput serializes runs across processes that share an output
// directory, and Plan previews a run without touching the filesystem.
package tagrun
