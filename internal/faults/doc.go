// Package faults defines the error markers shared by the tagging pipeline.
//
// Every fatal condition is tagged with one of three sentinels so the CLI and
// the run history can classify it without string matching:
//   - ErrConfiguration: bad pattern, template, encoding, checksum, or missing
//     resource groups. Detected before any file is processed.
//   - ErrIO: unreadable sources, uncreatable directories, failed copies. The
//     message always names the path involved.
//   - ErrIndexWrite: the index could not be flushed or closed.
//
// Wrap keeps both the marker and the underlying cause reachable through
// errors.Is.
package faults
