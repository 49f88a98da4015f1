// Package watch re-runs tagging when resource directories change.
//
// A Watcher registers every directory below its roots with fsnotify, feeds
// change events through a Debouncer and invokes its callback from the event
// loop, so at most one run executes at a time.
package watch
