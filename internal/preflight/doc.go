// Package preflight checks that a configuration can run before any file is
// touched: resource directories are readable, output and state directories
// are writable or creatable, and the tagging settings resolve.
//
// `tagres config validate` renders the results as a table.
package preflight
