// Package main hosts the tagres CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the structured logger and hands the work to the internal packages:
// tagrun for tagging passes, watch for re-runs on change, index for reading
// generated indexes and history for the run ledger. Command output goes to
// stdout; logs go to stderr and the optional log file.
package main
