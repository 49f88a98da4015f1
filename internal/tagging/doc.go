// Package tagging turns resource paths into fingerprinted names.
//
// Tagging runs in two stages that are tested independently:
//
//  1. ResolvePlaceholder swaps every "@{unique.id}" in the replacement
//     template for the fingerprint.
//  2. Substitute applies the untagged search pattern to the relative path and
//     expands "$n", "${name}", and backslash escapes in the resolved template
//     for every match.
//
// With the defaults, "dir/logo.png" becomes "dir/logo_<fingerprint>.png".
// Only the last extension is split off: "archive.tar.gz" becomes
// "archive.tar_<fingerprint>.gz".
package tagging
