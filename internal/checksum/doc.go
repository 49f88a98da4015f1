// Package checksum computes the content fingerprints embedded into tagged
// resource names.
//
// Algorithms are exposed through the Algorithm/Accumulator pair so callers
// never depend on a concrete checksum. CRC-32 (IEEE, as used by zip and gzip)
// is the default; CRC-32C, CRC-64 (ECMA and NVMe), Adler-32, and xxHash64 are
// registered alongside it and selected by name.
//
// Fingerprints are checksums, not cryptographic hashes: distinct contents can
// collide. That risk is accepted for cache-busting purposes.
package checksum
