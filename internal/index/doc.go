// Package index records and reads the original-to-tagged name mapping.
//
// The on-disk format is one "original=tagged" line per resource with
// platform line terminators, no header, and insertion order. It is written in
// ISO-8859-1 by default, so any properties-file reader can consume it; UTF-8
// or any other IANA charset can be configured instead.
//
// Names are not escaped. A name containing '=' or a line break produces a
// line that does not parse back to the original pair.
package index
