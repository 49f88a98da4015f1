package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"tagres/internal/faults"
)

// DefaultEncoding is the charset used when none is configured.
const DefaultEncoding = "ISO-8859-1"

// LookupEncoding resolves an IANA charset name. An empty name selects
// ISO-8859-1.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return charmap.ISO8859_1, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "index", "lookup encoding", fmt.Sprintf("unknown charset %q", name), err)
	}
	if enc == nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "index", "lookup encoding", fmt.Sprintf("charset %q is unsupported in this environment", name), nil)
	}
	return enc, nil
}

// LineTerminator is the platform line separator written after each entry.
func LineTerminator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// Writer appends original=tagged lines to an index file. It is not safe for
// concurrent use.
type Writer struct {
	path     string
	file     *os.File
	buf      *bufio.Writer
	encoder  *encoding.Encoder
	count    int
	replaced int
	closed   bool
}

// Open creates dir if needed and truncates dir/filename for writing.
func Open(dir, filename string, enc encoding.Encoding) (*Writer, error) {
	if enc == nil {
		enc = charmap.ISO8859_1
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "index", "create directory", dir, err)
	}
	path := filepath.Join(dir, filename)
	file, err := os.Create(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "index", "open", fmt.Sprintf("could not open index file %s for writing", path), err)
	}
	return &Writer{
		path:    path,
		file:    file,
		buf:     bufio.NewWriter(file),
		encoder: enc.NewEncoder(),
	}, nil
}

// Path returns the index file location.
func (w *Writer) Path() string {
	return w.path
}

// Len reports how many lines were recorded.
func (w *Writer) Len() int {
	return w.count
}

// Replaced reports how many characters could not be represented in the
// index encoding and were written as '?'.
func (w *Writer) Replaced() int {
	return w.replaced
}

// Record appends one entry. Neither name is escaped; a name containing '=' or
// a line break yields a line that will not parse back to the same pair.
func (w *Writer) Record(original, tagged string) error {
	if w.closed {
		return faults.Wrap(faults.ErrIndexWrite, "index", "record", w.path+" is closed", nil)
	}
	line := w.encodeLine(original + "=" + tagged + LineTerminator())
	if _, err := w.buf.Write(line); err != nil {
		return faults.Wrap(faults.ErrIndexWrite, "index", "record", w.path, err)
	}
	w.count++
	return nil
}

// encodeLine converts s to the target charset, substituting '?' for runes
// the charset cannot represent.
func (w *Writer) encodeLine(s string) []byte {
	out, err := w.encoder.String(s)
	if err == nil {
		return []byte(out)
	}
	var b []byte
	for _, r := range s {
		part, err := w.encoder.String(string(r))
		if err != nil {
			w.replaced++
			part = "?"
		}
		b = append(b, part...)
	}
	return b
}

// Close flushes and releases the index file. Calls after the first are no-ops.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return faults.Wrap(faults.ErrIndexWrite, "index", "flush", w.path, flushErr)
	}
	if closeErr != nil {
		return faults.Wrap(faults.ErrIndexWrite, "index", "close", w.path, closeErr)
	}
	return nil
}
