package index

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"tagres/internal/faults"
)

// Entry maps an original resource name to its tagged name.
type Entry struct {
	Original string
	Tagged   string
}

// Index is a parsed index file. Keys keep their first-seen order; a repeated
// key takes the last value.
type Index struct {
	order  []string
	values map[string]string
}

// Lookup returns the tagged name for original.
func (idx *Index) Lookup(original string) (string, bool) {
	v, ok := idx.values[original]
	return v, ok
}

// Len reports the number of distinct original names.
func (idx *Index) Len() int {
	return len(idx.values)
}

// Entries returns the mapping in first-seen key order.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, 0, len(idx.order))
	for _, key := range idx.order {
		out = append(out, Entry{Original: key, Tagged: idx.values[key]})
	}
	return out
}

// Parse reads key=value lines. Blank lines and lines starting with '#' or '!'
// are skipped. A line without '=' maps the whole line to an empty value.
func Parse(r io.Reader) (*Index, error) {
	idx := &Index{values: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		trimmed := strings.TrimLeft(line, " \t\f")
		if trimmed == "" || trimmed[0] == '#' || trimmed[0] == '!' {
			continue
		}
		key, value, _ := strings.Cut(trimmed, "=")
		if _, seen := idx.values[key]; !seen {
			idx.order = append(idx.order, key)
		}
		idx.values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Load parses the index file at path, decoding it with enc (ISO-8859-1 when
// nil).
func Load(path string, enc encoding.Encoding) (*Index, error) {
	if enc == nil {
		enc = charmap.ISO8859_1
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "index", "open", path, err)
	}
	defer file.Close()

	idx, err := Parse(transform.NewReader(file, enc.NewDecoder()))
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "index", "parse", fmt.Sprintf("read %s", path), err)
	}
	return idx, nil
}
