package tagging

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"tagres/internal/checksum"
	"tagres/internal/faults"
	"tagres/internal/logging"
)

const (
	// Placeholder is replaced with the fingerprint before group references
	// are expanded.
	Placeholder = "@{unique.id}"
	// DefaultSearchPattern captures the path up to an optional final extension
	// (group 1) and the dot-prefixed extension itself (group 2).
	DefaultSearchPattern = `^(.*?)(\.[^./]+)?$`
	// DefaultReplacement yields name_<fingerprint>.ext.
	DefaultReplacement = "$1_" + Placeholder + "$2"
)

// ResolvePlaceholder substitutes every placeholder occurrence in template
// with id.
func ResolvePlaceholder(template, id string) string {
	return strings.ReplaceAll(template, Placeholder, id)
}

// Tagger derives tagged names from resource paths. It holds the run-wide
// pattern pair and checksum algorithm and carries no per-file state.
type Tagger struct {
	pattern   *regexp.Regexp
	template  string
	algorithm checksum.Algorithm
	logger    *slog.Logger
}

// Tag is the outcome of tagging one resource.
type Tag struct {
	Fingerprint uint64
	ID          string
	Name        string
}

// New compiles the search pattern and validates the replacement template once
// so malformed configuration fails before any file is touched.
func New(pattern, template string, alg checksum.Algorithm, logger *slog.Logger) (*Tagger, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultSearchPattern
	}
	if template == "" {
		template = DefaultReplacement
	}
	if alg == nil {
		alg = checksum.Default()
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "tagging", "compile untagged search pattern", pattern, err)
	}
	if _, err := parseReplacement(re, ResolvePlaceholder(template, "0")); err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "tagging", "parse", "", quoteGroupError(template, err))
	}
	return &Tagger{
		pattern:   re,
		template:  template,
		algorithm: alg,
		logger:    logging.NewComponentLogger(logger, "tagger"),
	}, nil
}

// Algorithm reports the checksum used for fingerprints.
func (t *Tagger) Algorithm() checksum.Algorithm {
	return t.algorithm
}

// Name applies the pattern pair to a slash-separated relative path using the
// given fingerprint string.
func (t *Tagger) Name(relPath, id string) (string, error) {
	replacement := ResolvePlaceholder(t.template, id)
	tagged, err := Substitute(t.pattern, relPath, replacement)
	if err != nil {
		return "", faults.Wrap(faults.ErrConfiguration, "tagging", "substitute", relPath, err)
	}
	if tagged == "" || !filepath.IsLocal(filepath.FromSlash(tagged)) {
		return "", faults.Wrap(faults.ErrConfiguration, "tagging", "substitute",
			fmt.Sprintf("tagged name %q for %q escapes the output directory", tagged, relPath), nil)
	}
	return tagged, nil
}

// Tag fingerprints baseDir/relPath and derives its tagged name.
func (t *Tagger) Tag(baseDir, relPath string) (Tag, error) {
	source := filepath.Join(baseDir, filepath.FromSlash(relPath))
	value, err := checksum.File(source, t.algorithm, t.logger)
	if err != nil {
		return Tag{}, err
	}
	id := checksum.Format(value)
	name, err := t.Name(relPath, id)
	if err != nil {
		return Tag{}, err
	}
	return Tag{Fingerprint: value, ID: id, Name: name}, nil
}
