package tagging

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"tagres/internal/checksum"
	"tagres/internal/faults"
)

func newDefaultTagger(t *testing.T) *Tagger {
	t.Helper()
	tagger, err := New(DefaultSearchPattern, DefaultReplacement, checksum.Default(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tagger
}

func TestNameWorkedExamples(t *testing.T) {
	tagger := newDefaultTagger(t)
	cases := []struct {
		path string
		id   string
		want string
	}{
		{"test.txt", "3871121566", "test_3871121566.txt"},
		{"test", "2494046904", "test_2494046904"},
		{"test.png", "0", "test_0.png"},
		{"dir/test2.txt", "0", "dir/test2_0.txt"},
	}
	for _, tc := range cases {
		got, err := tagger.Name(tc.path, tc.id)
		if err != nil {
			t.Fatalf("Name(%q): %v", tc.path, err)
		}
		if got != tc.want {
			t.Fatalf("Name(%q, %q) = %q, want %q", tc.path, tc.id, got, tc.want)
		}
	}
}

func TestNameEdgeCases(t *testing.T) {
	tagger := newDefaultTagger(t)
	cases := []struct {
		path string
		want string
	}{
		// Only the final extension is split off.
		{"archive.tar.gz", "archive.tar_7.gz"},
		// Dots in directory names are not extensions.
		{"v1.2/app", "v1.2/app_7"},
		{"css/v1.2/site.min.css", "css/v1.2/site.min_7.css"},
		// A trailing dot has no extension characters after it.
		{"notes.", "notes._7"},
		// A leading dot is captured as the extension.
		{".htaccess", "_7.htaccess"},
	}
	for _, tc := range cases {
		got, err := tagger.Name(tc.path, "7")
		if err != nil {
			t.Fatalf("Name(%q): %v", tc.path, err)
		}
		if got != tc.want {
			t.Fatalf("Name(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestResolvePlaceholder(t *testing.T) {
	got := ResolvePlaceholder("$1-@{unique.id}/@{unique.id}$2", "42")
	if got != "$1-42/42$2" {
		t.Fatalf("ResolvePlaceholder = %q", got)
	}
	if got := ResolvePlaceholder("static", "42"); got != "static" {
		t.Fatalf("expected template without placeholder unchanged, got %q", got)
	}
}

func TestSubstituteGroupReferences(t *testing.T) {
	twoGroups := regexp.MustCompile(`^(.*?)(\.[^./]+)?$`)
	named := regexp.MustCompile(`^(?P<stem>[^.]*)(?P<ext>\..*)?$`)
	many := regexp.MustCompile(`(a)(b)(c)(d)(e)(f)(g)(h)(i)(j)(k)(l)`)

	cases := []struct {
		name string
		re   *regexp.Regexp
		in   string
		repl string
		want string
	}{
		{"underscore after group", twoGroups, "a.css", "$1_x$2", "a_x.css"},
		{"digits beyond group count are literal", twoGroups, "a.css", "$12$2", "a2.css"},
		{"group zero", twoGroups, "a.css", "[$0]", "[a.css]"},
		{"unmatched group is empty", twoGroups, "README", "$1$2!", "README!"},
		{"escaped dollar", twoGroups, "a.css", `\$1$2`, "$1.css"},
		{"escaped backslash", twoGroups, "a.css", `$1\\$2`, `a\.css`},
		{"named groups", named, "logo.png", "${stem}-v${ext}", "logo-v.png"},
		{"two digit group", many, "abcdefghijkl", "$12$1", "la"},
		{"no match copies input", regexp.MustCompile(`^zzz$`), "a.css", "x", "a.css"},
		{"replace all matches", regexp.MustCompile(`o`), "foo/bor", "0", "f00/b0r"},
	}
	for _, tc := range cases {
		got, err := Substitute(tc.re, tc.in, tc.repl)
		if err != nil {
			t.Fatalf("%s: Substitute: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: Substitute(%q, %q) = %q, want %q", tc.name, tc.in, tc.repl, got, tc.want)
		}
	}
}

func TestSubstituteRejectsMalformedReplacement(t *testing.T) {
	re := regexp.MustCompile(`^(.*?)(\.[^./]+)?$`)
	for _, repl := range []string{
		"$",
		`trailing\`,
		"$x",
		"$3",
		"${missing}",
		"${}",
		"${open",
	} {
		if _, err := Substitute(re, "a.css", repl); err == nil {
			t.Fatalf("expected error for replacement %q", repl)
		}
	}
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	if _, err := New(`^(unclosed`, DefaultReplacement, nil, nil); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error for bad pattern, got %v", err)
	}
	if _, err := New(DefaultSearchPattern, "$1_@{unique.id}$9", nil, nil); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error for bad template, got %v", err)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	tagger, err := New("", "", nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tagger.Algorithm().Name() != checksum.DefaultAlgorithm {
		t.Fatalf("expected default algorithm, got %s", tagger.Algorithm().Name())
	}
	got, err := tagger.Name("a/b.js", "1")
	if err != nil || got != "a/b_1.js" {
		t.Fatalf("unexpected default tagging: %q, %v", got, err)
	}
}

func TestNameRejectsEscapingOutput(t *testing.T) {
	tagger, err := New(DefaultSearchPattern, "../$1_@{unique.id}$2", nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = tagger.Name("a.css", "1")
	if !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "escapes") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestTagFingerprintsContent(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "dir"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "dir", "a.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "empty.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tagger := newDefaultTagger(t)
	tag, err := tagger.Tag(base, "dir/a.txt")
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if tag.Fingerprint != 909783072 || tag.ID != "909783072" || tag.Name != "dir/a_909783072.txt" {
		t.Fatalf("unexpected tag: %+v", tag)
	}

	empty, err := tagger.Tag(base, "empty.png")
	if err != nil {
		t.Fatalf("Tag empty: %v", err)
	}
	if empty.Name != "empty_0.png" {
		t.Fatalf("unexpected empty tag: %+v", empty)
	}

	if _, err := tagger.Tag(base, "missing.css"); !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected io error for missing file, got %v", err)
	}
}
