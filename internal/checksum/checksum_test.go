package checksum

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"tagres/internal/faults"
)

func TestKnownCheckValues(t *testing.T) {
	cases := []struct {
		alg   string
		input string
		want  uint64
	}{
		{"crc32", "", 0},
		{"crc32", "123456789", 3421780262},
		{"crc32", "hello\n", 909783072},
		{"crc32c", "123456789", 3808858755},
		{"crc64", "123456789", 11051210869376104954},
		{"crc64nvme", "123456789", 12577168950296156296},
		{"adler32", "123456789", 152961502},
		{"adler32", "", 1},
		{"xxhash64", "", 17241709254077376921},
	}
	for _, tc := range cases {
		alg, err := Lookup(tc.alg)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tc.alg, err)
		}
		got, err := Sum(strings.NewReader(tc.input), alg)
		if err != nil {
			t.Fatalf("Sum(%s, %q): %v", tc.alg, tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("Sum(%s, %q) = %d, want %d", tc.alg, tc.input, got, tc.want)
		}
	}
}

func TestSumIndependentOfReadSize(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 1000)
	whole, err := Sum(bytes.NewReader(data), Default())
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if whole != 3184429911 {
		t.Fatalf("unexpected crc32: %d", whole)
	}
	trickle, err := Sum(iotest.OneByteReader(bytes.NewReader(data)), Default())
	if err != nil {
		t.Fatalf("Sum one-byte: %v", err)
	}
	if trickle != whole {
		t.Fatalf("chunking changed result: %d vs %d", trickle, whole)
	}
}

func TestSumPropagatesReadError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := Sum(iotest.ErrReader(boom), Default()); !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestFileIsDeterministicAcrossNames(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.css")
	b := filepath.Join(dir, "nested", "b.png")
	if err := os.MkdirAll(filepath.Dir(b), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("hello\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	va, err := File(a, Default(), nil)
	if err != nil {
		t.Fatalf("File(a): %v", err)
	}
	vb, err := File(b, Default(), nil)
	if err != nil {
		t.Fatalf("File(b): %v", err)
	}
	if va != vb || va != 909783072 {
		t.Fatalf("expected identical fingerprints 909783072, got %d and %d", va, vb)
	}
}

func TestFileMissingIsIOError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")
	_, err := File(missing, Default(), nil)
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
	if !strings.Contains(err.Error(), missing) {
		t.Fatalf("expected path in error, got %q", err.Error())
	}
}

func TestLookup(t *testing.T) {
	alg, err := Lookup("")
	if err != nil || alg.Name() != DefaultAlgorithm {
		t.Fatalf("expected default algorithm, got %v, %v", alg, err)
	}
	if alg, err := Lookup(" CRC32C "); err != nil || alg.Name() != "crc32c" {
		t.Fatalf("expected case-insensitive lookup, got %v, %v", alg, err)
	}
	if _, err := Lookup("md5"); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(0); got != "0" {
		t.Fatalf("Format(0) = %q", got)
	}
	if got := Format(3871121566); got != "3871121566" {
		t.Fatalf("Format = %q", got)
	}
}
