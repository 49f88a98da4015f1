package faults_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"tagres/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrIO, "checksum", "read", "/tmp/a.txt", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"checksum", "read", "/tmp/a.txt", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := faults.Wrap(faults.ErrConfiguration, "", "", "", nil)
	if !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "tagging failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{faults.Wrap(faults.ErrConfiguration, "tagging", "compile", "bad", nil), "configuration"},
		{faults.Wrap(faults.ErrIO, "copy", "", "", errors.New("disk full")), "io"},
		{faults.Wrap(faults.ErrIndexWrite, "index", "close", "", nil), "index_write"},
		{fmt.Errorf("run: %w", context.Canceled), "canceled"},
		{errors.New("other"), "unknown"},
	}
	for _, tc := range cases {
		if got := faults.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
