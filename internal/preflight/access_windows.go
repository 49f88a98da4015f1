//go:build windows

package preflight

import (
	"errors"
	"io"
	"os"
)

// checkAccess probes the directory directly; Windows ACLs are not reflected
// in mode bits.
func checkAccess(path string, write bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	_, err = f.Readdirnames(1)
	_ = f.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if !write {
		return nil
	}
	probe, err := os.CreateTemp(path, ".tagres-probe-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
