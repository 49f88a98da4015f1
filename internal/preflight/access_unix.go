//go:build !windows

package preflight

import "golang.org/x/sys/unix"

func checkAccess(path string, write bool) error {
	mode := uint32(unix.R_OK | unix.X_OK)
	if write {
		mode |= unix.W_OK
	}
	return unix.Access(path, mode)
}
