//go:build !windows

package resources

import "strings"

func hiddenEntry(_ string, name string) bool {
	return strings.HasPrefix(name, ".")
}
