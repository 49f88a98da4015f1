//go:build windows

package resources

import (
	"strings"

	"golang.org/x/sys/windows"
)

// hiddenEntry treats dot-prefixed names as hidden as well, so checkouts
// produced on other platforms behave the same.
func hiddenEntry(path string, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := windows.GetFileAttributes(ptr)
	if err != nil {
		return false
	}
	return attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0
}
