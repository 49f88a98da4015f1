package resources

import (
	"path/filepath"
	"strings"
)

// IsHidden reports whether the descriptor's file, or any directory between it
// and the base directory, is hidden. The base directory itself is not
// considered.
func IsHidden(desc Descriptor) bool {
	current := desc.BaseDir
	for _, name := range strings.Split(desc.Path, "/") {
		if name == "" || name == "." {
			continue
		}
		current = filepath.Join(current, name)
		if hiddenEntry(current, name) {
			return true
		}
	}
	return false
}

// NotHidden is the default include predicate for a tagging run.
func NotHidden(desc Descriptor) bool {
	return !IsHidden(desc)
}

// All includes every descriptor.
func All(Descriptor) bool {
	return true
}
