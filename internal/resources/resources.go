package resources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"tagres/internal/faults"
)

// DefaultInclude matches every file below a group directory.
const DefaultInclude = "**/*"

// Descriptor identifies one resource: a base directory plus a slash-separated
// path relative to it.
type Descriptor struct {
	BaseDir string
	Path    string
}

// Source returns the descriptor's location on disk.
func (d Descriptor) Source() string {
	return filepath.Join(d.BaseDir, filepath.FromSlash(d.Path))
}

func (d Descriptor) String() string {
	return d.Path
}

// Group is a resource directory with include and exclude globs.
type Group struct {
	Directory string
	Includes  []string
	Excludes  []string
}

// Enumerated pairs a group with the descriptors resolved from it.
type Enumerated struct {
	Group       Group
	Descriptors []Descriptor
}

// Enumerate resolves the regular files of a group in lexical path order.
// Globs use doublestar syntax and are matched against slash-separated
// relative paths. A file matching any exclude is dropped.
func Enumerate(group Group) ([]Descriptor, error) {
	dir := strings.TrimSpace(group.Directory)
	if dir == "" {
		return nil, faults.Wrap(faults.ErrConfiguration, "resources", "enumerate", "resource directory must be set", nil)
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, faults.Wrap(faults.ErrConfiguration, "resources", "enumerate", fmt.Sprintf("resource directory %s does not exist", dir), err)
		}
		return nil, faults.Wrap(faults.ErrIO, "resources", "stat", dir, err)
	}
	if !info.IsDir() {
		return nil, faults.Wrap(faults.ErrConfiguration, "resources", "enumerate", fmt.Sprintf("resource path %s is not a directory", dir), nil)
	}

	includes := group.Includes
	if len(includes) == 0 {
		includes = []string{DefaultInclude}
	}
	if err := validatePatterns(includes); err != nil {
		return nil, err
	}
	if err := validatePatterns(group.Excludes); err != nil {
		return nil, err
	}

	fsys := os.DirFS(dir)
	found := make(map[string]struct{})
	for _, pattern := range includes {
		err := doublestar.GlobWalk(fsys, pattern, func(path string, d fs.DirEntry) error {
			if !isRegular(fsys, path, d) {
				return nil
			}
			if excluded(path, group.Excludes) {
				return nil
			}
			found[path] = struct{}{}
			return nil
		}, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, faults.Wrap(faults.ErrIO, "resources", "walk", fmt.Sprintf("%s (%s)", dir, pattern), err)
		}
	}

	paths := make([]string, 0, len(found))
	for path := range found {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	out := make([]Descriptor, len(paths))
	for i, path := range paths {
		out[i] = Descriptor{BaseDir: dir, Path: path}
	}
	return out, nil
}

// EnumerateAll resolves every group, preserving group order.
func EnumerateAll(groups []Group) ([]Enumerated, error) {
	out := make([]Enumerated, 0, len(groups))
	for _, group := range groups {
		descriptors, err := Enumerate(group)
		if err != nil {
			return nil, err
		}
		out = append(out, Enumerated{Group: group, Descriptors: descriptors})
	}
	return out, nil
}

func validatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return faults.Wrap(faults.ErrConfiguration, "resources", "glob", fmt.Sprintf("invalid pattern %q", pattern), nil)
		}
	}
	return nil
}

func excluded(path string, excludes []string) bool {
	for _, pattern := range excludes {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// isRegular follows symlinks so linked files are tagged like their targets.
func isRegular(fsys fs.FS, path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.Type().IsRegular()
	}
	info, err := fs.Stat(fsys, path)
	return err == nil && info.Mode().IsRegular()
}
