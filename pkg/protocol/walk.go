package protocol

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/tidesync/tidesync/pkg/filesystem"
)

// Walk builds an ordered []Descriptor for the tree rooted at root, matching
// spec.md §6's "root path, recursive flag, exclude-pattern list" inputs.
// recursive false limits the walk to root's immediate children. excludes is
// a list of doublestar glob patterns (github.com/bmatcuk/doublestar/v4,
// present in the teacher's dependency set for exactly this purpose) matched
// against each entry's tree-relative, forward-slashed path; a matching entry
// is omitted along with, for a directory, everything beneath it. Entries whose
// name begins with filesystem.TemporaryNamePrefix are omitted as well.
//
// Descriptors are returned in lexicographic path order, which gives both
// FILES and the later NEED-ordering discipline (spec.md §4.6) a stable,
// reproducible sequence independent of directory-entry order on disk.
func Walk(root string, recursive bool, excludes []string) ([]Descriptor, error) {
	var descriptors []Descriptor

	walkFn := func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "unable to access %s", path)
		}

		relative, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return errors.Wrapf(relErr, "unable to compute relative path for %s", path)
		}
		relative = filepath.ToSlash(relative)

		if relative == "." {
			if !entry.IsDir() {
				return errors.Errorf("synchronization root %s is not a directory", root)
			}
			return nil
		}

		if strings.HasPrefix(entry.Name(), filesystem.TemporaryNamePrefix) {
			return nil
		}

		if !recursive && filepath.Dir(path) != root {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if matchesAny(excludes, relative) {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		descriptor, descErr := describe(relative, path, entry)
		if descErr != nil {
			return descErr
		}
		descriptors = append(descriptors, descriptor)
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, err
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Path < descriptors[j].Path
	})

	return descriptors, nil
}

// matchesAny reports whether path matches any of the given doublestar
// patterns. A malformed pattern never matches rather than aborting the walk.
func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}

// describe builds a Descriptor for one tree entry, using Lstat so that
// symbolic links are reported as links rather than followed (spec.md §4.6's
// symlink semantics require the verbatim, unresolved target).
func describe(relativePath, fullPath string, entry fs.DirEntry) (Descriptor, error) {
	info, err := os.Lstat(fullPath)
	if err != nil {
		return Descriptor{}, errors.Wrapf(err, "unable to stat %s", fullPath)
	}

	descriptor := Descriptor{
		Path:    relativePath,
		Size:    uint64(info.Size()),
		ModTime: float64(info.ModTime().UnixNano()) / 1e9,
		Mode:    uint32(info.Mode()),
		IsDir:   entry.IsDir(),
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(fullPath)
		if err != nil {
			return Descriptor{}, errors.Wrapf(err, "unable to read link %s", fullPath)
		}
		descriptor.IsLink = true
		descriptor.LinkTarget = target
		descriptor.Size = 0
	}

	return descriptor, nil
}
