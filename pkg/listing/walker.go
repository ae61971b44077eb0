package listing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Walk collects regular files below root up to depth levels deep
// (depth <= 0 is unlimited, 1 means root only). Paths that are files are
// returned as-is. Unreadable subdirectories are reported in errs and
// skipped; results are sorted by path.
func Walk(fs afero.Fs, root string, depth int) ([]Entry, []error) {
	fi, err := fs.Stat(root)
	if err != nil {
		return nil, []error{fmt.Errorf("%s: %w", root, err)}
	}
	if !fi.IsDir() {
		return []Entry{entryFor(root, fi)}, nil
	}
	results, errs := walkDir(fs, root, depth)
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, errs
}

func walkDir(fs afero.Fs, dir string, depth int) ([]Entry, []error) {
	var results []Entry
	var errs []error

	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", dir, err))
		return results, errs
	}

	for _, fi := range infos {
		full := filepath.Join(dir, fi.Name())
		if !fi.IsDir() {
			if fi.Mode().IsRegular() {
				results = append(results, entryFor(full, fi))
			}
			continue
		}
		if depth == 1 {
			continue
		}
		nextDepth := depth
		if nextDepth > 0 {
			nextDepth = depth - 1
		}
		subResults, subErrs := walkDir(fs, full, nextDepth)
		results = append(results, subResults...)
		errs = append(errs, subErrs...)
	}
	return results, errs
}

func entryFor(path string, fi os.FileInfo) Entry {
	return Entry{
		Path:      path,
		Name:      fi.Name(),
		Extension: strings.ToLower(filepath.Ext(fi.Name())),
		Size:      fi.Size(),
	}
}

// Paths returns the Path of every entry.
func Paths(entries []Entry) []string {
	ret := make([]string, 0, len(entries))
	for _, e := range entries {
		ret = append(ret, e.Path)
	}
	return ret
}

// Collect walks every root and concatenates the results in root order.
func Collect(fs afero.Fs, roots []string, depth int) ([]Entry, []error) {
	var all []Entry
	var errs []error
	for _, r := range roots {
		entries, e := Walk(fs, r, depth)
		all = append(all, entries...)
		errs = append(errs, e...)
	}
	return all, errs
}
