// Package docindex walks a repository worktree and builds a typed,
// deterministically ordered listing of eligible documents (spec.md §4.2,
// component C2). It is eagerly materialized and never live: every call to
// Build re-walks the filesystem, since the engine holds no in-memory content
// cache (spec.md §9, "Ambient mutability of the working tree").
package docindex

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/lcgerke/docengine/internal/constants"
	"github.com/lcgerke/docengine/internal/docerrors"
	"github.com/lcgerke/docengine/internal/pathpolicy"
)

// Entry is one document's metadata, as returned by a listing (spec.md §3,
// Document attributes minus content — content is read on demand by
// ReadContent).
type Entry struct {
	RelativePath string
	Name         string
	FileType     pathpolicy.FileType
	SizeBytes    int64
	ModTime      int64 // unix nanoseconds; informational only (spec.md §3 mtime)
}

// Build walks worktreeRoot depth-first and returns every eligible document,
// in deterministic lexicographic order within each directory (spec.md §4.2).
//
// Symbolic links are never followed. Directories named ".git",
// "node_modules", "target", "dist", or present in extraIgnoreDirs are
// skipped entirely. Files whose content is not valid UTF-8 are left out.
func Build(worktreeRoot string, extraIgnoreDirs map[string]bool) ([]Entry, error) {
	var entries []Entry

	err := walkSorted(worktreeRoot, func(relPath string, d fs.DirEntry) error {
		if d.IsDir() {
			name := d.Name()
			if constants.IgnoredDirs[name] || extraIgnoreDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		// Rule: symlinks are not followed; a symlink file is skipped.
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		normalized, err := pathpolicy.Check(relPath)
		if err != nil {
			// Not a document (unsupported type, or otherwise invalid) — skip.
			return nil
		}

		// Rule: non-UTF-8 files are not listed.
		data, err := os.ReadFile(filepath.Join(worktreeRoot, filepath.FromSlash(relPath)))
		if err != nil || !utf8.Valid(data) {
			return nil
		}

		entries = append(entries, Entry{
			RelativePath: normalized.RelativePath,
			Name:         normalized.Name,
			FileType:     normalized.FileType,
			SizeBytes:    info.Size(),
			ModTime:      info.ModTime().UnixNano(),
		})
		return nil
	})
	if err != nil {
		return nil, docerrors.Wrap(docerrors.KindIoFailure, "failed to walk worktree", err)
	}

	return entries, nil
}

// walkSorted performs a depth-first traversal that visits each directory's
// children in lexicographic order, matching spec.md §4.2's determinism
// requirement (filepath.WalkDir alone already visits in lexical order per
// directory, but we read directories explicitly to keep that guarantee
// independent of stdlib implementation details and to make SkipDir cheap).
func walkSorted(root string, visit func(relPath string, d fs.DirEntry) error) error {
	return walkDir(root, root, visit)
}

func walkDir(root, dir string, visit func(relPath string, d fs.DirEntry) error) error {
	children, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })

	for _, child := range children {
		full := filepath.Join(dir, child.Name())
		rel, err := filepath.Rel(root, full)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if child.IsDir() {
			if err := visit(rel, child); err == filepath.SkipDir {
				continue
			} else if err != nil {
				return err
			}
			if err := walkDir(root, full, visit); err != nil {
				return err
			}
			continue
		}

		if err := visit(rel, child); err != nil && err != filepath.SkipDir {
			return err
		}
	}
	return nil
}

// ReadContent reads a document's content from disk, validating it is
// well-formed UTF-8 (spec.md §3 "Non-UTF-8 files are excluded from the index
// and rejected on read", and the Open Questions note on non-UTF-8 JSON).
//
// relativePath is run through pathpolicy.Check before anything touches disk
// (spec.md §8 scenario S4): a path escaping the worktree root (e.g.
// "../etc/passwd") or otherwise violating the path policy fails with
// InvalidPath/UnsupportedType instead of reaching the filesystem.
func ReadContent(worktreeRoot, relativePath string) (string, error) {
	normalized, err := pathpolicy.Check(relativePath)
	if err != nil {
		return "", err
	}

	full := filepath.Join(worktreeRoot, filepath.FromSlash(normalized.RelativePath))

	info, err := os.Lstat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", docerrors.WithPath(docerrors.New(docerrors.KindNotFound, "document not found"), relativePath)
		}
		return "", docerrors.Wrap(docerrors.KindIoFailure, "failed to stat document", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return "", docerrors.WithPath(docerrors.New(docerrors.KindNotFound, "document not found"), relativePath)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", docerrors.WithPath(docerrors.New(docerrors.KindNotFound, "document not found"), relativePath)
		}
		return "", docerrors.Wrap(docerrors.KindIoFailure, "failed to read document", err)
	}

	if !utf8.Valid(data) {
		return "", docerrors.WithPath(docerrors.New(docerrors.KindEncodingNotUtf8, "document is not valid UTF-8"), relativePath)
	}

	return string(data), nil
}
