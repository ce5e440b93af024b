// Package pathpolicy normalizes, validates, and classifies repository-relative
// document paths (spec.md §4.1, component C1).
package pathpolicy

import (
	"strings"

	"github.com/lcgerke/docengine/internal/constants"
	"github.com/lcgerke/docengine/internal/docerrors"
)

// FileType is the document classification produced by Classify.
type FileType string

const (
	Markdown FileType = "markdown"
	JSON     FileType = "json"
)

// Normalized is the result of a successful Check: a canonical,
// slash-separated relative path plus its classification.
type Normalized struct {
	RelativePath string
	Name         string
	FileType     FileType
}

// Check normalizes candidate and classifies it, or returns a *docerrors.Error
// with Kind InvalidPath or UnsupportedType (spec.md §4.1 rules 1-6).
func Check(candidate string) (Normalized, error) {
	if candidate == "" {
		return Normalized{}, docerrors.WithPath(docerrors.New(docerrors.KindInvalidPath, "path is empty"), candidate)
	}
	if strings.ContainsRune(candidate, 0) {
		return Normalized{}, docerrors.WithPath(docerrors.New(docerrors.KindInvalidPath, "path contains a NUL byte"), candidate)
	}

	// Rule 2: backslashes become forward slashes on ingress.
	normalized := strings.ReplaceAll(candidate, "\\", "/")

	if strings.HasPrefix(normalized, "/") {
		return Normalized{}, docerrors.WithPath(docerrors.New(docerrors.KindInvalidPath, "path must be relative"), candidate)
	}

	// Rule 3: collapse repeated separators.
	normalized = collapseSlashes(normalized)

	if len(normalized) > constants.MaxPathBytes {
		return Normalized{}, docerrors.WithPath(docerrors.New(docerrors.KindInvalidPath, "path exceeds maximum length"), candidate)
	}

	segments := strings.Split(normalized, "/")
	for _, seg := range segments {
		if seg == "" {
			return Normalized{}, docerrors.WithPath(docerrors.New(docerrors.KindInvalidPath, "path has an empty segment"), candidate)
		}
		if seg == "." || seg == ".." {
			return Normalized{}, docerrors.WithPath(docerrors.New(docerrors.KindInvalidPath, "path contains a . or .. segment"), candidate)
		}
		if len(seg) > constants.MaxSegmentBytes {
			return Normalized{}, docerrors.WithPath(docerrors.New(docerrors.KindInvalidPath, "path segment exceeds maximum length"), candidate)
		}
		if strings.HasPrefix(seg, ".git") {
			return Normalized{}, docerrors.WithPath(docerrors.New(docerrors.KindInvalidPath, "path references a .git segment"), candidate)
		}
	}

	name := segments[len(segments)-1]
	// Rule 4: dotfiles are not documents.
	if strings.HasPrefix(name, ".") {
		return Normalized{}, docerrors.WithPath(docerrors.New(docerrors.KindInvalidPath, "dotfiles are not documents"), candidate)
	}

	fileType, ok := Classify(name)
	if !ok {
		return Normalized{}, docerrors.WithPath(docerrors.New(docerrors.KindUnsupportedType, "unsupported file extension"), candidate)
	}

	return Normalized{
		RelativePath: normalized,
		Name:         name,
		FileType:     fileType,
	}, nil
}

// Classify maps a filename's extension (case-insensitive) to a FileType per
// spec.md §6's path classification table. The second return is false when
// the extension is not recognized.
func Classify(name string) (FileType, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".md"), strings.HasSuffix(lower, ".markdown"):
		return Markdown, true
	case strings.HasSuffix(lower, ".json"):
		return JSON, true
	default:
		return "", false
	}
}

func collapseSlashes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSlash := false
	for _, r := range s {
		if r == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	// Rule: no trailing separator.
	out = strings.TrimSuffix(out, "/")
	return out
}
