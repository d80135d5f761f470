package assetpath

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrPathResolution is returned when a relative asset path cannot be
// rewritten into a target asset path.
var ErrPathResolution = errors.New("path resolution failed")

// Defaults match the client layout: every asset lives under a Data folder
// and maps to the editor's /Game content root.
const (
	DefaultMarker = "Data"
	DefaultPrefix = "/Game"
)

// DefaultExtensions are the model extensions stripped from resolved paths.
var DefaultExtensions = []string{".nif"}

// Resolver rewrites source-relative asset references. The zero value uses
// the defaults above.
type Resolver struct {
	Marker     string   // root folder segment, matched exactly
	Prefix     string   // target content root
	Extensions []string // case-insensitive, with leading dot
}

// Resolve joins rel onto docDir, normalizes the result and rewrites
// everything after the first marker segment into Prefix/<suffix>.
//
//	Resolve(`..\..\00_Object\model.nif`, "Client/Data/3_World/99_Tutorial") = "/Game/00_Object/model"
func (r Resolver) Resolve(rel, docDir string) (string, error) {
	marker, prefix, exts := r.Marker, r.Prefix, r.Extensions
	if marker == "" {
		marker = DefaultMarker
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if exts == nil {
		exts = DefaultExtensions
	}

	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", fmt.Errorf("assetpath: empty path: %w", ErrPathResolution)
	}

	rel = toSlash(rel)
	full := rel
	if !isAbs(rel) {
		full = path.Join(toSlash(docDir), rel)
	}
	full = path.Clean(full)

	parts := strings.Split(full, "/")
	at := -1
	for i, p := range parts {
		if p == marker {
			at = i
			break
		}
	}
	if at < 0 {
		return "", fmt.Errorf("assetpath: no %q segment in %s: %w", marker, full, ErrPathResolution)
	}

	suffix := strings.Join(parts[at+1:], "/")
	lower := strings.ToLower(suffix)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			suffix = suffix[:len(suffix)-len(ext)]
			break
		}
	}
	if suffix == "" {
		return "", fmt.Errorf("assetpath: nothing after %q in %s: %w", marker, full, ErrPathResolution)
	}

	return strings.TrimRight(prefix, "/") + "/" + suffix, nil
}

// Resolve rewrites rel with the default marker, prefix and extensions.
func Resolve(rel, docDir string) (string, error) {
	return Resolver{}.Resolve(rel, docDir)
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// isAbs accepts both POSIX roots and Windows drive letters, since GSA files
// are authored on Windows but may be converted anywhere.
func isAbs(p string) bool {
	if strings.HasPrefix(p, "/") {
		return true
	}
	return len(p) >= 3 && p[1] == ':' && p[2] == '/' &&
		(p[0] >= 'a' && p[0] <= 'z' || p[0] >= 'A' && p[0] <= 'Z')
}
