// Package routepath normalizes request paths before they reach the route
// table. Matching operates on canonical paths only, so every transport
// (HTTP handler, static export, dev server) funnels through this package.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Result is the outcome of canonicalizing a request path.
type Result struct {
	// Path is the canonical path, always rooted and without a query string.
	Path string

	// Query is the raw query string without the leading "?".
	Query string

	// Changed reports whether canonicalization modified the path. Callers
	// typically issue a redirect to the canonical form when true.
	Changed bool
}

// Canonicalization errors.
var (
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
	ErrEncodedSlashInParam  = errors.New("encoded slash in parameter value")
)

// Canonicalize normalizes a URL path:
//
//   - guarantees a leading slash
//   - collapses duplicate slashes (/blog//post -> /blog/post)
//   - removes "." segments and resolves ".."
//   - removes the trailing slash (except for root "/")
//
// Inputs containing a backslash, a NUL byte (literal or %00), an invalid
// percent escape, or a ".." that would climb above root are rejected.
// A query string may be attached to the input; it is split off untouched.
func Canonicalize(input string) (Result, error) {
	if input == "" {
		return Result{Path: "/", Changed: true}, nil
	}

	path, query := SplitQuery(input)

	if strings.Contains(path, "\\") {
		return Result{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return Result{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := checkPercentEscapes(path); err != nil {
			return Result{}, err
		}
	}

	original := path

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	var kept []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(kept) == 0 {
				return Result{}, ErrPathEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}

	path = "/" + strings.Join(kept, "/")
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	return Result{
		Path:    path,
		Query:   query,
		Changed: path != original,
	}, nil
}

// SplitQuery splits a request target into path and query. The query is
// returned without the leading "?".
func SplitQuery(input string) (path, query string) {
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

// DecodeParam percent-decodes a matched parameter value. For single-segment
// parameters an encoded slash (%2F) is rejected because it would smuggle a
// path separator into a value the matcher already treated as one segment.
// Catch-all values keep their slashes.
func DecodeParam(value string, catchAll bool) (string, error) {
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !catchAll && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInParam
	}
	return decoded, nil
}

func checkPercentEscapes(path string) error {
	for i := 0; i < len(path); {
		if path[i] != '%' {
			i++
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 3
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
