// Package notefs adapts a hierarchical notes/folders store to the
// golang.org/x/net/webdav.FileSystem surface.
package notefs

import "strings"

// DecodeSegment percent-decodes a single path component. Ill-formed
// percent-escapes are left as literal text rather than rejected, and the
// decoded bytes are coerced to valid UTF-8 by replacing bad sequences with
// U+FFFD — this step never fails (spec.md §4.1).
func DecodeSegment(s string) string {
	raw := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		if s[i] == '%' && i+2 < len(s) {
			hi, okHi := hexDigit(s[i+1])
			lo, okLo := hexDigit(s[i+2])
			if okHi && okLo {
				raw = append(raw, byte(hi<<4|lo))
				i += 3
				continue
			}
		}
		raw = append(raw, s[i])
		i++
	}
	return strings.ToValidUTF8(string(raw), "�")
}

func hexDigit(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true
	default:
		return 0, false
	}
}

// ParseNoteName splits a decoded terminal segment on its last '.' into
// (title, syntax). Both halves must be non-empty, and a leading '.' (hidden
// file) never parses — it is purely a folder-name candidate.
func ParseNoteName(s string) (title, syntax string, ok bool) {
	if s == "" || s[0] == '.' {
		return "", "", false
	}
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// RenderNoteName renders (title, syntax) as the filesystem name clients see.
// The result is never percent-encoded; that's the HTTP layer's job.
func RenderNoteName(title, syntax string) string {
	return title + "." + syntax
}
