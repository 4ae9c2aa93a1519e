package notefs

import (
	"context"
	"errors"
	"strings"

	"notedav/internal/store"
)

// Kind classifies what a path resolves to.
type Kind int

const (
	KindRoot Kind = iota
	KindFolder
	KindNote
)

// Resolved is the outcome of walking a path through the store.
type Resolved struct {
	Kind Kind

	// ParentID is the folder the terminal component was looked up under;
	// nil means root-level. Meaningful for Kind == KindNote (needed to
	// commit writes back through the Store Gateway) and occasionally
	// useful for KindFolder callers that want the parent rather than the
	// folder's own id.
	ParentID *string

	FolderID string // valid when Kind == KindFolder
	Title    string // folder title, or note title
	Syntax   string // valid when Kind == KindNote
}

// splitPath splits a possibly percent-encoded absolute path into decoded,
// non-empty components. A path that is empty or all slashes yields nil.
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	raw := strings.Split(trimmed, "/")
	out := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg == "" {
			continue
		}
		out = append(out, DecodeSegment(seg))
	}
	return out
}

// resolveFolderChain walks segments as an all-folder path (used both for
// Resolve's non-terminal walk and for resolving a destination's directory
// prefix in create_dir/open/rename). Returns the final parent_id, or
// store.ErrNotFound if any component is missing.
func resolveFolderChain(ctx context.Context, st *store.Store, segments []string) (*string, error) {
	var parentID *string
	for _, seg := range segments {
		f, err := st.GetFolderByTitle(ctx, parentID, seg)
		if err != nil {
			return nil, err
		}
		id := f.ID
		parentID = &id
	}
	return parentID, nil
}

// Resolve implements the Path Resolver (spec.md §4.2): it walks a decoded
// path, issuing point lookups, and classifies the terminal as Root, Folder,
// Note, or fails with store.ErrNotFound. A parseable title.syntax matching
// an existing note always wins over a same-named folder.
func Resolve(ctx context.Context, st *store.Store, path string) (Resolved, error) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return Resolved{Kind: KindRoot}, nil
	}

	parentID, err := resolveFolderChain(ctx, st, segments[:len(segments)-1])
	if err != nil {
		return Resolved{}, err
	}

	terminal := segments[len(segments)-1]

	if title, syntax, ok := ParseNoteName(terminal); ok {
		if n, err := st.GetNoteByName(ctx, parentID, title, syntax); err == nil {
			return Resolved{Kind: KindNote, ParentID: parentID, Title: n.Title, Syntax: n.Syntax}, nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return Resolved{}, err
		}
	}

	if f, err := st.GetFolderByTitle(ctx, parentID, terminal); err == nil {
		return Resolved{Kind: KindFolder, ParentID: parentID, FolderID: f.ID, Title: f.Title}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return Resolved{}, err
	}

	return Resolved{}, store.ErrNotFound
}

// ResolveFolderPath resolves every component of path as an existing folder,
// returning its final folder id (nil for the root). It fits a path that
// names a directory prefix which must already exist in full, rather than a
// terminal that may still be created. FS.Rename does not call it: it
// resolves its destination prefix with resolveFolderChain directly.
func ResolveFolderPath(ctx context.Context, st *store.Store, path string) (*string, error) {
	return resolveFolderChain(ctx, st, splitPath(path))
}

// SplitTerminal splits path into its directory segments and decoded
// terminal component. Used by callers (create_dir, open-with-create) that
// need to resolve the parent chain and parse the terminal independently.
func SplitTerminal(path string) (dirSegments []string, terminal string, hasTerminal bool) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, "", false
	}
	return segments[:len(segments)-1], segments[len(segments)-1], true
}
