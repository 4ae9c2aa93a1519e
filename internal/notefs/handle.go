package notefs

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"
	"unicode/utf8"

	"notedav/internal/store"
)

// Handle is the Open File Handle (spec.md §4.4): an in-memory cursor over
// one note's content. It is a single-request object — never cached or
// shared across requests, and unaware of locking (that's the DAV library's
// MemLS, consulted one layer up).
//
// golang.org/x/net/webdav always closes a File exactly once after a PUT's
// body has been copied into it, so Close is where flush's UTF-8 validation
// and commit-through-the-store happens; there is no separate Flush method
// on webdav.File to hang that logic off of.
type Handle struct {
	st     *store.Store
	parent *string
	title  string
	syntax string

	buf      []byte
	pos      int64
	writable bool

	initialLen int64
	createdAt  time.Time
	updatedAt  time.Time
	closed     bool
}

// newHandle seeds a handle from an existing note snapshot.
func newHandle(st *store.Store, n store.Note, writable, truncate bool) *Handle {
	h := &Handle{
		st:         st,
		parent:     nullStringPtr(n.ParentID),
		title:      n.Title,
		syntax:     n.Syntax,
		writable:   writable,
		initialLen: int64(len(n.Content)),
		createdAt:  n.CreatedAt,
		updatedAt:  n.UpdatedAt,
	}
	if truncate {
		h.buf = nil
	} else {
		h.buf = []byte(n.Content)
	}
	return h
}

// nullStringPtr converts a database/sql nullable column into the *string
// absent-means-root-level representation used throughout notefs.
func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func (h *Handle) Read(p []byte) (int, error) {
	if h.pos >= int64(len(h.buf)) {
		return 0, io.EOF
	}
	n := copy(p, h.buf[h.pos:])
	h.pos += int64(n)
	return n, nil
}

func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = h.pos
	case io.SeekEnd:
		base = int64(len(h.buf))
	default:
		return 0, errors.New("notefs: invalid whence")
	}
	newPos := base + offset
	if newPos < 0 {
		return 0, errors.New("notefs: negative seek position")
	}
	h.pos = newPos
	return h.pos, nil
}

func (h *Handle) Write(p []byte) (int, error) {
	if !h.writable {
		return 0, store.ErrForbidden
	}
	end := h.pos + int64(len(p))
	if end > int64(len(h.buf)) {
		grown := make([]byte, end)
		copy(grown, h.buf)
		h.buf = grown
	}
	copy(h.buf[h.pos:end], p)
	h.pos = end
	return len(p), nil
}

// Close is the sole commit point for writes (spec.md §4.4's flush).
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	if !h.writable {
		return nil
	}
	if !utf8.Valid(h.buf) {
		return errors.New("notefs: note content is not valid UTF-8")
	}
	ctx := context.Background()
	_, err := h.st.CreateOrUpdateNote(ctx, h.parent, h.title, h.syntax, string(h.buf))
	return err
}

func (h *Handle) Readdir(count int) ([]fs.FileInfo, error) {
	return nil, os.ErrInvalid
}

// Stat reports the length of the *initial* snapshot, not the live buffer,
// per spec.md §4.4.
func (h *Handle) Stat() (fs.FileInfo, error) {
	return noteFileInfo{
		name:    RenderNoteName(h.title, h.syntax),
		size:    h.initialLen,
		modTime: h.updatedAt,
	}, nil
}
