package store

import (
	"database/sql"
	"fmt"
	"io/fs"
	"time"
)

// Folder is a container row: a collection in WebDAV terms.
type Folder struct {
	ID        string
	UserID    string
	ParentID  sql.NullString
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Note is a textual document row, presented to WebDAV clients as a file
// named Title+"."+Syntax.
type Note struct {
	ID        string
	UserID    string
	ParentID  sql.NullString
	Title     string
	Syntax    string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sentinel errors matching the adapter's four-kind failure taxonomy
// (spec.md §4.6 / §6). golang.org/x/net/webdav's Handler classifies
// FileSystem/File errors with os.IsNotExist, os.IsExist and
// os.IsPermission, so each is an *fs.PathError around the matching io/fs
// sentinel: the os.Is* helpers look through a PathError (but not through
// fmt.Errorf wrapping), and errors.Is still matches both the sentinel and
// the io/fs error. That is the mechanism by which the error kind actually
// reaches the DAV library.
var (
	ErrNotFound  error = &fs.PathError{Op: "store", Path: "not found", Err: fs.ErrNotExist}
	ErrExists    error = &fs.PathError{Op: "store", Path: "already exists", Err: fs.ErrExist}
	ErrForbidden error = &fs.PathError{Op: "store", Path: "forbidden", Err: fs.ErrPermission}
)

// generalFailure wraps an unexpected store error. It deliberately does not
// wrap fs.ErrNotExist/ErrExist/ErrPermission so that os.Is* checks at the
// DAV layer fall through to a 500, per spec.md §7.
func generalFailure(op string, err error) error {
	return fmt.Errorf("store: %s: %w", op, err)
}
