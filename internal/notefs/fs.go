package notefs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"golang.org/x/net/webdav"

	"notedav/internal/store"
)

// FS is the Filesystem Facade (spec.md §4.5): the single object the DAV
// library drives. It carries only configuration — a store handle already
// scoped to one user — and holds no mutable state of its own, so one value
// is safe to share across every concurrently handled request.
type FS struct {
	store *store.Store
}

// New builds a Filesystem Facade over st.
func New(st *store.Store) *FS {
	return &FS{store: st}
}

var _ webdav.FileSystem = (*FS)(nil)

// Mkdir implements create_dir: parse the terminal (no extension required),
// resolve every non-terminal as an existing folder, and create_folder. The
// root path has no terminal and fails Forbidden.
func (f *FS) Mkdir(ctx context.Context, name string, perm os.FileMode) error {
	dirSegments, terminal, hasTerminal := SplitTerminal(name)
	if !hasTerminal {
		return store.ErrForbidden
	}
	parentID, err := resolveFolderChain(ctx, f.store, dirSegments)
	if err != nil {
		return err
	}
	_, err = f.store.CreateFolder(ctx, parentID, terminal)
	return err
}

// OpenFile implements open (spec.md §4.5) together with directory listing.
// golang.org/x/net/webdav has no separate read_dir entry point on
// FileSystem — PROPFIND drives the same OpenFile and then calls Readdir on
// whatever it gets back — so a plain read-only open of a Folder or Root is
// let through to serve that, while any write-oriented open of a Folder or
// Root still fails Forbidden per the facade contract.
func (f *FS) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (webdav.File, error) {
	create := flag&os.O_CREATE != 0
	createNew := create && flag&os.O_EXCL != 0
	write := flag&(os.O_WRONLY|os.O_RDWR) != 0
	truncate := flag&os.O_TRUNC != 0

	resolved, err := Resolve(ctx, f.store, name)
	if err == nil {
		switch resolved.Kind {
		case KindNote:
			if createNew {
				return nil, store.ErrExists
			}
			n, err := f.store.GetNoteByName(ctx, resolved.ParentID, resolved.Title, resolved.Syntax)
			if err != nil {
				return nil, err
			}
			return newHandle(f.store, n, write, truncate), nil
		case KindFolder:
			if write || create {
				return nil, store.ErrForbidden
			}
			folder, err := f.store.GetFolderByID(ctx, resolved.FolderID)
			if err != nil {
				return nil, err
			}
			return f.openDir(ctx, &folder.ID, folder.Title, folder.UpdatedAt)
		default: // KindRoot
			if write || create {
				return nil, store.ErrForbidden
			}
			return f.openDir(ctx, nil, "/", time.Now().UTC())
		}
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if !create {
		return nil, err
	}

	dirSegments, terminal, hasTerminal := SplitTerminal(name)
	if !hasTerminal {
		return nil, store.ErrForbidden
	}
	title, syntax, ok := ParseNoteName(terminal)
	if !ok {
		return nil, store.ErrForbidden
	}
	parentID, ferr := resolveFolderChain(ctx, f.store, dirSegments)
	if ferr != nil {
		return nil, ferr
	}
	n, cerr := f.store.CreateOrUpdateNote(ctx, parentID, title, syntax, "")
	if cerr != nil {
		return nil, cerr
	}
	return newHandle(f.store, n, true, true), nil
}

func (f *FS) openDir(ctx context.Context, parentID *string, name string, modTime time.Time) (*dirFile, error) {
	folders, err := f.store.ListFolders(ctx, parentID)
	if err != nil {
		return nil, err
	}
	notes, err := f.store.ListNotes(ctx, parentID)
	if err != nil {
		return nil, err
	}
	entries := make([]fs.FileInfo, 0, len(folders)+len(notes))
	for _, folder := range folders {
		entries = append(entries, folderFileInfo{name: folder.Title, modTime: folder.UpdatedAt})
	}
	for _, n := range notes {
		entries = append(entries, noteFileInfo{
			name:    RenderNoteName(n.Title, n.Syntax),
			size:    int64(len(n.Content)),
			modTime: n.UpdatedAt,
		})
	}
	return &dirFile{name: name, modTime: modTime, entries: entries}, nil
}

// RemoveAll implements both remove_file and remove_dir: golang.org/x/net/webdav
// dispatches DELETE on any path — collection or not — through this single
// method, so the facade resolves the path and picks the operation itself.
func (f *FS) RemoveAll(ctx context.Context, name string) error {
	resolved, err := Resolve(ctx, f.store, name)
	if err != nil {
		return err
	}
	switch resolved.Kind {
	case KindRoot:
		return store.ErrForbidden
	case KindFolder:
		return f.store.DeleteFolder(ctx, resolved.FolderID)
	case KindNote:
		return f.store.DeleteNote(ctx, resolved.ParentID, resolved.Title, resolved.Syntax)
	default:
		return store.ErrNotFound
	}
}

// Rename implements rename (spec.md §4.5): resolve the source, resolve the
// destination's non-terminal prefix as existing folders, then dispatch on
// the source's kind.
func (f *FS) Rename(ctx context.Context, oldName, newName string) error {
	src, err := Resolve(ctx, f.store, oldName)
	if err != nil {
		return err
	}
	if src.Kind == KindRoot {
		return store.ErrForbidden
	}

	dstDirSegments, dstTerminal, hasDstTerminal := SplitTerminal(newName)
	if !hasDstTerminal {
		return store.ErrForbidden
	}
	dstParentID, err := resolveFolderChain(ctx, f.store, dstDirSegments)
	if err != nil {
		return err
	}

	switch src.Kind {
	case KindNote:
		title, syntax, ok := ParseNoteName(dstTerminal)
		if !ok {
			return store.ErrForbidden
		}
		return f.store.RenameNote(ctx, src.ParentID, src.Title, src.Syntax, dstParentID, title, syntax)
	case KindFolder:
		return f.store.RenameFolder(ctx, src.FolderID, dstParentID, dstTerminal)
	default:
		return store.ErrNotFound
	}
}

// Stat implements metadata (spec.md §4.5).
func (f *FS) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	resolved, err := Resolve(ctx, f.store, name)
	if err != nil {
		return nil, err
	}
	switch resolved.Kind {
	case KindRoot:
		return folderFileInfo{name: "/", modTime: time.Now().UTC()}, nil
	case KindFolder:
		folder, err := f.store.GetFolderByID(ctx, resolved.FolderID)
		if err != nil {
			return nil, err
		}
		return folderFileInfo{name: folder.Title, modTime: folder.UpdatedAt}, nil
	case KindNote:
		n, err := f.store.GetNoteByName(ctx, resolved.ParentID, resolved.Title, resolved.Syntax)
		if err != nil {
			return nil, err
		}
		return noteFileInfo{
			name:    RenderNoteName(n.Title, n.Syntax),
			size:    int64(len(n.Content)),
			modTime: n.UpdatedAt,
		}, nil
	default:
		return nil, store.ErrNotFound
	}
}

// DeadProps/Patch (the have_props/get_props mapping) are implemented per
// open file, on Handle and dirFile — see deadprops.go.

type noteFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (i noteFileInfo) Name() string       { return i.name }
func (i noteFileInfo) Size() int64        { return i.size }
func (i noteFileInfo) Mode() os.FileMode  { return 0o644 }
func (i noteFileInfo) ModTime() time.Time { return i.modTime }
func (i noteFileInfo) IsDir() bool        { return false }
func (i noteFileInfo) Sys() any           { return nil }

type folderFileInfo struct {
	name    string
	modTime time.Time
}

func (i folderFileInfo) Name() string       { return i.name }
func (i folderFileInfo) Size() int64        { return 0 }
func (i folderFileInfo) Mode() os.FileMode  { return 0o755 | fs.ModeDir }
func (i folderFileInfo) ModTime() time.Time { return i.modTime }
func (i folderFileInfo) IsDir() bool        { return true }
func (i folderFileInfo) Sys() any           { return nil }

// dirFile backs a directory open: PROPFIND reads it via Readdir, nothing
// else. It carries a pre-materialized entry list rather than streaming,
// matching the teacher's dirFile pagination shape.
type dirFile struct {
	name    string
	modTime time.Time
	entries []fs.FileInfo
	pos     int
}

func (d *dirFile) Close() error { return nil }

func (d *dirFile) Read(p []byte) (int, error) { return 0, io.EOF }

func (d *dirFile) Seek(offset int64, whence int) (int64, error) { return 0, nil }

func (d *dirFile) Write(p []byte) (int, error) { return 0, store.ErrForbidden }

func (d *dirFile) Stat() (fs.FileInfo, error) {
	return folderFileInfo{name: d.name, modTime: d.modTime}, nil
}

// Readdir paginates like os.File: count <= 0 returns everything remaining,
// count > 0 returns up to count entries and io.EOF once exhausted.
func (d *dirFile) Readdir(count int) ([]fs.FileInfo, error) {
	if count <= 0 {
		out := d.entries[d.pos:]
		d.pos = len(d.entries)
		return out, nil
	}
	if d.pos >= len(d.entries) {
		return nil, io.EOF
	}
	end := d.pos + count
	if end > len(d.entries) {
		end = len(d.entries)
	}
	out := d.entries[d.pos:end]
	d.pos = end
	return out, nil
}
