package notefs

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notedav/internal/store"
)

func writeAll(t *testing.T, fsys *FS, path string, content string) {
	t.Helper()
	ctx := context.Background()
	f, err := fsys.OpenFile(ctx, path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func readAll(t *testing.T, fsys *FS, path string) string {
	t.Helper()
	ctx := context.Background()
	f, err := fsys.OpenFile(ctx, path, os.O_RDONLY, 0)
	require.NoError(t, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(b)
}

func TestOpenFileCreatesNote(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fsys := New(st)

	writeAll(t, fsys, "/hello.md", "hi")
	assert.Equal(t, "hi", readAll(t, fsys, "/hello.md"))

	info, err := fsys.Stat(ctx, "/hello.md")
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Size())
	assert.False(t, info.IsDir())
}

func TestOpenFileEagerCreateVisibleBeforeClose(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fsys := New(st)

	f, err := fsys.OpenFile(ctx, "/draft.md", os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	defer f.Close()

	// The row must already exist even though nothing has been written or
	// flushed yet.
	_, err = st.GetNoteByName(ctx, nil, "draft", "md")
	assert.NoError(t, err)
}

func TestMkdirThenPutUnderCollection(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fsys := New(st)

	require.NoError(t, fsys.Mkdir(ctx, "/work", 0o755))
	writeAll(t, fsys, "/work/todo.txt", "x")

	info, err := fsys.Stat(ctx, "/work/todo.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Size())
}

func TestMkdirOnRootIsForbidden(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fsys := New(st)
	err := fsys.Mkdir(ctx, "/", 0o755)
	assert.ErrorIs(t, err, store.ErrForbidden)
}

func TestOpenFileOnFolderIsForbiddenForWrite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fsys := New(st)
	require.NoError(t, fsys.Mkdir(ctx, "/work", 0o755))

	_, err := fsys.OpenFile(ctx, "/work", os.O_RDWR|os.O_CREATE, 0o644)
	assert.ErrorIs(t, err, store.ErrForbidden)
}

func TestReadDirListsFoldersThenNotes(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fsys := New(st)

	require.NoError(t, fsys.Mkdir(ctx, "/work", 0o755))
	writeAll(t, fsys, "/todo.txt", "x")

	f, err := fsys.OpenFile(ctx, "/", os.O_RDONLY, 0)
	require.NoError(t, err)
	defer f.Close()

	entries, err := f.Readdir(-1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "work", entries[0].Name(), "folders are listed before notes")
	assert.Equal(t, "todo.txt", entries[1].Name())

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = e.IsDir()
	}
	assert.True(t, names["work"])
	assert.False(t, names["todo.txt"])
}

func TestRenameNoteOverwrites(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fsys := New(st)

	writeAll(t, fsys, "/a.md", "1")
	writeAll(t, fsys, "/b.md", "2")

	require.NoError(t, fsys.Rename(ctx, "/a.md", "/b.md"))

	assert.Equal(t, "1", readAll(t, fsys, "/b.md"))
	_, err := fsys.Stat(ctx, "/a.md")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRenameFolderRejectsCollisionAndDescendant(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fsys := New(st)

	require.NoError(t, fsys.Mkdir(ctx, "/src", 0o755))
	require.NoError(t, fsys.Mkdir(ctx, "/dst", 0o755))
	err := fsys.Rename(ctx, "/src", "/dst")
	assert.ErrorIs(t, err, store.ErrExists)

	require.NoError(t, fsys.Mkdir(ctx, "/a", 0o755))
	require.NoError(t, fsys.Mkdir(ctx, "/a/b", 0o755))
	require.NoError(t, fsys.Mkdir(ctx, "/a/b/c", 0o755))
	err = fsys.Rename(ctx, "/a", "/a/b/c/a")
	assert.ErrorIs(t, err, store.ErrForbidden)
}

func TestRemoveAllCascadesFolder(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fsys := New(st)

	require.NoError(t, fsys.Mkdir(ctx, "/x", 0o755))
	require.NoError(t, fsys.Mkdir(ctx, "/x/y", 0o755))
	writeAll(t, fsys, "/x/y/note.md", "z")

	require.NoError(t, fsys.RemoveAll(ctx, "/x"))

	_, err := fsys.Stat(ctx, "/x/y/note.md")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoveAllOnRootForbidden(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fsys := New(st)
	err := fsys.RemoveAll(ctx, "/")
	assert.ErrorIs(t, err, store.ErrForbidden)
}

func TestWriteThenReadRoundtrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fsys := New(st)

	f, err := fsys.OpenFile(ctx, "/note.md", os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = f.Write([]byte(" world"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, "hello world", readAll(t, fsys, "/note.md"))
}

func TestFlushRejectsInvalidUTF8(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fsys := New(st)

	f, err := fsys.OpenFile(ctx, "/bad.md", os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0xff, 0xfe})
	require.NoError(t, err)
	err = f.Close()
	assert.Error(t, err)
}
