package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "notes.db"), "user-1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateFolderAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	root, err := s.CreateFolder(ctx, nil, "Projects")
	require.NoError(t, err)
	assert.Equal(t, "Projects", root.Title)
	assert.False(t, root.ParentID.Valid)

	_, err = s.CreateFolder(ctx, nil, "Projects")
	assert.ErrorIs(t, err, ErrExists)

	child, err := s.CreateFolder(ctx, &root.ID, "Go")
	require.NoError(t, err)
	assert.Equal(t, root.ID, child.ParentID.String)

	kids, err := s.ListFolders(ctx, &root.ID)
	require.NoError(t, err)
	require.Len(t, kids, 1)
	assert.Equal(t, "Go", kids[0].Title)
}

func TestCreateFolderMissingParent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	missing := "00000000-0000-0000-0000-000000000000"
	_, err := s.CreateFolder(ctx, &missing, "X")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrUpdateNoteInsertsThenUpdates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n, err := s.CreateOrUpdateNote(ctx, nil, "todo", "md", "- buy milk")
	require.NoError(t, err)
	assert.Equal(t, "- buy milk", n.Content)

	n2, err := s.CreateOrUpdateNote(ctx, nil, "todo", "md", "- buy milk\n- walk dog")
	require.NoError(t, err)
	assert.Equal(t, n.ID, n2.ID, "same key must update the existing row, not insert a new one")
	assert.Equal(t, "- buy milk\n- walk dog", n2.Content)

	notes, err := s.ListNotes(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestDeleteFolderCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	root, err := s.CreateFolder(ctx, nil, "Archive")
	require.NoError(t, err)
	child, err := s.CreateFolder(ctx, &root.ID, "2024")
	require.NoError(t, err)
	_, err = s.CreateOrUpdateNote(ctx, &child.ID, "report", "txt", "done")
	require.NoError(t, err)

	require.NoError(t, s.DeleteFolder(ctx, root.ID))

	_, err = s.GetFolderByID(ctx, child.ID)
	assert.ErrorIs(t, err, ErrNotFound, "descendant folder must be gone via ON DELETE CASCADE")

	notes, err := s.ListNotes(ctx, &child.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestRenameNoteOverwritesDestination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.CreateOrUpdateNote(ctx, nil, "draft", "md", "old")
	require.NoError(t, err)
	_, err = s.CreateOrUpdateNote(ctx, nil, "final", "md", "keep-this-id")
	require.NoError(t, err)

	require.NoError(t, s.RenameNote(ctx, nil, "draft", "md", nil, "final", "md"))

	final, err := s.GetNoteByName(ctx, nil, "final", "md")
	require.NoError(t, err)
	assert.Equal(t, a.ID, final.ID, "moving onto an existing note must overwrite it, keeping the source's identity")
	assert.Equal(t, "old", final.Content)

	_, err = s.GetNoteByName(ctx, nil, "draft", "md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRenameFolderRejectsExistingDifferentFolder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.CreateFolder(ctx, nil, "A")
	require.NoError(t, err)
	_, err = s.CreateFolder(ctx, nil, "B")
	require.NoError(t, err)

	err = s.RenameFolder(ctx, a.ID, nil, "B")
	assert.ErrorIs(t, err, ErrExists)
}

func TestRenameFolderRejectsMoveIntoSelfOrDescendant(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	parent, err := s.CreateFolder(ctx, nil, "Parent")
	require.NoError(t, err)
	child, err := s.CreateFolder(ctx, &parent.ID, "Child")
	require.NoError(t, err)
	grandchild, err := s.CreateFolder(ctx, &child.ID, "Grandchild")
	require.NoError(t, err)

	err = s.RenameFolder(ctx, parent.ID, &parent.ID, "Parent")
	assert.ErrorIs(t, err, ErrForbidden, "folder cannot become its own parent")

	err = s.RenameFolder(ctx, parent.ID, &grandchild.ID, "Parent")
	assert.ErrorIs(t, err, ErrForbidden, "folder cannot move under its own descendant")
}

func TestIsolationBetweenUsers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "shared.db")

	s1, err := Open(path, "alice")
	require.NoError(t, err)
	defer s1.Close()
	s2, err := Open(path, "bob")
	require.NoError(t, err)
	defer s2.Close()

	f, err := s1.CreateFolder(ctx, nil, "Private")
	require.NoError(t, err)

	_, err = s2.GetFolderByID(ctx, f.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s2.CreateFolder(ctx, nil, "Private")
	assert.NoError(t, err, "folder names are scoped per-user, not global")
}
