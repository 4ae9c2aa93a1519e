package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

const timestampLayout = "2006-01-02 15:04:05"

// now renders the current instant in the textual form spec.md §3 requires.
// The Open Question in §9/§4.3 is resolved in favor of correct Gregorian
// arithmetic (time.Format) over the original's days/365 approximation —
// see DESIGN.md.
func now() string {
	return time.Now().UTC().Format(timestampLayout)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

func nullParent(parentID *string) sql.NullString {
	if parentID == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *parentID, Valid: true}
}

// GetFolderByID fetches a folder by id, scoped to the store's user.
func (s *Store) GetFolderByID(ctx context.Context, id string) (Folder, error) {
	var f Folder
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, user_id, parent_id, title, created_at, updated_at FROM folders WHERE id = ? AND user_id = ?`,
		id, s.UserID)
	var created, updated string
	if err := row.Scan(&f.ID, &f.UserID, &f.ParentID, &f.Title, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Folder{}, ErrNotFound
		}
		return Folder{}, generalFailure("GetFolderByID", err)
	}
	f.CreatedAt, f.UpdatedAt = parseTimestamp(created), parseTimestamp(updated)
	return f, nil
}

// GetFolderByTitle finds a child folder by exact title under parentID.
func (s *Store) GetFolderByTitle(ctx context.Context, parentID *string, title string) (Folder, error) {
	pid := nullParent(parentID)
	var f Folder
	var row *sql.Row
	if pid.Valid {
		row = s.DB.QueryRowContext(ctx,
			`SELECT id, user_id, parent_id, title, created_at, updated_at FROM folders WHERE user_id = ? AND parent_id = ? AND title = ?`,
			s.UserID, pid.String, title)
	} else {
		row = s.DB.QueryRowContext(ctx,
			`SELECT id, user_id, parent_id, title, created_at, updated_at FROM folders WHERE user_id = ? AND parent_id IS NULL AND title = ?`,
			s.UserID, title)
	}
	var created, updated string
	if err := row.Scan(&f.ID, &f.UserID, &f.ParentID, &f.Title, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Folder{}, ErrNotFound
		}
		return Folder{}, generalFailure("GetFolderByTitle", err)
	}
	f.CreatedAt, f.UpdatedAt = parseTimestamp(created), parseTimestamp(updated)
	return f, nil
}

// GetNoteByName finds a note by (title, syntax) under parentID.
func (s *Store) GetNoteByName(ctx context.Context, parentID *string, title, syntax string) (Note, error) {
	pid := nullParent(parentID)
	var n Note
	var row *sql.Row
	if pid.Valid {
		row = s.DB.QueryRowContext(ctx,
			`SELECT id, user_id, parent_id, title, syntax, content, created_at, updated_at FROM notes WHERE user_id = ? AND parent_id = ? AND title = ? AND syntax = ?`,
			s.UserID, pid.String, title, syntax)
	} else {
		row = s.DB.QueryRowContext(ctx,
			`SELECT id, user_id, parent_id, title, syntax, content, created_at, updated_at FROM notes WHERE user_id = ? AND parent_id IS NULL AND title = ? AND syntax = ?`,
			s.UserID, title, syntax)
	}
	var created, updated string
	if err := row.Scan(&n.ID, &n.UserID, &n.ParentID, &n.Title, &n.Syntax, &n.Content, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Note{}, ErrNotFound
		}
		return Note{}, generalFailure("GetNoteByName", err)
	}
	n.CreatedAt, n.UpdatedAt = parseTimestamp(created), parseTimestamp(updated)
	return n, nil
}

// ListFolders lists the child folders directly under parentID.
func (s *Store) ListFolders(ctx context.Context, parentID *string) ([]Folder, error) {
	pid := nullParent(parentID)
	var rows *sql.Rows
	var err error
	if pid.Valid {
		rows, err = s.DB.QueryContext(ctx,
			`SELECT id, user_id, parent_id, title, created_at, updated_at FROM folders WHERE user_id = ? AND parent_id = ? ORDER BY title`,
			s.UserID, pid.String)
	} else {
		rows, err = s.DB.QueryContext(ctx,
			`SELECT id, user_id, parent_id, title, created_at, updated_at FROM folders WHERE user_id = ? AND parent_id IS NULL ORDER BY title`,
			s.UserID)
	}
	if err != nil {
		return nil, generalFailure("ListFolders", err)
	}
	defer rows.Close()

	var out []Folder
	for rows.Next() {
		var f Folder
		var created, updated string
		if err := rows.Scan(&f.ID, &f.UserID, &f.ParentID, &f.Title, &created, &updated); err != nil {
			return nil, generalFailure("ListFolders", err)
		}
		f.CreatedAt, f.UpdatedAt = parseTimestamp(created), parseTimestamp(updated)
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListNotes lists the notes directly under parentID.
func (s *Store) ListNotes(ctx context.Context, parentID *string) ([]Note, error) {
	pid := nullParent(parentID)
	var rows *sql.Rows
	var err error
	if pid.Valid {
		rows, err = s.DB.QueryContext(ctx,
			`SELECT id, user_id, parent_id, title, syntax, content, created_at, updated_at FROM notes WHERE user_id = ? AND parent_id = ? ORDER BY title, syntax`,
			s.UserID, pid.String)
	} else {
		rows, err = s.DB.QueryContext(ctx,
			`SELECT id, user_id, parent_id, title, syntax, content, created_at, updated_at FROM notes WHERE user_id = ? AND parent_id IS NULL ORDER BY title, syntax`,
			s.UserID)
	}
	if err != nil {
		return nil, generalFailure("ListNotes", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		var created, updated string
		if err := rows.Scan(&n.ID, &n.UserID, &n.ParentID, &n.Title, &n.Syntax, &n.Content, &created, &updated); err != nil {
			return nil, generalFailure("ListNotes", err)
		}
		n.CreatedAt, n.UpdatedAt = parseTimestamp(created), parseTimestamp(updated)
		out = append(out, n)
	}
	return out, rows.Err()
}

// CreateOrUpdateNote implements spec.md §4.3's create_or_update_note: update
// in place if a note already occupies the (parent_id, title, syntax) key,
// otherwise insert a fresh row with a new id.
func (s *Store) CreateOrUpdateNote(ctx context.Context, parentID *string, title, syntax, content string) (Note, error) {
	if parentID != nil {
		if _, err := s.GetFolderByID(ctx, *parentID); err != nil {
			return Note{}, err
		}
	}

	existing, err := s.GetNoteByName(ctx, parentID, title, syntax)
	ts := now()
	switch {
	case err == nil:
		if _, err := s.DB.ExecContext(ctx,
			`UPDATE notes SET content = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
			content, ts, existing.ID, s.UserID); err != nil {
			return Note{}, generalFailure("CreateOrUpdateNote", err)
		}
		return s.GetNoteByName(ctx, parentID, title, syntax)
	case errors.Is(err, ErrNotFound):
		id := uuid.NewString()
		if _, err := s.DB.ExecContext(ctx,
			`INSERT INTO notes (id, user_id, parent_id, title, syntax, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, s.UserID, nullParent(parentID), title, syntax, content, ts, ts); err != nil {
			return Note{}, generalFailure("CreateOrUpdateNote", err)
		}
		return s.GetNoteByName(ctx, parentID, title, syntax)
	default:
		return Note{}, err
	}
}

// CreateFolder implements spec.md §4.3's create_folder.
func (s *Store) CreateFolder(ctx context.Context, parentID *string, title string) (Folder, error) {
	if parentID != nil {
		if _, err := s.GetFolderByID(ctx, *parentID); err != nil {
			return Folder{}, err
		}
	}
	if _, err := s.GetFolderByTitle(ctx, parentID, title); err == nil {
		return Folder{}, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return Folder{}, err
	}

	id := uuid.NewString()
	ts := now()
	if _, err := s.DB.ExecContext(ctx,
		`INSERT INTO folders (id, user_id, parent_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, s.UserID, nullParent(parentID), title, ts, ts); err != nil {
		return Folder{}, generalFailure("CreateFolder", err)
	}
	return s.GetFolderByID(ctx, id)
}

// DeleteNote implements spec.md §4.3's delete_note.
func (s *Store) DeleteNote(ctx context.Context, parentID *string, title, syntax string) error {
	note, err := s.GetNoteByName(ctx, parentID, title, syntax)
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND user_id = ?`, note.ID, s.UserID)
	if err != nil {
		return generalFailure("DeleteNote", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFolder implements spec.md §4.3's delete_folder. Cascade across
// descendant folders and notes is performed entirely by the database's
// ON DELETE CASCADE foreign keys in a single statement, so partial failure
// of the cascade is impossible (spec.md §7).
func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	if _, err := s.GetFolderByID(ctx, id); err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM folders WHERE id = ? AND user_id = ?`, id, s.UserID)
	if err != nil {
		return generalFailure("DeleteFolder", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RenameNote implements spec.md §4.3's rename_note, including the
// overwrite-on-collision semantics WebDAV MOVE requires of files.
func (s *Store) RenameNote(ctx context.Context, srcParentID *string, srcTitle, srcSyntax string, dstParentID *string, dstTitle, dstSyntax string) error {
	src, err := s.GetNoteByName(ctx, srcParentID, srcTitle, srcSyntax)
	if err != nil {
		return err
	}

	if dst, err := s.GetNoteByName(ctx, dstParentID, dstTitle, dstSyntax); err == nil {
		if dst.ID != src.ID {
			if _, err := s.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND user_id = ?`, dst.ID, s.UserID); err != nil {
				return generalFailure("RenameNote", err)
			}
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	ts := now()
	if _, err := s.DB.ExecContext(ctx,
		`UPDATE notes SET title = ?, syntax = ?, parent_id = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		dstTitle, dstSyntax, nullParent(dstParentID), ts, src.ID, s.UserID); err != nil {
		return generalFailure("RenameNote", err)
	}
	return nil
}

// RenameFolder implements spec.md §4.3's rename_folder: collisions with a
// different folder at the destination fail Exists (folders are never
// overwritten by MOVE); moving into self or a descendant fails Forbidden.
func (s *Store) RenameFolder(ctx context.Context, id string, newParentID *string, newTitle string) error {
	if _, err := s.GetFolderByID(ctx, id); err != nil {
		return err
	}

	if dst, err := s.GetFolderByTitle(ctx, newParentID, newTitle); err == nil {
		if dst.ID != id {
			return ErrExists
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	if newParentID != nil {
		if *newParentID == id {
			return ErrForbidden
		}
		isDesc, err := s.isDescendant(ctx, id, *newParentID)
		if err != nil {
			return err
		}
		if isDesc {
			return ErrForbidden
		}
	}

	if newParentID != nil {
		if *newParentID == "" {
			return ErrNotFound
		}
		if _, err := s.GetFolderByID(ctx, *newParentID); err != nil {
			return err
		}
	}

	ts := now()
	if _, err := s.DB.ExecContext(ctx,
		`UPDATE folders SET title = ?, parent_id = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		newTitle, nullParent(newParentID), ts, id, s.UserID); err != nil {
		return generalFailure("RenameFolder", err)
	}
	return nil
}

// isDescendant reports whether targetID is dirID itself or a transitive
// descendant of it, by walking targetID's ancestor chain upward. The walk
// is bounded by the total folder count for this user so a corrupted store
// with a pre-existing parent cycle cannot hang the resolver (spec.md §9).
func (s *Store) isDescendant(ctx context.Context, dirID, targetID string) (bool, error) {
	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders WHERE user_id = ?`, s.UserID).Scan(&total); err != nil {
		return false, generalFailure("isDescendant", err)
	}

	current := targetID
	for steps := 0; steps <= total+1; steps++ {
		if current == dirID {
			return true, nil
		}
		var parent sql.NullString
		err := s.DB.QueryRowContext(ctx, `SELECT parent_id FROM folders WHERE id = ? AND user_id = ?`, current, s.UserID).Scan(&parent)
		if errors.Is(err, sql.ErrNoRows) || !parent.Valid {
			return false, nil
		}
		if err != nil {
			return false, generalFailure("isDescendant", err)
		}
		current = parent.String
	}
	return false, nil
}
