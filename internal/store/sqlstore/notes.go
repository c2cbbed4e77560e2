package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
)

const noteColumns = `id, owner_id, title, content, created_at, updated_at`

func scanNote(row rowScanner) (*domain.Note, error) {
	var (
		n                    domain.Note
		createdAt, updatedAt timestamp
	)
	if err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	n.CreatedAt = createdAt.Time
	n.UpdatedAt = updatedAt.Time
	return &n, nil
}

// CreateNote inserts a note. The owner must exist.
func (s *Store) CreateNote(ctx context.Context, note *domain.Note) error {
	if note.ID == "" {
		return errors.New("note id is required")
	}
	if err := note.Validate(); err != nil {
		return err
	}
	if note.CreatedAt.IsZero() {
		note.InitTimestamps()
	}

	_, err := s.exec(ctx,
		`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		note.ID,
		note.OwnerID,
		note.Title,
		note.Content,
		s.dialect.timeArg(note.CreatedAt),
		s.dialect.timeArg(note.UpdatedAt),
	)
	return s.translate("create note", err)
}

// GetNote retrieves a note by ID regardless of owner.
func (s *Store) GetNote(ctx context.Context, id string) (*domain.Note, error) {
	return s.getNote(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
}

// GetOwnedNote retrieves a note only if ownerID owns it. The owner is part
// of the lookup key, so a foreign note is indistinguishable from a missing one.
func (s *Store) GetOwnedNote(ctx context.Context, id, ownerID string) (*domain.Note, error) {
	if ownerID == "" {
		return nil, store.ErrNoteNotFound
	}
	return s.getNote(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ? AND owner_id = ?`, id, ownerID)
}

func (s *Store) getNote(ctx context.Context, query string, args ...any) (*domain.Note, error) {
	n, err := scanNote(s.queryRow(ctx, query, args...))
	if err != nil {
		err = s.translate("get note", err)
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNoteNotFound
		}
		return nil, err
	}
	return n, nil
}

// ListNotesByOwner returns ownerID's notes, oldest first.
func (s *Store) ListNotesByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	notes := []*domain.Note{}
	if ownerID == "" {
		return notes, nil
	}

	rows, err := s.query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, s.translate("list notes", err)
	}
	defer rows.Close()

	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, s.translate("list notes", err)
	}
	return notes, nil
}

// DeleteOwnedNote deletes a note in a single statement keyed on both id and
// owner. Returns ErrNoteNotFound if no row matched.
func (s *Store) DeleteOwnedNote(ctx context.Context, id, ownerID string) error {
	if ownerID == "" {
		return store.ErrNoteNotFound
	}

	res, err := s.exec(ctx, `DELETE FROM notes WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return s.translate("delete note", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.translate("delete note", err)
	}
	if n == 0 {
		return store.ErrNoteNotFound
	}
	return nil
}
