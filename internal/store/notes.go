package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
)

// CreateNote stores a new note. The note must reference an existing user.
func (s *Badger) CreateNote(ctx context.Context, note *domain.Note) error {
	if note.ID == "" {
		return errors.New("note id is required")
	}
	if err := note.Validate(); err != nil {
		return err
	}
	if _, err := s.GetUser(ctx, note.OwnerID); err != nil {
		return fmt.Errorf("note owner: %w", err)
	}
	if note.CreatedAt.IsZero() {
		note.InitTimestamps()
	}
	return s.Notes.Create(ctx, note.ID, note)
}

// GetNote retrieves a note by ID regardless of owner.
func (s *Badger) GetNote(ctx context.Context, id string) (*domain.Note, error) {
	n, err := s.Notes.Get(ctx, id)
	return n, mapNotFound(err, ErrNoteNotFound)
}

// GetOwnedNote retrieves a note only if ownerID owns it.
// A note owned by someone else is reported as ErrNoteNotFound.
func (s *Badger) GetOwnedNote(ctx context.Context, id, ownerID string) (*domain.Note, error) {
	n, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if !n.OwnedBy(ownerID) {
		return nil, ErrNoteNotFound
	}
	return n, nil
}

// ListNotesByOwner returns ownerID's notes, oldest first.
func (s *Badger) ListNotesByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	notes := []*domain.Note{}
	if ownerID == "" {
		return notes, nil
	}
	for n, err := range s.Notes.ListByIndex(ctx, indexOwner, ownerID+":") {
		if err != nil {
			return nil, fmt.Errorf("list notes: %w", err)
		}
		// The index prefix already scopes by owner; the check guards against
		// a corrupted index entry.
		if n.OwnedBy(ownerID) {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

// DeleteOwnedNote deletes a note only if ownerID owns it; the ownership
// check and the delete run in one transaction. Returns ErrNoteNotFound if
// there was nothing to delete.
func (s *Badger) DeleteOwnedNote(ctx context.Context, id, ownerID string) error {
	deleted, err := s.Notes.DeleteIf(ctx, id, func(n *domain.Note) bool {
		return n.OwnedBy(ownerID)
	})
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNoteNotFound
	}
	return nil
}
