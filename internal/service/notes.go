package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/NiGhtKinG17/LeafNote/internal/id"
	"github.com/NiGhtKinG17/LeafNote/internal/normalize"
	"github.com/NiGhtKinG17/LeafNote/internal/search"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
	"github.com/NiGhtKinG17/LeafNote/internal/validation"
)

// NoteIndex is the part of the search index NoteService needs.
type NoteIndex interface {
	IndexNote(n *domain.Note) error
	DeleteNote(id string) error
	Search(ctx context.Context, ownerID string, params search.Params) (*search.Result, error)
	Reindex(notes []*domain.Note) error
	DocumentCount() (uint64, error)
	Rebuild() error
}

// NoteService composes, lists, views, deletes and searches notes on
// behalf of an authenticated caller. Every operation goes through the Guard.
type NoteService struct {
	store     store.Store
	guard     Guard
	index     NoteIndex
	validator *validation.Validator
	logger    *slog.Logger
}

// NewNoteService creates a note service. A nil index disables search.
func NewNoteService(s store.Store, index NoteIndex, logger *slog.Logger) *NoteService {
	if index == nil {
		index = search.Noop{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NoteService{
		store:     s,
		guard:     NewGuard(),
		index:     index,
		validator: validation.New(),
		logger:    logger,
	}
}

// ComposeRequest holds a new note.
type ComposeRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=1048576"`
}

// Compose creates a note owned by caller.
func (s *NoteService) Compose(ctx context.Context, caller *Identity, req ComposeRequest) (*domain.Note, error) {
	if err := s.guard.Authorize(caller, ActionCompose, nil).Err(); err != nil {
		return nil, err
	}

	req.Title = normalize.DisplayText(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	noteID, err := id.Generate(id.NotePrefix)
	if err != nil {
		return nil, domainerrors.Internal("generate note id").WithCause(err)
	}
	note := &domain.Note{
		Record:  domain.Record{ID: noteID},
		OwnerID: caller.UserID,
		Title:   req.Title,
		Content: req.Content,
	}

	if err := s.store.CreateNote(ctx, note); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.Unauthenticated("account no longer exists").WithCause(err)
		}
		return nil, storeError(err, "create note")
	}

	if err := s.index.IndexNote(note); err != nil {
		s.logger.Warn("failed to index note", "note_id", note.ID, "error", err)
	}

	s.logger.Info("note created", "note_id", note.ID, "owner_id", note.OwnerID)
	return note, nil
}

// ListOwn returns the caller's notes, oldest first. It never includes a
// note owned by anyone else.
func (s *NoteService) ListOwn(ctx context.Context, caller *Identity) ([]*domain.Note, error) {
	if err := s.guard.Authorize(caller, ActionList, nil).Err(); err != nil {
		return nil, err
	}

	notes, err := s.store.ListNotesByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, storeError(err, "list notes")
	}
	return notes, nil
}

// View returns one of the caller's notes. A note owned by someone else
// fails with NotOwner; its content is never loaded.
func (s *NoteService) View(ctx context.Context, caller *Identity, noteID string) (*domain.Note, error) {
	if err := s.requireCaller(caller); err != nil {
		return nil, err
	}

	note, err := s.store.GetOwnedNote(ctx, noteID, caller.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			return nil, s.missingOrForeign(ctx, caller, ActionView, noteID)
		}
		return nil, storeError(err, "get note")
	}

	if err := s.guard.Authorize(caller, ActionView, note).Err(); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes one of the caller's notes. The ownership check and the
// delete are a single store operation.
func (s *NoteService) Delete(ctx context.Context, caller *Identity, noteID string) error {
	if err := s.requireCaller(caller); err != nil {
		return err
	}

	if err := s.store.DeleteOwnedNote(ctx, noteID, caller.UserID); err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			return s.missingOrForeign(ctx, caller, ActionDelete, noteID)
		}
		return storeError(err, "delete note")
	}

	if err := s.index.DeleteNote(noteID); err != nil {
		s.logger.Warn("failed to remove note from index", "note_id", noteID, "error", err)
	}

	s.logger.Info("note deleted", "note_id", noteID, "owner_id", caller.UserID)
	return nil
}

// Search returns the caller's notes matching query, best match first.
func (s *NoteService) Search(ctx context.Context, caller *Identity, query string, limit int) ([]*domain.Note, error) {
	if err := s.guard.Authorize(caller, ActionSearch, nil).Err(); err != nil {
		return nil, err
	}

	res, err := s.index.Search(ctx, caller.UserID, search.Params{Query: query, Limit: limit})
	if err != nil {
		return nil, domainerrors.Unavailable("search notes").WithCause(err)
	}

	notes := make([]*domain.Note, 0, len(res.Hits))
	for _, hit := range res.Hits {
		// Load through the owner-scoped lookup; stale index entries are skipped.
		note, err := s.store.GetOwnedNote(ctx, hit.ID, caller.UserID)
		if errors.Is(err, store.ErrNoteNotFound) {
			continue
		}
		if err != nil {
			return nil, storeError(err, "load search hit")
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// SyncIndex rebuilds the search index from the store when the number of
// indexed documents differs from the number of stored notes, which happens
// for a new index or after notes were written offline. It returns the
// number of notes indexed, zero when the index was already in sync.
func (s *NoteService) SyncIndex(ctx context.Context) (int, error) {
	notes, err := s.allNotes(ctx)
	if err != nil {
		return 0, err
	}
	indexed, err := s.index.DocumentCount()
	if err != nil {
		return 0, domainerrors.Unavailable("count indexed notes").WithCause(err)
	}
	if indexed == uint64(len(notes)) {
		return 0, nil
	}

	s.logger.Info("search index out of sync, rebuilding",
		"indexed", indexed,
		"stored", len(notes),
	)
	if indexed > 0 {
		if err := s.index.Rebuild(); err != nil {
			return 0, domainerrors.Unavailable("rebuild index").WithCause(err)
		}
		// Notes composed before the rebuild are only in the store now.
		if notes, err = s.allNotes(ctx); err != nil {
			return 0, err
		}
	}

	if err := s.index.Reindex(notes); err != nil {
		return 0, domainerrors.Unavailable("reindex notes").WithCause(err)
	}
	return len(notes), nil
}

// allNotes collects every stored note, owner by owner.
func (s *NoteService) allNotes(ctx context.Context) ([]*domain.Note, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, storeError(err, "list users")
	}

	var all []*domain.Note
	for _, u := range users {
		notes, err := s.store.ListNotesByOwner(ctx, u.ID)
		if err != nil {
			return nil, storeError(err, "list notes")
		}
		all = append(all, notes...)
	}
	return all, nil
}

func (s *NoteService) requireCaller(caller *Identity) error {
	if caller == nil || caller.UserID == "" {
		return Deny(ReasonUnauthenticated).Err()
	}
	return nil
}

// missingOrForeign classifies an owner-scoped miss. If the note exists it
// belongs to someone else and the guard denies with NotOwner; the note is
// inspected for its owner only.
func (s *NoteService) missingOrForeign(ctx context.Context, caller *Identity, action Action, noteID string) error {
	note, err := s.store.GetNote(ctx, noteID)
	if errors.Is(err, store.ErrNoteNotFound) {
		return domainerrors.NotFound("note not found")
	}
	if err != nil {
		return storeError(err, "get note")
	}

	decision := s.guard.Authorize(caller, action, note)
	if decision.Allowed {
		// The owner-scoped query missed but the note is ours: it was
		// created or deleted concurrently.
		return domainerrors.NotFound("note not found")
	}

	s.logger.Warn("note access denied",
		"action", string(action),
		"note_id", noteID,
		"caller_id", caller.UserID,
		"reason", string(decision.Reason),
	)
	return decision.Err()
}
