package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

func (s *Server) registerNoteRoutes() {
	security := []map[string][]string{{"bearer": {}}, {"cookie": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "listNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes",
		Summary:     "List notes",
		Description: "Returns the caller's notes, oldest first",
		Tags:        []string{"Notes"},
		Security:    security,
	}, s.handleListNotes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createNote",
		Method:        http.MethodPost,
		Path:          "/api/v1/notes",
		Summary:       "Create note",
		Description:   "Creates a note owned by the caller",
		Tags:          []string{"Notes"},
		Security:      security,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/search",
		Summary:     "Search notes",
		Description: "Full-text search over the caller's notes",
		Tags:        []string{"Notes"},
		Security:    security,
	}, s.handleSearchNotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNote",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Get note",
		Description: "Returns one of the caller's notes",
		Tags:        []string{"Notes"},
		Security:    security,
	}, s.handleGetNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteNote",
		Method:      http.MethodDelete,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Delete note",
		Description: "Deletes one of the caller's notes",
		Tags:        []string{"Notes"},
		Security:    security,
	}, s.handleDeleteNote)
}

// === DTOs ===

// NoteResponse contains note data in API responses.
type NoteResponse struct {
	ID        string    `json:"id" doc:"Note ID"`
	OwnerID   string    `json:"owner_id" doc:"Owner user ID"`
	Title     string    `json:"title" doc:"Title"`
	Content   string    `json:"content" doc:"Content"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
}

func toNoteResponse(n *domain.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		OwnerID:   n.OwnerID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	}
}

func toNoteResponses(notes []*domain.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	return out
}

// ListNotesResponse contains the caller's notes.
type ListNotesResponse struct {
	Notes []NoteResponse `json:"notes" doc:"Notes"`
}

// ListNotesOutput wraps the list response for Huma.
type ListNotesOutput struct {
	Body ListNotesResponse
}

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title   string `json:"title" maxLength:"200" doc:"Title"`
	Content string `json:"content" doc:"Content"`
}

// CreateNoteInput wraps the create request for Huma.
type CreateNoteInput struct {
	Body CreateNoteRequest
}

// NoteOutput wraps a single note for Huma.
type NoteOutput struct {
	Body NoteResponse
}

// NoteIDInput addresses one note.
type NoteIDInput struct {
	ID string `path:"id" doc:"Note ID"`
}

// SearchNotesInput contains search parameters.
type SearchNotesInput struct {
	Query string `query:"q" doc:"Search query"`
	Limit int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (default 20)"`
}

// SearchNotesResponse contains search results.
type SearchNotesResponse struct {
	Query string         `json:"query" doc:"Query as received"`
	Notes []NoteResponse `json:"notes" doc:"Matching notes, best first"`
}

// SearchNotesOutput wraps the search response for Huma.
type SearchNotesOutput struct {
	Body SearchNotesResponse
}

// MessageOutput wraps a message for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListNotes(ctx context.Context, _ *struct{}) (*ListNotesOutput, error) {
	notes, err := s.services.Notes.ListOwn(ctx, IdentityFrom(ctx))
	if err != nil {
		return nil, err
	}
	return &ListNotesOutput{Body: ListNotesResponse{Notes: toNoteResponses(notes)}}, nil
}

func (s *Server) handleCreateNote(ctx context.Context, input *CreateNoteInput) (*NoteOutput, error) {
	note, err := s.services.Notes.Compose(ctx, IdentityFrom(ctx), service.ComposeRequest{
		Title:   input.Body.Title,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: toNoteResponse(note)}, nil
}

func (s *Server) handleGetNote(ctx context.Context, input *NoteIDInput) (*NoteOutput, error) {
	note, err := s.services.Notes.View(ctx, IdentityFrom(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: toNoteResponse(note)}, nil
}

func (s *Server) handleDeleteNote(ctx context.Context, input *NoteIDInput) (*MessageOutput, error) {
	if err := s.services.Notes.Delete(ctx, IdentityFrom(ctx), input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Note deleted"}}, nil
}

func (s *Server) handleSearchNotes(ctx context.Context, input *SearchNotesInput) (*SearchNotesOutput, error) {
	notes, err := s.services.Notes.Search(ctx, IdentityFrom(ctx), input.Query, input.Limit)
	if err != nil {
		return nil, err
	}
	return &SearchNotesOutput{Body: SearchNotesResponse{
		Query: input.Query,
		Notes: toNoteResponses(notes),
	}}, nil
}
