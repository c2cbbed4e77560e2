package domain

import "errors"

// Note validation errors.
var (
	ErrNoteOwnerRequired   = errors.New("note owner is required")
	ErrNoteTitleRequired   = errors.New("note title is required")
	ErrNoteContentRequired = errors.New("note content is required")
)

// Note is a titled text owned by exactly one user. Notes are immutable
// once created.
type Note struct {
	Record
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate checks the required fields.
func (n *Note) Validate() error {
	switch {
	case n.OwnerID == "":
		return ErrNoteOwnerRequired
	case n.Title == "":
		return ErrNoteTitleRequired
	case n.Content == "":
		return ErrNoteContentRequired
	}
	return nil
}

// OwnedBy reports whether userID owns the note.
func (n *Note) OwnedBy(userID string) bool {
	return userID != "" && n.OwnerID == userID
}

// Excerpt returns at most limit runes of the content for list views.
func (n *Note) Excerpt(limit int) string {
	r := []rune(n.Content)
	if len(r) <= limit {
		return n.Content
	}
	return string(r[:limit]) + "…"
}
