// Package search provides owner-scoped full-text search over notes using Bleve.
package search

import (
	"github.com/NiGhtKinG17/LeafNote/internal/domain"
)

// NoteDocument is the indexed form of a note.
type NoteDocument struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"` // Unix millis
}

// FromNote builds the index document for n.
func FromNote(n *domain.Note) *NoteDocument {
	return &NoteDocument{
		ID:        n.ID,
		OwnerID:   n.OwnerID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to the field names the mapping expects.
func (d *NoteDocument) ToMap() map[string]any {
	return map[string]any{
		"id":         d.ID,
		"owner_id":   d.OwnerID,
		"title":      d.Title,
		"content":    d.Content,
		"created_at": float64(d.CreatedAt),
	}
}
