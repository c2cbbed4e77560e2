package domain

import "time"

// Record provides the identity and timestamp fields shared by stored entities.
type Record struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

// Touch updates the UpdatedAt timestamp to the current time.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (r *Record) InitTimestamps() {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
}
