// Package id generates the prefixed opaque identifiers used for users, notes and sessions.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes.
const (
	UserPrefix    = "usr"
	NotePrefix    = "note"
	SessionPrefix = "sess"
)

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "note-V1StGXR8_Z5jdHi6B-myT")
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
