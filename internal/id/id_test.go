package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	for range 1000 {
		id, err := Generate(NotePrefix)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}
	assert.Len(t, ids, 1000)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{UserPrefix, NotePrefix, SessionPrefix} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(id, prefix+"-"))
			suffix := strings.TrimPrefix(id, prefix+"-")
			assert.Len(t, suffix, 21)
			for _, r := range suffix {
				assert.True(t,
					(r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') ||
						(r >= '0' && r <= '9') || r == '_' || r == '-',
					"character %c should be URL-safe", r)
			}
		})
	}
}

func TestMustGenerate(t *testing.T) {
	id := MustGenerate(SessionPrefix)
	assert.True(t, strings.HasPrefix(id, "sess-"))
}
