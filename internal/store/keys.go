package store

import (
	"fmt"
	"sync"
	"time"
)

// keyPool provides reusable byte slices for building database keys.
var keyPool = sync.Pool{
	New: func() any {
		return make([]byte, 0, 256)
	},
}

// buildKey constructs a database key from prefix and suffix using a pooled buffer.
// The returned slice is valid until releaseKey is called.
// Callers MUST call releaseKey when done with the key.
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}

// buildIndexKey constructs an index key: {prefix}idx:{name}:{value}.
// The same release rules as buildKey apply.
func buildIndexKey(prefix, indexName, value string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, "idx:"...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	buf = append(buf, value...)
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
// After calling this, the key slice must not be used.
func releaseKey(key []byte) {
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}

// sortableTime formats t so that lexicographic order equals chronological order.
// Format: YYYY-MM-DDTHH:MM:SS.NNNNNNNNNZ (always 30 characters).
func sortableTime(t time.Time) string {
	t = t.UTC()
	return t.Format("2006-01-02T15:04:05") + fmt.Sprintf(".%09d", t.Nanosecond()) + "Z"
}
