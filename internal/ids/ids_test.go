package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsUniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool)
	var prev string
	for i := 0; i < 1000; i++ {
		id := New()
		assert.True(t, Valid(id))
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		if prev != "" {
			// monotonic entropy keeps ids sortable by creation order
			assert.Less(t, prev, id)
		}
		prev = id
	}
}

func TestValid(t *testing.T) {
	assert.False(t, Valid("not-a-ulid"))
	assert.True(t, Valid(New()))
}
