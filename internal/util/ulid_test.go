package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()

	assert.Len(t, a, 26)
	assert.True(t, ValidID(a))
	assert.Less(t, a, b)
}

func TestValidID(t *testing.T) {
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("not-a-ulid"))
	assert.True(t, ValidID("01ARZ3NDEKTSV4RRFFQ69G5FAV"))
}
