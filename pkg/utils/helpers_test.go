package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPercentage(t *testing.T) {
	assert.Equal(t, 100, ClampPercentage(150))
	assert.Equal(t, 0, ClampPercentage(-5))
	assert.Equal(t, 0, ClampPercentage(0))
	assert.Equal(t, 100, ClampPercentage(100))
	assert.Equal(t, 73, ClampPercentage(73))
}

func TestGetStringOrDefault(t *testing.T) {
	assert.Equal(t, "value", GetStringOrDefault("value", "fallback"))
	assert.Equal(t, "fallback", GetStringOrDefault("", "fallback"))
}

func TestGenerateRecordID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateRecordID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
