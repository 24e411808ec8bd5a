package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n\t  ", 0},
		{"single word", "hello", 1},
		{"simple sentence", "wrote three pages today", 4},
		{"extra whitespace", "  wrote   three\npages\ttoday  ", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WordCount(tt.text))
		})
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 50))
	assert.Equal(t, "hello...", Excerpt("hello world", 6))
	assert.Equal(t, "", Excerpt("   ", 10))
}
