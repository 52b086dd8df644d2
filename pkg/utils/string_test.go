package utils_test

import (
	"testing"

	"github.com/robalyx/modreport/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestCompressAllWhitespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "single space", input: "hello world", want: "hello world"},
		{name: "multiple spaces", input: "hello    world", want: "hello world"},
		{name: "newlines and spaces", input: "hello\n\n  world  \n\n", want: "hello world"},
		{name: "tabs and spaces", input: "hello\t\t  world", want: "hello world"},
		{name: "empty string", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, utils.CompressAllWhitespace(tt.input))
		})
	}
}

func TestCompressWhitespacePreserveNewlines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "keeps newlines", input: "hello   there\nworld", want: "hello there\nworld"},
		{name: "normalizes crlf", input: "a\r\nb\rc", want: "a\nb\nc"},
		{name: "trims outer blank lines", input: "\n\n  x  \n\n", want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, utils.CompressWhitespacePreserveNewlines(tt.input))
		})
	}
}

func TestEscapeCodeBlock(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", utils.EscapeCodeBlock("plain"))
	assert.NotContains(t, utils.EscapeCodeBlock("before ``` after"), "```")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", utils.Truncate("short", 10))
	assert.Equal(t, "hello w...", utils.Truncate("hello world!", 10))
	assert.Equal(t, "he", utils.Truncate("hello", 2))
}
