package utils_test

import (
	"testing"

	"github.com/robalyx/modreport/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestTextNormalizer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "basic string",
			input: "Hello World",
			want:  "hello world",
		},
		{
			name:  "string with diacritics",
			input: "héllo wörld",
			want:  "hello world",
		},
		{
			name:  "mixed case with spaces",
			input: "HéLLo   WöRLD",
			want:  "hello world",
		},
		{
			name:  "already normalized",
			input: "hello world",
			want:  "hello world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			normalizer := utils.NewTextNormalizer()

			got := normalizer.Normalize(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeywordMatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		keyword string
		exact   bool
		prefix  bool
	}{
		{name: "exact lower", input: "cancel", keyword: "cancel", exact: true, prefix: true},
		{name: "upper with padding", input: "  CANCEL ", keyword: "cancel", exact: true, prefix: true},
		{name: "prefix only", input: "report this please", keyword: "report", exact: false, prefix: true},
		{name: "collapsed inner spaces", input: "hate    speech", keyword: "hate speech", exact: true, prefix: true},
		{name: "different word", input: "help", keyword: "report", exact: false, prefix: false},
		{name: "empty input", input: "", keyword: "help", exact: false, prefix: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.exact, utils.IsKeyword(tt.input, tt.keyword))
			assert.Equal(t, tt.prefix, utils.HasKeywordPrefix(tt.input, tt.keyword))
		})
	}
}
