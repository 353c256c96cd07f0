package jsonutil

import (
	"testing"
)

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fence with language tag",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "fence without language tag",
			in:   "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "no fence",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "fence only at start",
			in:   "```json\n{\"a\": 1}",
			want: `{"a": 1}`,
		},
		{
			name: "surrounding whitespace",
			in:   "  \n```json\n{\"a\": 1}\n```\n  ",
			want: `{"a": 1}`,
		},
		{
			name: "malformed single-line fence",
			in:   "```",
			want: "```",
		},
		{
			name: "multiline body",
			in:   "```json\n{\n  \"a\": 1\n}\n```",
			want: "{\n  \"a\": 1\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownFences(tt.in); got != tt.want {
				t.Errorf("StripMarkdownFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractObject(t *testing.T) {
	got, err := ExtractObject("Here is your JSON: {\"a\": 1} hope it helps")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a": 1}` {
		t.Errorf("got %q", got)
	}

	if _, err := ExtractObject("no json here"); err == nil {
		t.Error("expected error for text without an object")
	}
	if _, err := ExtractObject(`{"truncated": "x"`); err == nil {
		t.Error("expected error for unclosed object")
	}
}

func TestParse(t *testing.T) {
	type payload struct {
		MovieScript string `json:"movie_script"`
	}

	got, err := Parse[payload]("```json\n{\"movie_script\": \"fade in\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MovieScript != "fade in" {
		t.Errorf("got %q", got.MovieScript)
	}

	if _, err := Parse[payload](`{"movie_script": "x"`); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if _, err := Parse[payload]("{invalid}"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
