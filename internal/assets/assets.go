// Package assets provides embedded static assets for the application.
//
// Prompt text is stored under prompts/ and embedded at compile time so the
// binaries ship self-contained.
package assets

import (
	_ "embed"
)

// DirectorSystemPrompt instructs the text model to act as a dream-film
// director and a non-clinical psychoanalytic reader, and to respond with a
// single strict JSON object carrying the four enrichment keys.
//
//go:embed prompts/director-system.txt
var DirectorSystemPrompt string
