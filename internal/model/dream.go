// Package model defines the dream journal domain types shared by the API
// layer, the inference pipeline, and the persistence layers: the Dream entry
// record, the transient enrichment result produced by the text model, and the
// final render response returned to the frontend.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DreamCreate is the client-supplied portion of a dream entry. Everything is
// optional except the narrative; the daily-context fields exist so the text
// model can fold the dreamer's day into the film treatment.
type DreamCreate struct {
	Mood         *int   `json:"mood,omitempty" dynamodbav:"mood,omitempty"`
	SleepQuality *int   `json:"sleep_quality,omitempty" dynamodbav:"sleepQuality,omitempty"`
	ContextNote  string `json:"context_note,omitempty" dynamodbav:"contextNote,omitempty"`

	MBTI string `json:"mbti,omitempty" dynamodbav:"mbti,omitempty"`

	SpotifyURL    string `json:"spotify_url,omitempty" dynamodbav:"spotifyUrl,omitempty"`
	LetterboxdURL string `json:"letterboxd_url,omitempty" dynamodbav:"letterboxdUrl,omitempty"`
	GoodreadsURL  string `json:"goodreads_url,omitempty" dynamodbav:"goodreadsUrl,omitempty"`

	ListeningTo string `json:"listening_to,omitempty" dynamodbav:"listeningTo,omitempty"`
	Watching    string `json:"watching,omitempty" dynamodbav:"watching,omitempty"`
	Reading     string `json:"reading,omitempty" dynamodbav:"reading,omitempty"`

	Title     string `json:"title,omitempty" dynamodbav:"title,omitempty"`
	Narrative string `json:"narrative" dynamodbav:"narrative"`
}

// Dream is a persisted journal entry. ID and CreatedAt are assigned exactly
// once at creation and never mutated; the pipeline treats the whole record as
// read-only.
type Dream struct {
	DreamCreate

	ID        string    `json:"id" dynamodbav:"-"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"createdAt"`
}

// ValidationError reports a malformed dream entry. It is raised before any
// model backend is contacted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid dream: field %q %s", e.Field, e.Reason)
}

// Validate checks the entry invariants. The narrative is the only required
// field; whitespace-only narratives are rejected as well since the pipeline
// has nothing to work with.
func (d *DreamCreate) Validate() error {
	if strings.TrimSpace(d.Narrative) == "" {
		return &ValidationError{Field: "narrative", Reason: "must be present and non-empty"}
	}
	return nil
}

// StyleLinks echoes the dreamer's media profile URLs back through the style
// profile. The model never invents these; they pass through unchanged.
type StyleLinks struct {
	Spotify    string `json:"spotify,omitempty"`
	Letterboxd string `json:"letterboxd,omitempty"`
	Goodreads  string `json:"goodreads,omitempty"`
}

// StyleProfile describes the visual grammar of the dream film.
type StyleProfile struct {
	ColorPalette   []string   `json:"colorPalette"`
	CameraStyle    string     `json:"cameraStyle"`
	MediaInfluence []string   `json:"mediaInfluence"`
	MBTI           string     `json:"mbti,omitempty"`
	Links          StyleLinks `json:"links"`
}

// PsychoMetadata is the optional analytic block attached to an enrichment
// result. Every inner field may be absent.
type PsychoMetadata struct {
	DayResidues         []string `json:"day_residues,omitempty"`
	WishFulfillmentType string   `json:"wish_fulfillment_type,omitempty"`
	KeySignifiers       []string `json:"key_signifiers,omitempty"`
	SubjectPosition     string   `json:"subject_position,omitempty"`
	RegisterFeel        string   `json:"register_feel,omitempty"`
}

// EnrichmentResult is the structured output of the text model (or the local
// stub). All four top-level keys must be present in a valid result; the
// metadata block's inner fields may each be null. It lives only for the
// duration of one render call.
type EnrichmentResult struct {
	MovieScript    string          `json:"movie_script"`
	Psychoanalysis string          `json:"psychoanalysis"`
	StyleProfile   *StyleProfile   `json:"style_profile"`
	PsychoMetadata *PsychoMetadata `json:"psycho_metadata"`
}

// RenderResponse is the assembled result of one render call. VideoURL is
// empty whenever video generation is disabled or failed; the text fields are
// always populated on success.
type RenderResponse struct {
	Dream          *Dream          `json:"dream"`
	StyleProfile   *StyleProfile   `json:"style_profile"`
	MovieScript    string          `json:"movie_script"`
	Psychoanalysis string          `json:"psychoanalysis"`
	PsychoMetadata *PsychoMetadata `json:"psycho_metadata,omitempty"`
	VideoURL       string          `json:"video_url,omitempty"`
}
