// Package enrich implements the text enrichment stage of the render
// pipeline: it turns a dream entry into a film treatment, a psychoanalytic
// reading, a style profile, and optional analytic metadata.
//
// Two interchangeable backends exist: a deterministic local stub for offline
// development, and the Bedrock-hosted text model. The caller picks one at
// construction time; the rest of the pipeline only sees the Backend
// interface.
package enrich

import (
	"context"
	"time"

	"github.com/smehra/dreamfilm/internal/model"
)

// Backend produces an enrichment result from a dream entry.
type Backend interface {
	Enrich(ctx context.Context, dream *model.Dream) (*model.EnrichmentResult, error)
}

// modelInput is the normalized request shape sent to the text model. This is
// the contract between the service and the model prompt; the stub consumes
// the same shape so both paths see identical input.
type modelInput struct {
	Dream   dreamInput   `json:"dream"`
	Context contextInput `json:"context"`
}

type dreamInput struct {
	Title     string `json:"title,omitempty"`
	Narrative string `json:"narrative"`
}

type contextInput struct {
	Mood          *int   `json:"mood"`
	SleepQuality  *int   `json:"sleep_quality"`
	MBTI          string `json:"mbti,omitempty"`
	SpotifyURL    string `json:"spotify_url,omitempty"`
	LetterboxdURL string `json:"letterboxd_url,omitempty"`
	GoodreadsURL  string `json:"goodreads_url,omitempty"`
	ListeningTo   string `json:"listening_to,omitempty"`
	Watching      string `json:"watching,omitempty"`
	Reading       string `json:"reading,omitempty"`
	ContextNote   string `json:"context_note,omitempty"`
	CreatedAt     string `json:"created_at"`
	ID            string `json:"id"`
}

// buildModelInput shapes the payload sent to the text model.
func buildModelInput(d *model.Dream) modelInput {
	return modelInput{
		Dream: dreamInput{
			Title:     d.Title,
			Narrative: d.Narrative,
		},
		Context: contextInput{
			Mood:          d.Mood,
			SleepQuality:  d.SleepQuality,
			MBTI:          d.MBTI,
			SpotifyURL:    d.SpotifyURL,
			LetterboxdURL: d.LetterboxdURL,
			GoodreadsURL:  d.GoodreadsURL,
			ListeningTo:   d.ListeningTo,
			Watching:      d.Watching,
			Reading:       d.Reading,
			ContextNote:   d.ContextNote,
			CreatedAt:     d.CreatedAt.UTC().Format(time.RFC3339),
			ID:            d.ID,
		},
	}
}
