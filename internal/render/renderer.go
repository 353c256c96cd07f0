// Package render sequences the inference pipeline for one dream: text
// enrichment, video-prompt synthesis, and optional video generation, folded
// into a single render response.
package render

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/smehra/dreamfilm/internal/enrich"
	"github.com/smehra/dreamfilm/internal/model"
)

// VideoStage generates a video for a prompt and returns a download URL, or
// "" when no video is available. Implemented by *video.Generator.
type VideoStage interface {
	Render(ctx context.Context, prompt, keyPrefix string) string
}

// Renderer coordinates the pipeline stages. It holds no per-call state;
// concurrent renders are independent.
type Renderer struct {
	text  enrich.Backend
	video VideoStage
}

// NewRenderer wires a Renderer from its stages.
func NewRenderer(text enrich.Backend, video VideoStage) *Renderer {
	return &Renderer{text: text, video: video}
}

// Render runs the full pipeline for one dream. Enrichment errors abort the
// whole call; the video stage can only ever degrade the response to one
// without a video link. No stage is retried.
func (r *Renderer) Render(ctx context.Context, dream *model.Dream) (*model.RenderResponse, error) {
	if err := dream.Validate(); err != nil {
		return nil, err
	}

	result, err := r.text.Enrich(ctx, dream)
	if err != nil {
		return nil, fmt.Errorf("enrich dream %s: %w", dream.ID, err)
	}

	prompt := BuildVideoPrompt(result.MovieScript, result.StyleProfile)

	keyPrefix := "luma_outputs/" + dream.ID
	videoURL := r.video.Render(ctx, prompt, keyPrefix)

	log.Info().
		Str("dreamId", dream.ID).
		Bool("hasVideo", videoURL != "").
		Msg("Render complete")

	return &model.RenderResponse{
		Dream:          dream,
		StyleProfile:   result.StyleProfile,
		MovieScript:    result.MovieScript,
		Psychoanalysis: result.Psychoanalysis,
		PsychoMetadata: result.PsychoMetadata,
		VideoURL:       videoURL,
	}, nil
}
