package render

import (
	"fmt"
	"strings"

	"github.com/smehra/dreamfilm/internal/model"
)

// videoPromptPreamble anchors every generated video in the same house
// aesthetic regardless of the dream's own palette.
const videoPromptPreamble = "Whimsigoth dream film in deep purple and gold, projected in a small vintage cinema."

// BuildVideoPrompt derives the single natural-language prompt for the video
// model from the text model's output. It is a pure function: identical input
// always yields byte-identical output, and missing style fields degrade to
// empty segments rather than errors.
func BuildVideoPrompt(script string, style *model.StyleProfile) string {
	var palette, camera string
	var influences []string
	if style != nil {
		palette = strings.Join(style.ColorPalette, ", ")
		camera = style.CameraStyle
		influences = style.MediaInfluence
	}

	return fmt.Sprintf(
		"%s Color palette: %s. Camera style: %s. %s Scene description: %s",
		videoPromptPreamble,
		palette,
		camera,
		strings.Join(influences, " "),
		script,
	)
}
