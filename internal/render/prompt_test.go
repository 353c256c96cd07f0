package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smehra/dreamfilm/internal/model"
)

func TestBuildVideoPromptOrder(t *testing.T) {
	style := &model.StyleProfile{
		ColorPalette:   []string{"deep indigo", "dull gold"},
		CameraStyle:    "slow push-ins",
		MediaInfluence: []string{"First.", "Second."},
	}

	prompt := BuildVideoPrompt("SCENE: a hallway", style)

	assert.True(t, strings.HasPrefix(prompt, videoPromptPreamble))
	assert.Contains(t, prompt, "Color palette: deep indigo, dull gold.")
	assert.Contains(t, prompt, "Camera style: slow push-ins.")
	assert.Contains(t, prompt, "First. Second.")
	assert.True(t, strings.HasSuffix(prompt, "Scene description: SCENE: a hallway"))

	// Segments appear in their fixed order.
	paletteIdx := strings.Index(prompt, "Color palette:")
	cameraIdx := strings.Index(prompt, "Camera style:")
	sceneIdx := strings.Index(prompt, "Scene description:")
	assert.Less(t, paletteIdx, cameraIdx)
	assert.Less(t, cameraIdx, sceneIdx)
}

func TestBuildVideoPromptIsPure(t *testing.T) {
	style := &model.StyleProfile{
		ColorPalette:   []string{"muted plum"},
		CameraStyle:    "static frames",
		MediaInfluence: []string{"One."},
	}

	first := BuildVideoPrompt("a script", style)
	second := BuildVideoPrompt("a script", style)
	assert.Equal(t, first, second)
}

func TestBuildVideoPromptMissingStyleDegrades(t *testing.T) {
	prompt := BuildVideoPrompt("a script", nil)

	assert.Contains(t, prompt, "Color palette: .")
	assert.Contains(t, prompt, "Camera style: .")
	assert.Contains(t, prompt, "Scene description: a script")

	empty := BuildVideoPrompt("a script", &model.StyleProfile{})
	assert.Equal(t, prompt, empty)
}
