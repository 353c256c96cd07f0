package enrich

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/smehra/dreamfilm/internal/model"
)

// Fixed palettes keyed to the mood scale.
var (
	coldPalette    = []string{"deep indigo", "bruised violet", "dull gold"}
	hotPalette     = []string{"neon magenta", "electric cyan", "acid yellow"}
	neutralPalette = []string{"muted plum", "off-white", "faded orange"}
)

// Camera-style variants keyed to the MBTI first letter.
const (
	introvertCamera = "intimate, lingering close-ups, static frames"
	extrovertCamera = "restless tracking shots, wider compositions"
)

// Keyword sets for the three registers. Matching is substring-based against
// the lower-cased narrative, and a later set overwrites an earlier one when
// both match, so real beats symbolic beats imaginary.
var (
	imaginaryWords = []string{"mirror", "reflection", "double", "face", "body", "image"}
	symbolicWords  = []string{"exam", "test", "school", "university", "office", "manager", "contract", "email", "rules"}
	realWords      = []string{"blood", "wound", "dead", "scream", "void", "teeth", "falling", "crash"}
)

// StubBackend is a deterministic stand-in for the remote text model. It is a
// pure function of the entry's fields, which makes offline development and
// pipeline tests reproducible.
type StubBackend struct{}

// NewStubBackend returns the deterministic local backend.
func NewStubBackend() *StubBackend { return &StubBackend{} }

var _ Backend = (*StubBackend)(nil)

// Enrich derives the same kind of structured output the remote model
// returns, using fixed rules instead of generation. It never fails.
func (s *StubBackend) Enrich(_ context.Context, dream *model.Dream) (*model.EnrichmentResult, error) {
	in := buildModelInput(dream)

	title := in.Dream.Title
	if title == "" {
		title = "Untitled dream"
	}
	narrative := in.Dream.Narrative

	// Style profile.
	palette := neutralPalette
	if mood := in.Context.Mood; mood != nil {
		switch {
		case *mood <= -2:
			palette = coldPalette
		case *mood >= 2:
			palette = hotPalette
		}
	}

	camera := extrovertCamera
	if strings.HasPrefix(strings.ToUpper(in.Context.MBTI), "I") {
		camera = introvertCamera
	}

	var influences []string
	if in.Context.ListeningTo != "" {
		influences = append(influences,
			fmt.Sprintf("The rhythm of cuts echoes what you were listening to (%s).", in.Context.ListeningTo))
	}
	if in.Context.Watching != "" {
		influences = append(influences,
			fmt.Sprintf("The visual grammar borrows from what you were watching (%s).", in.Context.Watching))
	}
	if in.Context.Reading != "" {
		influences = append(influences,
			fmt.Sprintf("Narrative motifs echo what you were reading (%s).", in.Context.Reading))
	}
	if len(influences) == 0 {
		influences = append(influences,
			"The film lingers on textures and small sensory details rather than plot.")
	}

	style := &model.StyleProfile{
		ColorPalette:   palette,
		CameraStyle:    camera,
		MediaInfluence: influences,
		MBTI:           in.Context.MBTI,
		Links: model.StyleLinks{
			Spotify:    in.Context.SpotifyURL,
			Letterboxd: in.Context.LetterboxdURL,
			Goodreads:  in.Context.GoodreadsURL,
		},
	}

	// Psychoanalytic metadata from keyword scan.
	text := strings.ToLower(narrative)

	var found []string
	register := ""
	for _, set := range []struct {
		words []string
		name  string
	}{
		{imaginaryWords, "imaginary"},
		{symbolicWords, "symbolic"},
		{realWords, "real"},
	} {
		for _, w := range set.words {
			if strings.Contains(text, w) {
				found = append(found, w)
				register = set.name
			}
		}
	}

	signifiers := sortedUnique(found)

	meta := &model.PsychoMetadata{
		KeySignifiers: signifiers,
		RegisterFeel:  register,
	}

	// Analysis text.
	var points []string
	switch register {
	case "imaginary":
		points = append(points,
			"The dream leans into the Imaginary in Lacan's sense: images of body and identity circle a missing certainty.")
	case "symbolic":
		points = append(points,
			"Symbolic structures dominate: institutions, rules, and evaluations stage how you experience desire and anxiety.")
	case "real":
		points = append(points,
			"There are eruptions of the Real: scenes that puncture narrative coherence and resist being fully symbolized.")
	}
	if len(signifiers) > 0 {
		points = append(points,
			fmt.Sprintf("Certain signifiers recur (%s), forming small knots where your attention and anxiety return.",
				strings.Join(signifiers, ", ")))
	}
	if in.Context.MBTI != "" {
		points = append(points,
			fmt.Sprintf("Your MBTI (%s) colors how conflict is staged—what stays internal vs. externalized as characters or spaces.",
				strings.ToUpper(in.Context.MBTI)))
	}
	if in.Context.ContextNote != "" {
		points = append(points,
			fmt.Sprintf("The day's residue ('%s') seeps into the dream's textures more than its literal plot.",
				in.Context.ContextNote))
	}
	if len(points) == 0 {
		points = append(points,
			"This dream threads together residues of the day with older desire patterns, without resolving them into a simple message.")
	}

	// Movie script: fixed-order treatment lines, space-joined (blank lines
	// included, matching the original output byte for byte).
	lines := []string{
		fmt.Sprintf("The dream film opens in a palette of %s.", strings.Join(palette, ", ")),
		fmt.Sprintf("The camera moves with %s.", camera),
		strings.Join(influences, " "),
		"",
		fmt.Sprintf("TITLE CARD: %q", title),
		"",
		"SCENE:",
		narrative,
	}

	return &model.EnrichmentResult{
		MovieScript:    strings.Join(lines, " "),
		Psychoanalysis: strings.Join(points, " "),
		StyleProfile:   style,
		PsychoMetadata: meta,
	}, nil
}

// sortedUnique returns the sorted, duplicate-free copy of words, or nil when
// words is empty.
func sortedUnique(words []string) []string {
	if len(words) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
