package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog/log"

	"github.com/smehra/dreamfilm/internal/assets"
	"github.com/smehra/dreamfilm/internal/jsonutil"
	"github.com/smehra/dreamfilm/internal/model"
)

// Generation parameters for the text model.
const (
	anthropicVersion = "bedrock-2023-05-31"
	maxTokens        = 1200
	temperature      = 0.7
)

// ModelInvoker is the slice of the Bedrock runtime client the text backend
// needs. The concrete *bedrockruntime.Client satisfies it; tests substitute
// a fake.
type ModelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockBackend enriches dreams through an Anthropic model hosted on
// Bedrock.
type BedrockBackend struct {
	client  ModelInvoker
	modelID string
}

// NewBedrockBackend creates a backend for the given model ID.
func NewBedrockBackend(client ModelInvoker, modelID string) *BedrockBackend {
	return &BedrockBackend{client: client, modelID: modelID}
}

var _ Backend = (*BedrockBackend)(nil)

// messageRequest is the Anthropic messages request body for Bedrock
// InvokeModel.
type messageRequest struct {
	AnthropicVersion string        `json:"anthropic_version"`
	MaxTokens        int           `json:"max_tokens"`
	Temperature      float64       `json:"temperature"`
	System           string        `json:"system"`
	Messages         []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// messageResponse is the subset of the Bedrock response envelope the backend
// reads: a list of typed content blocks whose text parts carry the payload.
type messageResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// Enrich sends the dream to the text model and parses its structured output.
// A response with no extractable text yields a BackendFormatError; text that
// is not valid JSON after fence stripping yields a BackendParseError. Both
// are fatal to the render call.
func (b *BedrockBackend) Enrich(ctx context.Context, dream *model.Dream) (*model.EnrichmentResult, error) {
	in := buildModelInput(dream)

	userJSON, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal model input: %w", err)
	}

	body, err := json.Marshal(messageRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      temperature,
		System:           assets.DirectorSystemPrompt,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentBlock{{
				Type: "text",
				Text: "Here is the dream JSON:\n\n" + string(userJSON) +
					"\n\nRemember: respond ONLY with the JSON object described above.",
			}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	log.Debug().
		Str("dreamId", dream.ID).
		Str("model", b.modelID).
		Msg("Invoking text model")

	resp, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("invoke text model: %w", err)
	}

	var envelope messageResponse
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, &BackendFormatError{Detail: fmt.Sprintf("undecodable response envelope: %v", err)}
	}

	text := joinTextBlocks(envelope.Content)
	if text == "" {
		return nil, &BackendFormatError{Detail: "response contains no text content blocks"}
	}

	result, err := jsonutil.Parse[model.EnrichmentResult](text)
	if err != nil {
		return nil, &BackendParseError{Raw: text, Err: err}
	}
	if result.StyleProfile == nil {
		return nil, &BackendParseError{Raw: text, Err: fmt.Errorf("missing style_profile")}
	}

	log.Debug().
		Str("dreamId", dream.ID).
		Int("scriptLength", len(result.MovieScript)).
		Msg("Text model response parsed")

	return &result, nil
}

// joinTextBlocks concatenates the text of every text-typed content block.
func joinTextBlocks(blocks []contentBlock) string {
	var sb strings.Builder
	for _, blk := range blocks {
		if blk.Type == "text" {
			sb.WriteString(blk.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
