// Package config resolves the service configuration from environment
// variables. Every knob has a development-friendly default so the server can
// boot offline with the stub backend and video generation disabled.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for the inference backends. The model IDs mirror the Bedrock
// identifiers the deployment uses; the buckets are the dev-environment names.
const (
	DefaultTextModelID  = "anthropic.claude-3-5-sonnet-20241022-v1:0"
	DefaultVideoModelID = "luma.ray-v2:0"

	DefaultVideoBucket = "dream-film-videos-dev"
	DefaultDataBucket  = "dream-film-lake-dev"

	DefaultPollInterval = 10 * time.Second
	DefaultMaxPollWait  = 300 * time.Second
	DefaultPresignTTL   = time.Hour
)

// Config holds everything the server and CLI need to wire the pipeline.
type Config struct {
	// UseBedrock selects the remote text model; when false the deterministic
	// local stub is used instead.
	UseBedrock bool
	// UseLuma gates the video stage entirely. When false the pipeline never
	// contacts the video backend and renders complete without a video link.
	UseLuma bool

	TextModelID  string
	VideoModelID string

	// VideoBucket is the S3 bucket async video jobs write into.
	VideoBucket string
	// DataBucket is the raw data-lake bucket for journal events.
	DataBucket string

	// DynamoTable, when set, switches dream persistence from the in-memory
	// store to DynamoDB.
	DynamoTable string

	PollInterval time.Duration
	MaxPollWait  time.Duration
	PresignTTL   time.Duration

	Port int
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		UseBedrock:   envBool("USE_BEDROCK", false),
		UseLuma:      envBool("USE_LUMA", false),
		TextModelID:  envOr("CLAUDE_MODEL_ID", DefaultTextModelID),
		VideoModelID: envOr("LUMA_MODEL_ID", DefaultVideoModelID),
		VideoBucket:  envOr("LUMA_OUTPUT_BUCKET", DefaultVideoBucket),
		DataBucket:   envOr("DATA_BUCKET", DefaultDataBucket),
		DynamoTable:  os.Getenv("DYNAMO_TABLE_NAME"),
		PollInterval: envSeconds("POLL_INTERVAL_SECONDS", DefaultPollInterval),
		MaxPollWait:  envSeconds("MAX_POLL_WAIT_SECONDS", DefaultMaxPollWait),
		PresignTTL:   envSeconds("PRESIGN_TTL_SECONDS", DefaultPresignTTL),
		Port:         envInt("PORT", 8000),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true") || v == "1"
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
