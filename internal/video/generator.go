// Package video implements the asynchronous text-to-video stage of the
// render pipeline: submit a Bedrock async invocation, poll it to a terminal
// state under a bounded wait, and resolve the S3 output into a time-limited
// download URL.
//
// Every failure mode in this package degrades to "no video". The rest of the
// render response is always assembled regardless of what the video backend
// does.
package video

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// JobStatus is the lifecycle state of one async video job.
type JobStatus string

const (
	StatusRunning   JobStatus = "Running"
	StatusCompleted JobStatus = "Completed"
	StatusFailed    JobStatus = "Failed"
	StatusTimedOut  JobStatus = "TimedOut"
)

// AsyncInvoker is the slice of the Bedrock runtime client used for async
// video jobs. *bedrockruntime.Client satisfies it.
type AsyncInvoker interface {
	StartAsyncInvoke(ctx context.Context, params *bedrockruntime.StartAsyncInvokeInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.StartAsyncInvokeOutput, error)
	GetAsyncInvoke(ctx context.Context, params *bedrockruntime.GetAsyncInvokeInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.GetAsyncInvokeOutput, error)
}

// ObjectLister lists objects under an S3 prefix. *s3.Client satisfies it.
type ObjectLister interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Presigner produces time-limited GET URLs. *s3.PresignClient satisfies it.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Options configures a Generator.
type Options struct {
	// Enabled gates the stage. When false Render returns immediately and the
	// backend is never contacted.
	Enabled bool
	// ModelID is the Bedrock async video model.
	ModelID string
	// Bucket is the S3 bucket job outputs are written into.
	Bucket string
	// PollInterval is the wait between status polls.
	PollInterval time.Duration
	// MaxPollWait is the total polling budget for one job.
	MaxPollWait time.Duration
	// PresignTTL is the lifetime of resolved download URLs.
	PresignTTL time.Duration
}

// Generator drives async video jobs end to end.
type Generator struct {
	bedrock   AsyncInvoker
	s3        ObjectLister
	presigner Presigner
	opts      Options
}

// NewGenerator wires a Generator from its backend clients.
func NewGenerator(bedrock AsyncInvoker, lister ObjectLister, presigner Presigner, opts Options) *Generator {
	return &Generator{bedrock: bedrock, s3: lister, presigner: presigner, opts: opts}
}

// Render generates a video for the prompt and returns a presigned URL for
// the resulting artifact, or "" when no video is available. It never returns
// an error: submission failures, job failures, poll failures, timeouts, and
// empty outputs are all logged and collapse to "".
func (g *Generator) Render(ctx context.Context, prompt, keyPrefix string) string {
	if !g.opts.Enabled {
		log.Info().Msg("Video generation disabled; skipping")
		return ""
	}

	arn, requestedURI := g.submit(ctx, prompt, keyPrefix)
	if arn == "" {
		return ""
	}

	outputURI, status := g.awaitCompletion(ctx, arn, requestedURI)
	if status != StatusCompleted {
		return ""
	}

	return g.resolveLink(ctx, outputURI)
}

// submit starts the async invocation and returns the job ARN plus the
// requested output URI. An empty ARN means submission failed.
func (g *Generator) submit(ctx context.Context, prompt, keyPrefix string) (arn, requestedURI string) {
	requestedURI = fmt.Sprintf("s3://%s/%s", g.opts.Bucket, keyPrefix)

	modelInput := document.NewLazyDocument(map[string]interface{}{
		"prompt":       prompt,
		"aspect_ratio": "16:9",
		"loop":         false,
		"duration":     "5s",
		"resolution":   "720p",
	})

	resp, err := g.bedrock.StartAsyncInvoke(ctx, &bedrockruntime.StartAsyncInvokeInput{
		ModelId:    aws.String(g.opts.ModelID),
		ModelInput: modelInput,
		OutputDataConfig: &brtypes.AsyncInvokeOutputDataConfigMemberS3OutputDataConfig{
			Value: brtypes.AsyncInvokeS3OutputDataConfig{
				S3Uri: aws.String(requestedURI),
			},
		},
	})
	if err != nil {
		log.Error().Err(err).Str("model", g.opts.ModelID).Msg("Video job submission failed")
		return "", requestedURI
	}
	if resp.InvocationArn == nil || *resp.InvocationArn == "" {
		log.Error().Str("model", g.opts.ModelID).Msg("Video job submission returned no invocation ARN")
		return "", requestedURI
	}

	log.Info().Str("invocationArn", *resp.InvocationArn).Str("outputUri", requestedURI).Msg("Started async video job")
	return *resp.InvocationArn, requestedURI
}

// awaitCompletion polls the job until it reaches a terminal state or the
// wait budget is exhausted. The returned URI is the backend-reported output
// location when available, falling back to the requested destination.
func (g *Generator) awaitCompletion(ctx context.Context, arn, requestedURI string) (string, JobStatus) {
	for waited := time.Duration(0); waited < g.opts.MaxPollWait; waited += g.opts.PollInterval {
		job, err := g.bedrock.GetAsyncInvoke(ctx, &bedrockruntime.GetAsyncInvokeInput{
			InvocationArn: aws.String(arn),
		})
		if err != nil {
			log.Error().Err(err).Str("invocationArn", arn).Msg("Video job status poll failed")
			return "", StatusFailed
		}

		log.Debug().Str("invocationArn", arn).Str("status", string(job.Status)).Msg("Video job status")

		switch job.Status {
		case brtypes.AsyncInvokeStatusCompleted:
			return outputURIFromJob(job, requestedURI), StatusCompleted
		case brtypes.AsyncInvokeStatusFailed:
			log.Error().
				Str("invocationArn", arn).
				Str("failure", aws.ToString(job.FailureMessage)).
				Msg("Video job failed")
			return "", StatusFailed
		}

		if !sleepCtx(ctx, g.opts.PollInterval) {
			log.Warn().Str("invocationArn", arn).Msg("Video job wait canceled")
			return "", StatusFailed
		}
	}

	log.Warn().Str("invocationArn", arn).Dur("maxWait", g.opts.MaxPollWait).Msg("Video job timed out")
	return "", StatusTimedOut
}

// outputURIFromJob prefers the backend-reported S3 destination over the one
// originally requested.
func outputURIFromJob(job *bedrockruntime.GetAsyncInvokeOutput, requestedURI string) string {
	if cfg, ok := job.OutputDataConfig.(*brtypes.AsyncInvokeOutputDataConfigMemberS3OutputDataConfig); ok {
		if uri := aws.ToString(cfg.Value.S3Uri); uri != "" {
			return uri
		}
	}
	return requestedURI
}

// resolveLink turns a folder-style s3:// output URI into a presigned GET URL
// for the rendered video. Returns "" when the output location is empty.
func (g *Generator) resolveLink(ctx context.Context, outputURI string) string {
	bucket, prefix, err := splitS3URI(outputURI)
	if err != nil {
		log.Error().Err(err).Str("uri", outputURI).Msg("Unresolvable video output location")
		return ""
	}

	listing, err := g.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		log.Error().Err(err).Str("uri", outputURI).Msg("Listing video output failed")
		return ""
	}
	if len(listing.Contents) == 0 {
		log.Warn().Str("uri", outputURI).Msg("Video job completed but output location is empty")
		return ""
	}

	// Prefer the actual video file; async jobs also drop manifest and
	// metadata objects alongside it.
	key := aws.ToString(listing.Contents[0].Key)
	for _, obj := range listing.Contents {
		if strings.HasSuffix(strings.ToLower(aws.ToString(obj.Key)), ".mp4") {
			key = aws.ToString(obj.Key)
			break
		}
	}

	presigned, err := g.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(g.opts.PresignTTL))
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Presigning video URL failed")
		return ""
	}

	log.Info().Str("key", key).Msg("Resolved video download URL")
	return presigned.URL
}

// splitS3URI splits s3://bucket/prefix into its parts.
func splitS3URI(uri string) (bucket, key string, err error) {
	trimmed, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 URI: %q", uri)
	}
	bucket, key, _ = strings.Cut(trimmed, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in %q", uri)
	}
	return bucket, key, nil
}

// sleepCtx waits for d or until ctx is canceled. Returns false on
// cancellation so the poll loop can abort instead of busy-waiting.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
