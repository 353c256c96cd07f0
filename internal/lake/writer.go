// Package lake handles the object-store data lake: raw journal events are
// written as JSON on creation, and a batch job later flattens them into a
// columnar layout for analytics.
package lake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/smehra/dreamfilm/internal/model"
)

// Lake prefixes. Raw events are partitioned by creation date; flattened
// output is versioned so the analytic schema can evolve.
const (
	rawPrefix        = "raw/dream_journal_events/"
	structuredPrefix = "structured/dreams_flat/v1/"
)

// ObjectStore is the slice of the S3 client the lake uses. *s3.Client
// satisfies it.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Writer persists raw journal events.
type Writer struct {
	client ObjectStore
	bucket string
}

// NewWriter creates a Writer for the given data-lake bucket.
func NewWriter(client ObjectStore, bucket string) *Writer {
	return &Writer{client: client, bucket: bucket}
}

// rawKey builds the date-partitioned object key for a dream.
func rawKey(dream *model.Dream) string {
	return fmt.Sprintf("%s%s/%s.json", rawPrefix, dream.CreatedAt.UTC().Format("2006/01/02"), dream.ID)
}

// WriteRaw stores the dream as a raw JSON event. Callers treat failures as
// best-effort: a lake outage must not block journal writes.
func (w *Writer) WriteRaw(ctx context.Context, dream *model.Dream) error {
	body, err := json.Marshal(dream)
	if err != nil {
		return fmt.Errorf("marshal dream %s: %w", dream.ID, err)
	}

	key := rawKey(dream)
	_, err = w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put raw event %s: %w", key, err)
	}

	log.Debug().Str("key", key).Str("dreamId", dream.ID).Msg("Raw dream event written to lake")
	return nil
}
