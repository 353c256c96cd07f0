package lake

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"

	"github.com/smehra/dreamfilm/internal/model"
)

// flatColumns is the fixed column order of the flattened analytic rows.
var flatColumns = []string{
	"dream_id", "created_at", "event_date", "title", "narrative",
	"mood", "sleep_quality", "mbti", "listening_to", "watching", "reading", "context_note",
	"spotify_url", "letterboxd_url", "goodreads_url",
}

// Flattener materializes raw journal events into date-partitioned, gzip'd
// CSV files under the structured prefix.
type Flattener struct {
	client ObjectStore
	bucket string
}

// NewFlattener creates a Flattener for the given data-lake bucket.
func NewFlattener(client ObjectStore, bucket string) *Flattener {
	return &Flattener{client: client, bucket: bucket}
}

// Run lists every raw event, flattens it, and writes one compressed CSV per
// event date. Malformed records are logged and skipped; they never abort the
// batch. Returns the number of rows materialized.
func (f *Flattener) Run(ctx context.Context) (int, error) {
	keys, err := f.listRawKeys(ctx)
	if err != nil {
		return 0, err
	}
	log.Info().Int("count", len(keys)).Msg("Found raw event files")

	byDate := make(map[string][][]string)
	total := 0
	for _, key := range keys {
		dream, err := f.readEvent(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Skipping raw event")
			continue
		}

		date := "unknown_date"
		if !dream.CreatedAt.IsZero() {
			date = dream.CreatedAt.UTC().Format("2006-01-02")
		}
		byDate[date] = append(byDate[date], flattenRow(dream))
		total++
	}

	for date, rows := range byDate {
		if err := f.writePartition(ctx, date, rows); err != nil {
			return total, err
		}
	}
	return total, nil
}

// listRawKeys pages through the raw prefix and returns every .json key.
func (f *Flattener) listRawKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var token *string

	for {
		resp, err := f.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(f.bucket),
			Prefix:            aws.String(rawPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list raw events: %w", err)
		}

		for _, obj := range resp.Contents {
			if key := aws.ToString(obj.Key); strings.HasSuffix(key, ".json") {
				keys = append(keys, key)
			}
		}

		if !aws.ToBool(resp.IsTruncated) {
			return keys, nil
		}
		token = resp.NextContinuationToken
	}
}

// readEvent fetches and decodes one raw event.
func (f *Flattener) readEvent(ctx context.Context, key string) (*model.Dream, error) {
	resp, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	var dream model.Dream
	if err := json.Unmarshal(body, &dream); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &dream, nil
}

// flattenRow normalizes one dream into a flat row matching flatColumns.
func flattenRow(d *model.Dream) []string {
	createdAt := ""
	eventDate := ""
	if !d.CreatedAt.IsZero() {
		createdAt = d.CreatedAt.UTC().Format(time.RFC3339)
		eventDate = d.CreatedAt.UTC().Format("2006-01-02")
	}

	return []string{
		d.ID, createdAt, eventDate, d.Title, d.Narrative,
		intOrEmpty(d.Mood), intOrEmpty(d.SleepQuality), d.MBTI,
		d.ListeningTo, d.Watching, d.Reading, d.ContextNote,
		d.SpotifyURL, d.LetterboxdURL, d.GoodreadsURL,
	}
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// writePartition writes one date partition as a gzip'd CSV part file.
func (f *Flattener) writePartition(ctx context.Context, date string, rows [][]string) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	cw := csv.NewWriter(gz)

	if err := cw.Write(flatColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compress partition %s: %w", date, err)
	}

	key := fmt.Sprintf("%sevent_date=%s/part-%s.csv.gz",
		structuredPrefix, date, strings.ReplaceAll(uuid.NewString(), "-", ""))

	_, err := f.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(f.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/gzip"),
	})
	if err != nil {
		return fmt.Errorf("upload partition %s: %w", date, err)
	}

	log.Info().Str("key", key).Int("rows", len(rows)).Msg("Flattened partition uploaded")
	return nil
}
