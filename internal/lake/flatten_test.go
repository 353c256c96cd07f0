package lake

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smehra/dreamfilm/internal/model"
)

// fakeLake is an in-memory ObjectStore.
type fakeLake struct {
	objects map[string][]byte
	puts    []string
}

func newFakeLake() *fakeLake {
	return &fakeLake{objects: make(map[string][]byte)}
}

func (f *fakeLake) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(params.Key)
	f.objects[key] = body
	f.puts = append(f.puts, key)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeLake) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeLake) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	prefix := aws.ToString(params.Prefix)
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out.Contents = append(out.Contents, s3types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func lakeDream(id string, createdAt time.Time) *model.Dream {
	mood := -3
	return &model.Dream{
		DreamCreate: model.DreamCreate{
			Narrative:   "a hallway",
			Title:       "Hall",
			Mood:        &mood,
			MBTI:        "INFJ",
			ListeningTo: "Cocteau Twins",
		},
		ID:        id,
		CreatedAt: createdAt,
	}
}

func TestWriteRawKeyLayout(t *testing.T) {
	lake := newFakeLake()
	w := NewWriter(lake, "lake-bucket")

	dream := lakeDream("d1", time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC))
	require.NoError(t, w.WriteRaw(context.Background(), dream))

	require.Len(t, lake.puts, 1)
	assert.Equal(t, "raw/dream_journal_events/2025/06/01/d1.json", lake.puts[0])

	var stored model.Dream
	require.NoError(t, json.Unmarshal(lake.objects[lake.puts[0]], &stored))
	assert.Equal(t, "a hallway", stored.Narrative)
	assert.Equal(t, "d1", stored.ID)
}

func TestFlattenerRun(t *testing.T) {
	lake := newFakeLake()
	w := NewWriter(lake, "lake-bucket")
	ctx := context.Background()

	day1 := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 4, 0, 0, 0, time.UTC)
	require.NoError(t, w.WriteRaw(ctx, lakeDream("d1", day1)))
	require.NoError(t, w.WriteRaw(ctx, lakeDream("d2", day1)))
	require.NoError(t, w.WriteRaw(ctx, lakeDream("d3", day2)))

	// A malformed raw object is skipped, not fatal.
	lake.objects["raw/dream_journal_events/2025/06/01/broken.json"] = []byte("{not json")

	f := NewFlattener(lake, "lake-bucket")
	rows, err := f.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)

	var partitions []string
	for key := range lake.objects {
		if strings.HasPrefix(key, structuredPrefix) {
			partitions = append(partitions, key)
		}
	}
	require.Len(t, partitions, 2, "one partition per event date")

	// Decode one partition and check the tabular layout.
	var day1Part string
	for _, key := range partitions {
		if strings.Contains(key, "event_date=2025-06-01") {
			day1Part = key
		}
	}
	require.NotEmpty(t, day1Part)

	gz, err := gzip.NewReader(bytes.NewReader(lake.objects[day1Part]))
	require.NoError(t, err)
	records, err := csv.NewReader(gz).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3, "header plus two rows")
	assert.Equal(t, flatColumns, records[0])

	ids := []string{records[1][0], records[2][0]}
	assert.ElementsMatch(t, []string{"d1", "d2"}, ids)
	assert.Equal(t, "-3", records[1][5], "mood column")
	assert.Equal(t, "2025-06-01", records[1][2], "event_date column")
}

func TestFlattenerRunEmptyLake(t *testing.T) {
	f := NewFlattener(newFakeLake(), "lake-bucket")
	rows, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestFlattenRowHandlesMissingOptionals(t *testing.T) {
	d := &model.Dream{
		DreamCreate: model.DreamCreate{Narrative: "bare"},
		ID:          "d9",
		CreatedAt:   time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
	}

	row := flattenRow(d)
	require.Len(t, row, len(flatColumns))
	assert.Equal(t, "d9", row[0])
	assert.Equal(t, "", row[5], "nil mood flattens to empty")
	assert.Equal(t, "", row[6], "nil sleep quality flattens to empty")
}
