// Package archive keeps station snapshots in S3 so a reset can be undone and
// a fresh process can be seeded.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/models"
)

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

const (
	snapshotPrefix = "snapshots/"
	latestKey      = snapshotPrefix + "latest.json"
)

// Snapshot reasons. A ReasonReset snapshot holds the stations a reset is about
// to remove and must never be used to seed.
const (
	ReasonAdd     = "add"
	ReasonReset   = "reset"
	ReasonCleared = "cleared"
)

// Snapshot is the stored form of the station list at one point in time.
type Snapshot struct {
	Stations []models.Station `json:"stations"`
	TakenAt  int64            `json:"takenAt"`
	Reason   string           `json:"reason,omitempty"`
}

// Seedable reports whether the snapshot reflects the live station list.
func (s *Snapshot) Seedable() bool {
	return s != nil && s.Reason != ReasonReset
}

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

type S3Archive struct {
	client S3Client
	bucket string
	clock  clock
}

func NewS3Archive(client S3Client, bucket string) *S3Archive {
	return &S3Archive{
		client: client,
		bucket: bucket,
		clock:  systemClock{},
	}
}

// NewS3Client loads the default AWS configuration.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Save writes a timestamped snapshot and replaces latest.json. It returns the
// key of the timestamped object.
func (a *S3Archive) Save(ctx context.Context, stations []models.Station, reason string) (string, error) {
	if a.bucket == "" {
		return "", fmt.Errorf("empty bucket name")
	}
	if stations == nil {
		stations = []models.Station{}
	}

	now := a.clock.Now().UTC()
	snap := Snapshot{
		Stations: stations,
		TakenAt:  now.Unix(),
		Reason:   reason,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(snap); err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	key := snapshotPrefix + now.Format("20060102T150405.000000000Z") + ".json"
	for _, k := range []string{key, latestKey} {
		_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(k),
			Body:        bytes.NewReader(buf.Bytes()),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return "", fmt.Errorf("saving snapshot %s to S3: %w", k, err)
		}
	}

	log.Info().
		Int("station_count", len(stations)).
		Str("key", key).
		Str("reason", reason).
		Msg("Saved station snapshot")
	return key, nil
}

// Latest returns the most recent snapshot, or nil when none has been saved.
func (a *S3Archive) Latest(ctx context.Context) (*Snapshot, error) {
	if a.bucket == "" {
		return nil, fmt.Errorf("empty bucket name")
	}

	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(latestKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading latest snapshot: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Error().Err(err).Msg("Error closing S3 object body")
		}
	}(result.Body)

	var snap Snapshot
	if err := json.NewDecoder(result.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}
