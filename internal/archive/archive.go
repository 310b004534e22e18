// Package archive uploads the results of completed matches to an
// S3-compatible bucket as JSON documents keyed by game id.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/events"
)

// KeyPrefix is the object key prefix of every archived match
const KeyPrefix = "matches/"

// Config describes the target bucket
type Config struct {
	Bucket    string
	Endpoint  string // empty for AWS; set for R2, MinIO and friends
	Region    string
	AccessKey string
	Secret    string
	Timeout   time.Duration
}

// Uploader is the subset of the S3 client the archiver needs
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds an S3 client. Static credentials are used when an
// access key is configured, otherwise the default AWS credential chain.
func NewS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.Secret, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// MatchRecord is the archived document
type MatchRecord struct {
	GameID    string          `json:"game_id"`
	Reason    string          `json:"reason"`
	WinnerID  string          `json:"winner_id,omitempty"`
	EndedAt   time.Time       `json:"ended_at"`
	Duration  string          `json:"duration"`
	Standings []StandingEntry `json:"standings"`
	Board     []BoardTile     `json:"board"`
}

// StandingEntry is one row of the final standings
type StandingEntry struct {
	PlayerID  string `json:"player_id"`
	Placement int    `json:"placement"`
	Territory int    `json:"territory"`
	Gas       int    `json:"gas"`
	Tokens    int    `json:"tokens"`
	XP        int    `json:"xp"`
}

// BoardTile is one cell of the final board
type BoardTile struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	OwnerID string `json:"owner_id,omitempty"`
	GasType string `json:"gas_type,omitempty"`
	IsVent  bool   `json:"is_vent,omitempty"`
}

// NewMatchRecord converts a game.ended event into its archived form
func NewMatchRecord(e *events.GameEndedEvent) MatchRecord {
	rec := MatchRecord{
		GameID:    e.GameID(),
		Reason:    e.Reason,
		WinnerID:  e.WinnerID,
		EndedAt:   e.Timestamp(),
		Duration:  e.Duration.String(),
		Standings: make([]StandingEntry, 0, len(e.Standings)),
		Board:     make([]BoardTile, 0, len(e.Tiles)),
	}
	for _, r := range e.Standings {
		rec.Standings = append(rec.Standings, StandingEntry{
			PlayerID:  r.PlayerID,
			Placement: r.Placement,
			Territory: r.TerritoryCount,
			Gas:       r.Gas,
			Tokens:    r.Tokens,
			XP:        r.XP,
		})
	}
	for _, t := range e.Tiles {
		rec.Board = append(rec.Board, BoardTile{
			X: t.X, Y: t.Y,
			OwnerID: t.OwnerID,
			GasType: string(t.GasType),
			IsVent:  t.IsVent,
		})
	}
	return rec
}

// Key returns the object key of a game's record
func Key(gameID string) string {
	return KeyPrefix + gameID + ".json"
}

// Archiver subscribes to game.ended and uploads each result in the
// background. Close waits for pending uploads.
type Archiver struct {
	client  Uploader
	bucket  string
	timeout time.Duration
	logger  zerolog.Logger

	wg sync.WaitGroup
}

var _ events.Subscriber = (*Archiver)(nil)

// New creates an archiver writing to bucket through client
func New(client Uploader, cfg Config, logger zerolog.Logger) (*Archiver, error) {
	if cfg.Bucket == "" {
		return nil, core.ErrMissingField.WithMessagef("archive bucket is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Archiver{
		client:  client,
		bucket:  cfg.Bucket,
		timeout: timeout,
		logger:  logger.With().Str("component", "Archiver").Str("bucket", cfg.Bucket).Logger(),
	}, nil
}

func (a *Archiver) ID() string { return "archive" }

func (a *Archiver) InterestedIn(eventType string) bool {
	return eventType == events.TypeGameEnded
}

func (a *Archiver) HandleEvent(e events.Event) {
	ended, ok := e.(*events.GameEndedEvent)
	if !ok {
		return
	}
	rec := NewMatchRecord(ended)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.Upload(ctx, rec); err != nil {
			a.logger.Error().Err(err).Str("game_id", rec.GameID).Msg("Failed to archive match")
		}
	}()
}

// Upload writes one record synchronously
func (a *Archiver) Upload(ctx context.Context, rec MatchRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode match %s: %w", rec.GameID, err)
	}
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(Key(rec.GameID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload match %s: %w", rec.GameID, err)
	}
	a.logger.Info().
		Str("game_id", rec.GameID).
		Str("key", Key(rec.GameID)).
		Int("bytes", len(body)).
		Msg("Match archived")
	return nil
}

// Close waits for in-flight uploads
func (a *Archiver) Close() {
	a.wg.Wait()
}
