package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/events"
	"github.com/mitchelldurbincs/gasgrid/internal/testutil"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = body
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeBucket) get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	return b, ok
}

func endedEvent() *events.GameEndedEvent {
	g := &core.Game{
		ID:        "g1",
		StartedAt: testutil.Epoch,
		EndReason: "dominance",
	}
	standings := []core.MatchResult{
		{GameID: "g1", PlayerID: "alice", Placement: 1, TerritoryCount: 40, Gas: 12, Tokens: 50, XP: 50},
		{GameID: "g1", PlayerID: "bob", Placement: 2, TerritoryCount: 3, Gas: 80, Tokens: 30, XP: 30},
	}
	tiles := []*core.Tile{
		{X: 0, Y: 0, OwnerID: "alice", GasType: core.GasToxic},
		{X: 1, Y: 0, IsVent: true},
	}
	return events.NewGameEndedEvent(g, standings, tiles, testutil.Epoch.Add(7*time.Minute))
}

func TestNewMatchRecord(t *testing.T) {
	rec := NewMatchRecord(endedEvent())
	assert.Equal(t, "g1", rec.GameID)
	assert.Equal(t, "dominance", rec.Reason)
	assert.Equal(t, "alice", rec.WinnerID)
	assert.Equal(t, "7m0s", rec.Duration)
	require.Len(t, rec.Standings, 2)
	assert.Equal(t, StandingEntry{PlayerID: "bob", Placement: 2, Territory: 3, Gas: 80, Tokens: 30, XP: 30}, rec.Standings[1])
	assert.Equal(t, []BoardTile{
		{X: 0, Y: 0, OwnerID: "alice", GasType: string(core.GasToxic)},
		{X: 1, Y: 0, IsVent: true},
	}, rec.Board)
}

func TestArchiver_UploadsOnGameEnded(t *testing.T) {
	bucket := newFakeBucket()
	a, err := New(bucket, Config{Bucket: "results"}, testutil.NopLogger())
	require.NoError(t, err)

	assert.True(t, a.InterestedIn(events.TypeGameEnded))
	assert.False(t, a.InterestedIn(events.TypeGameStarted))

	bus := events.NewEventBus()
	bus.Subscribe(a)
	bus.Publish(endedEvent())
	a.Close()

	body, ok := bucket.get("results/matches/g1.json")
	require.True(t, ok)
	assert.Equal(t, "application/json", bucket.types["results/matches/g1.json"])

	var rec MatchRecord
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, NewMatchRecord(endedEvent()), rec)
}

func TestArchiver_UploadError(t *testing.T) {
	bucket := newFakeBucket()
	bucket.err = errors.New("bucket offline")
	a, err := New(bucket, Config{Bucket: "results"}, testutil.NopLogger())
	require.NoError(t, err)

	err = a.Upload(context.Background(), NewMatchRecord(endedEvent()))
	assert.ErrorContains(t, err, "bucket offline")

	a.HandleEvent(endedEvent())
	a.Close()
	_, ok := bucket.get("results/matches/g1.json")
	assert.False(t, ok)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(newFakeBucket(), Config{}, testutil.NopLogger())
	assert.ErrorIs(t, err, core.ErrMissingField)
}

func TestNewS3Client_CustomEndpoint(t *testing.T) {
	client, err := NewS3Client(context.Background(), Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "key",
		Secret:    "secret",
	})
	require.NoError(t, err)
	opts := client.Options()
	assert.Equal(t, "auto", opts.Region)
	assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}
