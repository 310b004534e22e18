package game

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/store/memory"
	"github.com/mitchelldurbincs/gasgrid/internal/testutil"
)

func BenchmarkSubmitAction(b *testing.B) {
	testCases := []struct {
		name  string
		width int
	}{
		{"Default_12x8", 12},
		{"Wide_24x8", 24},
		{"XWide_48x8", 48},
	}

	for _, tc := range testCases {
		b.Run(tc.name, func(b *testing.B) {
			s := memory.New()
			clock := testutil.NewFakeClock()
			r := core.DefaultRules()
			r.DominanceThreshold = 0
			e := NewEngine(s, WithClock(clock), WithRules(r), WithRand(testutil.NewTestRNG(1)))
			ctx := context.Background()

			for i := 0; i < b.N; i++ {
				b.StopTimer()
				id := fmt.Sprintf("bench-%d", i)
				testutil.SeedActiveGame(b, s, testutil.ActiveGame{
					ID:    id,
					Width: tc.width, Height: 8,
					Seats: []testutil.Seat{
						{ID: "a", Gas: 200, Owned: []core.Coordinate{{X: 1, Y: 4}}},
						{ID: "b", Gas: 200, Owned: []core.Coordinate{{X: tc.width - 2, Y: 4}}},
					},
				})
				b.StartTimer()

				if _, err := e.SubmitAction(ctx, ActionRequest{
					GameID: id, PlayerID: "a", Action: core.ActionBomb,
					Target: core.Coordinate{X: 2, Y: 4}, GasSpent: 25,
				}); err != nil {
					b.Fatal(err)
				}
			}
			b.ReportMetric(float64(tc.width*8), "board_tiles")
		})
	}
}

func BenchmarkRunAISweep(b *testing.B) {
	s := memory.New()
	clock := testutil.NewFakeClock()
	e := NewEngine(s, WithClock(clock), WithRand(testutil.NewTestRNG(7)))
	ctx := context.Background()
	testutil.SeedActiveGame(b, s, botGame())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.RunAISweep(ctx, "g1"); err != nil {
			b.Fatal(err)
		}
		clock.Advance(8 * time.Second)
	}
}
