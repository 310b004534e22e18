// Package memory is an in-process Store. Each game is guarded by its own mutex
// and transactions work on a private copy that replaces the original on commit.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
)

type gameData struct {
	game    *core.Game
	players map[string]*core.PlayerState
	tiles   map[core.Coordinate]*core.Tile
	actions []*core.ActionRecord
	results []core.MatchResult
}

func (d *gameData) clone() *gameData {
	cp := &gameData{
		game:    d.game.Clone(),
		players: make(map[string]*core.PlayerState, len(d.players)),
		tiles:   make(map[core.Coordinate]*core.Tile, len(d.tiles)),
		actions: d.actions[:len(d.actions):len(d.actions)],
		results: d.results[:len(d.results):len(d.results)],
	}
	for k, v := range d.players {
		cp.players[k] = v.Clone()
	}
	for k, v := range d.tiles {
		cp.tiles[k] = v.Clone()
	}
	return cp
}

type entry struct {
	mu   sync.Mutex
	data *gameData
}

// Store keeps everything in memory
type Store struct {
	mu      sync.RWMutex
	games   map[string]*entry
	players map[string]*core.Player
}

var _ store.Store = (*Store)(nil)

// New creates an empty memory store
func New() *Store {
	return &Store{
		games:   make(map[string]*entry),
		players: make(map[string]*core.Player),
	}
}

func (s *Store) CreateGame(ctx context.Context, g *core.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; ok {
		return store.ErrDuplicate
	}
	s.games[g.ID] = &entry{data: &gameData{
		game:    g.Clone(),
		players: make(map[string]*core.PlayerState),
		tiles:   make(map[core.Coordinate]*core.Tile),
	}}
	return nil
}

func (s *Store) ListGames(ctx context.Context, status core.GameStatus) ([]*core.Game, error) {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.games))
	for _, e := range s.games {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	var out []*core.Game
	for _, e := range entries {
		e.mu.Lock()
		if e.data.game.Status == status {
			out = append(out, e.data.game.Clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SavePlayer(ctx context.Context, p *core.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.players[p.ID] = &cp
	return nil
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*core.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return nil, core.ErrPlayerNotFound.WithMessagef("player %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (s *Store) entry(gameID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.games[gameID]
	if !ok {
		return nil, core.ErrGameNotFound.WithMessagef("game %s not found", gameID)
	}
	return e, nil
}

func (s *Store) Update(ctx context.Context, gameID string, fn func(tx store.Tx) error) error {
	e, err := s.entry(gameID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.data.clone()
	if err := fn(&tx{s: s, data: work}); err != nil {
		return err
	}
	e.data = work
	return nil
}

func (s *Store) View(ctx context.Context, gameID string, fn func(tx store.Tx) error) error {
	e, err := s.entry(gameID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	snapshot := e.data.clone()
	e.mu.Unlock()
	return fn(&tx{s: s, data: snapshot, readOnly: true})
}

func (s *Store) Close() error { return nil }

func (s *Store) lookupPlayer(id string) *core.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.players[id]
}

type tx struct {
	s        *Store
	data     *gameData
	readOnly bool
}

func (t *tx) write() error {
	if t.readOnly {
		return store.ErrReadOnly
	}
	return nil
}

func (t *tx) Game() (*core.Game, error) {
	return t.data.game.Clone(), nil
}

func (t *tx) SaveGame(g *core.Game) error {
	if err := t.write(); err != nil {
		return err
	}
	t.data.game = g.Clone()
	return nil
}

func (t *tx) PlayerStates() ([]*core.PlayerState, error) {
	out := make([]*core.PlayerState, 0, len(t.data.players))
	for _, ps := range t.data.players {
		cp := ps.Clone()
		if p := t.s.lookupPlayer(ps.PlayerID); p != nil {
			cp.DisplayName = p.DisplayName
			cp.IsBot = p.IsBot
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TurnOrder < out[j].TurnOrder })
	return out, nil
}

func (t *tx) AddPlayerState(ps *core.PlayerState) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, ok := t.data.players[ps.PlayerID]; ok {
		return store.ErrDuplicate
	}
	if t.s.lookupPlayer(ps.PlayerID) == nil {
		return core.ErrPlayerNotFound.WithMessagef("player %s not found", ps.PlayerID)
	}
	t.data.players[ps.PlayerID] = ps.Clone()
	return nil
}

func (t *tx) SavePlayerState(ps *core.PlayerState) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, ok := t.data.players[ps.PlayerID]; !ok {
		return core.ErrNotParticipant
	}
	t.data.players[ps.PlayerID] = ps.Clone()
	return nil
}

func (t *tx) Tiles() ([]*core.Tile, error) {
	out := make([]*core.Tile, 0, len(t.data.tiles))
	for _, tile := range t.data.tiles {
		out = append(out, tile.Clone())
	}
	core.SortTiles(out)
	return out, nil
}

func (t *tx) SaveTiles(tiles []*core.Tile) error {
	if err := t.write(); err != nil {
		return err
	}
	for _, tile := range tiles {
		t.data.tiles[tile.Coord()] = tile.Clone()
	}
	return nil
}

func (t *tx) AppendAction(rec *core.ActionRecord) error {
	if err := t.write(); err != nil {
		return err
	}
	cp := *rec
	t.data.actions = append(t.data.actions, &cp)
	return nil
}

func (t *tx) RecentActions(limit int) ([]*core.ActionRecord, error) {
	limit = store.ClampLimit(limit)
	n := len(t.data.actions)
	out := make([]*core.ActionRecord, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		cp := *t.data.actions[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (t *tx) AddResults(results []core.MatchResult) error {
	if err := t.write(); err != nil {
		return err
	}
	if len(t.data.results) > 0 {
		return store.ErrDuplicate
	}
	t.data.results = append([]core.MatchResult(nil), results...)
	return nil
}

func (t *tx) Results() ([]core.MatchResult, error) {
	out := append([]core.MatchResult(nil), t.data.results...)
	sort.Slice(out, func(i, j int) bool { return out[i].Placement < out[j].Placement })
	return out, nil
}
