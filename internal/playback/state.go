package playback

import (
	"fmt"
	"sort"

	"awbrn/engine/internal/faction"
	"awbrn/engine/internal/gamemap"
	"awbrn/engine/internal/logging"
	"awbrn/engine/internal/replay"
	"awbrn/engine/internal/terrain"
)

// Unit is the tracked playback state of one deployed unit.
type Unit struct {
	ID        uint32
	Name      terrain.Unit
	Faction   faction.PlayerFaction
	Position  gamemap.Position
	HitPoints float64
	Hidden    bool
	Capturing bool
	Cargo     []uint32
}

// PlayerStatus is the tracked playback state of one player.
type PlayerStatus struct {
	ID         uint32
	Faction    faction.PlayerFaction
	Funds      uint32
	Order      uint32
	Eliminated bool
}

// State reconstructs a game position by replaying decoded actions over the
// first day snapshot. Applying turns mutates the state in place; Reset and
// Seek rebuild it from scratch.
type State struct {
	source    *replay.Replay
	log       *logging.Logger
	units     map[uint32]*Unit
	buildings map[gamemap.Position]terrain.Terrain
	players   map[uint32]*PlayerStatus
	day       uint32
	turn      int
	weather   string
}

// New builds a playback state positioned before the first turn.
func New(source *replay.Replay, logger *logging.Logger) (*State, error) {
	if source == nil || len(source.Games) == 0 {
		return nil, fmt.Errorf("replay has no game snapshots")
	}
	if logger == nil {
		logger = logging.L()
	}
	state := &State{source: source, log: logger}
	state.Reset()
	return state, nil
}

// Reset rebuilds the initial position from the first day snapshot.
func (s *State) Reset() {
	if s == nil {
		return
	}
	game := s.source.Games[0]

	s.units = make(map[uint32]*Unit, len(game.Units))
	for _, u := range game.Units {
		unit := &Unit{
			ID:        u.ID,
			Name:      u.Name,
			Position:  gamemap.NewPosition(int(u.X), int(u.Y)),
			HitPoints: u.HitPoints,
			Hidden:    u.Carried,
		}
		//1.- Restore cargo relationships so transports start loaded.
		if u.Cargo1UnitID != 0 {
			unit.Cargo = append(unit.Cargo, u.Cargo1UnitID)
		}
		if u.Cargo2UnitID != 0 {
			unit.Cargo = append(unit.Cargo, u.Cargo2UnitID)
		}
		s.units[u.ID] = unit
	}

	s.players = make(map[uint32]*PlayerStatus, len(game.Players))
	for _, p := range game.Players {
		s.players[p.ID] = &PlayerStatus{
			ID:         p.ID,
			Faction:    p.Faction,
			Funds:      p.Funds,
			Order:      p.Order,
			Eliminated: p.Eliminated,
		}
	}

	//2.- Stamp unit factions now that the player roster is known.
	for _, u := range game.Units {
		if player, ok := s.players[u.PlayerID]; ok {
			s.units[u.ID].Faction = player.Faction
		}
	}

	s.buildings = make(map[gamemap.Position]terrain.Terrain, len(game.Buildings))
	for _, b := range game.Buildings {
		s.buildings[gamemap.NewPosition(int(b.X), int(b.Y))] = b.TerrainID
	}

	s.day = game.Day
	s.turn = 0
	s.weather = game.WeatherCode
}

// Day returns the current game day.
func (s *State) Day() uint32 {
	if s == nil {
		return 0
	}
	return s.day
}

// Turn returns the number of turns already applied.
func (s *State) Turn() int {
	if s == nil {
		return 0
	}
	return s.turn
}

// Weather returns the current weather code.
func (s *State) Weather() string {
	if s == nil {
		return ""
	}
	return s.weather
}

// TurnCount returns the total number of turns in the replay.
func (s *State) TurnCount() int {
	if s == nil {
		return 0
	}
	return len(s.source.Turns)
}

// Units returns a copy of the tracked units ordered by id.
func (s *State) Units() []Unit {
	if s == nil {
		return nil
	}
	out := make([]Unit, 0, len(s.units))
	for _, unit := range s.units {
		clone := *unit
		clone.Cargo = append([]uint32(nil), unit.Cargo...)
		out = append(out, clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Players returns a copy of the player roster ordered by turn order.
func (s *State) Players() []PlayerStatus {
	if s == nil {
		return nil
	}
	out := make([]PlayerStatus, 0, len(s.players))
	for _, player := range s.players {
		out = append(out, *player)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// BuildingAt returns the terrain currently occupying a building position.
func (s *State) BuildingAt(pos gamemap.Position) (terrain.Terrain, bool) {
	if s == nil {
		return 0, false
	}
	t, ok := s.buildings[pos]
	return t, ok
}

// Buildings returns a copy of the tracked building tiles.
func (s *State) Buildings() map[gamemap.Position]terrain.Terrain {
	if s == nil {
		return nil
	}
	out := make(map[gamemap.Position]terrain.Terrain, len(s.buildings))
	for pos, t := range s.buildings {
		out[pos] = t
	}
	return out
}

// Advance applies the next turn. It reports false once the replay is exhausted.
func (s *State) Advance() bool {
	if s == nil || s.turn >= len(s.source.Turns) {
		return false
	}
	turn := s.source.Turns[s.turn]
	//1.- Apply the whole turn so observers only ever see complete positions.
	for _, action := range turn.Actions {
		s.apply(turn, action)
	}
	s.turn++
	return true
}

// Seek positions the state after the given number of applied turns.
func (s *State) Seek(turn int) error {
	if s == nil {
		return fmt.Errorf("playback state not initialised")
	}
	if turn < 0 || turn > len(s.source.Turns) {
		return fmt.Errorf("turn %d out of range 0..%d", turn, len(s.source.Turns))
	}
	//1.- Rewinding has no inverse operations, so rebuild and replay the prefix.
	s.Reset()
	for s.turn < turn {
		s.Advance()
	}
	return nil
}
