package playback

import (
	"sort"

	"awbrn/engine/internal/gamemap"
	"awbrn/engine/internal/terrain"
)

// UnitView is the wire form of one tracked unit.
type UnitView struct {
	ID        uint32  `json:"id"`
	Name      string  `json:"name"`
	Faction   string  `json:"faction"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	HitPoints float64 `json:"hit_points"`
	Hidden    bool    `json:"hidden,omitempty"`
	Capturing bool    `json:"capturing,omitempty"`
}

// BuildingView is the wire form of one tracked building tile.
type BuildingView struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Terrain uint8  `json:"terrain_id"`
	Name    string `json:"name"`
}

// PlayerView is the wire form of one player.
type PlayerView struct {
	ID         uint32 `json:"id"`
	Faction    string `json:"faction"`
	Funds      uint32 `json:"funds"`
	Eliminated bool   `json:"eliminated,omitempty"`
}

// Snapshot is a complete position ready for JSON streaming.
type Snapshot struct {
	Turn      int            `json:"turn"`
	TurnCount int            `json:"turn_count"`
	Day       uint32         `json:"day"`
	Weather   string         `json:"weather"`
	Units     []UnitView     `json:"units"`
	Buildings []BuildingView `json:"buildings"`
	Players   []PlayerView   `json:"players"`
}

// Snapshot renders the current position for streaming clients.
func (s *State) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	snapshot := Snapshot{
		Turn:      s.turn,
		TurnCount: len(s.source.Turns),
		Day:       s.day,
		Weather:   s.weather,
	}

	for _, unit := range s.Units() {
		snapshot.Units = append(snapshot.Units, UnitView{
			ID:        unit.ID,
			Name:      unit.Name.String(),
			Faction:   unit.Faction.Name(),
			X:         unit.Position.X,
			Y:         unit.Position.Y,
			HitPoints: unit.HitPoints,
			Hidden:    unit.Hidden,
			Capturing: unit.Capturing,
		})
	}

	//1.- Emit buildings in a stable order so repeated snapshots diff cleanly.
	for _, pos := range sortedPositions(s.buildings) {
		tile := s.buildings[pos]
		snapshot.Buildings = append(snapshot.Buildings, BuildingView{
			X:       pos.X,
			Y:       pos.Y,
			Terrain: tile.ID(),
			Name:    tile.Name(),
		})
	}

	for _, player := range s.Players() {
		snapshot.Players = append(snapshot.Players, PlayerView{
			ID:         player.ID,
			Faction:    player.Faction.Name(),
			Funds:      player.Funds,
			Eliminated: player.Eliminated,
		})
	}
	return snapshot
}

func sortedPositions(tiles map[gamemap.Position]terrain.Terrain) []gamemap.Position {
	out := make([]gamemap.Position, 0, len(tiles))
	for pos := range tiles {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y == out[j].Y {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}
