package replayplayer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"awbrn/engine/internal/gamemap"
	"awbrn/engine/internal/playback"
	"awbrn/engine/internal/replay"
	"awbrn/engine/internal/terrain"
)

// TurnSummary condenses one turn of the action log for inspection.
type TurnSummary struct {
	Turn    int      `json:"turn"`
	Player  uint32   `json:"player"`
	Day     uint32   `json:"day"`
	Actions []string `json:"actions"`
}

// DaySummary condenses one daily game snapshot.
type DaySummary struct {
	Day          uint32 `json:"day"`
	Weather      string `json:"weather"`
	ActivePlayer uint32 `json:"active_player"`
	Units        int    `json:"units"`
	Buildings    int    `json:"buildings"`
}

// Summary is the tool's full view of a replay or an exported bundle.
type Summary struct {
	GameID   uint32        `json:"game_id,omitempty"`
	GameName string        `json:"game_name,omitempty"`
	MapID    uint32        `json:"map_id,omitempty"`
	Days     []DaySummary  `json:"days"`
	Turns    []TurnSummary `json:"turns"`
}

// Load inspects the path and summarises either a replay archive or a bundle
// directory produced by the exporter.
func Load(path string) (*Summary, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return summarizeBundle(path)
	}
	if filepath.Base(path) == "manifest.json" || filepath.Base(path) == "header.json" {
		return summarizeBundle(filepath.Dir(path))
	}
	return summarizeArchive(path)
}

func summarizeArchive(path string) (*Summary, error) {
	record, err := replay.ReadFile(path)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	//1.- The first snapshot carries the stable game metadata.
	first := record.Games[0]
	summary.GameID = first.ID
	summary.GameName = first.Name
	summary.MapID = first.MapID

	for _, game := range record.Games {
		summary.Days = append(summary.Days, DaySummary{
			Day:          game.Day,
			Weather:      game.WeatherCode,
			ActivePlayer: game.Turn,
			Units:        len(game.Units),
			Buildings:    len(game.Buildings),
		})
	}
	for i, turn := range record.Turns {
		entry := TurnSummary{Turn: i, Player: turn.Player, Day: turn.Day}
		for _, action := range turn.Actions {
			entry.Actions = append(entry.Actions, action.Kind.String())
		}
		summary.Turns = append(summary.Turns, entry)
	}
	return summary, nil
}

// RenderArchive decodes a replay archive and renders its position after the
// given turn. A negative turn renders the final position.
func RenderArchive(path string, turn int) (string, error) {
	record, err := replay.ReadFile(path)
	if err != nil {
		return "", err
	}
	if turn < 0 {
		turn = len(record.Turns)
	}
	return RenderMap(record, turn)
}

// RenderMap draws the position after the given turn as a text grid. Building
// tiles use their terrain symbols, visible units overlay the tile with the
// first letter of their name.
func RenderMap(record *replay.Replay, turn int) (string, error) {
	state, err := playback.New(record, nil)
	if err != nil {
		return "", err
	}
	if err := state.Seek(turn); err != nil {
		return "", err
	}

	//1.- Size the grid from whatever tiles the replay actually mentions.
	width, height := 0, 0
	extend := func(pos gamemap.Position) {
		if pos.X >= width {
			width = pos.X + 1
		}
		if pos.Y >= height {
			height = pos.Y + 1
		}
	}
	buildings := state.Buildings()
	for pos := range buildings {
		extend(pos)
	}
	units := state.Units()
	for _, unit := range units {
		extend(unit.Position)
	}
	if width == 0 || height == 0 {
		return "", fmt.Errorf("replay contains no placed tiles")
	}

	plain, _ := terrain.FromID(1)
	grid := gamemap.New(width, height, plain)
	for pos, tile := range buildings {
		grid.SetTerrain(pos, tile)
	}

	//2.- Overlay units on top of the terrain symbols.
	rows := strings.Split(grid.String(), "\n")
	for _, unit := range units {
		if unit.Hidden {
			continue
		}
		row := []byte(rows[unit.Position.Y])
		name := unit.Name.String()
		if name == "" {
			name = "?"
		}
		row[unit.Position.X] = name[0]
		rows[unit.Position.Y] = string(row)
	}
	return strings.Join(rows, "\n"), nil
}

func summarizeBundle(dir string) (*Summary, error) {
	loader, err := replay.LoadBundle(dir)
	if err != nil {
		return nil, err
	}

	header := loader.Header()
	summary := &Summary{
		GameID:   header.GameID,
		GameName: header.GameName,
		MapID:    header.MapID,
	}
	for _, day := range loader.Days() {
		summary.Days = append(summary.Days, DaySummary{Day: day.Day})
	}

	//1.- Regroup the flat action log back into per-turn entries.
	byTurn := map[int]*TurnSummary{}
	var order []int
	if err := loader.Walk(func(action replay.BundleAction) error {
		entry, ok := byTurn[action.Turn]
		if !ok {
			entry = &TurnSummary{Turn: action.Turn, Player: action.Player, Day: action.Day}
			byTurn[action.Turn] = entry
			order = append(order, action.Turn)
		}
		entry.Actions = append(entry.Actions, action.Kind)
		return nil
	}); err != nil {
		return nil, err
	}
	for _, turn := range order {
		summary.Turns = append(summary.Turns, *byTurn[turn])
	}
	return summary, nil
}
