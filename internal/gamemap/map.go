package gamemap

import (
	"encoding/json"
	"strconv"
	"strings"

	"awbrn/engine/internal/terrain"
)

// Map is a rectangular grid of terrain, stored row-major.
type Map struct {
	width   int
	height  int
	terrain []terrain.Terrain
}

// New creates a map filled with the given terrain.
func New(width, height int, fill terrain.Terrain) *Map {
	cells := make([]terrain.Terrain, width*height)
	for i := range cells {
		cells[i] = fill
	}
	return &Map{width: width, height: height, terrain: cells}
}

// ParseText parses the AWBW text map format: comma-separated terrain ids, one
// row per line. Blank lines are skipped but still count toward row numbers in
// errors.
//
// Ref: <https://awbw.amarriner.com/text_map.php?maps_id=162795>
func ParseText(data string) (*Map, error) {
	var cells []terrain.Terrain
	width := 0

	for rowIdx, row := range strings.Split(data, "\n") {
		if strings.TrimSpace(row) == "" {
			continue
		}

		cols := strings.Split(row, ",")
		for colIdx, cell := range cols {
			id, err := strconv.ParseUint(strings.TrimSpace(cell), 10, 8)
			if err != nil {
				return nil, &ParseTerrainIDError{Row: rowIdx, Col: colIdx, Value: cell}
			}
			terr, ok := terrain.FromID(uint8(id))
			if !ok {
				return nil, &InvalidTerrainError{Row: rowIdx, Col: colIdx, ID: uint8(id)}
			}
			cells = append(cells, terr)
		}

		if width == 0 {
			width = len(cols)
		} else if width != len(cols) {
			return nil, &UnevenDimensionsError{Expected: width, Found: len(cols), Row: rowIdx}
		}
	}

	if len(cells) == 0 {
		return nil, ErrEmptyMap
	}

	return &Map{width: width, height: len(cells) / width, terrain: cells}, nil
}

// MapData mirrors the AWBW map-info API payload. The terrain grid arrives
// column-major.
//
// Ref: <https://awbw.amarriner.com/api/map/map_info.php?maps_id=162795>
type MapData struct {
	Name             string            `json:"Name"`
	Author           string            `json:"Author"`
	PlayerCount      uint32            `json:"Player Count"`
	PublishedDate    string            `json:"Published Date"`
	SizeX            uint32            `json:"Size X"`
	SizeY            uint32            `json:"Size Y"`
	TerrainMap       [][]uint8         `json:"Terrain Map"`
	PredeployedUnits []PredeployedUnit `json:"Predeployed Units"`
}

// PredeployedUnit describes a unit placed by the map itself.
type PredeployedUnit struct {
	UnitID      uint32 `json:"Unit ID"`
	UnitX       uint32 `json:"Unit X"`
	UnitY       uint32 `json:"Unit Y"`
	UnitHP      uint32 `json:"Unit HP"`
	CountryCode string `json:"Country Code"`
}

// ParseJSON parses the AWBW JSON map format, transposing the column-major
// terrain grid into row-major storage.
func ParseJSON(data []byte) (*Map, *MapData, error) {
	var mapData MapData
	if err := json.Unmarshal(data, &mapData); err != nil {
		return nil, nil, err
	}

	columnCount := len(mapData.TerrainMap)
	rowCount := 0
	if columnCount > 0 {
		rowCount = len(mapData.TerrainMap[0])
	}

	for idx, col := range mapData.TerrainMap {
		if len(col) != rowCount {
			return nil, nil, &UnevenDimensionsError{Expected: rowCount, Found: len(col), Row: idx}
		}
	}

	if columnCount == 0 || rowCount == 0 {
		return nil, nil, ErrEmptyMap
	}

	cells := make([]terrain.Terrain, 0, columnCount*rowCount)
	for rowIdx := 0; rowIdx < rowCount; rowIdx++ {
		for colIdx := 0; colIdx < columnCount; colIdx++ {
			id := mapData.TerrainMap[colIdx][rowIdx]
			terr, ok := terrain.FromID(id)
			if !ok {
				return nil, nil, &InvalidTerrainError{Row: rowIdx, Col: colIdx, ID: id}
			}
			cells = append(cells, terr)
		}
	}

	return &Map{width: columnCount, height: rowCount, terrain: cells}, &mapData, nil
}

// Width returns the map width in tiles.
func (m *Map) Width() int { return m.width }

// Height returns the map height in tiles.
func (m *Map) Height() int { return m.height }

// TerrainAt returns the terrain at a position, or false when out of bounds.
func (m *Map) TerrainAt(pos Position) (terrain.Terrain, bool) {
	if pos.X < 0 || pos.Y < 0 || pos.X >= m.width || pos.Y >= m.height {
		return 0, false
	}
	return m.terrain[pos.Index(m.width)], true
}

// SetTerrain replaces the terrain at a position, reporting whether the
// position was in bounds.
func (m *Map) SetTerrain(pos Position, terr terrain.Terrain) bool {
	if pos.X < 0 || pos.Y < 0 || pos.X >= m.width || pos.Y >= m.height {
		return false
	}
	m.terrain[pos.Index(m.width)] = terr
	return true
}

// Each calls fn for every tile in row-major order.
func (m *Map) Each(fn func(Position, terrain.Terrain)) {
	for idx, terr := range m.terrain {
		fn(PositionFromIndex(idx, m.width), terr)
	}
}

// MovementTerrainAt projects the tile onto its movement class for
// pathfinding.
func (m *Map) MovementTerrainAt(pos Position) (terrain.MovementTerrain, bool) {
	terr, ok := m.TerrainAt(pos)
	if !ok {
		return 0, false
	}
	return terr.Movement(), true
}

// MovementTerrainAtIndex is the pre-validated flat-index variant used on the
// pathfinder hot path.
func (m *Map) MovementTerrainAtIndex(idx int) terrain.MovementTerrain {
	return m.terrain[idx].Movement()
}

// String renders the map using the terrain symbols, one row per line, a
// space for symbol-less tiles, no trailing newline.
func (m *Map) String() string {
	var sb strings.Builder
	sb.Grow(m.width*m.height + m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			symbol, ok := m.terrain[y*m.width+x].Symbol()
			if !ok {
				symbol = ' '
			}
			sb.WriteByte(symbol)
		}
		if y < m.height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
