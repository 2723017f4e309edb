package gamemap

import (
	"errors"
	"testing"

	"awbrn/engine/internal/terrain"
)

func TestParseTextEmptyInput(t *testing.T) {
	for _, input := range []string{"", "  \n  \t  "} {
		if _, err := ParseText(input); !errors.Is(err, ErrEmptyMap) {
			t.Fatalf("ParseText(%q) err = %v, want empty-map error", input, err)
		}
	}
}

func TestParseTextRejectsBadCells(t *testing.T) {
	for _, bad := range []string{"x", "5.5", "-5"} {
		_, err := ParseText("1,2,3\n4," + bad + ",6")
		var parseErr *ParseTerrainIDError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected parse error for cell %q, got %v", bad, err)
		}
		if parseErr.Row != 1 || parseErr.Col != 1 || parseErr.Value != bad {
			t.Fatalf("unexpected error detail %+v", parseErr)
		}
	}
}

func TestParseTextRejectsUnknownTerrain(t *testing.T) {
	_, err := ParseText("1,2,3\n4,255,6")
	var invalidErr *InvalidTerrainError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected invalid-terrain error, got %v", err)
	}
	if invalidErr.Row != 1 || invalidErr.Col != 1 || invalidErr.ID != 255 {
		t.Fatalf("unexpected error detail %+v", invalidErr)
	}
	if invalidErr.Error() != "Invalid terrain ID 255 at row 1, column 1" {
		t.Fatalf("unexpected message %q", invalidErr.Error())
	}
}

func TestParseTextRejectsRaggedRows(t *testing.T) {
	_, err := ParseText("1,2,3\n4,5")
	var unevenErr *UnevenDimensionsError
	if !errors.As(err, &unevenErr) {
		t.Fatalf("expected uneven-dimensions error, got %v", err)
	}
	if unevenErr.Expected != 3 || unevenErr.Found != 2 || unevenErr.Row != 1 {
		t.Fatalf("unexpected error detail %+v", unevenErr)
	}
}

func TestParseTextSkipsBlankLines(t *testing.T) {
	m, err := ParseText("1,2,3\n\n28,34,42\n")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if m.Width() != 3 || m.Height() != 2 {
		t.Fatalf("unexpected dimensions %dx%d", m.Width(), m.Height())
	}
}

func TestParseTextRendersSymbols(t *testing.T) {
	m, err := ParseText("1,2,3\n28,34,42")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	want := ".^@\n,ai"
	if got := m.String(); got != want {
		t.Fatalf("rendered map = %q, want %q", got, want)
	}
}

func TestRenderBlankForSymbollessTerrain(t *testing.T) {
	// Brown Desert city (96) has no symbol and renders as a space.
	m, err := ParseText("1,96,1")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if got := m.String(); got != ". ." {
		t.Fatalf("rendered map = %q, want %q", got, ". .")
	}
}

func TestTerrainAtBounds(t *testing.T) {
	m, err := ParseText("1,2\n3,28")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	terr, ok := m.TerrainAt(NewPosition(1, 1))
	if !ok || terr.ID() != 28 {
		t.Fatalf("TerrainAt(1,1) = %d, %v; want 28", terr.ID(), ok)
	}
	if _, ok := m.TerrainAt(NewPosition(2, 0)); ok {
		t.Fatal("expected out-of-bounds x to miss")
	}
	if _, ok := m.TerrainAt(NewPosition(0, 2)); ok {
		t.Fatal("expected out-of-bounds y to miss")
	}
	if _, ok := m.TerrainAt(NewPosition(-1, 0)); ok {
		t.Fatal("expected negative x to miss")
	}
}

func TestParseJSONTransposesColumnMajor(t *testing.T) {
	payload := []byte(`{
		"Name": "Test Map",
		"Author": "tester",
		"Player Count": 2,
		"Published Date": "2020-01-01",
		"Size X": 2,
		"Size Y": 3,
		"Terrain Map": [[1,2,3],[28,34,42]],
		"Predeployed Units": [
			{"Unit ID": 7, "Unit X": 1, "Unit Y": 2, "Unit HP": 10, "Country Code": "os"}
		]
	}`)
	m, meta, err := ParseJSON(payload)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if m.Width() != 2 || m.Height() != 3 {
		t.Fatalf("unexpected dimensions %dx%d", m.Width(), m.Height())
	}
	// Column 0 is [1,2,3] so the first row reads 1,28.
	terr, _ := m.TerrainAt(NewPosition(0, 0))
	if terr.ID() != 1 {
		t.Fatalf("tile (0,0) = %d, want 1", terr.ID())
	}
	terr, _ = m.TerrainAt(NewPosition(1, 0))
	if terr.ID() != 28 {
		t.Fatalf("tile (1,0) = %d, want 28", terr.ID())
	}
	terr, _ = m.TerrainAt(NewPosition(1, 2))
	if terr.ID() != 42 {
		t.Fatalf("tile (1,2) = %d, want 42", terr.ID())
	}
	if meta.Name != "Test Map" || len(meta.PredeployedUnits) != 1 {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if meta.PredeployedUnits[0].CountryCode != "os" {
		t.Fatalf("unexpected predeployed unit %+v", meta.PredeployedUnits[0])
	}
}

func TestParseJSONRejectsRaggedColumns(t *testing.T) {
	payload := []byte(`{"Terrain Map": [[1,2,3],[28,34]], "Predeployed Units": []}`)
	_, _, err := ParseJSON(payload)
	var unevenErr *UnevenDimensionsError
	if !errors.As(err, &unevenErr) {
		t.Fatalf("expected uneven-dimensions error, got %v", err)
	}
}

func TestPositionSteps(t *testing.T) {
	p := NewPosition(2, 2)
	if got := p.Left(); got != NewPosition(1, 2) {
		t.Fatalf("Left moved to %v", got)
	}
	if got := p.Right(); got != NewPosition(3, 2) {
		t.Fatalf("Right moved to %v", got)
	}
	if got := p.Up(); got != NewPosition(2, 1) {
		t.Fatalf("Up moved to %v", got)
	}
	if got := p.Down(); got != NewPosition(2, 3) {
		t.Fatalf("Down moved to %v", got)
	}
	if got := p.Move(-3, 2); got != NewPosition(-1, 4) {
		t.Fatalf("Move(-3,2) = %v", got)
	}
}

func TestPositionStepsOffEdgeLeaveGrid(t *testing.T) {
	m := New(4, 5, terrain.Terrain(1))
	edge := NewPosition(0, 0)
	for _, pos := range []Position{edge.Left(), edge.Up()} {
		if _, ok := m.TerrainAt(pos); ok {
			t.Fatalf("expected %v to fall outside the grid", pos)
		}
	}
	if _, ok := m.TerrainAt(edge.Right()); !ok {
		t.Fatalf("expected %v inside the grid", edge.Right())
	}
}

func TestPositionDistance(t *testing.T) {
	a := NewPosition(1, 7)
	b := NewPosition(4, 2)
	if got := a.Distance(b); got != 8 {
		t.Fatalf("Distance = %d, want 8", got)
	}
	if got := b.Distance(a); got != 8 {
		t.Fatalf("Distance not symmetric: %d", got)
	}
	if got := a.Distance(a); got != 0 {
		t.Fatalf("self Distance = %d", got)
	}
}

func TestPositionIndexRoundTrip(t *testing.T) {
	p := NewPosition(3, 2)
	idx := p.Index(5)
	if idx != 13 {
		t.Fatalf("Index = %d, want 13", idx)
	}
	if got := PositionFromIndex(idx, 5); got != p {
		t.Fatalf("round trip = %v, want %v", got, p)
	}
}
