package gamemap

import "fmt"

// ParseTerrainIDError reports a map cell that is not a number.
type ParseTerrainIDError struct {
	Row   int
	Col   int
	Value string
}

func (e *ParseTerrainIDError) Error() string {
	return fmt.Sprintf("Failed to parse terrain ID at row %d, column %d: '%s'", e.Row, e.Col, e.Value)
}

// InvalidTerrainError reports a numeric cell outside the terrain table.
type InvalidTerrainError struct {
	Row int
	Col int
	ID  uint8
}

func (e *InvalidTerrainError) Error() string {
	return fmt.Sprintf("Invalid terrain ID %d at row %d, column %d", e.ID, e.Row, e.Col)
}

// UnevenDimensionsError reports a row whose width differs from the first row.
type UnevenDimensionsError struct {
	Expected int
	Found    int
	Row      int
}

func (e *UnevenDimensionsError) Error() string {
	return fmt.Sprintf("Uneven dimensions in map data at row %d: expected width %d, found %d", e.Row, e.Expected, e.Found)
}

// ErrEmptyMap reports map input with no terrain cells at all.
var ErrEmptyMap = fmt.Errorf("Map data is empty or contains no valid terrain")
