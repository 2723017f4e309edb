package pathfind

import (
	"awbrn/engine/internal/gamemap"
	"awbrn/engine/internal/terrain"
)

// MovementMap provides the terrain projection the pathfinder walks over.
type MovementMap interface {
	Width() int
	Height() int
	MovementTerrainAt(gamemap.Position) (terrain.MovementTerrain, bool)
	// MovementTerrainAtIndex is the pre-validated flat-index variant used on
	// the hot path; callers guarantee idx < Width*Height.
	MovementTerrainAtIndex(idx int) terrain.MovementTerrain
}

// TerrainCosts yields the movement-point cost of entering a terrain class.
type TerrainCosts interface {
	Cost(terrain.MovementTerrain) (uint8, bool)
}

// UnitCosts adapts a unit movement class to the TerrainCosts interface.
type UnitCosts struct {
	Movement terrain.UnitMovement
}

// Cost returns the entry cost for the wrapped movement class.
func (u UnitCosts) Cost(t terrain.MovementTerrain) (uint8, bool) {
	return terrain.Cost(t, u.Movement)
}

const unvisited = ^uint8(0)

// PathFinder runs reachability queries over a movement map. The internal
// buffers are reused across queries, so repeated calls stop allocating once
// warm. Not safe for concurrent use.
type PathFinder struct {
	m MovementMap

	// Bucket queue indexed by accumulated movement cost (Dial's algorithm).
	buckets [][]uint32
	// Movement cost per flat index; unvisited cells hold the max value.
	costMap []uint8
	// Flat indices of all cells reached during the current query.
	visited []uint32
	// Scratch slice swapped with the active bucket while draining it.
	batch []uint32
}

// New creates a pathfinder over the given map.
func New(m MovementMap) *PathFinder {
	size := m.Width() * m.Height()
	return &PathFinder{
		m:       m,
		buckets: make([][]uint32, 0, 16),
		costMap: make([]uint8, 0, size),
		visited: make([]uint32, 0, size),
	}
}

// Reachable computes every position reachable from start within the given
// movement points. The result borrows the pathfinder's buffers and stays
// valid until the next Reachable call.
func (p *PathFinder) Reachable(start gamemap.Position, movementPoints uint8, costs TerrainCosts) Reachable {
	width := p.m.Width()
	size := p.m.Height() * width

	p.visited = p.visited[:0]

	if len(p.costMap) != size {
		p.costMap = make([]uint8, size)
	}
	for i := range p.costMap {
		p.costMap[i] = unvisited
	}

	numBuckets := int(movementPoints) + 1
	for len(p.buckets) < numBuckets {
		p.buckets = append(p.buckets, nil)
	}
	for i := 0; i < numBuckets; i++ {
		p.buckets[i] = p.buckets[i][:0]
	}

	if start.X < 0 || start.Y < 0 || start.X >= width || start.Y >= p.m.Height() {
		return Reachable{pf: p, width: width}
	}
	startIdx := start.Index(width)

	p.costMap[startIdx] = 0
	p.visited = append(p.visited, uint32(startIdx))
	p.buckets[0] = append(p.buckets[0], uint32(startIdx))

	height := p.m.Height()
	for currentCost := 0; currentCost < numBuckets; {
		if len(p.buckets[currentCost]) == 0 {
			currentCost++
			continue
		}

		// Swap the batch out so zero-cost edges can push back into this
		// bucket without invalidating the iteration.
		p.batch, p.buckets[currentCost] = p.buckets[currentCost], p.batch[:0]

		for _, raw := range p.batch {
			flatIdx := int(raw)

			// Stale entry: a better path was recorded after this was queued.
			if p.costMap[flatIdx] != uint8(currentCost) {
				continue
			}

			x := flatIdx % width
			y := flatIdx / width

			if x+1 < width {
				p.relax(costs, currentCost, numBuckets, flatIdx+1)
			}
			if x > 0 {
				p.relax(costs, currentCost, numBuckets, flatIdx-1)
			}
			if y+1 < height {
				p.relax(costs, currentCost, numBuckets, flatIdx+width)
			}
			if y > 0 {
				p.relax(costs, currentCost, numBuckets, flatIdx-width)
			}
		}

		p.batch = p.batch[:0]
		// Advance only when zero-cost edges added nothing back.
		if len(p.buckets[currentCost]) == 0 {
			currentCost++
		}
	}

	return Reachable{pf: p, width: width}
}

func (p *PathFinder) relax(costs TerrainCosts, currentCost, numBuckets, flatIdx int) {
	terrainCost, ok := costs.Cost(p.m.MovementTerrainAtIndex(flatIdx))
	if !ok {
		return
	}
	movementCost := currentCost + int(terrainCost)
	if movementCost >= numBuckets {
		return
	}
	recorded := p.costMap[flatIdx]
	if recorded == unvisited {
		p.costMap[flatIdx] = uint8(movementCost)
		p.visited = append(p.visited, uint32(flatIdx))
		p.buckets[movementCost] = append(p.buckets[movementCost], uint32(flatIdx))
	} else if movementCost < int(recorded) {
		p.costMap[flatIdx] = uint8(movementCost)
		p.buckets[movementCost] = append(p.buckets[movementCost], uint32(flatIdx))
	}
}

// Reachable is the result of a reachability query.
type Reachable struct {
	pf    *PathFinder
	width int
}

// Len returns the number of reachable positions, origin included.
func (r Reachable) Len() int {
	return len(r.pf.visited)
}

// CostAt returns the accumulated movement cost to a position, or false when
// it was not reached.
func (r Reachable) CostAt(pos gamemap.Position) (uint8, bool) {
	if pos.X < 0 || pos.Y < 0 || pos.X >= r.width {
		return 0, false
	}
	idx := pos.Index(r.width)
	if idx >= len(r.pf.costMap) {
		return 0, false
	}
	cost := r.pf.costMap[idx]
	if cost == unvisited {
		return 0, false
	}
	return cost, true
}

// Each visits every reached position with its accumulated cost.
func (r Reachable) Each(fn func(gamemap.Position, uint8)) {
	for _, raw := range r.pf.visited {
		idx := int(raw)
		fn(gamemap.PositionFromIndex(idx, r.width), r.pf.costMap[idx])
	}
}

// Positions collects the reached positions into a fresh slice.
func (r Reachable) Positions() []gamemap.Position {
	out := make([]gamemap.Position, 0, len(r.pf.visited))
	for _, raw := range r.pf.visited {
		out = append(out, gamemap.PositionFromIndex(int(raw), r.width))
	}
	return out
}
