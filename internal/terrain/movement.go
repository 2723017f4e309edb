package terrain

// MovementTerrain is the movement-cost class a tile belongs to. Many terrain
// identifiers share a class: every road, bridge and property costs the same
// to cross.
type MovementTerrain uint8

const (
	Plains MovementTerrain = iota
	Mountains
	Woods
	Rivers
	Infrastructure
	Pipes
	Sea
	Shoals
	Reefs
	Teleport

	movementTerrainCount
)

func (m MovementTerrain) String() string {
	switch m {
	case Plains:
		return "Plains"
	case Mountains:
		return "Mountains"
	case Woods:
		return "Woods"
	case Rivers:
		return "Rivers"
	case Infrastructure:
		return "Infrastructure"
	case Pipes:
		return "Pipes"
	case Sea:
		return "Sea"
	case Shoals:
		return "Shoals"
	case Reefs:
		return "Reefs"
	case Teleport:
		return "Teleport"
	default:
		return "Plains"
	}
}

// UnitMovement is a unit's movement class.
type UnitMovement uint8

const (
	Foot UnitMovement = iota
	Boot
	Treads
	Tires
	Ship
	Lander
	Air
	Pipe

	unitMovementCount
)

func (m UnitMovement) String() string {
	switch m {
	case Foot:
		return "Foot"
	case Boot:
		return "Boot"
	case Treads:
		return "Treads"
	case Tires:
		return "Tires"
	case Ship:
		return "Ship"
	case Lander:
		return "Lander"
	case Air:
		return "Air"
	case Pipe:
		return "Pipe"
	default:
		return "Foot"
	}
}

// UnitMovements lists every movement class.
var UnitMovements = []UnitMovement{Foot, Boot, Treads, Tires, Ship, Lander, Air, Pipe}

const impassable = -1

// costTable[t][m] is the movement-point cost for class m on terrain class t,
// impassable when negative. Teleporters are free for everything.
var costTable = [movementTerrainCount][unitMovementCount]int8{
	Plains:         {Foot: 1, Boot: 1, Treads: 1, Tires: 2, Ship: impassable, Lander: impassable, Air: 1, Pipe: impassable},
	Mountains:      {Foot: 2, Boot: 1, Treads: impassable, Tires: impassable, Ship: impassable, Lander: impassable, Air: 1, Pipe: impassable},
	Woods:          {Foot: 1, Boot: 1, Treads: 2, Tires: 3, Ship: impassable, Lander: impassable, Air: 1, Pipe: impassable},
	Rivers:         {Foot: 2, Boot: 1, Treads: impassable, Tires: impassable, Ship: impassable, Lander: impassable, Air: 1, Pipe: impassable},
	Infrastructure: {Foot: 1, Boot: 1, Treads: 1, Tires: 1, Ship: impassable, Lander: impassable, Air: 1, Pipe: impassable},
	Pipes:          {Foot: impassable, Boot: impassable, Treads: impassable, Tires: impassable, Ship: impassable, Lander: impassable, Air: impassable, Pipe: 1},
	Sea:            {Foot: impassable, Boot: impassable, Treads: impassable, Tires: impassable, Ship: 1, Lander: 1, Air: 1, Pipe: impassable},
	Shoals:         {Foot: 1, Boot: 1, Treads: 1, Tires: 1, Ship: impassable, Lander: 1, Air: 1, Pipe: impassable},
	Reefs:          {Foot: impassable, Boot: impassable, Treads: impassable, Tires: impassable, Ship: 2, Lander: 2, Air: 1, Pipe: impassable},
	Teleport:       {Foot: 0, Boot: 0, Treads: 0, Tires: 0, Ship: 0, Lander: 0, Air: 0, Pipe: 0},
}

// Cost returns the movement-point cost for a movement class on a terrain
// class, or false when the terrain is impassable for that class.
func Cost(t MovementTerrain, m UnitMovement) (uint8, bool) {
	if t >= movementTerrainCount || m >= unitMovementCount {
		return 0, false
	}
	c := costTable[t][m]
	if c < 0 {
		return 0, false
	}
	return uint8(c), true
}
