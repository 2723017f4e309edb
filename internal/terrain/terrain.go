package terrain

import (
	"fmt"

	"awbrn/engine/internal/faction"
)

// Terrain is an AWBW terrain identifier. Valid identifiers run from 1 to 216
// with gaps; FromID rejects anything outside the published table.
//
// Ref: <https://awbw.amarriner.com/terrain_map.php>
type Terrain uint8

// Kind groups terrain identifiers by their primary function.
type Kind uint8

const (
	KindPlain Kind = iota
	KindMountain
	KindWood
	KindRiver
	KindRoad
	KindBridge
	KindSea
	KindShoal
	KindReef
	KindProperty
	KindPipe
	KindMissileSilo
	KindPipeSeam
	KindPipeRubble
	KindTeleporter
)

// PropertyKind distinguishes the capturable building types.
type PropertyKind uint8

const (
	City PropertyKind = iota
	Base
	Airport
	Port
	HQ
	ComTower
	Lab
)

func (k PropertyKind) name() string {
	switch k {
	case City:
		return "City"
	case Base:
		return "Base"
	case Airport:
		return "Airport"
	case Port:
		return "Port"
	case HQ:
		return "HQ"
	case ComTower:
		return "Com Tower"
	case Lab:
		return "Lab"
	default:
		return "Property"
	}
}

type record struct {
	valid  bool
	kind   Kind
	prop   PropertyKind
	owner  faction.Faction
	name   string
	symbol byte
	hasSym bool
}

var catalog [217]record

func reg(id uint8, kind Kind, name string, symbol byte) {
	catalog[id] = record{valid: true, kind: kind, name: name, symbol: symbol, hasSym: symbol != 0}
}

func regProp(id uint8, kind PropertyKind, owner faction.Faction, symbol byte) {
	catalog[id] = record{
		valid:  true,
		kind:   KindProperty,
		prop:   kind,
		owner:  owner,
		name:   owner.Name() + " " + kind.name(),
		symbol: symbol,
		hasSym: symbol != 0,
	}
}

// Property block layouts differ between faction generations: the classic
// armies enumerate City, Base, Airport, Port, HQ while the later ones start
// at Airport and include Com Tower and Lab.
func regClassic(base uint8, p faction.PlayerFaction, symbols [5]byte) {
	owner := faction.Player(p)
	regProp(base+0, City, owner, symbols[0])
	regProp(base+1, Base, owner, symbols[1])
	regProp(base+2, Airport, owner, symbols[2])
	regProp(base+3, Port, owner, symbols[3])
	regProp(base+4, HQ, owner, symbols[4])
}

func regExpansion(base uint8, p faction.PlayerFaction) {
	owner := faction.Player(p)
	regProp(base+0, Airport, owner, 0)
	regProp(base+1, Base, owner, 0)
	regProp(base+2, City, owner, 0)
	regProp(base+3, HQ, owner, 0)
	regProp(base+4, Port, owner, 0)
}

func regModern(base uint8, p faction.PlayerFaction) {
	owner := faction.Player(p)
	regProp(base+0, Airport, owner, 0)
	regProp(base+1, Base, owner, 0)
	regProp(base+2, City, owner, 0)
	regProp(base+3, ComTower, owner, 0)
	regProp(base+4, HQ, owner, 0)
	regProp(base+5, Lab, owner, 0)
	regProp(base+6, Port, owner, 0)
}

func init() {
	reg(1, KindPlain, "Plain", '.')
	reg(2, KindMountain, "Mountain", '^')
	reg(3, KindWood, "Wood", '@')

	riverNames := []string{"HRiver", "VRiver", "CRiver", "ESRiver", "SWRiver", "WNRiver", "NERiver", "ESWRiver", "SWNRiver", "WNERiver", "NESRiver"}
	riverSymbols := []byte{'{', '}', '~', 'I', 'J', 'K', 'L', 'M', 'N', 'O', 'P'}
	for i := range riverNames {
		reg(uint8(4+i), KindRiver, riverNames[i], riverSymbols[i])
	}

	roadNames := []string{"HRoad", "VRoad", "CRoad", "ESRoad", "SWRoad", "WNRoad", "NERoad", "ESWRoad", "SWNRoad", "WNERoad", "NESRoad"}
	roadSymbols := []byte{'-', '=', '+', 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H'}
	for i := range roadNames {
		reg(uint8(15+i), KindRoad, roadNames[i], roadSymbols[i])
	}

	reg(26, KindBridge, "HBridge", '[')
	reg(27, KindBridge, "VBridge", ']')
	reg(28, KindSea, "Sea", ',')
	reg(29, KindShoal, "HShoal", '<')
	reg(30, KindShoal, "HShoalN", '(')
	reg(31, KindShoal, "VShoal", '>')
	reg(32, KindShoal, "VShoalE", ')')
	reg(33, KindReef, "Reef", '%')

	regProp(34, City, faction.Neutral, 'a')
	regProp(35, Base, faction.Neutral, 'b')
	regProp(36, Airport, faction.Neutral, 'c')
	regProp(37, Port, faction.Neutral, 'd')

	regClassic(38, faction.OrangeStar, [5]byte{'e', 'f', 'g', 'h', 'i'})
	regClassic(43, faction.BlueMoon, [5]byte{'j', 'l', 'm', 'n', 'o'})
	regClassic(48, faction.GreenEarth, [5]byte{'p', 'q', 'r', 's', 't'})
	regClassic(53, faction.YellowComet, [5]byte{'u', 'v', 'w', 'x', 'y'})
	regClassic(81, faction.RedFire, [5]byte{'U', 'T', 'S', 'R', 'Q'})
	regClassic(86, faction.GreySky, [5]byte{'Z', 'Y', 'X', 'W', 'V'})
	regClassic(91, faction.BlackHole, [5]byte{'1', '2', '3', '4', '5'})
	regClassic(96, faction.BrownDesert, [5]byte{0, 0, 0, 0, 0})

	pipeNames := []string{"VPipe", "HPipe", "NEPipe", "ESPipe", "SWPipe", "WNPipe", "NPipe End", "EPipe End", "SPipe End", "WPipe End"}
	pipeSymbols := []byte{'k', 'z', '!', '#', '$', '&', '*', '|', '`', '\''}
	for i := range pipeNames {
		reg(uint8(101+i), KindPipe, pipeNames[i], pipeSymbols[i])
	}

	reg(111, KindMissileSilo, "Missile Silo", '"')
	reg(112, KindMissileSilo, "Missile Silo Empty", ';')
	reg(113, KindPipeSeam, "HPipe Seam", ':')
	reg(114, KindPipeSeam, "VPipe Seam", '?')
	reg(115, KindPipeRubble, "HPipe Rubble", '/')
	reg(116, KindPipeRubble, "VPipe Rubble", '0')

	regExpansion(117, faction.AmberBlaze)
	regExpansion(122, faction.JadeSun)

	comTowerOwners := []faction.Faction{
		faction.Player(faction.AmberBlaze), faction.Player(faction.BlackHole),
		faction.Player(faction.BlueMoon), faction.Player(faction.BrownDesert),
		faction.Player(faction.GreenEarth), faction.Player(faction.JadeSun),
		faction.Neutral, faction.Player(faction.OrangeStar),
		faction.Player(faction.RedFire), faction.Player(faction.YellowComet),
		faction.Player(faction.GreySky),
	}
	for i, owner := range comTowerOwners {
		symbol := byte(0)
		if owner.IsNeutral() {
			symbol = '_'
		}
		regProp(uint8(127+i), ComTower, owner, symbol)
	}

	labOwners := []faction.Faction{
		faction.Player(faction.AmberBlaze), faction.Player(faction.BlackHole),
		faction.Player(faction.BlueMoon), faction.Player(faction.BrownDesert),
		faction.Player(faction.GreenEarth), faction.Player(faction.GreySky),
		faction.Player(faction.JadeSun), faction.Neutral,
		faction.Player(faction.OrangeStar), faction.Player(faction.RedFire),
		faction.Player(faction.YellowComet),
	}
	for i, owner := range labOwners {
		symbol := byte(0)
		if owner.IsNeutral() {
			symbol = '6'
		}
		regProp(uint8(138+i), Lab, owner, symbol)
	}

	regModern(149, faction.CobaltIce)
	regModern(156, faction.PinkCosmos)
	regModern(163, faction.TealGalaxy)
	regModern(170, faction.PurpleLightning)
	regModern(181, faction.AcidRain)
	regModern(188, faction.WhiteNova)

	reg(195, KindTeleporter, "Teleporter", 0)

	regModern(196, faction.AzureAsteroid)
	regModern(203, faction.NoirEclipse)
	regModern(210, faction.SilverClaw)
}

// FromID validates an AWBW terrain identifier.
func FromID(id uint8) (Terrain, bool) {
	if int(id) >= len(catalog) || !catalog[id].valid {
		return 0, false
	}
	return Terrain(id), true
}

// ID returns the numeric terrain identifier.
func (t Terrain) ID() uint8 { return uint8(t) }

func (t Terrain) rec() record {
	if int(t) < len(catalog) {
		return catalog[t]
	}
	return record{}
}

// Kind returns the primary terrain category.
func (t Terrain) Kind() Kind { return t.rec().kind }

// Name returns the display name, e.g. "HRiver" or "Orange Star HQ".
func (t Terrain) Name() string { return t.rec().name }

func (t Terrain) String() string { return t.Name() }

// Symbol returns the single-byte map-text symbol. Most owned properties have
// none and render as a blank tile.
func (t Terrain) Symbol() (byte, bool) {
	r := t.rec()
	return r.symbol, r.hasSym
}

// PropertyKind returns the building type for property terrain.
func (t Terrain) PropertyKind() (PropertyKind, bool) {
	r := t.rec()
	if r.kind != KindProperty {
		return 0, false
	}
	return r.prop, true
}

// Owner returns the owning faction for property terrain.
func (t Terrain) Owner() (faction.Faction, bool) {
	r := t.rec()
	if r.kind != KindProperty {
		return faction.Faction{}, false
	}
	return r.owner, true
}

// IsHQ reports whether the terrain is a headquarters.
func (t Terrain) IsHQ() bool {
	r := t.rec()
	return r.kind == KindProperty && r.prop == HQ
}

// IsCapturable reports whether infantry can capture the terrain.
func (t Terrain) IsCapturable() bool { return t.rec().kind == KindProperty }

// IsLand reports whether ground units can occupy the terrain.
func (t Terrain) IsLand() bool {
	switch t.rec().kind {
	case KindRiver, KindSea:
		return false
	}
	return t.rec().valid
}

// IsSea reports whether naval units can occupy the terrain.
func (t Terrain) IsSea() bool {
	r := t.rec()
	return r.kind == KindSea || (r.kind == KindProperty && r.prop == Port)
}

// DefenseStars returns the terrain defence rating from 0 to 4 stars.
func (t Terrain) DefenseStars() uint8 {
	r := t.rec()
	switch r.kind {
	case KindPlain, KindReef, KindPipe, KindPipeSeam, KindPipeRubble:
		return 1
	case KindMountain:
		return 4
	case KindWood:
		return 2
	case KindMissileSilo:
		return 3
	case KindProperty:
		if r.prop == HQ {
			return 4
		}
		return 3
	default:
		return 0
	}
}

// SiloLoaded reports whether a missile silo still holds its missile. Firing
// the silo rewrites the tile to the empty variant, so only id 111 qualifies.
func (t Terrain) SiloLoaded() bool { return t == 111 }

// Movement projects the terrain onto its movement-cost class.
func (t Terrain) Movement() MovementTerrain {
	switch t.rec().kind {
	case KindPlain, KindPipeRubble:
		return Plains
	case KindMountain:
		return Mountains
	case KindWood:
		return Woods
	case KindRiver:
		return Rivers
	case KindRoad, KindBridge, KindProperty, KindMissileSilo:
		return Infrastructure
	case KindPipe, KindPipeSeam:
		return Pipes
	case KindSea:
		return Sea
	case KindShoal:
		return Shoals
	case KindReef:
		return Reefs
	case KindTeleporter:
		return Teleport
	default:
		return Plains
	}
}

// PropertyFor looks up the terrain identifier for a building type owned by a
// faction. The HQ row rejects neutral owners; use HQFor instead.
func PropertyFor(kind PropertyKind, owner faction.Faction) (Terrain, bool) {
	if kind == HQ && owner.IsNeutral() {
		return 0, false
	}
	for id := 1; id < len(catalog); id++ {
		r := catalog[id]
		if r.valid && r.kind == KindProperty && r.prop == kind && r.owner == owner {
			return Terrain(id), true
		}
	}
	return 0, false
}

// HQFor returns the headquarters terrain for a player faction. A neutral HQ
// is unrepresentable: the signature only admits player factions.
func HQFor(p faction.PlayerFaction) (Terrain, error) {
	t, ok := PropertyFor(HQ, faction.Player(p))
	if !ok {
		return 0, fmt.Errorf("no HQ terrain for faction %s", p.Name())
	}
	return t, nil
}
