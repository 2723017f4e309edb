package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"awbrn/engine/internal/faction"
	"awbrn/engine/internal/terrain"
)

// TargetedPlayer addresses either every spectator or one specific player.
// Per-player maps in action payloads are keyed by this type.
type TargetedPlayer struct {
	id     uint32
	global bool
}

// GlobalTarget addresses every player.
func GlobalTarget() TargetedPlayer {
	return TargetedPlayer{global: true}
}

// PlayerTarget addresses a single game player.
func PlayerTarget(id uint32) TargetedPlayer {
	return TargetedPlayer{id: id}
}

// IsGlobal reports whether the target covers all players.
func (t TargetedPlayer) IsGlobal() bool { return t.global }

// PlayerID returns the targeted player id when the target is not global.
func (t TargetedPlayer) PlayerID() (uint32, bool) {
	if t.global {
		return 0, false
	}
	return t.id, true
}

// MarshalText encodes either "global" or the decimal player id.
func (t TargetedPlayer) MarshalText() ([]byte, error) {
	if t.global {
		return []byte("global"), nil
	}
	return []byte(strconv.FormatUint(uint64(t.id), 10)), nil
}

// UnmarshalText accepts "global" or a decimal player id.
func (t *TargetedPlayer) UnmarshalText(text []byte) error {
	if string(text) == "global" {
		*t = TargetedPlayer{global: true}
		return nil
	}
	id, err := strconv.ParseUint(string(text), 10, 32)
	if err != nil {
		return fmt.Errorf("expected \"global\" or a player id, got %q", text)
	}
	*t = TargetedPlayer{id: uint32(id)}
	return nil
}

// Hidden wraps a value that fog of war may replace with an empty string.
type Hidden[T any] struct {
	Value T
	Known bool
}

// UnmarshalJSON treats "" as the hidden marker and decodes anything else,
// unwrapping values that arrive as JSON-in-a-string.
func (h *Hidden[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte(`""`)) || bytes.Equal(trimmed, []byte("null")) {
		*h = Hidden[T]{}
		return nil
	}
	err := json.Unmarshal(trimmed, &h.Value)
	if err == nil {
		h.Known = true
		return nil
	}
	//1.- Some payloads quote numeric fields; retry against the string contents.
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var inner string
		if json.Unmarshal(trimmed, &inner) == nil && json.Unmarshal([]byte(inner), &h.Value) == nil {
			h.Known = true
			return nil
		}
	}
	return err
}

// MarshalJSON emits the hidden marker or the wrapped value.
func (h Hidden[T]) MarshalJSON() ([]byte, error) {
	if !h.Known {
		return []byte(`""`), nil
	}
	return json.Marshal(h.Value)
}

// Masked wraps a value that fog of war may replace with a question mark.
type Masked[T any] struct {
	Value T
	Known bool
}

// UnmarshalJSON treats "?" as the masked marker and decodes anything else.
func (m *Masked[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte(`"?"`)) || bytes.Equal(trimmed, []byte("null")) {
		*m = Masked[T]{}
		return nil
	}
	err := json.Unmarshal(trimmed, &m.Value)
	if err == nil {
		m.Known = true
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var inner string
		if json.Unmarshal(trimmed, &inner) == nil && json.Unmarshal([]byte(inner), &m.Value) == nil {
			m.Known = true
			return nil
		}
	}
	return err
}

// MarshalJSON emits the masked marker or the wrapped value.
func (m Masked[T]) MarshalJSON() ([]byte, error) {
	if !m.Known {
		return []byte(`"?"`), nil
	}
	return json.Marshal(m.Value)
}

// Sparse wraps an object field that the server serialises as an empty PHP
// array when absent. Arrays decode to nil, objects decode normally.
type Sparse[T any] struct {
	Value *T
}

// UnmarshalJSON discards arrays and null, keeping only object payloads.
func (s *Sparse[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '[' || bytes.Equal(trimmed, []byte("null")) {
		s.Value = nil
		return nil
	}
	value := new(T)
	if err := json.Unmarshal(trimmed, value); err != nil {
		return err
	}
	s.Value = value
	return nil
}

// MarshalJSON emits an empty array for absent values to mirror the source format.
func (s Sparse[T]) MarshalJSON() ([]byte, error) {
	if s.Value == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Value)
}

// UnitName carries a unit type spelled with its AWBW display name.
type UnitName struct {
	Unit terrain.Unit
}

// UnmarshalJSON resolves the display name against the unit roster.
func (n *UnitName) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	unit, ok := terrain.ParseUnit(name)
	if !ok {
		return fmt.Errorf("unknown unit name %q", name)
	}
	n.Unit = unit
	return nil
}

// MarshalJSON emits the AWBW display name.
func (n UnitName) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Unit.String())
}

// CountryCode carries a faction spelled with its two-letter country code.
type CountryCode struct {
	Faction faction.PlayerFaction
}

// UnmarshalJSON resolves the country code against the faction roster.
func (c *CountryCode) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	side, ok := faction.FromCountryCode(code)
	if !ok {
		return fmt.Errorf("unknown country code %q", code)
	}
	c.Faction = side
	return nil
}

// MarshalJSON emits the two-letter country code.
func (c CountryCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Faction.CountryCode())
}

// TerrainID carries a terrain tile spelled with its numeric AWBW id.
type TerrainID struct {
	Terrain terrain.Terrain
}

// UnmarshalJSON validates the id against the terrain catalog.
func (t *TerrainID) UnmarshalJSON(data []byte) error {
	var id uint8
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	tile, ok := terrain.FromID(id)
	if !ok {
		return fmt.Errorf("invalid terrain id %d", id)
	}
	t.Terrain = tile
	return nil
}

// MarshalJSON emits the numeric AWBW terrain id.
func (t TerrainID) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Terrain.ID())
}

// UnitMap holds each player's fogged view of a unit.
type UnitMap = map[TargetedPlayer]Hidden[UnitProperty]

// DiscoveryMap holds each player's newly revealed tiles and units.
type DiscoveryMap = map[TargetedPlayer]*Discovery

// UnitProperty mirrors the per-unit columns attached to action payloads.
type UnitProperty struct {
	ID             uint32         `json:"units_id"`
	GameID         *uint32        `json:"units_games_id"`
	PlayerID       uint32         `json:"units_players_id"`
	Name           UnitName       `json:"units_name"`
	MovementPoints *uint32        `json:"units_movement_points"`
	Vision         *uint32        `json:"units_vision"`
	Fuel           *uint32        `json:"units_fuel"`
	FuelPerTurn    *uint32        `json:"units_fuel_per_turn"`
	SubDive        string         `json:"units_sub_dive"`
	Ammo           *uint32        `json:"units_ammo"`
	ShortRange     *uint32        `json:"units_short_range"`
	LongRange      *uint32        `json:"units_long_range"`
	SecondWeapon   *string        `json:"units_second_weapon"`
	Symbol         *string        `json:"units_symbol"`
	Cost           *uint32        `json:"units_cost"`
	MovementType   string         `json:"units_movement_type"`
	X              *uint32        `json:"units_x"`
	Y              *uint32        `json:"units_y"`
	Moved          *uint32        `json:"units_moved"`
	Capture        *uint32        `json:"units_capture"`
	Fired          *uint32        `json:"units_fired"`
	HitPoints      float64        `json:"units_hit_points"`
	Cargo1UnitID   Masked[uint32] `json:"units_cargo1_units_id"`
	Cargo2UnitID   Masked[uint32] `json:"units_cargo2_units_id"`
	Carried        *string        `json:"units_carried"`
	CountryCode    CountryCode    `json:"countries_code"`
}

// PathTile is one step of a movement path as seen by one player.
type PathTile struct {
	UnitVisible bool   `json:"unit_visible"`
	X           uint32 `json:"x"`
	Y           uint32 `json:"y"`
}

// MoveAction relocates a unit along a path.
type MoveAction struct {
	Unit       UnitMap                       `json:"unit"`
	Paths      map[TargetedPlayer][]PathTile `json:"paths"`
	Dist       uint32                        `json:"dist"`
	Trapped    bool                          `json:"trapped"`
	Discovered Sparse[DiscoveryMap]          `json:"discovered"`
}

// LoadAction boards a unit onto a transport.
type LoadAction struct {
	Loaded    map[TargetedPlayer]Hidden[uint32] `json:"loaded"`
	Transport map[TargetedPlayer]Hidden[uint32] `json:"transport"`
}

// CaptureAction progresses or completes a property capture.
type CaptureAction struct {
	BuildingInfo BuildingInfo                      `json:"buildingInfo"`
	Vision       map[TargetedPlayer]BuildingVision `json:"vision"`
	Income       *map[TargetedPlayer]PlayerIncome  `json:"income"`
}

// PlayerIncome reports a player's income change after a capture.
type PlayerIncome struct {
	Player uint32 `json:"player"`
	Income uint32 `json:"income"`
}

// BuildingInfo identifies the captured building and its remaining points.
type BuildingInfo struct {
	Capture int32   `json:"buildings_capture"`
	ID      uint32  `json:"buildings_id"`
	X       uint32  `json:"buildings_x"`
	Y       uint32  `json:"buildings_y"`
	Team    *string `json:"buildings_team"`
}

// BuildingVision reports vision gained when a capture completes.
type BuildingVision struct {
	OnCapture Masked[Coordinate] `json:"onCapture"`
}

// Coordinate is a map position in action payloads.
type Coordinate struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}

// JoinAction merges two partial-strength units.
type JoinAction struct {
	PlayerID uint32                     `json:"playerId"`
	NewFunds map[TargetedPlayer]uint32  `json:"newFunds"`
	Unit     UnitMap                    `json:"unit"`
}

// SupplyAction resupplies adjacent units from an APC or Black Boat.
type SupplyAction struct {
	Unit     map[TargetedPlayer]Hidden[uint32] `json:"unit"`
	Rows     []string                          `json:"rows"`
	Supplied map[TargetedPlayer][]string       `json:"supplied"`
}

// RepairAction repairs an adjacent unit from a Black Boat.
type RepairAction struct {
	Unit     map[TargetedPlayer]Hidden[uint32] `json:"unit"`
	Repaired map[TargetedPlayer]RepairedUnit   `json:"repaired"`
	Funds    map[TargetedPlayer]uint32         `json:"funds"`
}

// AttackSeamAction damages a pipe seam.
type AttackSeamAction struct {
	Unit             map[TargetedPlayer]AttackSeamCombat `json:"unit"`
	BuildingHP       int32                               `json:"buildings_hit_points"`
	BuildingTerrain  uint32                              `json:"buildings_terrain_id"`
	SeamX            uint32                              `json:"seamX"`
	SeamY            uint32                              `json:"seamY"`
}

// AttackSeamCombat is one player's view of the attacking unit.
type AttackSeamCombat struct {
	HasVision  bool       `json:"hasVision"`
	CombatInfo CombatUnit `json:"combatInfo"`
}

// PowerAction activates a commanding officer power.
type PowerAction struct {
	PlayerID  uint32 `json:"playerID"`
	CoName    string `json:"coName"`
	CoPower   string `json:"coPower"`
	PowerName string `json:"powerName"`
}

// ResignAction removes a player from the game voluntarily.
type ResignAction struct {
	PlayerID uint32 `json:"playerId"`
	Message  string `json:"message"`
}

// NextTurnAction hands the turn to the next player.
type NextTurnAction struct {
	NextPlayerID  uint32                             `json:"nextPId"`
	NextFunds     map[TargetedPlayer]Hidden[uint32]  `json:"nextFunds"`
	NextTimer     uint32                             `json:"nextTimer"`
	NextWeather   string                             `json:"nextWeather"`
	Supplied      *map[TargetedPlayer][]uint32       `json:"supplied"`
	Repaired      *map[TargetedPlayer][]RepairedHP   `json:"repaired"`
	Day           uint32                             `json:"day"`
	NextTurnStart string                             `json:"nextTurnStart"`
}

// GameOverAction ends the game and names the winners and losers.
type GameOverAction struct {
	Day         uint32   `json:"day"`
	GameEndDate string   `json:"gameEndDate"`
	Losers      []uint32 `json:"losers"`
	Message     string   `json:"message"`
	Winners     []uint32 `json:"winners"`
}

// FireAction resolves an attack between two units.
type FireAction struct {
	CombatInfoVision map[TargetedPlayer]CombatInfoVision `json:"combatInfoVision"`
	CopValues        CopValues                           `json:"copValues"`
}

// CombatInfoVision is one player's fogged view of a combat result.
type CombatInfoVision struct {
	HasVision  bool       `json:"hasVision"`
	CombatInfo CombatInfo `json:"combatInfo"`
}

// CombatInfo pairs the attacker and defender state after combat.
type CombatInfo struct {
	Attacker CombatUnit `json:"attacker"`
	Defender CombatUnit `json:"defender"`
}

// CombatUnit is the post-combat state of one participant.
type CombatUnit struct {
	Ammo      uint32   `json:"units_ammo"`
	HitPoints *float64 `json:"units_hit_points"`
	ID        uint32   `json:"units_id"`
	X         uint32   `json:"units_x"`
	Y         uint32   `json:"units_y"`
}

// CopValues reports both players' power meters after combat.
type CopValues struct {
	Attacker CopValueInfo `json:"attacker"`
	Defender CopValueInfo `json:"defender"`
}

// CopValueInfo is one player's power meter reading.
type CopValueInfo struct {
	PlayerID uint32  `json:"playerId"`
	CopValue uint32  `json:"copValue"`
	TagValue *uint32 `json:"tagValue"`
}

// UpdatedInfo carries the end-of-turn bookkeeping for an End action.
type UpdatedInfo struct {
	Event         string                            `json:"event"`
	NextPlayerID  uint32                            `json:"nextPId"`
	NextFunds     map[TargetedPlayer]Hidden[uint32] `json:"nextFunds"`
	NextTimer     uint32                            `json:"nextTimer"`
	NextWeather   string                            `json:"nextWeather"`
	Supplied      *map[TargetedPlayer][]string      `json:"supplied"`
	Repaired      *map[TargetedPlayer][]RepairedHP  `json:"repaired"`
	Day           uint32                            `json:"day"`
	NextTurnStart string                            `json:"nextTurnStart"`
}

// RepairedHP records a unit healed by property repair at turn start.
type RepairedHP struct {
	UnitID    json.Number `json:"units_id"`
	HitPoints uint32      `json:"units_hit_points"`
}

// RepairedUnit records a unit healed by a Black Boat repair.
type RepairedUnit struct {
	UnitID    uint32 `json:"units_id"`
	HitPoints uint32 `json:"units_hit_points"`
}

// BuildAction payload: the produced unit and what its deployment revealed.
type BuildAction struct {
	NewUnit    UnitMap      `json:"newUnit"`
	Discovered DiscoveryMap `json:"discovered"`
}

// UnloadAction payload: the disembarked unit and its transport.
type UnloadAction struct {
	Unit        UnitMap      `json:"unit"`
	TransportID uint32       `json:"transportID"`
	Discovered  DiscoveryMap `json:"discovered"`
}

// Discovery lists tiles and units revealed to a player.
type Discovery struct {
	Buildings []BuildingDiscovery `json:"buildings"`
	Units     []UnitProperty      `json:"units"`
}

// BuildingDiscovery is a revealed property tile with its terrain details.
type BuildingDiscovery struct {
	ID            uint32    `json:"0"`
	BuildingID    uint32    `json:"buildings_id"`
	X             uint32    `json:"buildings_x"`
	Y             uint32    `json:"buildings_y"`
	Capture       int32     `json:"buildings_capture"`
	TerrainID     TerrainID `json:"terrain_id"`
	TerrainName   string    `json:"terrain_name"`
	TerrainStars  uint32    `json:"terrain_defense"`
	IsOccupied    bool      `json:"is_occupied"`
	OwnerPlayerID *uint32   `json:"buildings_players_id"`
	Team          *string   `json:"buildings_team"`
}

// ActionKind enumerates the action types a turn can contain.
type ActionKind int

const (
	// ActionUnknown marks an action tag this decoder does not recognise.
	ActionUnknown ActionKind = iota
	// ActionAttackSeam damages a pipe seam.
	ActionAttackSeam
	// ActionBuild produces a unit at a property.
	ActionBuild
	// ActionCapt progresses a property capture.
	ActionCapt
	// ActionEnd finishes the acting player's turn.
	ActionEnd
	// ActionFire attacks another unit.
	ActionFire
	// ActionJoin merges two units.
	ActionJoin
	// ActionLoad boards a transport.
	ActionLoad
	// ActionMove relocates a unit.
	ActionMove
	// ActionPower activates a CO power.
	ActionPower
	// ActionRepair heals an adjacent unit.
	ActionRepair
	// ActionResign removes a player voluntarily.
	ActionResign
	// ActionSupply refuels adjacent units.
	ActionSupply
	// ActionUnload disembarks a carried unit.
	ActionUnload
)

var actionKindNames = map[ActionKind]string{
	ActionUnknown:    "Unknown",
	ActionAttackSeam: "AttackSeam",
	ActionBuild:      "Build",
	ActionCapt:       "Capt",
	ActionEnd:        "End",
	ActionFire:       "Fire",
	ActionJoin:       "Join",
	ActionLoad:       "Load",
	ActionMove:       "Move",
	ActionPower:      "Power",
	ActionRepair:     "Repair",
	ActionResign:     "Resign",
	ActionSupply:     "Supply",
	ActionUnload:     "Unload",
}

// String renders the wire spelling of the action tag.
func (k ActionKind) String() string {
	if name, ok := actionKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Action is one decoded game action. Kind selects which payload pointers are
// populated; Move is set for every action that carried movement.
type Action struct {
	Kind ActionKind

	Move       *MoveAction
	AttackSeam *AttackSeamAction
	Build      *BuildAction
	Capture    *CaptureAction
	End        *UpdatedInfo
	Fire       *FireAction
	Join       *JoinAction
	Load       *LoadAction
	Power      *PowerAction
	Repair     *RepairAction
	Resign     *ResignAction
	NextTurn   *NextTurnAction
	GameOver   *GameOverAction
	Supply     *SupplyAction
	Unload     *UnloadAction

	// Raw preserves the payload of unrecognised actions.
	Raw json.RawMessage
}

// DecodeAction parses one JSON action blob. Unrecognised action tags decode
// to an Unknown action rather than failing the whole turn.
func DecodeAction(path string, data []byte) (Action, error) {
	var probe struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Action{}, jsonError(path, err)
	}

	decode := func(v interface{}) error {
		if err := json.Unmarshal(data, v); err != nil {
			return jsonError(path, err)
		}
		return nil
	}

	switch probe.Action {
	case "AttackSeam":
		var env struct {
			Move       Sparse[MoveAction] `json:"Move"`
			AttackSeam AttackSeamAction   `json:"AttackSeam"`
		}
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionAttackSeam, Move: env.Move.Value, AttackSeam: &env.AttackSeam}, nil
	case "Build":
		var env BuildAction
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionBuild, Build: &env}, nil
	case "Capt":
		var env struct {
			Move Sparse[MoveAction] `json:"Move"`
			Capt CaptureAction      `json:"Capt"`
		}
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionCapt, Move: env.Move.Value, Capture: &env.Capt}, nil
	case "End":
		var env struct {
			UpdatedInfo UpdatedInfo `json:"updatedInfo"`
		}
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionEnd, End: &env.UpdatedInfo}, nil
	case "Fire":
		var env struct {
			Move Sparse[MoveAction] `json:"Move"`
			Fire FireAction         `json:"Fire"`
		}
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionFire, Move: env.Move.Value, Fire: &env.Fire}, nil
	case "Join":
		var env struct {
			Move MoveAction `json:"Move"`
			Join JoinAction `json:"Join"`
		}
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionJoin, Move: &env.Move, Join: &env.Join}, nil
	case "Load":
		var env struct {
			Move MoveAction `json:"Move"`
			Load LoadAction `json:"Load"`
		}
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionLoad, Move: &env.Move, Load: &env.Load}, nil
	case "Move":
		var env MoveAction
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionMove, Move: &env}, nil
	case "Power":
		var env PowerAction
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionPower, Power: &env}, nil
	case "Repair":
		var env struct {
			Move   MoveAction   `json:"Move"`
			Repair RepairAction `json:"Repair"`
		}
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionRepair, Move: &env.Move, Repair: &env.Repair}, nil
	case "Resign":
		var env struct {
			Resign   ResignAction    `json:"Resign"`
			NextTurn *NextTurnAction `json:"NextTurn"`
			GameOver *GameOverAction `json:"GameOver"`
		}
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionResign, Resign: &env.Resign, NextTurn: env.NextTurn, GameOver: env.GameOver}, nil
	case "Supply":
		var env struct {
			Move   MoveAction   `json:"Move"`
			Supply SupplyAction `json:"Supply"`
		}
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionSupply, Move: &env.Move, Supply: &env.Supply}, nil
	case "Unload":
		var env UnloadAction
		if err := decode(&env); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionUnload, Unload: &env}, nil
	default:
		//1.- Preserve unrecognised actions verbatim so playback can skip them.
		return Action{Kind: ActionUnknown, Raw: append(json.RawMessage(nil), data...)}, nil
	}
}
