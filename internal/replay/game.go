package replay

import (
	"fmt"

	"awbrn/engine/internal/faction"
	"awbrn/engine/internal/terrain"
)

// CoPower identifies a commanding officer power state.
type CoPower int

const (
	// CoPowerNone means no power is active.
	CoPowerNone CoPower = iota
	// CoPowerNormal means the regular power is active.
	CoPowerNormal
	// CoPowerSuper means the super power is active.
	CoPowerSuper
)

// String renders the AWBW single-letter encoding.
func (p CoPower) String() string {
	switch p {
	case CoPowerNormal:
		return "Y"
	case CoPowerSuper:
		return "S"
	default:
		return "N"
	}
}

func parseCoPower(code string) (CoPower, error) {
	switch code {
	case "N":
		return CoPowerNone, nil
	case "Y":
		return CoPowerNormal, nil
	case "S":
		return CoPowerSuper, nil
	default:
		return CoPowerNone, fmt.Errorf("unknown co power %q", code)
	}
}

// Game is a full snapshot of an AWBW match at the start of one day.
type Game struct {
	ID              uint32
	Name            string
	Password        *string
	Creator         uint32
	StartDate       string
	EndDate         *string
	ActivityDate    string
	MapID           uint32
	WeatherType     string
	WeatherStart    *uint32
	WeatherCode     string
	WinCondition    *string
	Turn            uint32
	Day             uint32
	Active          string
	Funds           uint32
	CaptureWin      uint32
	Fog             string
	Comment         *string
	GameType        string
	BootInterval    int32
	StartingFunds   uint32
	Official        string
	MinRating       uint32
	MaxRating       *uint32
	League          *string
	Team            string
	AetInterval     int32
	AetDate         string
	UsePowers       bool
	Players         []Player
	Buildings       []Building
	Units           []Unit
	TimersInitial   uint32
	TimersIncrement uint32
	TimersMaxTurn   uint32
}

// Player is the per-player slice of a game snapshot.
type Player struct {
	ID              uint32
	UserID          uint32
	GameID          uint32
	Faction         faction.PlayerFaction
	CoID            uint32
	Funds           uint32
	Turn            *string
	Eliminated      bool
	LastRead        string
	CoPowerMeter    uint32
	CoPowerOn       CoPower
	Order           uint32
	AcceptDraw      bool
	CoMaxPower      uint32
	CoMaxSuperPower uint32
	CoImage         string
	Team            string
	AetCount        uint32
	TurnStart       string
	TurnClock       uint32
	Interface       bool
}

// Building is a property tile tracked by a game snapshot.
type Building struct {
	ID          uint32
	GameID      uint32
	TerrainID   terrain.Terrain
	X           uint32
	Y           uint32
	Capture     uint32
	LastCapture uint32
	LastUpdated string
}

// Unit is a deployed unit tracked by a game snapshot.
type Unit struct {
	ID             uint32
	GameID         uint32
	PlayerID       uint32
	Name           terrain.Unit
	MovementPoints uint32
	Vision         uint32
	Fuel           uint32
	FuelPerTurn    uint32
	SubDive        bool
	Ammo           uint32
	ShortRange     uint32
	LongRange      uint32
	SecondWeapon   bool
	Symbol         string
	Cost           uint32
	MovementType   string
	X              uint32
	Y              uint32
	Moved          uint32
	Capture        uint32
	Fired          uint32
	HitPoints      float64
	Cargo1UnitID   uint32
	Cargo2UnitID   uint32
	Carried        bool
}

// DecodeGame unserializes one PHP game snapshot. The path labels errors with
// the archive entry the payload came from.
func DecodeGame(path string, data []byte) (Game, error) {
	arr, err := unserializeArray(path, data)
	if err != nil {
		return Game{}, err
	}
	r := newPHPReader(path, arr)

	game := Game{
		ID:              r.u32("id"),
		Name:            r.str("name"),
		Password:        r.optStr("password"),
		Creator:         r.u32("creator"),
		StartDate:       r.str("start_date"),
		EndDate:         r.optStr("end_date"),
		ActivityDate:    r.str("activity_date"),
		MapID:           r.u32("maps_id"),
		WeatherType:     r.str("weather_type"),
		WeatherStart:    r.optU32("weather_start"),
		WeatherCode:     r.str("weather_code"),
		WinCondition:    r.optStr("win_condition"),
		Turn:            r.u32("turn"),
		Day:             r.u32("day"),
		Active:          r.str("active"),
		Funds:           r.u32("funds"),
		CaptureWin:      r.u32("capture_win"),
		Fog:             r.str("fog"),
		Comment:         r.optStr("comment"),
		GameType:        r.str("type"),
		BootInterval:    r.i32("boot_interval"),
		StartingFunds:   r.u32("starting_funds"),
		Official:        r.str("official"),
		MinRating:       r.u32("min_rating"),
		MaxRating:       r.optU32("max_rating"),
		League:          r.optStr("league"),
		Team:            r.str("team"),
		AetInterval:     r.i32("aet_interval"),
		AetDate:         r.str("aet_date"),
		UsePowers:       r.yn("use_powers"),
		TimersInitial:   r.u32("timers_initial"),
		TimersIncrement: r.u32("timers_increment"),
		TimersMaxTurn:   r.u32("timers_max_turn"),
	}

	//1.- Flatten the id-keyed player/building/unit arrays into ordered slices.
	for _, sub := range r.values("players") {
		player, err := decodePlayer(path, sub)
		if err != nil {
			return Game{}, err
		}
		game.Players = append(game.Players, player)
	}
	for _, sub := range r.values("buildings") {
		building, err := decodeBuilding(path, sub)
		if err != nil {
			return Game{}, err
		}
		game.Buildings = append(game.Buildings, building)
	}
	for _, sub := range r.values("units") {
		unit, err := decodeUnit(path, sub)
		if err != nil {
			return Game{}, err
		}
		game.Units = append(game.Units, unit)
	}

	if r.err != nil {
		return Game{}, r.err
	}
	return game, nil
}

func decodePlayer(path string, arr phpArray) (Player, error) {
	r := newPHPReader(path, arr)
	player := Player{
		ID:              r.u32("id"),
		UserID:          r.u32("users_id"),
		GameID:          r.u32("games_id"),
		CoID:            r.u32("co_id"),
		Funds:           r.u32("funds"),
		Turn:            r.optStr("turn"),
		Eliminated:      r.yn("eliminated"),
		LastRead:        r.str("last_read"),
		CoPowerMeter:    r.u32("co_power"),
		Order:           r.u32("order"),
		AcceptDraw:      r.yn("accept_draw"),
		CoMaxPower:      r.u32("co_max_power"),
		CoMaxSuperPower: r.u32("co_max_spower"),
		CoImage:         r.str("co_image"),
		Team:            r.str("team"),
		AetCount:        r.u32("aet_count"),
		TurnStart:       r.str("turn_start"),
		TurnClock:       r.u32("turn_clock"),
		Interface:       r.yn("interface"),
	}

	//1.- Newer snapshots rename countries_id to faction; both spellings decode.
	countryID := r.i64Alias("countries_id", "faction")
	powerCode := r.str("co_power_on")
	if r.err != nil {
		return Player{}, r.err
	}

	side, ok := faction.FromID(uint8(countryID))
	if !ok {
		return Player{}, phpError(path, fmt.Errorf("invalid faction id %d", countryID))
	}
	player.Faction = side

	power, err := parseCoPower(powerCode)
	if err != nil {
		return Player{}, phpError(path, err)
	}
	player.CoPowerOn = power
	return player, nil
}

func decodeBuilding(path string, arr phpArray) (Building, error) {
	r := newPHPReader(path, arr)
	building := Building{
		ID:          r.u32("id"),
		GameID:      r.u32("games_id"),
		X:           r.u32("x"),
		Y:           r.u32("y"),
		Capture:     r.u32("capture"),
		LastCapture: r.u32("last_capture"),
		LastUpdated: r.str("last_updated"),
	}
	terrainID := r.i64("terrain_id")
	if r.err != nil {
		return Building{}, r.err
	}

	tile, ok := terrain.FromID(uint8(terrainID))
	if !ok {
		return Building{}, phpError(path, fmt.Errorf("invalid terrain id %d", terrainID))
	}
	building.TerrainID = tile
	return building, nil
}

func decodeUnit(path string, arr phpArray) (Unit, error) {
	r := newPHPReader(path, arr)
	unit := Unit{
		ID:             r.u32("id"),
		GameID:         r.u32("games_id"),
		PlayerID:       r.u32("players_id"),
		MovementPoints: r.u32("movement_points"),
		Vision:         r.u32("vision"),
		Fuel:           r.u32("fuel"),
		FuelPerTurn:    r.u32("fuel_per_turn"),
		SubDive:        r.yn("sub_dive"),
		Ammo:           r.u32("ammo"),
		ShortRange:     r.u32("short_range"),
		LongRange:      r.u32("long_range"),
		SecondWeapon:   r.yn("second_weapon"),
		Symbol:         r.str("symbol"),
		Cost:           r.u32("cost"),
		MovementType:   r.str("movement_type"),
		X:              r.u32("x"),
		Y:              r.u32("y"),
		Moved:          r.u32("moved"),
		Capture:        r.u32("capture"),
		Fired:          r.u32("fired"),
		HitPoints:      r.f64("hit_points"),
		Cargo1UnitID:   r.u32("cargo1_units_id"),
		Cargo2UnitID:   r.u32("cargo2_units_id"),
		Carried:        r.yn("carried"),
	}
	name := r.str("name")
	if r.err != nil {
		return Unit{}, r.err
	}

	parsed, ok := terrain.ParseUnit(name)
	if !ok {
		return Unit{}, phpError(path, fmt.Errorf("unknown unit name %q", name))
	}
	unit.Name = parsed
	return unit, nil
}
