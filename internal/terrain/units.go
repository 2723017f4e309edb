package terrain

// Unit enumerates the AWBW unit roster.
type Unit uint8

const (
	AntiAir Unit = iota
	APC
	Artillery
	BCopter
	Battleship
	BlackBoat
	BlackBomb
	Bomber
	Carrier
	Cruiser
	Fighter
	Infantry
	UnitLander
	MdTank
	Mech
	MegaTank
	Missile
	Neotank
	Piperunner
	Recon
	Rocket
	Stealth
	Sub
	TCopter
	Tank
)

var unitNames = map[Unit]string{
	AntiAir:    "Anti-Air",
	APC:        "APC",
	Artillery:  "Artillery",
	BCopter:    "B-Copter",
	Battleship: "Battleship",
	BlackBoat:  "Black Boat",
	BlackBomb:  "Black Bomb",
	Bomber:     "Bomber",
	Carrier:    "Carrier",
	Cruiser:    "Cruiser",
	Fighter:    "Fighter",
	Infantry:   "Infantry",
	UnitLander: "Lander",
	MdTank:     "Md.Tank",
	Mech:       "Mech",
	MegaTank:   "Mega Tank",
	Missile:    "Missile",
	Neotank:    "Neotank",
	Piperunner: "Piperunner",
	Recon:      "Recon",
	Rocket:     "Rocket",
	Stealth:    "Stealth",
	Sub:        "Sub",
	TCopter:    "T-Copter",
	Tank:       "Tank",
}

var unitsByName = func() map[string]Unit {
	byName := make(map[string]Unit, len(unitNames))
	for unit, name := range unitNames {
		byName[name] = unit
	}
	return byName
}()

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return "Unknown"
}

// ParseUnit resolves a unit from its AWBW display name.
func ParseUnit(name string) (Unit, bool) {
	u, ok := unitsByName[name]
	return u, ok
}

// Movement returns the unit's movement class.
func (u Unit) Movement() UnitMovement {
	switch u {
	case Infantry:
		return Foot
	case Mech:
		return Boot
	case AntiAir, APC, Artillery, MdTank, MegaTank, Neotank, Tank:
		return Treads
	case Missile, Recon, Rocket:
		return Tires
	case Battleship, Carrier, Cruiser, Sub:
		return Ship
	case BlackBoat, UnitLander:
		return Lander
	case BCopter, BlackBomb, Bomber, Fighter, Stealth, TCopter:
		return Air
	case Piperunner:
		return Pipe
	default:
		return Foot
	}
}
