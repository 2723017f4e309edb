package faction

import "fmt"

// PlayerFaction identifies one of the playable armies.
type PlayerFaction uint8

const (
	OrangeStar PlayerFaction = iota
	BlueMoon
	GreenEarth
	YellowComet
	BlackHole
	RedFire
	GreySky
	BrownDesert
	AmberBlaze
	JadeSun
	CobaltIce
	PinkCosmos
	TealGalaxy
	PurpleLightning
	AcidRain
	WhiteNova
	AzureAsteroid
	NoirEclipse
	SilverClaw
	UmberWilds
)

// Players lists every playable faction in declaration order.
var Players = []PlayerFaction{
	OrangeStar, BlueMoon, GreenEarth, YellowComet, BlackHole,
	RedFire, GreySky, BrownDesert, AmberBlaze, JadeSun,
	CobaltIce, PinkCosmos, TealGalaxy, PurpleLightning, AcidRain,
	WhiteNova, AzureAsteroid, NoirEclipse, SilverClaw, UmberWilds,
}

// Name returns the display name of the faction.
func (p PlayerFaction) Name() string {
	switch p {
	case OrangeStar:
		return "Orange Star"
	case BlueMoon:
		return "Blue Moon"
	case GreenEarth:
		return "Green Earth"
	case YellowComet:
		return "Yellow Comet"
	case BlackHole:
		return "Black Hole"
	case RedFire:
		return "Red Fire"
	case GreySky:
		return "Grey Sky"
	case BrownDesert:
		return "Brown Desert"
	case AmberBlaze:
		return "Amber Blaze"
	case JadeSun:
		return "Jade Sun"
	case CobaltIce:
		return "Cobalt Ice"
	case PinkCosmos:
		return "Pink Cosmos"
	case TealGalaxy:
		return "Teal Galaxy"
	case PurpleLightning:
		return "Purple Lightning"
	case AcidRain:
		return "Acid Rain"
	case WhiteNova:
		return "White Nova"
	case AzureAsteroid:
		return "Azure Asteroid"
	case NoirEclipse:
		return "Noir Eclipse"
	case SilverClaw:
		return "Silver Claw"
	case UmberWilds:
		return "Umber Wilds"
	default:
		return fmt.Sprintf("PlayerFaction(%d)", uint8(p))
	}
}

// CountryCode returns the two-letter country code used by the AWBW site.
func (p PlayerFaction) CountryCode() string {
	switch p {
	case AcidRain:
		return "ar"
	case AmberBlaze:
		return "ab"
	case AzureAsteroid:
		return "aa"
	case BlackHole:
		return "bh"
	case BlueMoon:
		return "bm"
	case BrownDesert:
		return "bd"
	case CobaltIce:
		return "ci"
	case GreenEarth:
		return "ge"
	case GreySky:
		return "gs"
	case JadeSun:
		return "js"
	case NoirEclipse:
		return "ne"
	case OrangeStar:
		return "os"
	case PinkCosmos:
		return "pc"
	case PurpleLightning:
		return "pl"
	case RedFire:
		return "rf"
	case SilverClaw:
		return "sc"
	case TealGalaxy:
		return "tg"
	case UmberWilds:
		return "uw"
	case WhiteNova:
		return "wn"
	case YellowComet:
		return "yc"
	default:
		return ""
	}
}

// FromCountryCode resolves the faction for an AWBW country code.
func FromCountryCode(code string) (PlayerFaction, bool) {
	for _, p := range Players {
		if p.CountryCode() == code {
			return p, true
		}
	}
	return 0, false
}

// ID returns the numeric country identifier used in AWBW game records.
func (p PlayerFaction) ID() uint8 {
	switch p {
	case OrangeStar:
		return 1
	case BlueMoon:
		return 2
	case GreenEarth:
		return 3
	case YellowComet:
		return 4
	case BlackHole:
		return 5
	case RedFire:
		return 6
	case GreySky:
		return 7
	case BrownDesert:
		return 8
	case AmberBlaze:
		return 9
	case JadeSun:
		return 10
	case CobaltIce:
		return 16
	case PinkCosmos:
		return 17
	case TealGalaxy:
		return 19
	case PurpleLightning:
		return 20
	case AcidRain:
		return 21
	case WhiteNova:
		return 22
	case AzureAsteroid:
		return 23
	case NoirEclipse:
		return 24
	case SilverClaw:
		return 25
	case UmberWilds:
		return 26
	default:
		return 0
	}
}

// FromID resolves the faction for a numeric AWBW country identifier.
func FromID(id uint8) (PlayerFaction, bool) {
	for _, p := range Players {
		if p.ID() == id {
			return p, true
		}
	}
	return 0, false
}

// Faction is either neutral or owned by a player faction.
type Faction struct {
	player  PlayerFaction
	neutral bool
}

// Neutral is the unowned faction.
var Neutral = Faction{neutral: true}

// Player wraps a player faction as an owning faction.
func Player(p PlayerFaction) Faction {
	return Faction{player: p}
}

// IsNeutral reports whether the faction is unowned.
func (f Faction) IsNeutral() bool { return f.neutral }

// Player returns the owning player faction when the faction is not neutral.
func (f Faction) Player() (PlayerFaction, bool) {
	if f.neutral {
		return 0, false
	}
	return f.player, true
}

// Name returns the display name of the faction.
func (f Faction) Name() string {
	if f.neutral {
		return "Neutral"
	}
	return f.player.Name()
}
