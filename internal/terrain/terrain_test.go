package terrain

import (
	"testing"

	"awbrn/engine/internal/faction"
)

func TestFromIDAcceptsKnownIdentifiers(t *testing.T) {
	for _, id := range []uint8{1, 2, 3, 14, 25, 27, 28, 33, 34, 42, 100, 110, 111, 116, 126, 137, 148, 176, 195, 196, 216} {
		if _, ok := FromID(id); !ok {
			t.Fatalf("expected id %d to be valid", id)
		}
	}
}

func TestFromIDRejectsGaps(t *testing.T) {
	for _, id := range []uint8{0, 58, 70, 80, 177, 178, 179, 180, 217, 255} {
		if _, ok := FromID(id); ok {
			t.Fatalf("expected id %d to be invalid", id)
		}
	}
}

func TestSymbols(t *testing.T) {
	cases := []struct {
		id     uint8
		symbol byte
	}{
		{1, '.'},
		{2, '^'},
		{3, '@'},
		{4, '{'},
		{14, 'P'},
		{15, '-'},
		{26, '['},
		{28, ','},
		{29, '<'},
		{33, '%'},
		{34, 'a'},
		{37, 'd'},
		{42, 'i'},
		{44, 'l'},
		{81, 'U'},
		{85, 'Q'},
		{95, '5'},
		{101, 'k'},
		{110, '\''},
		{111, '"'},
		{112, ';'},
		{113, ':'},
		{116, '0'},
		{133, '_'},
		{145, '6'},
	}
	for _, tc := range cases {
		terr, ok := FromID(tc.id)
		if !ok {
			t.Fatalf("id %d should be valid", tc.id)
		}
		got, ok := terr.Symbol()
		if !ok || got != tc.symbol {
			t.Fatalf("id %d symbol = %q, %v; want %q", tc.id, got, ok, tc.symbol)
		}
	}
}

func TestOwnedPropertiesWithoutSymbols(t *testing.T) {
	// Brown Desert and the expansion armies have no map-text symbols.
	for _, id := range []uint8{96, 100, 117, 126, 127, 138, 149, 216} {
		terr, ok := FromID(id)
		if !ok {
			t.Fatalf("id %d should be valid", id)
		}
		if _, ok := terr.Symbol(); ok {
			t.Fatalf("id %d (%s) should have no symbol", id, terr.Name())
		}
	}
}

func TestNames(t *testing.T) {
	cases := map[uint8]string{
		1:   "Plain",
		4:   "HRiver",
		42:  "Orange Star HQ",
		34:  "Neutral City",
		107: "NPipe End",
		111: "Missile Silo",
		112: "Missile Silo Empty",
		133: "Neutral Com Tower",
		145: "Neutral Lab",
		153: "Cobalt Ice HQ",
		195: "Teleporter",
		214: "Silver Claw HQ",
	}
	for id, want := range cases {
		terr, _ := FromID(id)
		if got := terr.Name(); got != want {
			t.Fatalf("id %d name = %q, want %q", id, got, want)
		}
	}
}

func TestOwnerAndHQ(t *testing.T) {
	hq, _ := FromID(42)
	if !hq.IsHQ() {
		t.Fatal("id 42 should be an HQ")
	}
	owner, ok := hq.Owner()
	if !ok {
		t.Fatal("HQ should have an owner")
	}
	if p, ok := owner.Player(); !ok || p != faction.OrangeStar {
		t.Fatalf("unexpected HQ owner %v", owner.Name())
	}

	city, _ := FromID(34)
	owner, ok = city.Owner()
	if !ok || !owner.IsNeutral() {
		t.Fatalf("neutral city owner = %v, %v", owner.Name(), ok)
	}

	plain, _ := FromID(1)
	if _, ok := plain.Owner(); ok {
		t.Fatal("plain should have no owner")
	}
}

func TestNeutralHQUnrepresentable(t *testing.T) {
	if _, ok := PropertyFor(HQ, faction.Neutral); ok {
		t.Fatal("a neutral HQ must not exist")
	}
	hq, err := HQFor(faction.BlueMoon)
	if err != nil {
		t.Fatalf("HQFor(BlueMoon): %v", err)
	}
	if hq.ID() != 47 {
		t.Fatalf("Blue Moon HQ id = %d, want 47", hq.ID())
	}
}

func TestPropertyForRoundTrip(t *testing.T) {
	for id := uint8(1); id != 0 && id <= 216; id++ {
		terr, ok := FromID(id)
		if !ok {
			continue
		}
		kind, isProp := terr.PropertyKind()
		if !isProp {
			continue
		}
		owner, _ := terr.Owner()
		back, ok := PropertyFor(kind, owner)
		if !ok || back != terr {
			t.Fatalf("PropertyFor(%v, %s) = %d, %v; want %d", kind, owner.Name(), back.ID(), ok, id)
		}
	}
}

func TestDefenseStars(t *testing.T) {
	cases := map[uint8]uint8{
		1:   1, // plain
		2:   4, // mountain
		3:   2, // wood
		4:   0, // river
		15:  0, // road
		26:  0, // bridge
		28:  0, // sea
		29:  0, // shoal
		33:  1, // reef
		34:  3, // city
		42:  4, // HQ
		101: 1, // pipe
		111: 3, // silo
		113: 1, // seam
		115: 1, // rubble
		195: 0, // teleporter
	}
	for id, want := range cases {
		terr, _ := FromID(id)
		if got := terr.DefenseStars(); got != want {
			t.Fatalf("id %d defense = %d, want %d", id, got, want)
		}
	}
}

func TestLandSeaCapture(t *testing.T) {
	sea, _ := FromID(28)
	if sea.IsLand() {
		t.Fatal("sea is not land")
	}
	river, _ := FromID(6)
	if river.IsLand() {
		t.Fatal("rivers are not land")
	}
	port, _ := FromID(37)
	if !port.IsSea() || !port.IsLand() {
		t.Fatal("ports serve both land and sea")
	}
	city, _ := FromID(34)
	if !city.IsCapturable() {
		t.Fatal("cities are capturable")
	}
	mountain, _ := FromID(2)
	if mountain.IsCapturable() {
		t.Fatal("mountains are not capturable")
	}
}

func TestSiloLoaded(t *testing.T) {
	loaded, _ := FromID(111)
	if !loaded.SiloLoaded() {
		t.Fatal("silo 111 holds its missile")
	}
	empty, _ := FromID(112)
	if empty.SiloLoaded() {
		t.Fatal("silo 112 already fired")
	}
	city, _ := FromID(34)
	if city.SiloLoaded() {
		t.Fatal("cities are not silos")
	}
}

func TestMovementProjection(t *testing.T) {
	cases := map[uint8]MovementTerrain{
		1:   Plains,
		115: Plains,
		2:   Mountains,
		3:   Woods,
		4:   Rivers,
		15:  Infrastructure,
		26:  Infrastructure,
		34:  Infrastructure,
		111: Infrastructure,
		101: Pipes,
		113: Pipes,
		28:  Sea,
		29:  Shoals,
		33:  Reefs,
		195: Teleport,
	}
	for id, want := range cases {
		terr, _ := FromID(id)
		if got := terr.Movement(); got != want {
			t.Fatalf("id %d movement = %v, want %v", id, got, want)
		}
	}
}
