package replay

import (
	"encoding/json"
	"testing"

	"awbrn/engine/internal/faction"
	"awbrn/engine/internal/terrain"
)

const moveActionJSON = `{
	"action": "Move",
	"unit": {
		"global": {
			"units_id": 42,
			"units_players_id": 7,
			"units_name": "Infantry",
			"units_sub_dive": "N",
			"units_movement_type": "F",
			"units_x": 3,
			"units_y": 4,
			"units_hit_points": 10,
			"countries_code": "os"
		},
		"12345": ""
	},
	"paths": {
		"global": [
			{"unit_visible": true, "x": 2, "y": 4},
			{"unit_visible": true, "x": 3, "y": 4}
		]
	},
	"dist": 1,
	"trapped": false,
	"discovered": []
}`

func TestDecodeMoveAction(t *testing.T) {
	action, err := DecodeAction("turns", []byte(moveActionJSON))
	if err != nil {
		t.Fatalf("decode move: %v", err)
	}
	if action.Kind != ActionMove {
		t.Fatalf("expected move kind, got %s", action.Kind)
	}
	if action.Move == nil {
		t.Fatal("expected movement payload")
	}
	if action.Move.Dist != 1 || action.Move.Trapped {
		t.Fatalf("unexpected movement fields: dist=%d trapped=%v", action.Move.Dist, action.Move.Trapped)
	}
	if action.Move.Discovered.Value != nil {
		t.Fatal("empty discovered array should decode to nil")
	}

	//1.- The global view carries the unit while the fogged player sees nothing.
	visible, ok := action.Move.Unit[GlobalTarget()]
	if !ok || !visible.Known {
		t.Fatal("expected visible unit for the global target")
	}
	if visible.Value.Name.Unit != terrain.Infantry {
		t.Fatalf("expected Infantry, got %s", visible.Value.Name.Unit)
	}
	if visible.Value.CountryCode.Faction != faction.OrangeStar {
		t.Fatalf("expected Orange Star, got %s", visible.Value.CountryCode.Faction.Name())
	}
	if visible.Value.X == nil || *visible.Value.X != 3 {
		t.Fatalf("unexpected unit x: %v", visible.Value.X)
	}
	fogged, ok := action.Move.Unit[PlayerTarget(12345)]
	if !ok || fogged.Known {
		t.Fatal("expected hidden unit for player 12345")
	}
	if len(action.Move.Paths[GlobalTarget()]) != 2 {
		t.Fatalf("expected 2 path tiles, got %d", len(action.Move.Paths[GlobalTarget()]))
	}
}

func TestDecodeFireActionWithEmptyMove(t *testing.T) {
	payload := `{
		"action": "Fire",
		"Move": [],
		"Fire": {
			"combatInfoVision": {
				"global": {
					"hasVision": true,
					"combatInfo": {
						"attacker": {"units_ammo": 8, "units_hit_points": 7.5, "units_id": 1, "units_x": 0, "units_y": 0},
						"defender": {"units_ammo": 3, "units_hit_points": null, "units_id": 2, "units_x": 1, "units_y": 0}
					}
				}
			},
			"copValues": {
				"attacker": {"playerId": 10, "copValue": 90210, "tagValue": null},
				"defender": {"playerId": 11, "copValue": 12000}
			}
		}
	}`
	action, err := DecodeAction("turns", []byte(payload))
	if err != nil {
		t.Fatalf("decode fire: %v", err)
	}
	if action.Kind != ActionFire {
		t.Fatalf("expected fire kind, got %s", action.Kind)
	}
	if action.Move != nil {
		t.Fatal("empty Move array should decode to nil movement")
	}
	vision := action.Fire.CombatInfoVision[GlobalTarget()]
	if !vision.HasVision {
		t.Fatal("expected vision for the global target")
	}
	if vision.CombatInfo.Attacker.HitPoints == nil || *vision.CombatInfo.Attacker.HitPoints != 7.5 {
		t.Fatalf("unexpected attacker hp: %v", vision.CombatInfo.Attacker.HitPoints)
	}
	if vision.CombatInfo.Defender.HitPoints != nil {
		t.Fatal("expected destroyed defender hp to be nil")
	}
	if action.Fire.CopValues.Attacker.CopValue != 90210 {
		t.Fatalf("unexpected cop value: %d", action.Fire.CopValues.Attacker.CopValue)
	}
}

func TestDecodeCaptActionCarriesBuildingInfo(t *testing.T) {
	payload := `{
		"action": "Capt",
		"Move": [],
		"Capt": {
			"buildingInfo": {
				"buildings_capture": 20,
				"buildings_id": 9001,
				"buildings_x": 5,
				"buildings_y": 6,
				"buildings_team": null
			},
			"vision": {
				"global": {"onCapture": "?"},
				"777": {"onCapture": {"x": 5, "y": 6}}
			},
			"income": null
		}
	}`
	action, err := DecodeAction("turns", []byte(payload))
	if err != nil {
		t.Fatalf("decode capt: %v", err)
	}
	if action.Capture.BuildingInfo.Capture != 20 {
		t.Fatalf("expected 20 capture points, got %d", action.Capture.BuildingInfo.Capture)
	}
	masked := action.Capture.Vision[GlobalTarget()]
	if masked.OnCapture.Known {
		t.Fatal("expected masked vision for the global target")
	}
	revealed := action.Capture.Vision[PlayerTarget(777)]
	if !revealed.OnCapture.Known || revealed.OnCapture.Value.X != 5 {
		t.Fatalf("unexpected revealed vision: %+v", revealed.OnCapture)
	}
}

func TestDecodeEndAction(t *testing.T) {
	payload := `{
		"action": "End",
		"updatedInfo": {
			"event": "NextTurn",
			"nextPId": 9,
			"nextFunds": {"global": 12000, "9": ""},
			"nextTimer": 360000,
			"nextWeather": "C",
			"day": 12,
			"nextTurnStart": "2026-08-30 12:00:00"
		}
	}`
	action, err := DecodeAction("turns", []byte(payload))
	if err != nil {
		t.Fatalf("decode end: %v", err)
	}
	if action.End.Day != 12 || action.End.NextPlayerID != 9 {
		t.Fatalf("unexpected end fields: %+v", action.End)
	}
	funds := action.End.NextFunds[GlobalTarget()]
	if !funds.Known || funds.Value != 12000 {
		t.Fatalf("unexpected funds: %+v", funds)
	}
	if hidden := action.End.NextFunds[PlayerTarget(9)]; hidden.Known {
		t.Fatal("expected hidden funds for player 9")
	}
}

func TestDecodeUnknownActionIsPreserved(t *testing.T) {
	payload := `{"action": "Delete", "something": 1}`
	action, err := DecodeAction("turns", []byte(payload))
	if err != nil {
		t.Fatalf("unknown actions must not fail: %v", err)
	}
	if action.Kind != ActionUnknown {
		t.Fatalf("expected unknown kind, got %s", action.Kind)
	}
	if len(action.Raw) == 0 {
		t.Fatal("expected raw payload to be preserved")
	}
}

func TestDecodeActionRejectsInvalidJSON(t *testing.T) {
	_, err := DecodeAction("turns", []byte("{not json"))
	replayErr, ok := err.(*Error)
	if !ok || replayErr.Kind != ErrJSON {
		t.Fatalf("expected JSON error, got %v", err)
	}
}

func TestHiddenUnwrapsQuotedNumbers(t *testing.T) {
	var hidden Hidden[uint32]
	if err := json.Unmarshal([]byte(`"4500"`), &hidden); err != nil {
		t.Fatalf("unmarshal quoted number: %v", err)
	}
	if !hidden.Known || hidden.Value != 4500 {
		t.Fatalf("unexpected hidden value: %+v", hidden)
	}
}

func TestTargetedPlayerRoundTrip(t *testing.T) {
	if text, _ := GlobalTarget().MarshalText(); string(text) != "global" {
		t.Fatalf("unexpected global spelling: %q", text)
	}
	var target TargetedPlayer
	if err := target.UnmarshalText([]byte("3189812")); err != nil {
		t.Fatalf("unmarshal player target: %v", err)
	}
	id, ok := target.PlayerID()
	if !ok || id != 3189812 {
		t.Fatalf("unexpected target: %+v", target)
	}
	if err := target.UnmarshalText([]byte("neither")); err == nil {
		t.Fatal("expected error for invalid target")
	}
}
