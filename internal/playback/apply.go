package playback

import (
	"awbrn/engine/internal/faction"
	"awbrn/engine/internal/gamemap"
	"awbrn/engine/internal/logging"
	"awbrn/engine/internal/replay"
	"awbrn/engine/internal/terrain"
)

func (s *State) apply(turn replay.Turn, action replay.Action) {
	//1.- Movement resolves first so handlers observe the post-move position.
	if action.Move != nil {
		s.applyMove(action.Move)
	}

	switch action.Kind {
	case replay.ActionMove:
		// Movement already applied above.
	case replay.ActionBuild:
		s.applyBuild(action.Build)
	case replay.ActionCapt:
		s.applyCapture(action.Capture)
	case replay.ActionLoad:
		s.applyLoad(action.Load)
	case replay.ActionUnload:
		s.applyUnload(action.Unload)
	case replay.ActionFire:
		s.applyFire(action.Fire)
	case replay.ActionJoin:
		s.applyJoin(action.Move, action.Join)
	case replay.ActionRepair:
		s.applyRepair(action.Repair)
	case replay.ActionEnd:
		s.applyUpdatedInfo(action.End)
	case replay.ActionResign:
		s.applyResign(action.Resign, action.NextTurn, action.GameOver)
	case replay.ActionAttackSeam:
		s.applyAttackSeam(action.AttackSeam)
	case replay.ActionPower, replay.ActionSupply:
		// No tracked state changes beyond the movement handled above.
	default:
		s.log.Warn("skipping unrecognised action",
			logging.Uint32("player", turn.Player),
			logging.Uint32("day", turn.Day))
	}
}

// visibleUnit picks the clearest view of a unit from a per-player map,
// preferring the global entry over fogged per-player ones.
func visibleUnit(units replay.UnitMap) (replay.UnitProperty, bool) {
	if view, ok := units[replay.GlobalTarget()]; ok && view.Known {
		return view.Value, true
	}
	for _, view := range units {
		if view.Known {
			return view.Value, true
		}
	}
	return replay.UnitProperty{}, false
}

func visibleID(ids map[replay.TargetedPlayer]replay.Hidden[uint32]) (uint32, bool) {
	if view, ok := ids[replay.GlobalTarget()]; ok && view.Known {
		return view.Value, true
	}
	for _, view := range ids {
		if view.Known {
			return view.Value, true
		}
	}
	return 0, false
}

func (s *State) applyMove(move *replay.MoveAction) {
	prop, ok := visibleUnit(move.Unit)
	if !ok {
		s.log.Warn("move action carries no visible unit")
		return
	}
	pos, ok := unitPosition(prop)
	if !ok {
		s.log.Warn("move action has no destination", logging.Uint32("unit", prop.ID))
		return
	}

	unit, tracked := s.units[prop.ID]
	if !tracked {
		//1.- Fog can reveal a unit mid-move; adopt it instead of dropping the action.
		unit = s.spawnUnit(prop)
		if unit == nil {
			return
		}
	}
	unit.Position = pos
	unit.Hidden = false
	unit.HitPoints = prop.HitPoints

	if move.Discovered.Value != nil {
		s.applyDiscoveries(*move.Discovered.Value)
	}
}

func (s *State) applyBuild(build *replay.BuildAction) {
	prop, ok := visibleUnit(build.NewUnit)
	if !ok {
		s.log.Warn("build action carries no visible unit")
		return
	}
	s.spawnUnit(prop)
	s.applyDiscoveries(build.Discovered)
}

func (s *State) applyCapture(capture *replay.CaptureAction) {
	pos := gamemap.NewPosition(int(capture.BuildingInfo.X), int(capture.BuildingInfo.Y))
	unit, ok := s.unitAt(pos)
	if !ok {
		s.log.Warn("no unit at captured building",
			logging.Int("x", pos.X), logging.Int("y", pos.Y))
		return
	}

	if capture.BuildingInfo.Capture < 20 {
		//1.- Partial captures only mark progress; ownership is unchanged.
		unit.Capturing = true
		return
	}
	unit.Capturing = false

	current, ok := s.buildings[pos]
	if !ok {
		s.log.Warn("captured building is not tracked",
			logging.Int("x", pos.X), logging.Int("y", pos.Y))
		return
	}
	kind, ok := current.PropertyKind()
	if !ok {
		s.log.Warn("captured tile is not a property",
			logging.String("terrain", current.Name()))
		return
	}

	//2.- Completed captures flip the tile to the capturer's faction.
	var flipped terrain.Terrain
	if kind == terrain.HQ {
		hq, err := terrain.HQFor(unit.Faction)
		if err != nil {
			s.log.Warn("no HQ terrain for capturer", logging.Error(err))
			return
		}
		flipped = hq
	} else {
		next, ok := terrain.PropertyFor(kind, faction.Player(unit.Faction))
		if !ok {
			s.log.Warn("no owned variant for captured property",
				logging.String("terrain", current.Name()))
			return
		}
		flipped = next
	}
	s.buildings[pos] = flipped
}

func (s *State) applyLoad(load *replay.LoadAction) {
	loadedID, ok := visibleID(load.Loaded)
	if !ok {
		s.log.Warn("load action hides the boarding unit")
		return
	}
	transportID, ok := visibleID(load.Transport)
	if !ok {
		s.log.Warn("load action hides the transport")
		return
	}

	loaded, ok := s.units[loadedID]
	if !ok {
		s.log.Warn("boarding unit is not tracked", logging.Uint32("unit", loadedID))
		return
	}
	transport, ok := s.units[transportID]
	if !ok {
		s.log.Warn("transport is not tracked", logging.Uint32("unit", transportID))
		return
	}

	loaded.Hidden = true
	if len(transport.Cargo) >= 2 {
		s.log.Warn("transport cargo is already full", logging.Uint32("unit", transportID))
		return
	}
	transport.Cargo = append(transport.Cargo, loadedID)
}

func (s *State) applyUnload(unload *replay.UnloadAction) {
	prop, ok := visibleUnit(unload.Unit)
	if !ok {
		s.log.Warn("unload action carries no visible unit")
		return
	}
	pos, ok := unitPosition(prop)
	if !ok {
		s.log.Warn("unloaded unit has no destination", logging.Uint32("unit", prop.ID))
		return
	}

	unit, tracked := s.units[prop.ID]
	if !tracked {
		unit = s.spawnUnit(prop)
		if unit == nil {
			return
		}
	}
	unit.Hidden = false
	unit.Position = pos

	transport, ok := s.units[unload.TransportID]
	if !ok {
		s.log.Warn("transport is not tracked", logging.Uint32("unit", unload.TransportID))
		return
	}
	//1.- Drop the disembarked unit from the transport's cargo list.
	cargo := transport.Cargo[:0]
	for _, id := range transport.Cargo {
		if id != prop.ID {
			cargo = append(cargo, id)
		}
	}
	transport.Cargo = cargo

	s.applyDiscoveries(unload.Discovered)
}

func (s *State) applyFire(fire *replay.FireAction) {
	vision, ok := fire.CombatInfoVision[replay.GlobalTarget()]
	if !ok || !vision.HasVision {
		for _, candidate := range fire.CombatInfoVision {
			if candidate.HasVision {
				vision = candidate
				ok = true
				break
			}
		}
	}
	if !ok {
		s.log.Warn("fire action has no combat vision")
		return
	}
	s.applyCombatUnit(vision.CombatInfo.Attacker)
	s.applyCombatUnit(vision.CombatInfo.Defender)
}

// applyCombatUnit updates a combatant's HP; absent HP means it was destroyed.
func (s *State) applyCombatUnit(combat replay.CombatUnit) {
	unit, ok := s.units[combat.ID]
	if !ok {
		s.log.Warn("combatant is not tracked", logging.Uint32("unit", combat.ID))
		return
	}
	if combat.HitPoints == nil {
		delete(s.units, combat.ID)
		return
	}
	unit.HitPoints = *combat.HitPoints
}

func (s *State) applyJoin(move *replay.MoveAction, join *replay.JoinAction) {
	merged, ok := visibleUnit(join.Unit)
	if !ok {
		s.log.Warn("join action carries no visible unit")
		return
	}
	//1.- The moving unit dissolves into the surviving one.
	if move != nil {
		if moving, ok := visibleUnit(move.Unit); ok && moving.ID != merged.ID {
			delete(s.units, moving.ID)
		}
	}
	unit, ok := s.units[merged.ID]
	if !ok {
		s.spawnUnit(merged)
		return
	}
	unit.HitPoints = merged.HitPoints
	if pos, ok := unitPosition(merged); ok {
		unit.Position = pos
	}

	if funds, ok := join.NewFunds[replay.PlayerTarget(join.PlayerID)]; ok {
		if player, tracked := s.players[join.PlayerID]; tracked {
			player.Funds = funds
		}
	}
}

func (s *State) applyRepair(repair *replay.RepairAction) {
	for _, repaired := range repair.Repaired {
		unit, ok := s.units[repaired.UnitID]
		if !ok {
			s.log.Warn("repaired unit is not tracked", logging.Uint32("unit", repaired.UnitID))
			continue
		}
		unit.HitPoints = float64(repaired.HitPoints)
	}
}

func (s *State) applyUpdatedInfo(info *replay.UpdatedInfo) {
	//1.- Only advance the day when the turn handover actually rolled it over.
	if info.Day != 0 && info.Day != s.day {
		s.day = info.Day
	}
	if info.NextWeather != "" {
		s.weather = info.NextWeather
	}
	if player, ok := s.players[info.NextPlayerID]; ok {
		if funds, known := visibleID(info.NextFunds); known {
			player.Funds = funds
		}
	}
}

func (s *State) applyResign(resign *replay.ResignAction, next *replay.NextTurnAction, over *replay.GameOverAction) {
	if player, ok := s.players[resign.PlayerID]; ok {
		player.Eliminated = true
	} else {
		s.log.Warn("resigning player is not tracked", logging.Uint32("player", resign.PlayerID))
	}
	if next != nil {
		s.applyUpdatedInfo(&replay.UpdatedInfo{
			NextPlayerID: next.NextPlayerID,
			NextFunds:    next.NextFunds,
			NextWeather:  next.NextWeather,
			Day:          next.Day,
		})
	}
	if over != nil {
		//1.- Game over marks every loser eliminated in one sweep.
		for _, loser := range over.Losers {
			if player, ok := s.players[loser]; ok {
				player.Eliminated = true
			}
		}
	}
}

func (s *State) applyAttackSeam(seam *replay.AttackSeamAction) {
	if seam.BuildingHP > 0 {
		return
	}
	pos := gamemap.NewPosition(int(seam.SeamX), int(seam.SeamY))
	current, ok := s.buildings[pos]
	if !ok {
		// Seams live on the map grid, not the building table, for most replays.
		return
	}
	//1.- A destroyed seam collapses into the matching rubble orientation.
	switch current.ID() {
	case 113:
		s.buildings[pos] = terrain.Terrain(115)
	case 114:
		s.buildings[pos] = terrain.Terrain(116)
	}
}

// applyDiscoveries adopts units revealed by fog lifting.
func (s *State) applyDiscoveries(discovered map[replay.TargetedPlayer]*replay.Discovery) {
	for _, discovery := range discovered {
		if discovery == nil {
			continue
		}
		for _, prop := range discovery.Units {
			if _, tracked := s.units[prop.ID]; !tracked {
				s.spawnUnit(prop)
			}
		}
	}
}

// spawnUnit adds a unit from an action payload, resolving its faction from
// the player roster and falling back to Orange Star for unknown owners.
func (s *State) spawnUnit(prop replay.UnitProperty) *Unit {
	pos, ok := unitPosition(prop)
	if !ok {
		s.log.Warn("spawned unit has no position", logging.Uint32("unit", prop.ID))
		return nil
	}

	side := faction.OrangeStar
	if player, ok := s.players[prop.PlayerID]; ok {
		side = player.Faction
	}

	unit := &Unit{
		ID:        prop.ID,
		Name:      prop.Name.Unit,
		Faction:   side,
		Position:  pos,
		HitPoints: prop.HitPoints,
	}
	s.units[prop.ID] = unit
	return unit
}

func unitPosition(prop replay.UnitProperty) (gamemap.Position, bool) {
	if prop.X == nil || prop.Y == nil {
		return gamemap.Position{}, false
	}
	return gamemap.NewPosition(int(*prop.X), int(*prop.Y)), true
}

func (s *State) unitAt(pos gamemap.Position) (*Unit, bool) {
	for _, unit := range s.units {
		if !unit.Hidden && unit.Position == pos {
			return unit, true
		}
	}
	return nil, false
}
