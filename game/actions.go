package game

import "time"

// MoveResult reports a completed room transfer.
type MoveResult struct {
	PlayerId string `json:"playerId"`
	FromRoom int    `json:"fromRoom"`
	ToRoom   int    `json:"toRoom"`
}

// UpdatePointing records who the caller is pointing at ("" clears it), then
// re-runs leader election for the caller's room.
func (s *Session) UpdatePointing(playerId, targetId string) (*ElectionResult, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.phase != PhasePlaying {
		return nil, ErrWrongPhase
	}
	p, ok := s.players[playerId]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if targetId != "" {
		if _, ok := s.players[targetId]; !ok {
			return nil, ErrWrongTarget
		}
	}

	p.pointingAt = targetId
	return s.electLeader(p.currentRoom), nil
}

// DeclareLeader installs the caller as leader of their own room, demoting
// any prior holder. No majority needed: any player may self-declare.
func (s *Session) DeclareLeader(playerId string) (*ElectionResult, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.phase != PhasePlaying {
		return nil, ErrWrongPhase
	}
	p, ok := s.players[playerId]
	if !ok {
		return nil, ErrPlayerNotFound
	}

	s.installLeader(p.currentRoom, playerId)
	return &ElectionResult{RoomIndex: p.currentRoom, LeaderId: playerId}, nil
}

// SendPlayer is the leader's cooldown-gated transfer: the target moves to
// the opposite room and the leader's room re-arms its cooldown. A request
// that arrives one tick early simply fails; there is no queueing.
func (s *Session) SendPlayer(leaderId, targetId string) (*MoveResult, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.phase != PhasePlaying {
		return nil, ErrWrongPhase
	}
	leader, ok := s.players[leaderId]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if !leader.isLeader {
		return nil, ErrNotLeader
	}
	target, ok := s.players[targetId]
	if !ok || target.currentRoom != leader.currentRoom {
		return nil, ErrWrongTarget
	}
	if s.timers[leader.currentRoom].cooldown != 0 {
		return nil, ErrCooldownActive
	}

	from := leader.currentRoom
	res := s.movePlayer(target)
	s.timers[from].cooldown = CooldownSeconds
	s.timers[from].startedAt = time.Now()
	return res, nil
}

// GatekeeperSend is the gatekeeper's one-shot transfer. Same mechanics as a
// leader send, but no cooldown interaction in either direction.
func (s *Session) GatekeeperSend(gatekeeperId, targetId string) (*MoveResult, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.phase != PhasePlaying {
		return nil, ErrWrongPhase
	}
	gk, ok := s.players[gatekeeperId]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if gk.role == nil || gk.role.Kind != RoleGatekeeper {
		return nil, ErrWrongRole
	}
	if gk.hasUsedAbility {
		return nil, ErrAbilityUsed
	}
	target, ok := s.players[targetId]
	if !ok || target.currentRoom != gk.currentRoom {
		return nil, ErrWrongTarget
	}

	res := s.movePlayer(target)
	gk.hasUsedAbility = true
	return res, nil
}

// SwordsmithConfirm unlocks the assassination for the swordsmith's own
// team's assassin. Repeat calls are harmless.
func (s *Session) SwordsmithConfirm(swordsmithId, assassinId string) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.phase != PhasePlaying {
		return ErrWrongPhase
	}
	ss, ok := s.players[swordsmithId]
	if !ok {
		return ErrPlayerNotFound
	}
	if ss.role == nil || ss.role.Kind != RoleSwordsmith {
		return ErrWrongRole
	}
	target, ok := s.players[assassinId]
	if !ok || target.role == nil || target.role.Kind != RoleAssassin || target.role.Team != ss.role.Team {
		return ErrWrongTarget
	}

	target.canAssassinate = true
	return nil
}

// movePlayer relocates a player to the opposite room, vacating any room
// leadership they held. Caller holds the lock.
func (s *Session) movePlayer(target *Player) *MoveResult {
	from := target.currentRoom
	to := 1 - from

	delete(s.rooms[from].players, target.id)
	s.rooms[to].players[target.id] = struct{}{}
	target.currentRoom = to

	if s.rooms[from].leaderId == target.id {
		s.rooms[from].leaderId = ""
		target.isLeader = false
	}

	return &MoveResult{PlayerId: target.id, FromRoom: from, ToRoom: to}
}
