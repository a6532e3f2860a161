package game

import "sort"

// PlayerState is the client-visible view of one player. Role is filled in
// only on the viewer's own entry: everyone else's identity stays secret and
// a spy's decoy travels inside its own Role value.
type PlayerState struct {
	Id              string `json:"id"`
	Name            string `json:"name"`
	Connected       bool   `json:"connected"`
	IsHost          bool   `json:"isHost"`
	IsLeader        bool   `json:"isLeader"`
	IsReady         bool   `json:"isReady"`
	IsRoleReady     bool   `json:"isRoleReady"`
	IsRoomConfirmed bool   `json:"isRoomConfirmed"`
	CurrentRoom     int    `json:"currentRoom"`
	PointingAt      string `json:"pointingAt,omitempty"`
	Role            *Role  `json:"role,omitempty"`
	CanAssassinate  bool   `json:"canAssassinate,omitempty"`
	HasUsedAbility  bool   `json:"hasUsedAbility,omitempty"`
}

type RoomState struct {
	Players  []string `json:"players"`
	LeaderId string   `json:"leaderId,omitempty"`
}

type TimerState struct {
	Cooldown int `json:"cooldown"`
}

type GameState struct {
	RoomCode      string                `json:"roomCode"`
	Phase         Phase                 `json:"phase"`
	MaxPlayers    int                   `json:"maxPlayers"`
	Players       []PlayerState         `json:"players"`
	Rooms         [roomCount]RoomState  `json:"rooms"`
	Timers        [roomCount]TimerState `json:"timers"`
	ServantKingId string                `json:"servantKingId,omitempty"`
	Victory       *Victory              `json:"victory,omitempty"`
}

// Snapshot builds the full client-visible state as seen by one player.
func (s *Session) Snapshot(viewerId string) GameState {
	s.locker.Lock()
	defer s.locker.Unlock()
	return s.snapshotLocked(viewerId)
}

func (s *Session) snapshotLocked(viewerId string) GameState {
	state := GameState{
		RoomCode:   s.code,
		Phase:      s.phase,
		MaxPlayers: s.playerCount,
		Victory:    s.victory,
	}

	for _, p := range s.players {
		ps := PlayerState{
			Id:              p.id,
			Name:            p.name,
			Connected:       p.connected,
			IsHost:          p.isHost,
			IsLeader:        p.isLeader,
			IsReady:         p.isReady,
			IsRoleReady:     p.isRoleReady,
			IsRoomConfirmed: p.isRoomConfirmed,
			CurrentRoom:     p.currentRoom,
			PointingAt:      p.pointingAt,
		}
		if p.id == viewerId {
			ps.Role = p.role
			ps.CanAssassinate = p.canAssassinate
			ps.HasUsedAbility = p.hasUsedAbility
		}
		state.Players = append(state.Players, ps)
	}
	sort.Slice(state.Players, func(i, j int) bool {
		return state.Players[i].Name < state.Players[j].Name
	})

	for i, room := range s.rooms {
		ids := make([]string, 0, len(room.players))
		for id := range room.players {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		state.Rooms[i] = RoomState{Players: ids, LeaderId: room.leaderId}
		state.Timers[i] = TimerState{Cooldown: s.timers[i].cooldown}
	}

	state.ServantKingId = s.servantInfo[viewerId]
	return state
}

// assignment is what each player privately learns when the game starts.
type assignment struct {
	playerId      string
	role          Role
	room          int
	servantKingId string
}

// assignments returns the per-player setup facts in one locked pass.
func (s *Session) assignments() []assignment {
	s.locker.Lock()
	defer s.locker.Unlock()

	out := make([]assignment, 0, len(s.players))
	for id, p := range s.players {
		if p.role == nil {
			continue
		}
		out = append(out, assignment{
			playerId:      id,
			role:          *p.role,
			room:          p.currentRoom,
			servantKingId: s.servantInfo[id],
		})
	}
	return out
}

// PublicPlayerState returns the role-free view of one player.
func (s *Session) PublicPlayerState(playerId string) (PlayerState, bool) {
	s.locker.Lock()
	defer s.locker.Unlock()

	p, ok := s.players[playerId]
	if !ok {
		return PlayerState{}, false
	}
	return PlayerState{
		Id:              p.id,
		Name:            p.name,
		Connected:       p.connected,
		IsHost:          p.isHost,
		IsLeader:        p.isLeader,
		IsReady:         p.isReady,
		IsRoleReady:     p.isRoleReady,
		IsRoomConfirmed: p.isRoomConfirmed,
		CurrentRoom:     p.currentRoom,
		PointingAt:      p.pointingAt,
	}, true
}

// PlayerRoom returns the authoritative room index for a player.
func (s *Session) PlayerRoom(playerId string) (int, bool) {
	s.locker.Lock()
	defer s.locker.Unlock()
	p, ok := s.players[playerId]
	if !ok {
		return noRoom, false
	}
	return p.currentRoom, true
}
