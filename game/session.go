package game

import (
	"strings"
	"sync"
	"time"
)

type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhaseSetup   Phase = "setup"
	PhasePlaying Phase = "playing"
	PhaseEnded   Phase = "ended"
)

const (
	// CooldownSeconds is the value a room cooldown is (re)armed with.
	CooldownSeconds = 120
	roomCount       = 2
	noRoom          = -1
)

type Player struct {
	id        string
	name      string
	connected bool
	conn      *playerConn

	role        *Role
	currentRoom int
	isHost      bool
	isLeader    bool

	isReady         bool
	isRoleReady     bool
	isRoomConfirmed bool
	hasUsedAbility  bool
	canAssassinate  bool
	pointingAt      string
}

func (p *Player) Id() string   { return p.id }
func (p *Player) Name() string { return p.name }

type Room struct {
	players         map[string]struct{}
	leaderId        string
	leaderElectedAt time.Time
}

type roomTimer struct {
	cooldown  int
	startedAt time.Time
}

// Session owns one game's full state. Every operation takes the session
// lock, so state is only ever observed between whole transitions.
type Session struct {
	locker sync.Mutex

	code        string
	phase       Phase
	playerCount int
	players     map[string]*Player
	rooms       [roomCount]*Room
	timers      [roomCount]*roomTimer
	servantInfo map[string]string
	victory     *Victory
}

// Victory is only ever injected by the host's explicit declaration; the
// engine never computes it (the assassination call is made out loud at the
// table, not through the protocol).
type Victory struct {
	Winner Team `json:"winner"`
}

func newSession(code, hostName string, playerCount int) (*Session, *Player) {
	s := &Session{
		code:        code,
		phase:       PhaseLobby,
		playerCount: playerCount,
		players:     make(map[string]*Player),
	}
	for i := range s.rooms {
		s.rooms[i] = &Room{players: make(map[string]struct{})}
		s.timers[i] = &roomTimer{}
	}

	host := &Player{
		id:          NewPlayerId(),
		name:        hostName,
		isHost:      true,
		currentRoom: noRoom,
	}
	s.players[host.id] = host
	return s, host
}

func (s *Session) Code() string { return s.code }

func (s *Session) Phase() Phase {
	s.locker.Lock()
	defer s.locker.Unlock()
	return s.phase
}

func (s *Session) NumPlayers() int {
	s.locker.Lock()
	defer s.locker.Unlock()
	return len(s.players)
}

func (s *Session) MaxPlayers() int { return s.playerCount }

// addPlayer admits a new lobby player. Names are compared case-insensitively
// against the session's existing players only.
func (s *Session) addPlayer(name string) (*Player, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if len(s.players) >= s.playerCount {
		return nil, ErrGameFull
	}
	for _, p := range s.players {
		if strings.EqualFold(p.name, name) {
			return nil, ErrNameTaken
		}
	}

	p := &Player{
		id:          NewPlayerId(),
		name:        name,
		currentRoom: noRoom,
	}
	s.players[p.id] = p
	return p, nil
}

// LeaveResult describes the fallout of a player removal.
type LeaveResult struct {
	PlayerId  string
	NewHostId string
	Empty     bool
}

// removePlayer drops a player from the session, the room partition, and
// room leadership, transferring host status to an arbitrary survivor.
func (s *Session) removePlayer(playerId string) (*LeaveResult, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	p, ok := s.players[playerId]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	delete(s.players, playerId)

	if p.currentRoom != noRoom {
		room := s.rooms[p.currentRoom]
		delete(room.players, playerId)
		if room.leaderId == playerId {
			room.leaderId = ""
		}
	}

	for _, other := range s.players {
		if other.pointingAt == playerId {
			other.pointingAt = ""
		}
	}

	res := &LeaveResult{PlayerId: playerId, Empty: len(s.players) == 0}
	if p.isHost && !res.Empty {
		for _, successor := range s.players {
			successor.isHost = true
			res.NewHostId = successor.id
			break
		}
	}
	return res, nil
}

// detach clears the player's connection, but only when the dropping
// connection is still the bound one. A socket that dies after a reconnect
// has rebound the player must not knock the live connection offline.
// Game facts are untouched, so a player who drops mid-game keeps their
// role and room.
func (s *Session) detach(playerId string, conn *playerConn) bool {
	s.locker.Lock()
	defer s.locker.Unlock()

	p, ok := s.players[playerId]
	if !ok || p.conn != conn {
		return false
	}
	p.connected = false
	p.conn = nil
	return true
}

// attach binds a transport connection to a player identity, releasing any
// previous connection still bound to it.
func (s *Session) attach(playerId string, conn *playerConn) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	p, ok := s.players[playerId]
	if !ok {
		return ErrPlayerNotFound
	}
	if p.conn != nil && p.conn != conn {
		p.conn.release("")
	}
	p.connected = true
	p.conn = conn
	return nil
}

// SetReady sets the lobby readiness flag. Outside the lobby it is a
// guard failure, never a partial update.
func (s *Session) SetReady(playerId string, ready bool) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.phase != PhaseLobby {
		return ErrWrongPhase
	}
	p, ok := s.players[playerId]
	if !ok {
		return ErrPlayerNotFound
	}
	p.isReady = ready
	return nil
}

// ToggleReady flips the lobby readiness flag and returns the new value.
func (s *Session) ToggleReady(playerId string) (bool, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.phase != PhaseLobby {
		return false, ErrWrongPhase
	}
	p, ok := s.players[playerId]
	if !ok {
		return false, ErrPlayerNotFound
	}
	p.isReady = !p.isReady
	return p.isReady, nil
}

// StartGame moves lobby → setup: deals roles, partitions the rooms, and
// builds the servant map at the full table size. Only the host may start,
// only with a full and entirely ready lobby.
func (s *Session) StartGame(callerId string) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.phase != PhaseLobby {
		return ErrWrongPhase
	}
	caller, ok := s.players[callerId]
	if !ok {
		return ErrPlayerNotFound
	}
	if !caller.isHost {
		return ErrNotHost
	}
	if len(s.players) != s.playerCount {
		return ErrCannotStart
	}
	for _, p := range s.players {
		if !p.isReady {
			return ErrCannotStart
		}
	}

	ids := make([]string, 0, len(s.players))
	for id := range s.players {
		ids = append(ids, id)
	}

	roles := RolesFor(s.playerCount)
	for i, id := range ids {
		role := roles[i]
		s.players[id].role = &role
	}

	room0, room1 := assignRooms(ids)
	for _, id := range room0 {
		s.rooms[0].players[id] = struct{}{}
		s.players[id].currentRoom = 0
	}
	for _, id := range room1 {
		s.rooms[1].players[id] = struct{}{}
		s.players[id].currentRoom = 1
	}

	for _, p := range s.players {
		p.isRoleReady = false
		p.isRoomConfirmed = false
	}

	if s.playerCount >= MaxPlayers {
		s.servantInfo = BuildServantMap(s.players)
	}

	s.phase = PhaseSetup
	return nil
}

// ToggleRoleReady flips the setup role-acknowledgement flag. Returns the new
// value and whether the flip completed the setup → playing transition.
func (s *Session) ToggleRoleReady(playerId string) (ready, started bool, err error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.phase != PhaseSetup {
		return false, false, ErrWrongPhase
	}
	p, ok := s.players[playerId]
	if !ok {
		return false, false, ErrPlayerNotFound
	}
	p.isRoleReady = !p.isRoleReady
	return p.isRoleReady, s.maybeBeginPlaying(), nil
}

// ConfirmRoom records that a player has physically reached their room. The
// room argument is informational only; the authoritative room is the one
// assigned at start. Returns whether the call completed setup → playing.
func (s *Session) ConfirmRoom(playerId string, _ int) (started bool, err error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.phase != PhaseSetup {
		return false, ErrWrongPhase
	}
	p, ok := s.players[playerId]
	if !ok {
		return false, ErrPlayerNotFound
	}
	p.isRoomConfirmed = true
	return s.maybeBeginPlaying(), nil
}

// maybeBeginPlaying fires setup → playing once every player is both room
// confirmed and role ready. Both flags must hold for everyone at once.
// Caller holds the lock.
func (s *Session) maybeBeginPlaying() bool {
	for _, p := range s.players {
		if !p.isRoomConfirmed || !p.isRoleReady {
			return false
		}
	}

	now := time.Now()
	for i := range s.timers {
		s.timers[i].cooldown = CooldownSeconds
		s.timers[i].startedAt = now
	}
	s.phase = PhasePlaying
	return true
}

// Restart is the host's explicit full reset: back to the lobby with player
// identities and connections intact, everything else cleared.
func (s *Session) Restart(callerId string) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	caller, ok := s.players[callerId]
	if !ok {
		return ErrPlayerNotFound
	}
	if !caller.isHost {
		return ErrNotHost
	}

	for i := range s.rooms {
		s.rooms[i] = &Room{players: make(map[string]struct{})}
		s.timers[i] = &roomTimer{}
	}
	for _, p := range s.players {
		p.role = nil
		p.currentRoom = noRoom
		p.isLeader = false
		p.isReady = false
		p.isRoleReady = false
		p.isRoomConfirmed = false
		p.hasUsedAbility = false
		p.canAssassinate = false
		p.pointingAt = ""
	}
	s.servantInfo = nil
	s.victory = nil
	s.phase = PhaseLobby
	return nil
}

// DeclareVictory is the out-of-band trigger for the verbal assassination
// call: the host records the winner, ending the game.
func (s *Session) DeclareVictory(callerId string, winner Team) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.phase != PhasePlaying {
		return ErrWrongPhase
	}
	caller, ok := s.players[callerId]
	if !ok {
		return ErrPlayerNotFound
	}
	if !caller.isHost {
		return ErrNotHost
	}

	s.victory = &Victory{Winner: winner}
	s.phase = PhaseEnded
	return nil
}

// tickCooldowns applies one driver tick: both cooldowns down by one, floored
// at zero. Reports whether the session was in a ticking phase.
func (s *Session) tickCooldowns() (t0, t1 int, ticking bool) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.phase != PhasePlaying {
		return 0, 0, false
	}
	for i := range s.timers {
		if s.timers[i].cooldown > 0 {
			s.timers[i].cooldown--
		}
	}
	return s.timers[0].cooldown, s.timers[1].cooldown, true
}

// Cooldowns returns both room cooldown values.
func (s *Session) Cooldowns() (int, int) {
	s.locker.Lock()
	defer s.locker.Unlock()
	return s.timers[0].cooldown, s.timers[1].cooldown
}
