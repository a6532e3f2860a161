package game

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry owns the room-code → session and player-id → room-code maps.
// The maps sit behind an RWMutex; each session serializes its own mutation
// internally, so no caller ever observes a half-applied transition.
type Registry struct {
	locker   sync.RWMutex
	sessions map[string]*Session
	byPlayer map[string]string
	codes    UniqueIdGenerator
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		byPlayer: make(map[string]string),
		codes:    NewCodeGenerator(),
	}
}

// CreateSession allocates a fresh room code and builds a lobby session with
// its host player.
func (r *Registry) CreateSession(hostName string, playerCount int) (*Session, *Player) {
	code := r.codes.Generate()
	session, host := newSession(code, hostName, playerCount)

	r.locker.Lock()
	r.sessions[code] = session
	r.byPlayer[host.id] = code
	r.locker.Unlock()

	slog.Info("session created", "room", code, "host", host.name, "size", playerCount)
	return session, host
}

// JoinSession admits a named player into the session behind a room code.
func (r *Registry) JoinSession(roomCode, playerName string) (*Session, *Player, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	session, ok := r.sessions[roomCode]
	if !ok {
		return nil, nil, ErrGameNotFound
	}
	player, err := session.addPlayer(playerName)
	if err != nil {
		return nil, nil, err
	}
	r.byPlayer[player.id] = roomCode
	return session, player, nil
}

// LeaveSession removes a player wherever they are, transferring host status
// if needed and destroying the session once empty.
func (r *Registry) LeaveSession(playerId string) (*Session, *LeaveResult, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	code, ok := r.byPlayer[playerId]
	if !ok {
		return nil, nil, ErrPlayerNotFound
	}
	session := r.sessions[code]

	res, err := session.removePlayer(playerId)
	if err != nil {
		return nil, nil, err
	}
	delete(r.byPlayer, playerId)

	if res.Empty {
		delete(r.sessions, code)
		r.codes.Dispose(code)
		slog.Info("session destroyed", "room", code)
	}
	return session, res, nil
}

// LookupByCode returns the live session behind a room code, if any.
func (r *Registry) LookupByCode(roomCode string) (*Session, bool) {
	r.locker.RLock()
	defer r.locker.RUnlock()
	s, ok := r.sessions[roomCode]
	return s, ok
}

// LookupByPlayer returns the session a player currently belongs to.
func (r *Registry) LookupByPlayer(playerId string) (*Session, bool) {
	r.locker.RLock()
	defer r.locker.RUnlock()
	code, ok := r.byPlayer[playerId]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[code]
	return s, ok
}

// RunTimerLoop is the cooldown driver: once per second every playing
// session's room cooldowns count down toward zero, and each ticking
// session's players hear the new values. The only autonomous mutation in
// the engine.
func (r *Registry) RunTimerLoop(ctx context.Context, tickerCreator PeriodicTickerChannelCreator) {
	ticker := tickerCreator.Create(time.Second)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker:
			r.tick()
		}
	}
}

func (r *Registry) tick() {
	r.locker.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.locker.RUnlock()

	for _, s := range sessions {
		t0, t1, ticking := s.tickCooldowns()
		if !ticking {
			continue
		}
		s.broadcast(timerUpdateEvent(t0, t1))
	}
}
