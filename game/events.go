package game

import (
	"encoding/json"
	"log/slog"
)

// Event is the outbound wire envelope.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func (e Event) marshal() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("failed to marshal event", "type", e.Type, "err", err)
		return nil
	}
	return data
}

func gameCreatedEvent(roomCode, playerId string) Event {
	return Event{Type: "game_created", Data: map[string]any{"roomCode": roomCode, "playerId": playerId}}
}

func gameJoinedEvent(state GameState, playerId string) Event {
	return Event{Type: "game_joined", Data: map[string]any{"gameState": state, "playerId": playerId}}
}

func playerJoinedEvent(player PlayerState) Event {
	return Event{Type: "player_joined", Data: map[string]any{"player": player}}
}

func playerLeftEvent(playerId string) Event {
	return Event{Type: "player_left", Data: map[string]any{"playerId": playerId}}
}

func playerReadyChangedEvent(playerId string, ready bool) Event {
	return Event{Type: "player_ready_changed", Data: map[string]any{"playerId": playerId, "ready": ready}}
}

func gameStartedEvent(state GameState) Event {
	return Event{Type: "game_started", Data: map[string]any{"gameState": state}}
}

func phaseChangedEvent(phase Phase) Event {
	return Event{Type: "phase_changed", Data: map[string]any{"phase": phase}}
}

func roleAssignedEvent(role Role, servantKingId string) Event {
	data := map[string]any{"role": role}
	if servantKingId != "" {
		data["servantKingId"] = servantKingId
	}
	return Event{Type: "role_assigned", Data: data}
}

func roomAssignmentEvent(room int) Event {
	return Event{Type: "room_assignment", Data: map[string]any{"room": room}}
}

func roomConfirmedEvent(playerId string, room int) Event {
	return Event{Type: "room_confirmed", Data: map[string]any{"playerId": playerId, "room": room}}
}

func pointingChangedEvent(playerId, targetId string) Event {
	return Event{Type: "pointing_changed", Data: map[string]any{"playerId": playerId, "targetId": targetId}}
}

func leaderElectedEvent(res ElectionResult) Event {
	return Event{Type: "leader_elected", Data: map[string]any{"roomIndex": res.RoomIndex, "leaderId": res.LeaderId}}
}

func playerSentEvent(move MoveResult) Event {
	return Event{Type: "player_sent", Data: move}
}

func swordsmithConfirmedEvent(assassinId string) Event {
	return Event{Type: "swordsmith_confirmed", Data: map[string]any{"assassinId": assassinId}}
}

func timerUpdateEvent(room0, room1 int) Event {
	return Event{Type: "timer_update", Data: map[string]any{"room0Timer": room0, "room1Timer": room1}}
}

func stateUpdateEvent(state GameState) Event {
	return Event{Type: "state_update", Data: map[string]any{"gameState": state}}
}

func gameEndedEvent(victory Victory) Event {
	return Event{Type: "game_ended", Data: victory}
}

func errorEvent(message, code string) Event {
	return Event{Type: "error", Data: map[string]any{"message": message, "code": code}}
}

// broadcast fans one event out to every connected player of the session.
func (s *Session) broadcast(e Event) {
	data := e.marshal()
	if data == nil {
		return
	}

	s.locker.Lock()
	defer s.locker.Unlock()
	for _, p := range s.players {
		if p.conn != nil {
			p.conn.Enqueue(data)
		}
	}
}

// broadcastSnapshot sends each connected player an event built from their
// own view of the session.
func (s *Session) broadcastSnapshot(makeEvent func(GameState) Event) {
	s.locker.Lock()
	defer s.locker.Unlock()
	for id, p := range s.players {
		if p.conn == nil {
			continue
		}
		data := makeEvent(s.snapshotLocked(id)).marshal()
		if data != nil {
			p.conn.Enqueue(data)
		}
	}
}

// broadcastState sends each connected player their own view of the session.
func (s *Session) broadcastState() {
	s.broadcastSnapshot(stateUpdateEvent)
}

// sendTo delivers a private event to a single player.
func (s *Session) sendTo(playerId string, e Event) {
	data := e.marshal()
	if data == nil {
		return
	}

	s.locker.Lock()
	defer s.locker.Unlock()
	if p, ok := s.players[playerId]; ok && p.conn != nil {
		p.conn.Enqueue(data)
	}
}
