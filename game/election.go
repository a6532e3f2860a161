package game

import "time"

// ElectionResult reports a room's new leadership.
type ElectionResult struct {
	RoomIndex int    `json:"roomIndex"`
	LeaderId  string `json:"leaderId"`
}

// electLeader tallies pointing among the room's players, counting only
// targets inside the same room, and installs any strict-majority candidate
// (floor(n/2)+1). Without a majority the sitting leader, if any, keeps the
// role: tallies dropping below the threshold never demote on their own.
// Caller holds the lock.
func (s *Session) electLeader(roomIndex int) *ElectionResult {
	room := s.rooms[roomIndex]
	needed := len(room.players)/2 + 1

	tally := make(map[string]int)
	for id := range room.players {
		target := s.players[id].pointingAt
		if target == "" {
			continue
		}
		if _, inRoom := room.players[target]; !inRoom {
			continue
		}
		tally[target]++
	}

	for candidate, votes := range tally {
		if votes < needed {
			continue
		}
		if candidate == room.leaderId {
			return nil
		}
		s.installLeader(roomIndex, candidate)
		return &ElectionResult{RoomIndex: roomIndex, LeaderId: candidate}
	}
	return nil
}

// installLeader seats a leader, demoting the previous one. Election and the
// room cooldown are independent axes: seating a leader never touches the
// timer. Caller holds the lock.
func (s *Session) installLeader(roomIndex int, playerId string) {
	room := s.rooms[roomIndex]
	if prev, ok := s.players[room.leaderId]; ok {
		prev.isLeader = false
	}
	room.leaderId = playerId
	room.leaderElectedAt = time.Now()
	s.players[playerId].isLeader = true
}
