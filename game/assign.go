package game

import "math/rand"

// assignRooms partitions player ids into the two physical sub-rooms by
// shuffling a copy and splitting at the midpoint. Purely structural: roles
// play no part in the split.
func assignRooms(playerIDs []string) (room0, room1 []string) {
	shuffled := make([]string, len(playerIDs))
	copy(shuffled, playerIDs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	mid := len(shuffled) / 2
	return shuffled[:mid], shuffled[mid:]
}
