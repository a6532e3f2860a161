package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RoleSecrecy(t *testing.T) {
	t.Parallel()
	_, s, ids := newPlayingGame(t, 10)

	viewer := ids[0]
	state := s.Snapshot(viewer)

	require.Len(t, state.Players, 10)
	for _, ps := range state.Players {
		if ps.Id == viewer {
			require.NotNil(t, ps.Role, "viewer sees their own role")
			continue
		}
		assert.Nil(t, ps.Role, "other roles never leave the server")
	}
}

func TestSnapshot_SpySeesOwnDecoy(t *testing.T) {
	t.Parallel()
	_, s, _ := newPlayingGame(t, 10)

	spy := findByRole(t, s, RoleSpy, TeamRed)
	state := s.Snapshot(spy)

	for _, ps := range state.Players {
		if ps.Id != spy {
			continue
		}
		require.NotNil(t, ps.Role)
		require.NotNil(t, ps.Role.Fake)
		assert.Equal(t, TeamBlue, ps.Role.Fake.Team)
	}
}

func TestSnapshot_RoomsMirrorThePartition(t *testing.T) {
	t.Parallel()
	_, s, ids := newPlayingGame(t, 6)

	state := s.Snapshot(ids[0])
	assert.Len(t, state.Rooms[0].Players, 3)
	assert.Len(t, state.Rooms[1].Players, 3)
	assert.Equal(t, CooldownSeconds, state.Timers[0].Cooldown)
	assert.Equal(t, CooldownSeconds, state.Timers[1].Cooldown)
}

func TestSnapshot_ServantKingOnlyForTheServant(t *testing.T) {
	t.Parallel()
	_, s, _ := newPlayingGame(t, 14)

	servant := findByRole(t, s, RoleServant, TeamRed)
	king := findByRole(t, s, RoleKing, TeamRed)

	assert.Equal(t, king, s.Snapshot(servant).ServantKingId)
	assert.Empty(t, s.Snapshot(king).ServantKingId)
}
