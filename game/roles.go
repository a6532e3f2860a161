package game

import "math/rand"

type RoleKind string

const (
	RoleKing       RoleKind = "king"
	RoleAssassin   RoleKind = "assassin"
	RoleGatekeeper RoleKind = "gatekeeper"
	RoleSwordsmith RoleKind = "swordsmith"
	RoleSpy        RoleKind = "spy"
	RoleGuard      RoleKind = "guard"
	RoleServant    RoleKind = "servant"
)

type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Opposite returns the other team.
func (t Team) Opposite() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

// FakeRole is the decoy identity a spy presents to everyone else. It is
// never truthful: the kind is shared by both teams' spies and the team is
// always the opposite of the spy's real one.
type FakeRole struct {
	Kind RoleKind `json:"type"`
	Team Team     `json:"team"`
}

type Role struct {
	Kind RoleKind  `json:"type"`
	Team Team      `json:"team"`
	Fake *FakeRole `json:"fakeRole,omitempty"`
}

const (
	MinPlayers = 6
	MaxPlayers = 14
)

// rolePairThresholds lists the kinds added (one per team) as the player
// count crosses each threshold. The base set of three pairs is always dealt.
var rolePairThresholds = []struct {
	count int
	kind  RoleKind
}{
	{8, RoleSwordsmith},
	{10, RoleSpy},
	{12, RoleGuard},
	{14, RoleServant},
}

// RolesFor returns the shuffled role multiset for an even playerCount in
// [MinPlayers, MaxPlayers]. Both spies (present from 10 players up) carry the
// same uniformly chosen fake kind, which is never the king nor the spy kind.
func RolesFor(playerCount int) []Role {
	roles := make([]Role, 0, playerCount)
	for _, team := range []Team{TeamRed, TeamBlue} {
		roles = append(roles,
			Role{Kind: RoleKing, Team: team},
			Role{Kind: RoleAssassin, Team: team},
			Role{Kind: RoleGatekeeper, Team: team},
		)
	}

	kinds := []RoleKind{RoleKing, RoleAssassin, RoleGatekeeper}
	for _, pair := range rolePairThresholds {
		if playerCount < pair.count {
			break
		}
		kinds = append(kinds, pair.kind)
		for _, team := range []Team{TeamRed, TeamBlue} {
			roles = append(roles, Role{Kind: pair.kind, Team: team})
		}
	}

	if playerCount >= 10 {
		fakeKind := pickSpyFakeKind(kinds)
		for i := range roles {
			if roles[i].Kind == RoleSpy {
				roles[i].Fake = &FakeRole{Kind: fakeKind, Team: roles[i].Team.Opposite()}
			}
		}
	}

	rand.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})
	return roles
}

// pickSpyFakeKind draws the shared decoy kind from the kinds in play,
// excluding the king and the spy itself.
func pickSpyFakeKind(inPlay []RoleKind) RoleKind {
	candidates := make([]RoleKind, 0, len(inPlay))
	for _, k := range inPlay {
		if k == RoleKing || k == RoleSpy {
			continue
		}
		candidates = append(candidates, k)
	}
	return candidates[rand.Intn(len(candidates))]
}

// BuildServantMap pairs each servant with the king sharing its team.
// Only meaningful at the full 14-player count.
func BuildServantMap(players map[string]*Player) map[string]string {
	kingsByTeam := map[Team]string{}
	for id, p := range players {
		if p.role != nil && p.role.Kind == RoleKing {
			kingsByTeam[p.role.Team] = id
		}
	}

	servants := map[string]string{}
	for id, p := range players {
		if p.role != nil && p.role.Kind == RoleServant {
			servants[id] = kingsByTeam[p.role.Team]
		}
	}
	return servants
}
