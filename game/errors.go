package game

import "errors"

var (
	ErrGameNotFound   = errors.New("game-not-found")
	ErrGameFull       = errors.New("game-full")
	ErrNameTaken      = errors.New("name-taken")
	ErrPlayerNotFound = errors.New("player-not-found")
	ErrNotHost        = errors.New("not-host")
	ErrWrongPhase     = errors.New("wrong-phase")
	ErrCannotStart    = errors.New("cannot-start")
	ErrNotLeader      = errors.New("not-leader")
	ErrCooldownActive = errors.New("cooldown-active")
	ErrWrongRole      = errors.New("wrong-role")
	ErrWrongTarget    = errors.New("wrong-target")
	ErrAbilityUsed    = errors.New("ability-used")
)

// ErrorCode maps a game error onto the code carried by error events.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrGameNotFound):
		return "GAME_NOT_FOUND"
	case errors.Is(err, ErrGameFull):
		return "GAME_FULL"
	case errors.Is(err, ErrNameTaken):
		return "NAME_TAKEN"
	case errors.Is(err, ErrPlayerNotFound):
		return "PLAYER_NOT_FOUND"
	case errors.Is(err, ErrNotHost):
		return "NOT_HOST"
	case errors.Is(err, ErrWrongPhase):
		return "WRONG_PHASE"
	case errors.Is(err, ErrCannotStart):
		return "CANNOT_START"
	case errors.Is(err, ErrNotLeader):
		return "NOT_LEADER"
	case errors.Is(err, ErrCooldownActive):
		return "COOLDOWN_ACTIVE"
	case errors.Is(err, ErrWrongRole):
		return "WRONG_ROLE"
	case errors.Is(err, ErrWrongTarget):
		return "WRONG_TARGET"
	case errors.Is(err, ErrAbilityUsed):
		return "ABILITY_USED"
	default:
		return "UNKNOWN"
	}
}
