package game

// GameError is a rule rejection. Operations return it as a value and leave
// the state untouched.
type GameError int

const (
	ErrOutOfBounds GameError = iota + 1
	ErrNotAdjacent
	ErrNoCard
	ErrNotYourCard
	ErrOccupiedByOwnCard
	ErrOwnExitBlocked
	ErrOpponentFirewall
	ErrInvalidSetupPosition
	ErrSetupExhausted
	ErrSetupNotCurrentPlayer
	ErrNotInSetupPhase
	ErrNotInPlayingPhase
	ErrNotOnOpponentExit
	ErrFirewallOnExit
	ErrTerminalCardUsed
	ErrInvalidTarget
	ErrPendingBoostMove
	ErrNoPendingBoostMove
	ErrCannotEnterServerWithBoost
)

// ErrorClass groups rejections by cause.
type ErrorClass int

const (
	PhaseError ErrorClass = iota
	SpatialError
	OwnershipError
	RuleError
	ResourceError
	ExclusivityError
	TargetingError
)

type errorInfo struct {
	code    string
	message string
	class   ErrorClass
}

var errorTable = map[GameError]errorInfo{
	ErrOutOfBounds:                {"OUT_OF_BOUNDS", "position out of bounds", SpatialError},
	ErrNotAdjacent:                {"NOT_ADJACENT", "positions are not adjacent", SpatialError},
	ErrNoCard:                     {"NO_CARD", "no card at position", OwnershipError},
	ErrNotYourCard:                {"NOT_YOUR_CARD", "card is not yours", OwnershipError},
	ErrOccupiedByOwnCard:          {"OCCUPIED_BY_OWN_CARD", "destination holds your own card", OwnershipError},
	ErrOwnExitBlocked:             {"OWN_EXIT_BLOCKED", "cannot enter your own exit", RuleError},
	ErrOpponentFirewall:           {"OPPONENT_FIREWALL", "destination is behind an opponent firewall", RuleError},
	ErrInvalidSetupPosition:       {"INVALID_SETUP_POSITION", "not a free setup cell", TargetingError},
	ErrSetupExhausted:             {"SETUP_EXHAUSTED", "no cards of that kind left to place", ResourceError},
	ErrSetupNotCurrentPlayer:      {"SETUP_NOT_CURRENT_PLAYER", "not your setup turn", PhaseError},
	ErrNotInSetupPhase:            {"NOT_IN_SETUP_PHASE", "game is not in setup", PhaseError},
	ErrNotInPlayingPhase:          {"NOT_IN_PLAYING_PHASE", "game is not being played", PhaseError},
	ErrNotOnOpponentExit:          {"NOT_ON_OPPONENT_EXIT", "card is not on the opponent exit", RuleError},
	ErrFirewallOnExit:             {"FIREWALL_ON_EXIT", "cannot place a firewall on an exit", RuleError},
	ErrTerminalCardUsed:           {"TERMINAL_CARD_USED", "terminal card already used", ResourceError},
	ErrInvalidTarget:              {"INVALID_TARGET", "invalid target", TargetingError},
	ErrPendingBoostMove:           {"PENDING_BOOST_MOVE", "a boost move is pending", ExclusivityError},
	ErrNoPendingBoostMove:         {"NO_PENDING_BOOST_MOVE", "no matching boost move is pending", ExclusivityError},
	ErrCannotEnterServerWithBoost: {"CANNOT_ENTER_SERVER_WITH_BOOST", "cannot enter the server while a boost move is pending", ExclusivityError},
}

func (e GameError) Error() string {
	if info, ok := errorTable[e]; ok {
		return info.message
	}
	return "unknown game error"
}

// Code is the stable wire name of the rejection.
func (e GameError) Code() string {
	if info, ok := errorTable[e]; ok {
		return info.code
	}
	return "UNKNOWN"
}

func (e GameError) Class() ErrorClass {
	return errorTable[e].class
}

// ParseGameError maps a wire code back to its GameError.
func ParseGameError(code string) (GameError, bool) {
	for e, info := range errorTable {
		if info.code == code {
			return e, true
		}
	}
	return 0, false
}
