package session

import "github.com/susu3304/chipbot/internal/ledger"

type GameType string

const (
	GameTypeUnset      GameType = ""
	GameTypeCash       GameType = "Cash"
	GameTypeTournament GameType = "Tournament"
)

func (g GameType) Label() string {
	if g == GameTypeUnset {
		return "not set"
	}
	return string(g)
}

// ParseGameType maps a button value such as "cash" to a GameType.
func ParseGameType(v string) (GameType, bool) {
	switch v {
	case "cash":
		return GameTypeCash, true
	case "tournament":
		return GameTypeTournament, true
	}
	return GameTypeUnset, false
}

type Phase string

const (
	PhaseAwaitingType Phase = "awaiting_type"
	PhaseOpen         Phase = "open"
	PhaseSettling     Phase = "settling"
	PhaseSettled      Phase = "settled"
)

// GameSession is the identity and lifecycle of the single running game.
type GameSession struct {
	GameType GameType
	Phase    Phase
}

// State is a point-in-time view of the game for rendering.
type State struct {
	GameType GameType            `json:"game_type"`
	Phase    Phase               `json:"phase"`
	Players  []ledger.PlayerView `json:"players"`
}
