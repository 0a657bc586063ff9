package tracker

import (
	"bfmc-tracker/internal/config"
	"bfmc-tracker/internal/domain"
)

// Change classifies what happened to one server between two consecutive
// polls.
type Change int

const (
	ChangeUnchanged Change = iota
	// ChangeFinishedGame: the elapsed counter froze, which means the
	// server is idling on the results screen.
	ChangeFinishedGame
	// ChangeNewGame: a post-game server's elapsed counter reset.
	ChangeNewGame
	// ChangeGoneOffline: the server vanished from the current poll.
	ChangeGoneOffline
)

func (c Change) String() string {
	switch c {
	case ChangeFinishedGame:
		return "finished-game"
	case ChangeNewGame:
		return "new-game-started"
	case ChangeGoneOffline:
		return "gone-offline"
	default:
		return "unchanged"
	}
}

// Classify diffs one server from the previous poll against the current
// snapshot set. Pure: the caller applies any post-game set mutation.
//
// A finished game is signalled by an unchanged elapsed time, but only the
// first time (inPostGame guards re-detection), only with enough
// participants, and only after the configured minimum match length.
func Classify(prev domain.ServerSnapshot, current map[int]domain.ServerSnapshot, inPostGame bool, settings config.TrackerSettings) (Change, error) {
	cur, ok := current[prev.ID]
	if !ok {
		return ChangeGoneOffline, nil
	}

	prevElapsed, err := prev.ElapsedSeconds()
	if err != nil {
		return ChangeUnchanged, err
	}
	curElapsed, err := cur.ElapsedSeconds()
	if err != nil {
		return ChangeUnchanged, err
	}

	switch {
	case prevElapsed == curElapsed &&
		!inPostGame &&
		len(prev.Players) >= settings.MatchMinPlayers &&
		prevElapsed >= settings.MatchMinTimeSec:
		return ChangeFinishedGame, nil
	case inPostGame && curElapsed < prevElapsed:
		return ChangeNewGame, nil
	default:
		return ChangeUnchanged, nil
	}
}
