// internal/game/types.go
//
// Core type definitions for the Unscramble game engine.
// Defines:
//   - Rule constants (round limit, reward per correct answer).
//   - State: Playing or RoundLimitReached.
//   - Snapshot: the read-only view published to presentation layers.
//   - Event: the five inputs the engine accepts.

package game

import "errors"

const (
	// RoundLimit is the number of submit/skip attempts in one game.
	RoundLimit = 10
	// Reward is added to the score for each correct submit.
	Reward = 20
)

// ErrUnknownEvent is returned by Handle for event values it does not know.
var ErrUnknownEvent = errors.New("game: unknown event")

// State is the externally visible phase of a game.
type State int

const (
	// StatePlaying accepts submit and skip.
	StatePlaying State = iota
	// StateRoundLimitReached ignores submit and skip until a restart.
	StateRoundLimitReached
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateRoundLimitReached:
		return "round_limit_reached"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the observable game state.
type Snapshot struct {
	AttemptsUsed int    `json:"attemptsUsed"`
	RoundLimit   int    `json:"roundLimit"`
	Display      string `json:"display"` // scrambled current word
	Score        int    `json:"score"`
	InputText    string `json:"inputText"`
	RoundOver    bool   `json:"isRoundOver"`

	// UsedAnswers lists retired answers, sorted. Kept server-side.
	UsedAnswers []string `json:"-"`
}

// State derives the phase from the attempt counter.
func (s Snapshot) State() State {
	if s.RoundOver {
		return StateRoundLimitReached
	}
	return StatePlaying
}

// Event is one input to Engine.Handle. The concrete types below are the only
// implementations.
type Event interface{ isEvent() }

// TextChanged replaces the in-progress guess.
type TextChanged struct{ Text string }

// Submit checks the in-progress guess against the current word.
type Submit struct{}

// Skip moves on to another word without scoring.
type Skip struct{}

// Restart resets the game.
type Restart struct{}

// Notify asks presentation layers to show an ephemeral message.
type Notify struct{ Message string }

func (TextChanged) isEvent() {}
func (Submit) isEvent()      {}
func (Skip) isEvent()        {}
func (Restart) isEvent()     {}
func (Notify) isEvent()      {}
