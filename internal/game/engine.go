// internal/game/engine.go
//
// Core game engine for a single Unscramble session.
// Responsibilities:
//   - Own the round state (attempts, current word, score, used answers, input).
//   - Apply events one at a time under a mutex.
//   - Publish a Snapshot after every state-changing event.
//   - Fan out Notify messages to whoever is listening at that moment.
//
// Rules:
//   - Submit retires the current answer into the used set, counts an attempt,
//     scores Reward on an exact (case-sensitive) match, draws a new word
//     excluding used answers and clears the input.
//   - Skip counts an attempt, clears the input and draws a new word. It does
//     NOT add the skipped answer to the used set, so a skipped word can come
//     back later in the same game (see TestSkipDoesNotRetireWord).
//   - After RoundLimit attempts, Submit and Skip are ignored until Restart.
//
// Notes:
//   - Words come from a *words.Catalog; draws that cannot be satisfied return
//     an error wrapping words.ErrExhaustedCatalog. The attempt is still
//     counted and the current word is kept; only Restart recovers.
package game

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/robalobadob/scramble/internal/pubsub"
	"github.com/robalobadob/scramble/internal/words"
)

// notifyBuffer is how many undelivered notifications a subscriber may hold.
const notifyBuffer = 16

// round is the mutable per-game state.
type round struct {
	attemptsUsed int
	current      words.Entry
	score        int
	used         map[string]struct{}
	input        string
}

func (r *round) over() bool { return r.attemptsUsed >= RoundLimit }

// Engine runs one game. It is safe for concurrent use.
type Engine struct {
	mu      sync.Mutex // serializes Handle
	catalog *words.Catalog
	round   round

	state  *pubsub.Value[Snapshot]
	toasts *pubsub.Broadcaster[string]
}

// New constructs an engine and draws the first word from catalog.
func New(catalog *words.Catalog) (*Engine, error) {
	e := &Engine{
		catalog: catalog,
		toasts:  pubsub.NewBroadcaster[string](notifyBuffer),
	}
	e.round = round{used: make(map[string]struct{})}
	if err := e.draw(); err != nil {
		return nil, err
	}
	e.state = pubsub.NewValue(e.snapshotLocked())
	return e, nil
}

// Handle applies ev. Events are applied one at a time; each event's effects
// are complete and published before the next one starts.
func (e *Engine) Handle(ev Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	switch ev := ev.(type) {
	case TextChanged:
		e.round.input = ev.Text
	case Submit:
		err = e.submit()
	case Skip:
		err = e.skip()
	case Restart:
		err = e.restart()
	case Notify:
		e.toasts.Publish(ev.Message)
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	e.state.Store(e.snapshotLocked())
	return err
}

func (e *Engine) submit() error {
	r := &e.round
	if r.over() {
		return nil
	}
	r.used[r.current.Answer] = struct{}{}
	r.attemptsUsed++
	if r.input == r.current.Answer {
		r.score += Reward
	}
	r.input = ""
	return e.draw()
}

func (e *Engine) skip() error {
	r := &e.round
	if r.over() {
		return nil
	}
	r.attemptsUsed++
	r.input = ""
	return e.draw()
}

func (e *Engine) restart() error {
	e.round = round{used: make(map[string]struct{})}
	return e.draw()
}

// draw replaces the current word with one not yet used in this game.
func (e *Engine) draw() error {
	next, err := e.catalog.PickRandom(e.round.used)
	if err != nil {
		return fmt.Errorf("game: draw word: %w", err)
	}
	e.round.current = next
	return nil
}

func (e *Engine) snapshotLocked() Snapshot {
	used := make([]string, 0, len(e.round.used))
	for w := range e.round.used {
		used = append(used, w)
	}
	sort.Strings(used)
	return Snapshot{
		AttemptsUsed: e.round.attemptsUsed,
		RoundLimit:   RoundLimit,
		Display:      e.round.current.Display,
		Score:        e.round.score,
		InputText:    e.round.input,
		RoundOver:    e.round.over(),
		UsedAnswers:  used,
	}
}

// Snapshot returns the latest published state.
func (e *Engine) Snapshot() Snapshot { return e.state.Load() }

// CurrentWord returns the active entry, answer included. Presentation layers
// should render Snapshot().Display instead.
func (e *Engine) CurrentWord() words.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round.current
}

// Subscribe streams snapshots until ctx is done, starting with the current one.
func (e *Engine) Subscribe(ctx context.Context) <-chan Snapshot {
	return e.state.Subscribe(ctx)
}

// Notifications streams Notify messages published after the call, until ctx
// is done. Nothing is replayed.
func (e *Engine) Notifications(ctx context.Context) <-chan string {
	return e.toasts.Subscribe(ctx)
}
