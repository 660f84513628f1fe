package tui

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/robalobadob/scramble/internal/game"
	"github.com/robalobadob/scramble/internal/telemetry"
)

// GameOverMessage is the notification sent when the summary is dismissed.
const GameOverMessage = "Game Over"

// toastEvent carries an engine notification into the tcell event loop.
type toastEvent struct {
	tcell.EventTime
	msg string
}

// App drives one engine from the terminal.
type App struct {
	screen  *Screen
	engine  *game.Engine
	tracer  trace.Tracer
	toast   string
	running bool
}

// NewApp binds a screen to an engine.
func NewApp(screen *Screen, engine *game.Engine) *App {
	return &App{
		screen:  screen,
		engine:  engine,
		tracer:  telemetry.Tracer("tui"),
		running: true,
	}
}

// Run renders and handles input until the player quits or ctx is done.
// The caller owns the screen and closes it afterwards.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	toasts := a.engine.Notifications(ctx)
	go func() {
		for {
			select {
			case msg, ok := <-toasts:
				if ok {
					ev := &toastEvent{msg: msg}
					ev.SetEventNow()
					_ = a.screen.PostEvent(ev)
					continue
				}
			case <-ctx.Done():
			}
			_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
			return
		}
	}()

	for a.running {
		render(a.screen, viewLines(a.engine.Snapshot(), a.toast))
		a.handle(ctx, a.screen.PollEvent())
	}
	return nil
}

// handle processes a single event.
func (a *App) handle(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case nil, *tcell.EventInterrupt:
		a.running = false
	case *toastEvent:
		a.toast = ev.msg
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		a.handleKey(ctx, ev)
	}
}

// handleKey maps key presses onto game events.
func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.running = false
		return
	}
	a.toast = ""
	snap := a.engine.Snapshot()

	if snap.RoundOver {
		if ev.Key() != tcell.KeyRune {
			return
		}
		switch ev.Rune() {
		case 'r', 'R':
			a.dispatch(ctx, "restart", game.Restart{})
		case 'x', 'X':
			a.dispatch(ctx, "notify", game.Notify{Message: GameOverMessage})
		}
		return
	}

	switch ev.Key() {
	case tcell.KeyEnter:
		// Submit needs a guess, matching the disabled button of the mobile UI.
		if snap.InputText != "" {
			a.dispatch(ctx, "submit", game.Submit{})
		}
	case tcell.KeyTab:
		a.dispatch(ctx, "skip", game.Skip{})
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(snap.InputText); len(r) > 0 {
			a.dispatch(ctx, "text", game.TextChanged{Text: string(r[:len(r)-1])})
		}
	case tcell.KeyRune:
		a.dispatch(ctx, "text", game.TextChanged{Text: snap.InputText + string(ev.Rune())})
	}
}

// dispatch hands ev to the engine inside a span.
func (a *App) dispatch(ctx context.Context, kind string, ev game.Event) {
	_, span := a.tracer.Start(ctx, "game.event", trace.WithAttributes(attribute.String("event.type", kind)))
	defer span.End()
	if err := a.engine.Handle(ev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Str("event", kind).Msg("handle event")
		a.toast = err.Error()
	}
}
