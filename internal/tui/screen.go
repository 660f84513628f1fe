// Package tui is the terminal front end: it renders engine snapshots with
// tcell and turns key presses into game events.
package tui

import "github.com/gdamore/tcell/v2"

// Screen wraps tcell.Screen with the few calls the game needs.
type Screen struct {
	screen tcell.Screen
}

// NewScreen creates and initializes a terminal screen.
func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewScreenFrom(s)
}

// NewScreenFrom initializes an existing tcell.Screen, such as a simulation
// screen in tests.
func NewScreenFrom(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(tcell.StyleDefault)
	s.Clear()
	return &Screen{screen: s}, nil
}

// Close finalizes the screen and restores terminal state.
func (s *Screen) Close() { s.screen.Fini() }

// PollEvent waits for and returns the next event.
func (s *Screen) PollEvent() tcell.Event { return s.screen.PollEvent() }

// PostEvent queues ev for PollEvent.
func (s *Screen) PostEvent(ev tcell.Event) error { return s.screen.PostEvent(ev) }

// Clear clears the screen buffer.
func (s *Screen) Clear() { s.screen.Clear() }

// Show flushes the screen buffer to the terminal.
func (s *Screen) Show() { s.screen.Show() }

// Sync forces a complete redraw.
func (s *Screen) Sync() { s.screen.Sync() }

// Size returns the current terminal dimensions.
func (s *Screen) Size() (width, height int) { return s.screen.Size() }

// DrawText writes text starting at (x, y), clipped to the screen width.
func (s *Screen) DrawText(x, y int, text string, style tcell.Style) {
	w, _ := s.screen.Size()
	for _, r := range text {
		if x >= w {
			return
		}
		if x >= 0 {
			s.screen.SetContent(x, y, r, nil, style)
		}
		x++
	}
}
