package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/robalobadob/scramble/internal/game"
)

var (
	styleTitle  = tcell.StyleDefault.Bold(true)
	styleWord   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHelp   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDialog = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlue)
	styleToast  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

// line is one centered row of the view.
type line struct {
	text  string
	style tcell.Style
}

// viewLines lays out the single game screen for a snapshot.
func viewLines(s game.Snapshot, toast string) []line {
	lines := []line{
		{"Unscramble", styleTitle},
		{"", tcell.StyleDefault},
		{fmt.Sprintf("Attempts: %d/%d", s.AttemptsUsed, s.RoundLimit), tcell.StyleDefault},
		{"", tcell.StyleDefault},
		{spaced(s.Display), styleWord},
		{"", tcell.StyleDefault},
		{"> " + s.InputText + "_", tcell.StyleDefault},
		{"", tcell.StyleDefault},
		{fmt.Sprintf("Score: %d", s.Score), tcell.StyleDefault},
		{"", tcell.StyleDefault},
	}
	if s.RoundOver {
		lines = append(lines, dialogLines(s.Score)...)
	} else {
		lines = append(lines, line{"[Enter] submit   [Tab] skip   [Esc] quit", styleHelp})
	}
	if toast != "" {
		lines = append(lines, line{"", tcell.StyleDefault}, line{" " + toast + " ", styleToast})
	}
	return lines
}

// dialogLines is the end-of-game summary box.
func dialogLines(score int) []line {
	body := []string{
		"The game is over",
		"",
		fmt.Sprintf("Finally, you've completed the game successfully with a score of %d", score),
		"",
		"[r] Play Again   [x] Exit",
	}
	width := 0
	for _, b := range body {
		width = max(width, utf8.RuneCountInString(b))
	}
	out := []line{{"+" + strings.Repeat("-", width+2) + "+", styleDialog}}
	for _, b := range body {
		pad := width - utf8.RuneCountInString(b)
		out = append(out, line{"| " + b + strings.Repeat(" ", pad) + " |", styleDialog})
	}
	return append(out, line{"+" + strings.Repeat("-", width+2) + "+", styleDialog})
}

// spaced puts a space between letters so the scramble reads as tiles.
func spaced(word string) string {
	return strings.Join(strings.Split(word, ""), " ")
}

// render draws lines centered on the screen.
func render(scr *Screen, lines []line) {
	scr.Clear()
	w, h := scr.Size()
	top := max(0, (h-len(lines))/2)
	for i, l := range lines {
		x := max(0, (w-utf8.RuneCountInString(l.text))/2)
		scr.DrawText(x, top+i, l.text, l.style)
	}
	scr.Show()
}
