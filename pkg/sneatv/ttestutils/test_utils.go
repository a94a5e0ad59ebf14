// Package ttestutils draws tview primitives onto a simulation screen for tests.
package ttestutils

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type testingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

var _ testingT = (*testing.T)(nil)

var newSimulationScreen = tcell.NewSimulationScreen

// NewSimScreen returns an initialised UTF-8 simulation screen of the given size.
func NewSimScreen(t testingT, width, height int) tcell.SimulationScreen {
	t.Helper()
	s := newSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
		return nil
	}
	s.SetSize(width, height)
	return s
}

// ReadLine returns row y of the screen. Empty cells read as spaces.
func ReadLine(screen tcell.Screen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		str, _, _ := screen.Get(x, y)
		if str == "" || str == "\x00" {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(str)
	}
	return b.String()
}

// Render draws p over the whole screen and returns every row with trailing spaces trimmed.
func Render(screen tcell.Screen, p tview.Primitive) []string {
	width, height := screen.Size()
	screen.Clear()
	p.SetRect(0, 0, width, height)
	p.Draw(screen)
	screen.Show()
	lines := make([]string, height)
	for y := range lines {
		lines[y] = strings.TrimRight(ReadLine(screen, y, width), " ")
	}
	return lines
}
