// Package sneatv holds small tview widgets shared by the UI.
package sneatv

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var (
	focusedStyle = tcell.StyleDefault.Foreground(tcell.ColorCornflowerBlue).Background(tcell.ColorBlack)
	blurredStyle = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorBlack)
)

type BoxedContent interface {
	tview.Primitive
	GetTitle() string
	SetTitle(title string) *tview.Box
	SetBorderPadding(top, bottom, left, right int) *tview.Box
}

type BoxFooter interface {
	tview.Primitive
}

// Boxed draws a frame around its content with the title in the top line and an
// optional footer in the bottom one. The frame is doubled while the content has focus.
type Boxed struct {
	BoxedContent
	options boxOptions
}

type boxOptions struct {
	leftBorder   bool
	leftPadding  int
	rightBorder  bool
	rightPadding int

	footer BoxFooter
}

type BoxOption func(*boxOptions)

func WithLeftBorder(padding int) BoxOption {
	return func(opts *boxOptions) {
		opts.leftBorder = true
		opts.leftPadding = padding
	}
}

func WithRightBorder(padding int) BoxOption {
	return func(opts *boxOptions) {
		opts.rightBorder = true
		opts.rightPadding = padding
	}
}

func WithFooter(footer BoxFooter) BoxOption {
	return func(opts *boxOptions) {
		opts.footer = footer
	}
}

func NewBoxed(inner BoxedContent, o ...BoxOption) *Boxed {
	b := Boxed{
		BoxedContent: inner,
	}
	for _, option := range o {
		option(&b.options)
	}
	left, right := b.options.leftPadding, b.options.rightPadding
	if b.options.leftBorder {
		left++
	}
	if b.options.rightBorder {
		right++
	}
	inner.SetBorderPadding(1, 1, left, right)
	return &b
}

func (b *Boxed) Draw(screen tcell.Screen) {
	b.BoxedContent.Draw(screen)
	b.drawBorders(screen)
}

func (b *Boxed) drawBorders(screen tcell.Screen) {
	x, y, width, height := b.GetRect()
	if width <= 0 || height <= 0 {
		return
	}
	hasFocus := b.HasFocus()
	lineStyle, lineChar := blurredStyle, '─'
	if hasFocus {
		lineStyle, lineChar = focusedStyle, '═'
	}

	horizontalBorder := func(y int, text string) {
		for i := 0; i < width; i++ {
			screen.SetContent(x+i, y, lineChar, nil, lineStyle)
		}
		textWidth := tview.TaggedStringWidth(text)
		if text == "" || textWidth+2 > width {
			return
		}
		start := x + (width-textWidth)/2
		left, right := '┤', '├'
		if hasFocus {
			left, right = '╡', '╞'
		}
		screen.SetContent(start-1, y, left, nil, lineStyle)
		tview.Print(screen, text, start, y, textWidth, tview.AlignLeft, tcell.ColorGhostWhite)
		screen.SetContent(start+textWidth, y, right, nil, lineStyle)
	}

	horizontalBorder(y, b.GetTitle())
	horizontalBorder(y+height-1, footerText(b.options.footer))

	verticalBorder := func(x int, top, bottom rune) {
		screen.SetContent(x, y, top, nil, lineStyle)
		for i := 1; i < height-1; i++ {
			screen.SetContent(x, y+i, '│', nil, lineStyle)
		}
		screen.SetContent(x, y+height-1, bottom, nil, lineStyle)
	}
	if b.options.leftBorder {
		if hasFocus {
			verticalBorder(x, '╒', '╘')
		} else {
			verticalBorder(x, '┌', '└')
		}
	}
	if b.options.rightBorder {
		if hasFocus {
			verticalBorder(x+width-1, '╕', '╛')
		} else {
			verticalBorder(x+width-1, '┐', '┘')
		}
	}
}

func footerText(footer tview.Primitive) string {
	tv, ok := footer.(*tview.TextView)
	if !ok {
		return ""
	}
	text := tv.GetText(false)
	if newline := strings.IndexByte(text, '\n'); newline >= 0 {
		text = text[:newline]
	}
	return text
}
