// Package chroma2tcell renders chroma syntax highlighting as tview color tags.
package chroma2tcell

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/rivo/tview"
)

const DefaultStyle = "dracula"

var getStyle = styles.Get

var getFallbackStyle = func() *chroma.Style {
	return styles.Fallback
}

var matchLexer = lexers.Match

// Colorize tokenises text with lexer and wraps each styled token in a color tag.
// Token text is escaped so that brackets in the source are not read as tags.
func Colorize(text, styleName string, lexer chroma.Lexer) (string, error) {
	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", err
	}

	style := getStyle(styleName)
	if style == nil {
		style = getFallbackStyle()
	}

	var sb strings.Builder
	sb.Grow(len(text) * 2)
	for _, token := range iterator.Tokens() {
		value := tview.Escape(token.Value)
		entry := style.Get(token.Type)
		if !entry.Colour.IsSet() {
			sb.WriteString(value)
			continue
		}
		sb.WriteString("[" + entry.Colour.String() + "]")
		sb.WriteString(value)
		sb.WriteString("[-]")
	}
	return sb.String(), nil
}

// HighlightFile colors text by the lexer registered for fileName.
// It reports false with escaped plain text when no lexer matches or tokenising fails.
func HighlightFile(fileName, text string) (string, bool) {
	lexer := matchLexer(fileName)
	if lexer == nil {
		return tview.Escape(text), false
	}
	colorized, err := Colorize(text, DefaultStyle, chroma.Coalesce(lexer))
	if err != nil {
		return tview.Escape(text), false
	}
	return colorized, true
}
