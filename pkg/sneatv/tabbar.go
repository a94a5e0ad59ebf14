package sneatv

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

type TabStyles struct {
	Foreground string
	Background string
}

type TabsStyle struct {
	Underscore bool

	Active   TabStyles
	Inactive TabStyles
}

var UnderlineTabsStyle = TabsStyle{
	Underscore: true,
	Active: TabStyles{
		Foreground: "black",
		Background: "lightgray",
	},
	Inactive: TabStyles{
		Foreground: "gray",
		Background: "black",
	},
}

// TabBar is a one-line list of tab titles with the active one highlighted.
type TabBar struct {
	*tview.TextView
	TabsStyle
	label string
}

func NewTabBar(style TabsStyle, label string) *TabBar {
	return &TabBar{
		TextView: tview.NewTextView().
			SetDynamicColors(true).
			SetWrap(false),
		TabsStyle: style,
		label:     label,
	}
}

// SetTabs redraws the bar with titles, marking active.
func (t *TabBar) SetTabs(titles []string, active int) {
	t.SetText(t.render(titles, active))
}

func (t *TabBar) render(titles []string, active int) string {
	var sb strings.Builder
	sb.WriteString(t.label)
	for i, title := range titles {
		title = tview.Escape(title)
		if i == active {
			_, _ = fmt.Fprintf(&sb, "[%s:%s:b] %d:%s [-:-:B]", t.Active.Foreground, t.Active.Background, i+1, title)
			continue
		}
		if t.Underscore {
			_, _ = fmt.Fprintf(&sb, "[%s:%s:u] %d:%s [-:-:U]", t.Inactive.Foreground, t.Inactive.Background, i+1, title)
		} else {
			_, _ = fmt.Fprintf(&sb, "[%s:%s] %d:%s [-:-]", t.Inactive.Foreground, t.Inactive.Background, i+1, title)
		}
	}
	return sb.String()
}
