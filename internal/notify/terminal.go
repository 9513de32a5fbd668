package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	terminalBase = lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)

	severityStyles = map[Severity]lipgloss.Style{
		SeverityInfo:    terminalBase.Foreground(lipgloss.Color("#4caf50")),
		SeveritySuccess: terminalBase.Foreground(lipgloss.Color("#ff6b6b")),
		SeverityWarning: terminalBase.Foreground(lipgloss.Color("#ffb347")),
		SeverityError:   terminalBase.Foreground(lipgloss.Color("#e53935")),
	}

	severityIcons = map[Severity]string{
		SeverityInfo:    "i",
		SeveritySuccess: "✔",
		SeverityWarning: "!",
		SeverityError:   "✖",
	}
)

// Terminal prints each notification as one styled line.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Notify(_ context.Context, n Notification) {
	style, ok := severityStyles[n.Severity]
	if !ok {
		style = terminalBase
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, style.Render(fmt.Sprintf("%s %s", severityIcons[n.Severity], n.Message)))
}
