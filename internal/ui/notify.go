package ui

import (
	"io"

	"github.com/arin/roomchat/internal/ai"
	"github.com/fatih/color"
)

// Notifier prints chat notices as coloured status lines.
type Notifier struct {
	w io.Writer
}

var _ ai.Notifier = (*Notifier)(nil)

// NewNotifier returns a Notifier writing to w.
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

// Notify prints n. Rate-limit and credit notices are warnings; the rest
// are failures.
func (n *Notifier) Notify(notice ai.Notice) {
	switch notice.Kind {
	case ai.NoticeRateLimited, ai.NoticeCreditsExhausted:
		color.New(color.FgYellow).Fprintf(n.w, "  ⚠ %s\n", notice.Text)
	default:
		color.New(color.FgRed).Fprintf(n.w, "  ✗ %s\n", notice.Text)
	}
}
