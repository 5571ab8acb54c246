// Package ui — stream.go renders a streamed reply to the terminal as the
// fragments arrive.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/arin/roomchat/internal/ai"
)

// Renderer writes deltas to w in real time and keeps the full text. It
// prepends prefix to the first fragment. OnFirst, if set, runs once
// before anything is written (the chat command stops its spinner there).
type Renderer struct {
	w       io.Writer
	prefix  string
	OnFirst func()

	full    strings.Builder
	started bool
	done    bool
	errMsg  string
}

// NewRenderer returns a Renderer writing to w.
func NewRenderer(w io.Writer, prefix string) *Renderer {
	return &Renderer{w: w, prefix: prefix}
}

// Callbacks returns the callbacks to hand to ai.Client.StreamChat.
func (r *Renderer) Callbacks() ai.Callbacks {
	return ai.Callbacks{
		OnDelta: r.delta,
		OnDone: func() {
			r.first()
			r.done = true
			r.finish()
		},
		OnError: func(msg string) {
			r.first()
			r.errMsg = msg
			r.finish()
		},
	}
}

func (r *Renderer) first() {
	if r.OnFirst != nil {
		r.OnFirst()
		r.OnFirst = nil
	}
}

func (r *Renderer) delta(text string) {
	r.first()
	if !r.started {
		fmt.Fprint(r.w, r.prefix)
		r.started = true
	}
	fmt.Fprint(r.w, text)
	r.full.WriteString(text)
}

func (r *Renderer) finish() {
	// Ensure we end with a newline.
	if r.full.Len() > 0 && !strings.HasSuffix(r.full.String(), "\n") {
		fmt.Fprintln(r.w)
	}
	fmt.Fprintln(r.w)
}

// Text returns the reply received so far, trimmed.
func (r *Renderer) Text() string {
	return strings.TrimSpace(r.full.String())
}

// Done reports whether the stream completed.
func (r *Renderer) Done() bool {
	return r.done
}

// Err returns the OnError message, or "" if none fired.
func (r *Renderer) Err() string {
	return r.errMsg
}
