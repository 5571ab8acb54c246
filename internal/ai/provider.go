package ai

// Message is a single role-tagged turn of a conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Callbacks receive the result of one StreamChat call. They are not
// retained after the call returns.
type Callbacks struct {
	// OnDelta receives each non-empty text fragment, in order.
	OnDelta func(text string)
	// OnDone fires once when the stream completes.
	OnDone func()
	// OnError fires once, instead of OnDone, when the call fails.
	OnError func(message string)
}

func (cb Callbacks) delta(text string) {
	if cb.OnDelta != nil {
		cb.OnDelta(text)
	}
}

func (cb Callbacks) done() {
	if cb.OnDone != nil {
		cb.OnDone()
	}
}

func (cb Callbacks) fail(message string) {
	if cb.OnError != nil {
		cb.OnError(message)
	}
}

// Notifier shows a user-facing notice. The terminal implementation
// lives in the ui package.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(n Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}
