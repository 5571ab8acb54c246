package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const defaultErrorMessage = "Failed to connect to AI"

// CancelledMessage is the OnError message for a call whose context was
// cancelled. A server may send the same text, so callers that need to
// tell the two apart check their context instead.
const CancelledMessage = "cancelled"

var (
	// ErrNoStreamBody is returned when a 200 response carries no body.
	ErrNoStreamBody = errors.New("no response body")

	// ErrCancelled reports that the caller's context ended the stream.
	ErrCancelled = errors.New(CancelledMessage)
)

// Kind classifies a rejected request.
type Kind int

const (
	KindServiceError     Kind = iota // any other non-2xx status
	KindRateLimited                  // 429
	KindCreditsExhausted             // 402
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindCreditsExhausted:
		return "credits_exhausted"
	default:
		return "service_error"
	}
}

// RequestError is a non-success status returned before streaming began.
type RequestError struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("chat request rejected (status %d): %s", e.Status, e.Message)
}

// kindForStatus maps an HTTP status to a Kind.
func kindForStatus(status int) Kind {
	switch status {
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusPaymentRequired:
		return KindCreditsExhausted
	default:
		return KindServiceError
	}
}

// NoticeKind identifies which user-facing notice to show.
type NoticeKind int

const (
	NoticeServiceError NoticeKind = iota
	NoticeRateLimited
	NoticeCreditsExhausted
	NoticeStreamFailed
)

// Notice is a user-facing notification for a failed call.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Classify converts an error from a chat call into the notice to show
// and the message handed to OnError. ok is false when no notice should
// be shown, which is the case for cancellation.
func Classify(err error) (n Notice, message string, ok bool) {
	var reqErr *RequestError
	switch {
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return Notice{}, CancelledMessage, false
	case errors.As(err, &reqErr):
		switch reqErr.Kind {
		case KindRateLimited:
			n = Notice{Kind: NoticeRateLimited, Text: "Rate limit exceeded. Please wait a moment and try again."}
		case KindCreditsExhausted:
			n = Notice{Kind: NoticeCreditsExhausted, Text: "AI credits exhausted. Please add more credits to continue."}
		default:
			n = Notice{Kind: NoticeServiceError, Text: reqErr.Message}
		}
		return n, reqErr.Message, true
	case errors.Is(err, ErrNoStreamBody):
		return Notice{Kind: NoticeServiceError, Text: ErrNoStreamBody.Error()}, ErrNoStreamBody.Error(), true
	default:
		return Notice{Kind: NoticeStreamFailed, Text: "Failed to get AI response"}, err.Error(), true
	}
}
