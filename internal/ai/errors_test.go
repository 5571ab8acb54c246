package ai_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/arin/roomchat/internal/ai"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   ai.NoticeKind
		wantMsg    string
		wantNotice bool
	}{
		{"rate limited", &ai.RequestError{Kind: ai.KindRateLimited, Status: 429, Message: "busy"}, ai.NoticeRateLimited, "busy", true},
		{"credits", &ai.RequestError{Kind: ai.KindCreditsExhausted, Status: 402, Message: "no credits"}, ai.NoticeCreditsExhausted, "no credits", true},
		{"service", &ai.RequestError{Kind: ai.KindServiceError, Status: 503, Message: "down"}, ai.NoticeServiceError, "down", true},
		{"wrapped request error", fmt.Errorf("outer: %w", &ai.RequestError{Kind: ai.KindRateLimited, Message: "x"}), ai.NoticeRateLimited, "x", true},
		{"no body", ai.ErrNoStreamBody, ai.NoticeServiceError, "no response body", true},
		{"transport", errors.New("EOF"), ai.NoticeStreamFailed, "EOF", true},
		{"cancelled", fmt.Errorf("%w: %w", ai.ErrCancelled, context.Canceled), 0, "cancelled", false},
		{"bare context cancel", context.Canceled, 0, "cancelled", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, msg, ok := ai.Classify(tt.err)
			assert.Equal(t, tt.wantNotice, ok)
			assert.Equal(t, tt.wantMsg, msg)
			if ok {
				assert.Equal(t, tt.wantKind, n.Kind)
				assert.NotEmpty(t, n.Text)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "rate_limited", ai.KindRateLimited.String())
	assert.Equal(t, "credits_exhausted", ai.KindCreditsExhausted.String())
	assert.Equal(t, "service_error", ai.KindServiceError.String())
}
