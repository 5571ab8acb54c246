// Package ai streams assistant replies from the design chat endpoint.
//
// The endpoint answers a POST of the conversation with a text/event-stream
// body: `data: <json>` lines carrying choices[0].delta.content fragments,
// terminated by `data: [DONE]`. The client rebuilds the reply fragment by
// fragment regardless of how the transport splits the bytes.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

const (
	defaultReadSize  = 4096
	maxErrorBodySize = 64 << 10
)

// Report summarises one StreamChat call. It is handed to the reporter
// set with WithReporter after the callbacks have run.
type Report struct {
	Err        error // nil when OnDone fired
	FirstDelta time.Duration
	Total      time.Duration
	Deltas     int
	Chars      int
}

// Client streams chat completions from a single endpoint.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	notifier   Notifier
	reporter   func(Report)
	readSize   int

	inFlight atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. Timeouts belong there.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithNotifier sets where user-facing notices go.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithReporter registers fn to receive a Report after every call.
func WithReporter(fn func(Report)) Option {
	return func(c *Client) { c.reporter = fn }
}

// WithReadSize sets the maximum number of bytes pulled per read.
func WithReadSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.readSize = n
		}
	}
}

// NewClient creates a client for the chat endpoint at url.
func NewClient(url, apiKey string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		notifier:   nopNotifier{},
		readSize:   defaultReadSize,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// InFlight reports whether any StreamChat call is currently running.
func (c *Client) InFlight() bool {
	return c.inFlight.Load() > 0
}

// StreamChat sends messages and delivers the reply through cb. Exactly
// one of cb.OnDone and cb.OnError fires. Fragments already passed to
// cb.OnDelta stand even if the call later fails.
//
// Cancelling ctx stops the read loop and fires cb.OnError("cancelled")
// without a notice.
func (c *Client) StreamChat(ctx context.Context, messages []Message, cb Callbacks) {
	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	start := time.Now()
	var rep Report
	err := c.stream(ctx, messages, func(text string) {
		if rep.Deltas == 0 {
			rep.FirstDelta = time.Since(start)
		}
		rep.Deltas++
		rep.Chars += utf8.RuneCountInString(text)
		cb.delta(text)
	})
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		err = fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	rep.Total = time.Since(start)
	rep.Err = err

	if err != nil {
		notice, message, ok := Classify(err)
		if ok {
			c.notifier.Notify(notice)
		}
		cb.fail(message)
	} else {
		cb.done()
	}

	if c.reporter != nil {
		c.reporter(rep)
	}
}

func (c *Client) stream(ctx context.Context, messages []Message, emit func(string)) error {
	body, err := json.Marshal(chatRequest{Messages: messages})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach chat endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseRequestError(resp)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return ErrNoStreamBody
	}

	if err := readFrames(ctx, resp.Body, c.readSize, emit); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return nil
}

// parseRequestError builds a RequestError from a failed response. The
// body is never read as a stream.
func parseRequestError(resp *http.Response) *RequestError {
	e := &RequestError{
		Kind:    kindForStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Message: defaultErrorMessage,
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return e
	}
	var body errorResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		e.Message = body.Error
	}
	return e
}
