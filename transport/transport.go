package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ryanreadbooks/tokkistream/config"
	"github.com/ryanreadbooks/tokkistream/pkg/safe"
	"github.com/ryanreadbooks/tokkistream/stream"
)

const eventBufferSize = 256

// FileRef is an open editor file sent along with a message.
type FileRef struct {
	Path     string `json:"path"`
	MimeType string `json:"mime_type,omitempty"`
	Content  string `json:"content"`
}

// HistoryMessage is one earlier message of the conversation. Role is "user"
// or "assistant".
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the body of one chat turn sent to the backend. The backend keeps
// no state between turns, so every request carries the earlier exchanges.
type Request struct {
	ConversationID string           `json:"conversation_id"`
	Message        string           `json:"message"`
	History        []HistoryMessage `json:"conversation_history"`
	Files          []FileRef        `json:"files,omitempty"`
}

// MarshalJSON sends an empty history as [] rather than null.
func (r Request) MarshalJSON() ([]byte, error) {
	type plain Request
	p := plain(r)
	if p.History == nil {
		p.History = []HistoryMessage{}
	}
	return json.Marshal(p)
}

type Transport interface {
	// Open sends req and starts streaming the reply. You should read
	// Stream.Events until it is closed.
	Open(ctx context.Context, req *Request) (*Stream, error)
}

// Stream is one in-flight reply.
type Stream struct {
	// Events is closed after a terminal event or once the stream is cancelled.
	Events <-chan stream.Event

	cancel  context.CancelFunc
	decoder *stream.Decoder
	done    chan struct{}
}

// Cancel stops the stream. No terminal event is produced for a cancelled
// stream.
func (s *Stream) Cancel() {
	s.cancel()
}

// Wait blocks until Events has been closed.
func (s *Stream) Wait() {
	<-s.done
}

// Message returns the accumulated assistant message. Only valid after Events
// has been drained.
func (s *Stream) Message() stream.Message {
	<-s.done
	return s.decoder.Message()
}

// Completed reports whether the reply ended with a done event.
func (s *Stream) Completed() bool {
	<-s.done
	return s.decoder.Completed()
}

// startStream runs pump in its own goroutine. pump pushes decoded events via
// emit, which gives up once ctx is done.
func startStream(
	ctx context.Context,
	cancel context.CancelFunc,
	dec *stream.Decoder,
	pump func(ctx context.Context, emit EmitFunc) error,
) *Stream {
	events := make(chan stream.Event, eventBufferSize)
	s := &Stream{
		Events:  events,
		cancel:  cancel,
		decoder: dec,
		done:    make(chan struct{}),
	}

	emit := func(ev stream.Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	safe.Go(func() {
		defer func() {
			close(events)
			close(s.done)
			cancel()
		}()

		start := time.Now()
		err := pump(ctx, emit)
		if err != nil && ctx.Err() == nil {
			slog.Warn("[transport] stream failed", "error", err)
		}
		slog.Debug("[transport] stream closed",
			"completed", dec.Completed(),
			"elapsed", time.Since(start))
	})

	return s
}

// New builds the transport selected in the backend config.
func New(c config.BackendConfig, opts ...stream.Option) (Transport, error) {
	switch c.Transport {
	case "", config.TransportHTTP:
		return NewHTTP(c, opts...)
	case config.TransportWebSocket:
		return NewWebSocket(c, opts...)
	}

	return nil, fmt.Errorf("unknown transport %q", c.Transport)
}
