package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ryanreadbooks/tokkistream/pkg/xstring"
)

const (
	dataPrefix    = "data: "
	doneSentinel  = "[DONE]"
	errorSentinel = "[ERROR]"
)

const (
	msgMalformed       = "malformed event payload"
	msgNestedToolCall  = "nested tool call"
	msgUnmatchedResult = "unmatched tool result"
	msgUnexpectedEnd   = "stream ended unexpectedly"
	msgBackendError    = "backend error"
)

type Option func(d *Decoder)

// WithStrictTypes reports unknown event types as protocol errors instead of
// dropping them.
func WithStrictTypes() Option {
	return func(d *Decoder) {
		d.strict = true
	}
}

// Decoder turns chunks of a data-line stream into events.
//
// A Decoder belongs to exactly one streaming request and must not be used
// from multiple goroutines. Once a terminal event has been returned every
// further Feed returns nil.
type Decoder struct {
	strict bool

	// unterminated tail of the input
	raw []byte

	thinking strings.Builder
	content  strings.Builder

	open      *ToolCall
	exchanges []ToolExchange

	terminated bool
	completed  bool
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Feed decodes every complete line available after appending chunk. A chunk
// may end in the middle of a line; the rest of that line is expected in a
// later call.
func (d *Decoder) Feed(chunk string) []Event {
	if d.terminated {
		return nil
	}

	if strings.IndexByte(chunk, '\n') < 0 {
		d.raw = append(d.raw, chunk...)
		return nil
	}

	data := append(d.raw, chunk...)
	last := bytes.LastIndexByte(data, '\n')
	complete := string(data[:last])
	d.raw = append(make([]byte, 0, len(data)-last-1), data[last+1:]...)

	var events []Event
	for line := range strings.SplitSeq(complete, "\n") {
		ev, ok := d.decodeLine(line)
		if !ok {
			continue
		}

		events = append(events, ev)
		if ev.IsTerminal() {
			d.terminate()
			break
		}
	}

	return events
}

// Finish is called when the transport reached the end of the stream. A
// pending partial line is dropped. If no terminal event was seen an error
// event is synthesized.
func (d *Decoder) Finish() []Event {
	return d.end(ErrorKindTruncated, msgUnexpectedEnd)
}

// Abort is Finish for a transport that failed while reading.
func (d *Decoder) Abort(reason string) []Event {
	if reason == "" {
		reason = msgUnexpectedEnd
	}
	return d.end(ErrorKindTransport, reason)
}

func (d *Decoder) end(kind ErrorKind, reason string) []Event {
	if d.terminated {
		return nil
	}

	if len(d.raw) > 0 {
		slog.Debug("[stream] dropping unterminated line", "bytes", len(d.raw))
	}
	d.terminate()

	return []Event{Failure(kind, reason)}
}

func (d *Decoder) terminate() {
	d.terminated = true
	d.raw = nil
}

// Terminated reports whether a terminal event has been emitted.
func (d *Decoder) Terminated() bool {
	return d.terminated
}

// Completed reports whether the stream ended with a done event.
func (d *Decoder) Completed() bool {
	return d.completed
}

func (d *Decoder) OpenToolCall() (ToolCall, bool) {
	if d.open == nil {
		return ToolCall{}, false
	}
	return *d.open, true
}

// Message returns everything accumulated so far.
func (d *Decoder) Message() Message {
	return Message{
		Thinking:  d.thinking.String(),
		Content:   d.content.String(),
		ToolCalls: slices.Clone(d.exchanges),
	}
}

func (d *Decoder) decodeLine(line string) (Event, bool) {
	line = strings.TrimSuffix(line, "\r")
	payload, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		return Event{}, false
	}

	if payload == doneSentinel {
		d.completed = true
		return Done(), true
	}

	if rest, ok := strings.CutPrefix(payload, errorSentinel); ok {
		return backendFailure(strings.TrimSpace(rest)), true
	}

	var p Payload
	if err := json.Unmarshal(xstring.ToBytes(payload), &p); err != nil {
		slog.Debug("[stream] malformed event payload", "error", err)
		return Failure(ErrorKindMalformed, msgMalformed), true
	}

	return d.dispatch(&p)
}

func (d *Decoder) dispatch(p *Payload) (Event, bool) {
	switch EventType(p.Type) {
	case EventThinking:
		d.thinking.WriteString(p.Content)
		return Thinking(p.Content), true

	case EventContent:
		d.content.WriteString(p.Content)
		return Content(p.Content), true

	case EventToolCall:
		if d.open != nil {
			return Failure(ErrorKindProtocol, msgNestedToolCall), true
		}
		d.open = &ToolCall{Name: p.ToolName, Arguments: p.ToolArgs}
		return ToolCallStarted(p.ToolName, p.ToolArgs), true

	case EventToolResult:
		if d.open == nil || d.open.Name != p.ToolName {
			return Failure(ErrorKindProtocol, msgUnmatchedResult), true
		}

		errMsg := p.errorText()
		success := errMsg == ""
		if p.Success != nil {
			success = *p.Success
		}

		d.exchanges = append(d.exchanges, ToolExchange{
			Name:      d.open.Name,
			Arguments: d.open.Arguments,
			Result:    p.Result,
			Success:   success,
			Error:     errMsg,
		})
		d.open = nil

		return ToolCallResult(p.ToolName, p.Result, success, errMsg), true

	case EventDone:
		d.completed = true
		return Done(), true

	case EventError:
		return backendFailure(p.errorText()), true
	}

	if d.strict {
		return Failure(ErrorKindProtocol, fmt.Sprintf("unknown event type: %s", p.Type)), true
	}

	return Event{}, false
}

func backendFailure(message string) Event {
	if message == "" {
		message = msgBackendError
	}
	return Failure(ErrorKindBackend, message)
}
