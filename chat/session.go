// Package chat runs chat turns against the backend and keeps the local
// conversation history in step with what was streamed.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ryanreadbooks/tokkistream/pkg/safe"
	"github.com/ryanreadbooks/tokkistream/pkg/tokens"
	"github.com/ryanreadbooks/tokkistream/store"
	"github.com/ryanreadbooks/tokkistream/stream"
	"github.com/ryanreadbooks/tokkistream/transport"
)

var (
	ErrEmptyMessage   = errors.New("empty message")
	ErrTurnInProgress = errors.New("a reply is still streaming")
)

const turnBufferSize = 64

// Session is one conversation with the backend. Only one turn streams at a
// time.
type Session struct {
	transport     transport.Transport
	conversations *store.ConversationStore
	files         *store.OpenFileStore

	mu             sync.Mutex
	conversationID string
	current        *Turn
}

// NewSession resumes conversationID, or starts a new conversation when it is
// empty.
func NewSession(
	tr transport.Transport,
	conversations *store.ConversationStore,
	files *store.OpenFileStore,
	conversationID string,
) (*Session, error) {
	s := &Session{
		transport:     tr,
		conversations: conversations,
		files:         files,
	}

	if conversationID == "" {
		conv, err := conversations.Create("")
		if err != nil {
			return nil, err
		}
		conversationID = conv.Id
	} else if _, err := conversations.Get(conversationID); err != nil {
		return nil, fmt.Errorf("failed to resume %s: %w", conversationID, err)
	}

	s.conversationID = conversationID
	return s, nil
}

func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

func (s *Session) Files() *store.OpenFileStore {
	return s.files
}

// NewConversation switches the session to a fresh conversation.
func (s *Session) NewConversation() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busyLocked() {
		return "", ErrTurnInProgress
	}

	conv, err := s.conversations.Create("")
	if err != nil {
		return "", err
	}
	s.conversationID = conv.Id

	slog.Info("[chat] new conversation", "id", conv.Id)
	return conv.Id, nil
}

// History returns the stored messages of the current conversation.
func (s *Session) History() ([]store.Message, error) {
	conv, err := s.conversations.Get(s.ConversationID())
	if err != nil {
		return nil, err
	}
	return conv.Messages, nil
}

func (s *Session) busyLocked() bool {
	if s.current == nil {
		return false
	}

	select {
	case <-s.current.done:
		s.current = nil
		return false
	default:
		return true
	}
}

// Send records text as a user message and starts streaming the reply. The
// returned turn's Events must be read until closed.
func (s *Session) Send(ctx context.Context, text string) (*Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busyLocked() {
		return nil, ErrTurnInProgress
	}

	convID := s.conversationID
	conv, err := s.conversations.Get(convID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	if _, err := s.conversations.AppendUser(convID, text); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	req := &transport.Request{
		ConversationID: convID,
		Message:        text,
		History:        historyOf(conv.Messages),
		Files:          s.fileRefs(),
	}

	st, err := s.transport.Open(ctx, req)
	if err != nil {
		if _, saveErr := s.conversations.AppendError(convID, err.Error()); saveErr != nil {
			slog.Warn("[chat] failed to save error", "id", convID, "error", saveErr)
		}
		return nil, err
	}

	t := newTurn(st)
	t.result.PromptTokens = estimatePrompt(req)
	slog.Debug("[chat] turn started", "id", convID, "files", len(req.Files), "prompt_tokens", t.result.PromptTokens)

	s.current = t
	safe.Go(func() {
		t.forward()
		s.persist(convID, t)
		close(t.events)
		close(t.done)
	})

	return t, nil
}

// historyOf turns the stored messages into the history sent with a turn.
// Errors are local only and assistant turns without text have nothing to
// replay.
func historyOf(messages []store.Message) []transport.HistoryMessage {
	history := make([]transport.HistoryMessage, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case store.RoleUser, store.RoleAssistant:
		default:
			continue
		}
		if msg.Content == "" {
			continue
		}
		history = append(history, transport.HistoryMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return history
}

// fileRefs attaches the open files, the active one first.
func (s *Session) fileRefs() []transport.FileRef {
	if s.files == nil {
		return nil
	}

	files := s.files.List()
	if len(files) == 0 {
		return nil
	}

	active, _ := s.files.Active()
	refs := make([]transport.FileRef, 0, len(files))
	for _, f := range files {
		ref := transport.FileRef{Path: f.Path, MimeType: f.MimeType, Content: f.Content}
		if f.Path == active.Path {
			refs = append([]transport.FileRef{ref}, refs...)
		} else {
			refs = append(refs, ref)
		}
	}

	return refs
}

func estimatePrompt(req *transport.Request) int {
	n := tokens.Estimate(req.Message)
	for _, h := range req.History {
		n += tokens.Estimate(h.Content)
	}
	for _, f := range req.Files {
		n += tokens.EstimateAll(f.Path, f.Content)
	}
	return n
}

// persist stores the outcome of a finished turn. A cancelled turn leaves no
// trace beyond the user message.
func (s *Session) persist(convID string, t *Turn) {
	res := t.result
	var err error
	switch res.Outcome {
	case OutcomeCompleted:
		_, err = s.conversations.AppendAssistant(convID, res.Message)
	case OutcomeFailed:
		_, err = s.conversations.AppendError(convID, res.Error)
	case OutcomeCancelled:
		slog.Info("[chat] turn cancelled", "id", convID, "elapsed", res.Elapsed)
		return
	}

	if err != nil {
		slog.Error("[chat] failed to save turn", "id", convID, "outcome", res.Outcome, "error", err)
		return
	}

	slog.Debug("[chat] turn finished", "id", convID, "outcome", res.Outcome, "elapsed", res.Elapsed)
}

type Outcome int

const (
	OutcomeCancelled Outcome = iota
	OutcomeCompleted
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	}
	return "cancelled"
}

// Result is how a turn ended.
type Result struct {
	Outcome Outcome
	// accumulated reply, partial unless completed
	Message stream.Message
	// terminal error message when failed
	Error   string
	Elapsed time.Duration

	// rough estimates, the backend reports no usage
	PromptTokens int
	ReplyTokens  int
}

// Turn is one streaming reply.
type Turn struct {
	// Events is closed after the terminal event, after the turn has been
	// saved.
	Events <-chan stream.Event

	events  chan stream.Event
	stream  *transport.Stream
	started time.Time
	result  Result
	done    chan struct{}
}

func newTurn(st *transport.Stream) *Turn {
	events := make(chan stream.Event, turnBufferSize)
	return &Turn{
		Events:  events,
		events:  events,
		stream:  st,
		started: time.Now(),
		done:    make(chan struct{}),
	}
}

// Cancel stops the reply. Nothing is saved for a cancelled turn.
func (t *Turn) Cancel() {
	t.stream.Cancel()
}

// Wait blocks until the turn is over. Events must be drained concurrently.
func (t *Turn) Wait() Result {
	<-t.done
	return t.result
}

func (t *Turn) forward() {
	var terminal *stream.Event
	for ev := range t.stream.Events {
		if ev.IsTerminal() {
			terminal = &ev
		}
		t.events <- ev
	}

	msg := t.stream.Message()
	res := Result{
		Message:      msg,
		Elapsed:      time.Since(t.started),
		PromptTokens: t.result.PromptTokens,
		ReplyTokens:  tokens.EstimateAll(msg.Thinking, msg.Content),
	}

	switch {
	case terminal != nil && terminal.Type == stream.EventDone:
		res.Outcome = OutcomeCompleted
	case terminal != nil:
		res.Outcome = OutcomeFailed
		res.Error = terminal.Message()
	default:
		// a cancelled stream closes without a terminal event
		res.Outcome = OutcomeCancelled
	}

	t.result = res
}
