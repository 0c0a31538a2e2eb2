package chat

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ryanreadbooks/tokkistream/store"
	"github.com/ryanreadbooks/tokkistream/stream"
	"github.com/ryanreadbooks/tokkistream/transport"
)

type fixture struct {
	session  *Session
	convs    *store.ConversationStore
	requests []*transport.Request
}

func newFixture(t *testing.T, source func(req *transport.Request) (io.ReadCloser, error)) *fixture {
	t.Helper()

	convs, err := store.OpenConversationStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { convs.Close() })

	f := &fixture{convs: convs}
	tr := &transport.ReaderTransport{
		Source: func(ctx context.Context, req *transport.Request) (io.ReadCloser, error) {
			f.requests = append(f.requests, req)
			return source(req)
		},
	}

	f.session, err = NewSession(tr, convs, store.NewOpenFileStore(0), "")
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func body(s string) func(*transport.Request) (io.ReadCloser, error) {
	return func(*transport.Request) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(s)), nil
	}
}

func drain(turn *Turn) []stream.Event {
	var events []stream.Event
	for ev := range turn.Events {
		events = append(events, ev)
	}
	return events
}

func TestSendCompleted(t *testing.T) {
	f := newFixture(t, body(
		"data: {\"type\":\"thinking\",\"content\":\"let me see\"}\n"+
			"data: {\"type\":\"tool_call\",\"tool_name\":\"grep\",\"tool_args\":{\"pattern\":\"TODO\"}}\n"+
			"data: {\"type\":\"tool_result\",\"tool_name\":\"grep\",\"error\":\"no matches\"}\n"+
			"data: {\"type\":\"content\",\"content\":\"Nothing to do.\"}\n"+
			"data: [DONE]\n"))

	turn, err := f.session.Send(t.Context(), "  any TODOs?  ")
	if err != nil {
		t.Fatal(err)
	}

	events := drain(turn)
	if len(events) != 5 {
		t.Fatalf("got %d events: %+v", len(events), events)
	}

	res := turn.Wait()
	if res.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	if res.PromptTokens == 0 || res.ReplyTokens == 0 {
		t.Errorf("token estimates = %d/%d", res.PromptTokens, res.ReplyTokens)
	}

	history, err := f.session.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("history = %+v", history)
	}
	if history[0].Role != store.RoleUser || history[0].Content != "any TODOs?" {
		t.Errorf("user message = %+v", history[0])
	}

	reply := history[1]
	if reply.Role != store.RoleAssistant || reply.Content != "Nothing to do." || reply.Thinking != "let me see" {
		t.Errorf("assistant message = %+v", reply)
	}
	if len(reply.ToolCalls) != 1 || reply.ToolCalls[0].Success || reply.ToolCalls[0].Error != "no matches" {
		t.Errorf("tool calls = %+v", reply.ToolCalls)
	}

	if f.requests[0].ConversationID != f.session.ConversationID() {
		t.Errorf("request conversation = %q", f.requests[0].ConversationID)
	}
}

func TestSendBackendError(t *testing.T) {
	f := newFixture(t, body("data: {\"type\":\"content\",\"content\":\"half\"}\ndata: [ERROR] model overloaded\n"))

	turn, err := f.session.Send(t.Context(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	drain(turn)

	res := turn.Wait()
	if res.Outcome != OutcomeFailed || res.Error != "model overloaded" {
		t.Fatalf("result = %+v", res)
	}
	if res.Message.Content != "half" {
		t.Errorf("partial content = %q", res.Message.Content)
	}

	history, _ := f.session.History()
	if len(history) != 2 || history[1].Role != store.RoleError || history[1].Content != "model overloaded" {
		t.Errorf("history = %+v", history)
	}
}

func TestSendTruncated(t *testing.T) {
	f := newFixture(t, body("data: {\"type\":\"content\",\"content\":\"half\"}\n"))

	turn, err := f.session.Send(t.Context(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	events := drain(turn)

	last := events[len(events)-1]
	if last.Kind != stream.ErrorKindTruncated {
		t.Fatalf("last event = %+v", last)
	}

	history, _ := f.session.History()
	if len(history) != 2 || history[1].Content != "stream ended unexpectedly" {
		t.Errorf("history = %+v", history)
	}
}

func TestCancelPersistsNothing(t *testing.T) {
	pr, pw := io.Pipe()
	f := newFixture(t, func(*transport.Request) (io.ReadCloser, error) {
		return pr, nil
	})

	turn, err := f.session.Send(t.Context(), "write me a novel")
	if err != nil {
		t.Fatal(err)
	}

	go io.WriteString(pw, "data: {\"type\":\"content\",\"content\":\"Once\"}\n")
	if ev := <-turn.Events; ev.Text != "Once" {
		t.Fatalf("first event = %+v", ev)
	}

	if _, err := f.session.Send(t.Context(), "another"); !errors.Is(err, ErrTurnInProgress) {
		t.Errorf("second send err = %v", err)
	}

	turn.Cancel()
	for ev := range turn.Events {
		if ev.IsTerminal() {
			t.Errorf("terminal event after cancel: %+v", ev)
		}
	}

	if res := turn.Wait(); res.Outcome != OutcomeCancelled {
		t.Errorf("outcome = %v", res.Outcome)
	}

	history, _ := f.session.History()
	if len(history) != 1 || history[0].Role != store.RoleUser {
		t.Errorf("history = %+v", history)
	}

	// the session is free again
	if _, err := f.session.NewConversation(); err != nil {
		t.Errorf("new conversation: %v", err)
	}
}

func TestSendOpenError(t *testing.T) {
	f := newFixture(t, func(*transport.Request) (io.ReadCloser, error) {
		return nil, errors.New("connection refused")
	})

	if _, err := f.session.Send(t.Context(), "hi"); err == nil {
		t.Fatal("expected error")
	}

	history, _ := f.session.History()
	if len(history) != 2 || history[1].Role != store.RoleError {
		t.Errorf("history = %+v", history)
	}
}

func TestSendEmpty(t *testing.T) {
	f := newFixture(t, body("data: [DONE]\n"))
	if _, err := f.session.Send(t.Context(), " \n "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("err = %v", err)
	}
}

func TestSendAttachesOpenFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.go")
	b := filepath.Join(dir, "b.md")
	os.WriteFile(a, []byte("package a\n"), 0644)
	os.WriteFile(b, []byte("# notes\n"), 0644)

	f := newFixture(t, body("data: [DONE]\n"))
	files := f.session.Files()
	if _, err := files.Open(a); err != nil {
		t.Fatal(err)
	}
	if _, err := files.Open(b); err != nil {
		t.Fatal(err)
	}
	if err := files.SetActive(a); err != nil {
		t.Fatal(err)
	}

	turn, err := f.session.Send(t.Context(), "review")
	if err != nil {
		t.Fatal(err)
	}
	drain(turn)

	refs := f.requests[0].Files
	if len(refs) != 2 || refs[0].Path != a || refs[0].Content != "package a\n" || refs[1].Path != b {
		t.Errorf("files = %+v", refs)
	}
}

func TestResume(t *testing.T) {
	f := newFixture(t, body("data: [DONE]\n"))
	id := f.session.ConversationID()

	resumed, err := NewSession(nil, f.convs, nil, id)
	if err != nil {
		t.Fatal(err)
	}
	if resumed.ConversationID() != id {
		t.Errorf("resumed %q, want %q", resumed.ConversationID(), id)
	}

	if _, err := NewSession(nil, f.convs, nil, "missing"); !errors.Is(err, store.ErrConversationNotFound) {
		t.Errorf("resume missing: %v", err)
	}
}

func TestSendCarriesHistory(t *testing.T) {
	replies := []string{
		"data: {\"type\":\"content\",\"content\":\"Paris.\"}\ndata: [DONE]\n",
		"data: [ERROR] overloaded\n",
		"data: {\"type\":\"content\",\"content\":\"About 2 million.\"}\ndata: [DONE]\n",
	}
	f := newFixture(t, func(*transport.Request) (io.ReadCloser, error) {
		next := replies[0]
		replies = replies[1:]
		return io.NopCloser(strings.NewReader(next)), nil
	})

	for _, q := range []string{"capital of France?", "and its population?", "and its population?"} {
		turn, err := f.session.Send(t.Context(), q)
		if err != nil {
			t.Fatal(err)
		}
		drain(turn)
	}

	if len(f.requests[0].History) != 0 {
		t.Errorf("first turn history = %+v", f.requests[0].History)
	}

	want := []transport.HistoryMessage{
		{Role: "user", Content: "capital of France?"},
		{Role: "assistant", Content: "Paris."},
	}
	if got := f.requests[1].History; !slices.Equal(got, want) {
		t.Errorf("second turn history = %+v", got)
	}

	// the failed turn's error stays local, its question is still sent
	want = append(want, transport.HistoryMessage{Role: "user", Content: "and its population?"})
	if got := f.requests[2].History; !slices.Equal(got, want) {
		t.Errorf("third turn history = %+v", got)
	}
	if f.requests[2].Message != "and its population?" {
		t.Errorf("third turn message = %q", f.requests[2].Message)
	}
}
