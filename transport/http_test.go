package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ryanreadbooks/tokkistream/config"
	"github.com/ryanreadbooks/tokkistream/stream"
)

func testBackend(url string) config.BackendConfig {
	return config.BackendConfig{
		Transport:      config.TransportHTTP,
		BaseURL:        url,
		StreamPath:     "/api/chat/stream",
		Headers:        map[string]string{"X-Api-Key": "secret"},
		ConnectTimeout: 5 * time.Second,
	}
}

func drain(s *Stream) []stream.Event {
	var events []stream.Event
	for ev := range s.Events {
		events = append(events, ev)
	}
	return events
}

func TestHTTPStream(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/stream" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		lines := []string{
			`data: {"type":"thinking","content":"hmm"}`,
			`data: {"type":"tool_call","tool_name":"search","tool_args":{"q":"go"}}`,
			`data: {"type":"tool_result","tool_name":"search","result":["a","b"]}`,
			`data: {"type":"content","content":"Hello"}`,
			`: keepalive`,
			`data: {"type":"content","content":" world"}`,
			`data: [DONE]`,
		}
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	tr, err := New(testBackend(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	req := &Request{
		ConversationID: "c1",
		Message:        "hello",
		History: []HistoryMessage{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "Hi there."},
		},
		Files: []FileRef{{Path: "main.go", Content: "package main"}},
	}
	s, err := tr.Open(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	events := drain(s)
	if len(events) != 6 {
		t.Fatalf("got %d events: %+v", len(events), events)
	}
	if events[5].Type != stream.EventDone {
		t.Errorf("last event = %+v", events[5])
	}

	if !s.Completed() {
		t.Errorf("stream should be completed")
	}
	msg := s.Message()
	if msg.Content != "Hello world" || msg.Thinking != "hmm" {
		t.Errorf("message = %+v", msg)
	}
	if len(msg.ToolCalls) != 1 || !msg.ToolCalls[0].Success || string(msg.ToolCalls[0].Result) != `["a","b"]` {
		t.Errorf("tool calls = %+v", msg.ToolCalls)
	}

	if got.ConversationID != "c1" || got.Message != "hello" || len(got.Files) != 1 {
		t.Errorf("server got %+v", got)
	}
	if len(got.History) != 2 || got.History[1].Role != "assistant" || got.History[1].Content != "Hi there." {
		t.Errorf("server got history %+v", got.History)
	}
}

func TestHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr, err := NewHTTP(testBackend(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	_, err = tr.Open(context.Background(), &Request{Message: "hi"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable || statusErr.Body != "overloaded" {
		t.Errorf("status error = %+v", statusErr)
	}
}

func TestHTTPTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"type\":\"content\",\"content\":\"partial\"}\n")
	}))
	defer srv.Close()

	tr, _ := NewHTTP(testBackend(srv.URL))
	s, err := tr.Open(context.Background(), &Request{Message: "hi"})
	if err != nil {
		t.Fatal(err)
	}

	events := drain(s)
	if len(events) != 2 {
		t.Fatalf("got %d events: %+v", len(events), events)
	}
	if events[1].Kind != stream.ErrorKindTruncated {
		t.Errorf("last event = %+v", events[1])
	}
	if s.Completed() {
		t.Errorf("truncated stream reported completed")
	}
}

func TestHTTPCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"type\":\"content\",\"content\":\"first\"}\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	tr, _ := NewHTTP(testBackend(srv.URL))
	s, err := tr.Open(context.Background(), &Request{Message: "hi"})
	if err != nil {
		t.Fatal(err)
	}

	first := <-s.Events
	if first.Text != "first" {
		t.Fatalf("first event = %+v", first)
	}

	s.Cancel()
	for ev := range s.Events {
		if ev.IsTerminal() {
			t.Errorf("cancelled stream produced a terminal event: %+v", ev)
		}
	}
}

func TestNewUnknownTransport(t *testing.T) {
	if _, err := New(config.BackendConfig{Transport: "carrier-pigeon"}); err == nil {
		t.Errorf("expected error")
	}
}

func TestRequestAlwaysCarriesHistory(t *testing.T) {
	body, err := json.Marshal(&Request{ConversationID: "c1", Message: "first"})
	if err != nil {
		t.Fatal(err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		t.Fatal(err)
	}
	if string(fields["conversation_history"]) != "[]" {
		t.Errorf("body %s should carry an empty conversation_history", body)
	}
}
