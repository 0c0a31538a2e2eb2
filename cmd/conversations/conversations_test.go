package conversations

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ryanreadbooks/tokkistream/store"
	"github.com/ryanreadbooks/tokkistream/stream"
	"gopkg.in/yaml.v3"
)

func TestListAndShow(t *testing.T) {
	s, err := store.OpenConversationStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var empty bytes.Buffer
	if err := listConversations(&empty, s); err != nil || !strings.Contains(empty.String(), "No conversations") {
		t.Fatalf("empty list = %q, %v", empty.String(), err)
	}

	conv, _ := s.Create("")
	s.AppendUser(conv.Id, "how do I list files?")
	s.AppendAssistant(conv.Id, stream.Message{
		Content: "Use ls.",
		ToolCalls: []stream.ToolExchange{
			{Name: "shell", Arguments: json.RawMessage(`{"command":"ls"}`), Success: true},
		},
	})

	var list bytes.Buffer
	if err := listConversations(&list, s); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(list.String(), conv.Id) || !strings.Contains(list.String(), "how do I list files?") {
		t.Errorf("list output:\n%s", list.String())
	}

	var show bytes.Buffer
	if err := showConversation(&show, s, conv.Id); err != nil {
		t.Fatal(err)
	}

	var got shownConversation
	if err := yaml.Unmarshal(show.Bytes(), &got); err != nil {
		t.Fatalf("show output is not yaml: %v\n%s", err, show.String())
	}
	if got.Id != conv.Id || len(got.Messages) != 2 {
		t.Fatalf("shown = %+v", got)
	}
	if got.Messages[1].Role != "assistant" || len(got.Messages[1].ToolCalls) != 1 || got.Messages[1].ToolCalls[0].Arguments != `{"command":"ls"}` {
		t.Errorf("assistant = %+v", got.Messages[1])
	}

	if err := showConversation(&show, s, "missing"); err == nil {
		t.Errorf("show missing should fail")
	}
}
