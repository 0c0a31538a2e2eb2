package stream

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEventJSONSuccess(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want string
	}{
		{"failed result", ToolCallResult("sh", nil, false, ""), `"success":false`},
		{"succeeded result", ToolCallResult("sh", json.RawMessage(`"ok"`), true, ""), `"success":true`},
		{"content", Content("hi"), ""},
		{"tool call", ToolCallStarted("sh", json.RawMessage(`{}`)), ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := json.Marshal(c.ev)
			if err != nil {
				t.Fatal(err)
			}

			has := strings.Contains(string(out), `"success"`)
			if c.want == "" && has {
				t.Errorf("%s should not carry success: %s", c.name, out)
			}
			if c.want != "" && !strings.Contains(string(out), c.want) {
				t.Errorf("%s = %s, want %s", c.name, out, c.want)
			}

			var back Event
			if err := json.Unmarshal(out, &back); err != nil {
				t.Fatal(err)
			}
			if back.Type != c.ev.Type || back.Success != c.ev.Success || back.ToolName != c.ev.ToolName {
				t.Errorf("decoded %+v, want %+v", back, c.ev)
			}
		})
	}
}
