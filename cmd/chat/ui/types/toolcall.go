package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ryanreadbooks/tokkistream/pkg/xmap"
)

// keys worth showing on their own, in order of preference
var headlineArgs = []struct {
	key    string
	prefix string
}{
	{"command", "$ "},
	{"path", "📄 "},
	{"file", "📄 "},
	{"pattern", "/"},
	{"query", "? "},
	{"url", "🔗 "},
}

// ParseToolCallArgs parses JSON arguments into a map
func ParseToolCallArgs(argsJSON string) (map[string]any, error) {
	if argsJSON == "" {
		return nil, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil, err
	}

	return args, nil
}

// FormatToolCallArgs formats tool call arguments for display
func FormatToolCallArgs(argsJSON string, maxLen int) string {
	args, err := ParseToolCallArgs(argsJSON)
	if err != nil {
		// Fallback: show truncated raw JSON
		return truncateString(argsJSON, maxLen)
	}

	if len(args) == 0 {
		return "(no arguments)"
	}

	for _, h := range headlineArgs {
		if v, ok := args[h.key].(string); ok && v != "" {
			return truncateString(h.prefix+v, maxLen)
		}
	}

	return formatGenericArgs(args, maxLen)
}

// FormatToolResult shortens a tool result to its first line.
func FormatToolResult(result json.RawMessage, maxLen int) string {
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return ""
	}

	var text string
	if err := json.Unmarshal(result, &text); err != nil {
		var compact bytes.Buffer
		if err := json.Compact(&compact, result); err != nil {
			text = string(result)
		} else {
			text = compact.String()
		}
	}

	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return truncateString(line, maxLen)
}

func formatGenericArgs(args map[string]any, maxLen int) string {
	var parts []string
	for _, k := range xmap.SortedKeys(args) {
		valueStr := fmt.Sprintf("%v", args[k])
		valueStr = truncateString(valueStr, 30)
		parts = append(parts, fmt.Sprintf("%s: %s", k, valueStr))
	}

	result := strings.Join(parts, ", ")
	return truncateString(result, maxLen)
}

func truncateString(s string, maxLen int) string {
	if maxLen <= 3 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}
