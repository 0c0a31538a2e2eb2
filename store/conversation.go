package store

import (
	"bufio"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/ryanreadbooks/tokkistream/pkg/xmap"
	"github.com/ryanreadbooks/tokkistream/stream"
)

const (
	logFileName   = "log.jsonl"
	maxTitleRunes = 48
	// a single log line holds one message, tool results included
	maxLogLineSize = 16 << 20
)

var ErrConversationNotFound = errors.New("conversation not found")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

type Message struct {
	Id        string                `json:"id"`
	Role      Role                  `json:"role"`
	Content   string                `json:"content,omitempty"`
	Thinking  string                `json:"thinking,omitempty"`
	ToolCalls []stream.ToolExchange `json:"tool_calls,omitempty"`
	Created   int64                 `json:"created"`
}

type Conversation struct {
	Id       string    `json:"id"`
	Title    string    `json:"title"`
	Created  int64     `json:"created"`
	Updated  int64     `json:"updated"`
	Messages []Message `json:"messages"`
}

type logOp string

const (
	opCreate  logOp = "create"
	opTitle   logOp = "title"
	opMessage logOp = "message"
)

// logItem is one line of a conversation log.
type logItem struct {
	Op      logOp    `json:"op"`
	Title   string   `json:"title,omitempty"`
	Message *Message `json:"message,omitempty"`
	Created int64    `json:"created"`
}

func newId() string {
	id := uuid.Must(uuid.NewV7())
	return strings.ReplaceAll(id.String(), "-", "")
}

type conversationLog struct {
	conv Conversation
	f    *os.File
}

func (l *conversationLog) closeFile() {
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
}

func (l *conversationLog) writeLine(root string, item *logItem) error {
	if l.f == nil {
		path := conversationLogPath(root, l.conv.Id)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}

		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		l.f = f
	}

	str, err := json.Marshal(item)
	if err != nil {
		return err
	}

	str = append(str, '\n')
	_, err = l.f.Write(str)
	return err
}

// <root>/<id>/log.jsonl
func conversationLogPath(root, id string) string {
	return filepath.Join(root, id, logFileName)
}

// ConversationStore keeps every conversation in memory and appends each
// change to a per conversation jsonl log.
type ConversationStore struct {
	root string

	mu    sync.RWMutex
	convs map[string]*conversationLog
}

// OpenConversationStore loads all conversations found under root.
func OpenConversationStore(root string) (*ConversationStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create conversations dir: %w", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversations dir: %w", err)
	}

	s := &ConversationStore{
		root:  root,
		convs: make(map[string]*conversationLog, len(entries)),
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		conv, err := readConversation(conversationLogPath(root, entry.Name()), entry.Name())
		if err != nil {
			slog.Warn("[store] failed to load conversation, skipping", "id", entry.Name(), "error", err)
			continue
		}
		s.convs[conv.Id] = &conversationLog{conv: conv}
	}

	return s, nil
}

func readConversation(path, id string) (Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return Conversation{}, err
	}
	defer f.Close()

	conv := Conversation{Id: id}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		// one line is one log item
		var item logItem
		if err := json.Unmarshal(line, &item); err != nil {
			slog.Warn("[store] failed to decode log item, skipping", "id", id, "error", err)
			continue
		}
		conv.apply(&item)
	}

	if err := scanner.Err(); err != nil {
		return Conversation{}, fmt.Errorf("failed to scan conversation log: %w", err)
	}

	return conv, nil
}

func (c *Conversation) apply(item *logItem) {
	switch item.Op {
	case opCreate:
		c.Title = item.Title
		c.Created = item.Created
	case opTitle:
		c.Title = item.Title
	case opMessage:
		if item.Message != nil {
			c.Messages = append(c.Messages, *item.Message)
		}
	}
	c.Updated = max(c.Updated, item.Created)
}

func (s *ConversationStore) Root() string {
	return s.root
}

// Create starts a new empty conversation.
func (s *ConversationStore) Create(title string) (Conversation, error) {
	l := &conversationLog{conv: Conversation{Id: newId()}}
	item := &logItem{
		Op:      opCreate,
		Title:   title,
		Created: time.Now().Unix(),
	}
	if err := l.writeLine(s.root, item); err != nil {
		l.closeFile()
		return Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
	}
	l.conv.apply(item)

	s.mu.Lock()
	s.convs[l.conv.Id] = l
	s.mu.Unlock()

	return l.conv, nil
}

// Get returns a deep copy of the conversation.
func (s *ConversationStore) Get(id string) (Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.convs[id]
	if !ok {
		return Conversation{}, ErrConversationNotFound
	}

	return snapshot(&l.conv)
}

func snapshot(c *Conversation) (Conversation, error) {
	var out Conversation
	if err := copier.CopyWithOption(&out, c, copier.Option{DeepCopy: true}); err != nil {
		return Conversation{}, fmt.Errorf("failed to copy conversation: %w", err)
	}
	return out, nil
}

// List returns every conversation without messages, most recently updated
// first.
func (s *ConversationStore) List() []Conversation {
	s.mu.RLock()
	logs := xmap.ValuesSortedFunc(s.convs, func(a, b *conversationLog) int {
		if c := cmp.Compare(b.conv.Updated, a.conv.Updated); c != 0 {
			return c
		}
		// ids are uuid v7, so this is creation order
		return cmp.Compare(b.conv.Id, a.conv.Id)
	})

	out := make([]Conversation, 0, len(logs))
	for _, l := range logs {
		head := l.conv
		head.Messages = nil
		out = append(out, head)
	}
	s.mu.RUnlock()

	return out
}

func (s *ConversationStore) AppendUser(id, content string) (Message, error) {
	return s.append(id, Message{Role: RoleUser, Content: content})
}

// AppendAssistant stores a finalized assistant message.
func (s *ConversationStore) AppendAssistant(id string, msg stream.Message) (Message, error) {
	return s.append(id, Message{
		Role:      RoleAssistant,
		Content:   msg.Content,
		Thinking:  msg.Thinking,
		ToolCalls: msg.ToolCalls,
	})
}

// AppendError stores the error that ended a turn.
func (s *ConversationStore) AppendError(id, text string) (Message, error) {
	return s.append(id, Message{Role: RoleError, Content: text})
}

func (s *ConversationStore) append(id string, msg Message) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.convs[id]
	if !ok {
		return Message{}, ErrConversationNotFound
	}

	now := time.Now().Unix()
	msg.Id = newId()
	msg.Created = now

	item := &logItem{Op: opMessage, Message: &msg, Created: now}
	if err := l.writeLine(s.root, item); err != nil {
		return Message{}, fmt.Errorf("failed to write message: %w", err)
	}
	l.conv.apply(item)

	// first user message names an untitled conversation
	if l.conv.Title == "" && msg.Role == RoleUser {
		titleItem := &logItem{Op: opTitle, Title: titleFrom(msg.Content), Created: now}
		if err := l.writeLine(s.root, titleItem); err != nil {
			slog.Warn("[store] failed to write title", "id", id, "error", err)
		} else {
			l.conv.apply(titleItem)
		}
	}

	return msg, nil
}

func titleFrom(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(title) <= maxTitleRunes {
		return title
	}

	runes := []rune(title)
	return string(runes[:maxTitleRunes-3]) + "..."
}

// Delete removes the conversation and its log.
func (s *ConversationStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.convs[id]
	if !ok {
		return ErrConversationNotFound
	}

	l.closeFile()
	delete(s.convs, id)

	if err := os.RemoveAll(filepath.Join(s.root, id)); err != nil {
		return fmt.Errorf("failed to remove conversation: %w", err)
	}

	return nil
}

func (s *ConversationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.convs {
		l.closeFile()
	}

	return nil
}
