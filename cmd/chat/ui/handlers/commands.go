package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ryanreadbooks/tokkistream/pkg/cmdline"
)

var ErrUnknownCommand = errors.New("unknown command")

// CommandResult is what the UI should do after a slash command
type CommandResult struct {
	Notice string
	// the conversation changed, reload the history
	Reset bool
}

// IsCommand reports whether input is a slash command
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// RunCommand executes one of
//
//	/open <path>...   open files and attach them to every message
//	/close <glob>     close the open files matching a doublestar glob
//	/files            list the open files
//	/new              start a new conversation
//
// Arguments are split like a shell would, quote paths with spaces.
func (h *SessionHandler) RunCommand(input string) (CommandResult, error) {
	fields, err := cmdline.Split(strings.TrimSpace(input))
	if err != nil {
		return CommandResult{}, err
	}
	if len(fields) == 0 {
		return CommandResult{}, ErrUnknownCommand
	}

	name, args := fields[0], fields[1:]
	switch name {
	case "/open":
		return h.openFiles(args)
	case "/close":
		return h.closeFiles(args)
	case "/files":
		return h.listFiles(), nil
	case "/new":
		id, err := h.NewConversation()
		if err != nil {
			return CommandResult{}, err
		}
		return CommandResult{Notice: "new conversation " + id, Reset: true}, nil
	}

	return CommandResult{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}

func (h *SessionHandler) openFiles(paths []string) (CommandResult, error) {
	if len(paths) == 0 {
		return CommandResult{}, errors.New("usage: /open <path>...")
	}

	opened := make([]string, 0, len(paths))
	for _, p := range paths {
		f, err := h.Files().Open(p)
		if err != nil {
			return CommandResult{}, err
		}
		opened = append(opened, f.Path)
	}

	return CommandResult{Notice: "opened " + strings.Join(opened, ", ")}, nil
}

func (h *SessionHandler) closeFiles(args []string) (CommandResult, error) {
	if len(args) != 1 {
		return CommandResult{}, errors.New("usage: /close <glob>")
	}

	closed, err := h.Files().CloseMatching(filepath.ToSlash(args[0]))
	if err != nil {
		return CommandResult{}, err
	}
	if len(closed) == 0 {
		return CommandResult{Notice: "no open file matches " + args[0]}, nil
	}

	return CommandResult{Notice: "closed " + strings.Join(closed, ", ")}, nil
}

func (h *SessionHandler) listFiles() CommandResult {
	files := h.Files().List()
	if len(files) == 0 {
		return CommandResult{Notice: "no open files"}
	}

	active, _ := h.Files().Active()
	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.Path == active.Path {
			names = append(names, "*"+f.Path)
		} else {
			names = append(names, f.Path)
		}
	}

	return CommandResult{Notice: strings.Join(names, ", ")}
}
