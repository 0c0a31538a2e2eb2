package tui

import (
	"github.com/ryanreadbooks/tokkistream/chat"
	"github.com/ryanreadbooks/tokkistream/stream"
)

// Tea messages for event handling

type (
	// StreamEventMsg carries one decoded event of turn Turn
	StreamEventMsg struct {
		Turn  int
		Event stream.Event
	}

	// TurnEndMsg signals that turn Turn is over and has been saved
	TurnEndMsg struct {
		Turn   int
		Result chat.Result
	}
)
