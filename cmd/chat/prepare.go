package chat

import (
	"context"
	"fmt"

	"github.com/ryanreadbooks/tokkistream/chat"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/handlers"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/tui"
	"github.com/ryanreadbooks/tokkistream/config"
	"github.com/ryanreadbooks/tokkistream/keymap"
	"github.com/ryanreadbooks/tokkistream/store"
	"github.com/ryanreadbooks/tokkistream/stream"
	"github.com/ryanreadbooks/tokkistream/transport"
)

type sessionEnv struct {
	handler *handlers.SessionHandler
	keys    *keymap.Map
	convs   *store.ConversationStore
}

func (e *sessionEnv) Close() error {
	return e.convs.Close()
}

func prepareSession(ctx context.Context, resumeId string, files []string) (
	env *sessionEnv,
	err error,
) {
	cfg := config.GetConfig()
	if err = cfg.Validate(); err != nil {
		err = fmt.Errorf("invalid config: %w", err)
		return
	}

	var opts []stream.Option
	if cfg.Decoder.StrictTypes {
		opts = append(opts, stream.WithStrictTypes())
	}

	tr, err := transport.New(cfg.Backend, opts...)
	if err != nil {
		err = fmt.Errorf("failed to create transport: %w", err)
		return
	}

	convs, err := store.OpenConversationStore(config.GetConversationsDir())
	if err != nil {
		return
	}

	openFiles := store.NewOpenFileStore(cfg.Files.MaxSize)
	for _, f := range files {
		if _, err = openFiles.Open(f); err != nil {
			convs.Close()
			return
		}
	}

	session, err := chat.NewSession(tr, convs, openFiles, resumeId)
	if err != nil {
		convs.Close()
		return
	}

	return &sessionEnv{
		handler: handlers.NewSessionHandler(session),
		keys:    tui.LoadKeys(cfg.Keys),
		convs:   convs,
	}, nil
}
