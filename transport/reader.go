package transport

import (
	"context"
	"fmt"
	"io"

	"github.com/ryanreadbooks/tokkistream/stream"
)

var _ Transport = (*ReaderTransport)(nil)

// ReaderTransport decodes whatever body Source hands out, such as a captured
// stream file. The body is closed when the stream ends or is cancelled.
type ReaderTransport struct {
	Source    func(ctx context.Context, req *Request) (io.ReadCloser, error)
	ChunkSize int
	Options   []stream.Option
}

func (t *ReaderTransport) Open(ctx context.Context, req *Request) (*Stream, error) {
	body, err := t.Source(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream source: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	dec := stream.NewDecoder(t.Options...)

	return startStream(ctx, cancel, dec, func(ctx context.Context, emit EmitFunc) error {
		// a blocked Read only returns once the body is closed
		stop := context.AfterFunc(ctx, func() { body.Close() })
		defer func() {
			if stop() {
				body.Close()
			}
		}()

		return ReadBody(ctx, body, dec, t.ChunkSize, emit)
	}), nil
}
