package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ryanreadbooks/tokkistream/config"
	"github.com/ryanreadbooks/tokkistream/pkg/xstring"
	"github.com/ryanreadbooks/tokkistream/stream"
)

const closeWriteTimeout = time.Second

var _ Transport = (*WebSocketTransport)(nil)

// WebSocketTransport sends the request as one text message and decodes the
// text frames that follow. Every frame holds whole records.
type WebSocketTransport struct {
	dialer  *websocket.Dialer
	url     string
	headers http.Header
	opts    []stream.Option
}

func NewWebSocket(c config.BackendConfig, opts ...stream.Option) (*WebSocketTransport, error) {
	target := c.WebSocketURL
	if target == "" {
		derived, err := websocketURL(c.BaseURL, c.StreamPath)
		if err != nil {
			return nil, err
		}
		target = derived
	}

	headers := make(http.Header, len(c.Headers))
	for k, v := range c.Headers {
		headers.Set(k, v)
	}

	return &WebSocketTransport{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: c.ConnectTimeout,
		},
		url:     target,
		headers: headers,
		opts:    opts,
	}, nil
}

// websocketURL turns http(s)://host/base + path into ws(s)://host/base/path.
func websocketURL(base, path string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("backend base url or websocket url is required")
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid backend url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported backend url scheme %q", u.Scheme)
	}

	return u.JoinPath(path).String(), nil
}

func (t *WebSocketTransport) Open(ctx context.Context, req *Request) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	conn, resp, err := t.dialer.DialContext(ctx, t.url, t.headers)
	if err != nil {
		cancel()
		if resp != nil && errors.Is(err, websocket.ErrBadHandshake) {
			return nil, &StatusError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("failed to dial websocket: %w", err)
	}

	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		cancel()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	dec := stream.NewDecoder(t.opts...)
	return startStream(ctx, cancel, dec, func(ctx context.Context, emit EmitFunc) error {
		defer conn.Close()
		// ReadMessage does not watch ctx, closing the conn unblocks it
		stop := context.AfterFunc(ctx, func() { conn.Close() })
		defer stop()

		return readFrames(ctx, conn, dec, emit)
	}), nil
}

func readFrames(ctx context.Context, conn *websocket.Conn, dec *stream.Decoder, emit EmitFunc) error {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				emitEach(emit, dec.Finish())
				return nil
			}

			emitEach(emit, dec.Abort(fmt.Sprintf("websocket read failed: %v", err)))
			return fmt.Errorf("failed to read websocket frame: %w", err)
		}

		if kind != websocket.TextMessage {
			continue
		}

		// every frame is a fresh buffer
		frame := xstring.FromBytes(data)
		if !strings.HasSuffix(frame, "\n") {
			frame += "\n"
		}

		if !emitEach(emit, dec.Feed(frame)) {
			return nil
		}

		if dec.Terminated() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(closeWriteTimeout))
			return nil
		}
	}
}
