package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ryanreadbooks/tokkistream/stream"
)

const defaultChunkSize = 4 * 1024

// EmitFunc receives decoded events in order. Returning false stops reading.
type EmitFunc func(ev stream.Event) bool

// ReadBody reads r chunk by chunk into dec until a terminal event, the end of
// r, or ctx is done. A multi-byte UTF-8 sequence cut by a read is held back
// until the rest of it arrives.
//
// On EOF the decoder is finished and on a read failure it is aborted, so the
// caller always sees a terminal event unless ctx was cancelled.
func ReadBody(ctx context.Context, r io.Reader, dec *stream.Decoder, chunkSize int, emit EmitFunc) error {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	var (
		buf     = make([]byte, chunkSize)
		pending []byte
	)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(buf)
		if n > 0 {
			data := append(pending, buf[:n]...)
			cut := completeUTF8(data)
			pending = append([]byte(nil), data[cut:]...)

			if !emitEach(emit, dec.Feed(string(data[:cut]))) || dec.Terminated() {
				return nil
			}
		}

		if err == nil {
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if errors.Is(err, io.EOF) {
			if len(pending) > 0 {
				emitEach(emit, dec.Feed(string(pending)))
			}
			emitEach(emit, dec.Finish())
			return nil
		}

		emitEach(emit, dec.Abort(fmt.Sprintf("stream read failed: %v", err)))
		return fmt.Errorf("failed to read stream body: %w", err)
	}
}

func emitEach(emit EmitFunc, events []stream.Event) bool {
	for _, ev := range events {
		if !emit(ev) {
			return false
		}
	}
	return true
}

// completeUTF8 returns the length of the longest prefix of p that does not end
// in the middle of a UTF-8 sequence.
func completeUTF8(p []byte) int {
	end := len(p)
	// a sequence is at most utf8.UTFMax bytes, look back no further
	for i := end - 1; i >= 0 && i >= end-utf8.UTFMax; i-- {
		if !utf8.RuneStart(p[i]) {
			continue
		}
		if utf8.FullRune(p[i:end]) {
			return end
		}
		return i
	}

	return end
}
