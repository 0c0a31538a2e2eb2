package safe

import (
	"log/slog"
	"runtime/debug"
)

// Go runs f in a new goroutine. A panic in f is logged instead of crashing
// the program, which would leave the terminal in raw mode.
func Go(f func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("[safe] go panic", "error", err, "stack", string(debug.Stack()))
			}
		}()

		f()
	}()
}
