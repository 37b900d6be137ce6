// internal/recovery/recovery.go
package recovery

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"go.uber.org/zap"
)

// stderr is swapped in tests
var stderr io.Writer = os.Stderr

// HandlePanic should be deferred at the top of main(). It reports the panic
// through the global zap logger and on stderr, then exits with code 1.
func HandlePanic() {
	if r := recover(); r != nil {
		report(r, debug.Stack())
		os.Exit(1)
	}
}

// HandlePanicFunc is HandlePanic with a cleanup step run before exit.
func HandlePanicFunc(cleanup func()) {
	if r := recover(); r != nil {
		report(r, debug.Stack())
		if cleanup != nil {
			cleanup()
		}
		os.Exit(1)
	}
}

// report writes the panic to the global logger and stderr. The global
// logger is a no-op until the root command installs one.
func report(r any, stack []byte) {
	logger := zap.L()
	logger.Error("panic", zap.Any("value", r), zap.ByteString("stack", stack))
	_ = logger.Sync()
	_, _ = fmt.Fprintf(stderr, "FATAL: %v\n\nStack trace:\n%s\n", r, stack)
}
