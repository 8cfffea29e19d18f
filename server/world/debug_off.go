//go:build !debug

package world

import (
	"fmt"
	"log/slog"
)

func debugAssertFailed(msg string, args ...any) {
	slog.Warn("world: assertion failed", "detail", fmt.Sprintf(msg, args...))
}
