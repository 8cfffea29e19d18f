//go:build debug

package world

import "fmt"

func debugAssertFailed(msg string, args ...any) {
	panic(fmt.Sprintf(msg, args...))
}
