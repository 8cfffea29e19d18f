package world

// assertDebug checks an invariant that is expensive or only meaningful
// while developing: under the debug build tag a violation panics, and
// otherwise it is logged and the simulation continues.
func assertDebug(ok bool, msg string, args ...any) {
	if ok {
		return
	}
	debugAssertFailed(msg, args...)
}
