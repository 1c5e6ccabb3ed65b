package lineprof

// FileID is an opaque token the host assigns to a source file. The host must
// hand out the same FileID for the same file for the whole session.
type FileID uint64

// LineEvent is one notification that execution crossed into a new line.
type LineEvent struct {
	File FileID
	Path string
	Line int
	// Time is a microsecond timestamp from a monotonic clock.
	Time uint64
}

// LineHook receives line events. Hosts call it synchronously, once per line
// transition, before the line executes.
type LineHook func(ev LineEvent)

// HookHandle identifies a registered LineHook.
type HookHandle uint64

// Host is the execution engine a Profiler instruments.
type Host interface {
	RegisterLineHook(hook LineHook) HookHandle
	UnregisterLineHook(h HookHandle)
	// CanonicalFileID resolves a user-supplied file name to the FileID that
	// later line events for that file will carry.
	CanonicalFileID(name string) FileID
}
