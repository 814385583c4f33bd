// Package diagnostic provides the process-wide logger the compilation
// pipeline reports fatal-but-recoverable conditions to, e.g. a codegen
// fallback taken after a backend error. It is the only externally shared
// object a CompileOptions caller needs to supply.
package diagnostic

import "log"

// Logger receives formatted diagnostic messages. It has the single method
// the pipeline actually calls; *log.Logger has no Errorf method, so it is
// wrapped in Std to satisfy this interface.
type Logger interface {
	Errorf(format string, args ...any)
}

// noop discards every message. It is the default when no Logger is
// supplied, matching the teacher's library-not-CLI stance: by default
// nothing is printed to a process the caller didn't ask to have things
// printed to.
type noop struct{}

func (noop) Errorf(string, ...any) {}

// Noop returns a Logger that discards everything.
func Noop() Logger { return noop{} }

// Std adapts the standard library's *log.Logger to the Logger interface for
// CLI callers that want diagnostics on stderr.
type Std struct {
	L *log.Logger
}

func (s Std) Errorf(format string, args ...any) {
	if s.L == nil {
		return
	}
	s.L.Printf(format, args...)
}
