package testing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lmiller1990/huddle/types"
)

// NewTestLogger returns a types.Logger that writes through t.Log, so
// coordinator and bus output interleaves with the test's own log stream and
// only surfaces for failing tests (or under -v).
//
// Key/value pairs are rendered as key=value, matching how the library's
// structured log calls read at the call site.
//
// Parameters:
//   - t: Testing context the output attaches to
//
// Returns:
//   - types.Logger: Logger for test runs
//
// Example:
//
//	coord, _ := huddle.New(&cfg, src, huddle.WithLogger(huddletesting.NewTestLogger(t)))
func NewTestLogger(t *testing.T) types.Logger {
	return &testLogger{t: t}
}

type testLogger struct {
	t *testing.T
}

var _ types.Logger = (*testLogger)(nil)

// format renders "LEVEL msg key=value key=value".
func (l *testLogger) format(level, msg string, keysAndValues []any) string {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)

	i := 0
	for ; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	if i < len(keysAndValues) {
		// Dangling key without a value.
		fmt.Fprintf(&b, " %v=", keysAndValues[i])
	}

	return b.String()
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.t.Log(l.format("DEBUG", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.t.Log(l.format("INFO", msg, keysAndValues))
}

func (l *testLogger) Warn(msg string, keysAndValues ...any) {
	l.t.Log(l.format("WARN", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.t.Log(l.format("ERROR", msg, keysAndValues))
}

func (l *testLogger) Fatal(msg string, keysAndValues ...any) {
	l.t.Fatal(l.format("FATAL", msg, keysAndValues))
}
