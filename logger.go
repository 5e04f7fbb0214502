package jac

import (
	"fmt"
	"io"
	"sort"
)

// Writer is the minimal output seam a Logger writes to: an io.Writer that
// also supports unbuffered string writes, matching the shape the teacher
// codebase's own logging seam (experimental/logging) uses instead of
// threading a structured-logging type through every call.
type Writer interface {
	io.Writer
	io.StringWriter
}

// Logger receives one call per pipeline stage (decode, translate, build,
// disassemble, symbolicate). fields are stage-specific (input_bytes,
// duration, functions, ok, ...).
type Logger interface {
	Log(stage string, fields map[string]any)
}

// NewLogger returns the default Logger, which writes one line per stage to
// w in "stage=<s> k=v k=v ..." form, fields sorted by key for reproducible
// output.
func NewLogger(w Writer) Logger {
	return &writerLogger{w: w}
}

type writerLogger struct{ w Writer }

func (l *writerLogger) Log(stage string, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	l.w.WriteString("stage=")
	l.w.WriteString(stage)
	for _, k := range keys {
		fmt.Fprintf(l.w, " %s=%v", k, fields[k])
	}
	l.w.WriteString("\n")
}

// noopLogger discards every call; used when a Config has no Logger set.
type noopLogger struct{}

func (noopLogger) Log(string, map[string]any) {}
