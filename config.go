// Package jac is the convenience entry point into the bytecode decoder,
// translator, SSA builder, disassembler, and trace symbolicator: the
// pieces a caller wants wired together without reaching into internal/...
// directly, in the same spirit as the teacher's own root RuntimeConfig /
// builder surface over its internal/wasm packages.
package jac

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/saulecabrera/jac/internal/bytecode"
	"github.com/saulecabrera/jac/internal/disasm"
	"github.com/saulecabrera/jac/internal/ssa"
	"github.com/saulecabrera/jac/internal/trace"
	"github.com/saulecabrera/jac/internal/translate"
	"github.com/saulecabrera/jac/profile"
)

// Config controls how the pipeline functions behave: which profile to
// decode against and where to send stage logging. The zero value is not
// usable directly; build one with NewConfig.
type Config struct {
	profile profile.Profile
	logger  Logger
}

// NewConfig returns a Config using profile.Default and a Logger that
// discards every call.
func NewConfig() *Config {
	return &Config{profile: profile.Default, logger: noopLogger{}}
}

// clone ensures all fields are copied even if a future field is added.
func (c *Config) clone() *Config {
	return &Config{profile: c.profile, logger: c.logger}
}

// WithProfile returns a copy of c that decodes against p instead of
// profile.Default.
func (c *Config) WithProfile(p profile.Profile) *Config {
	ret := c.clone()
	ret.profile = p
	return ret
}

// WithLogger returns a copy of c that logs every pipeline stage to l
// instead of discarding it.
func (c *Config) WithLogger(l Logger) *Config {
	ret := c.clone()
	ret.logger = l
	return ret
}

func (c *Config) log(stage string, start time.Time, fields map[string]any) {
	fields["duration"] = time.Since(start)
	c.logger.Log(stage, fields)
}

// Decode parses data into its raw payload stream without resolving names
// or building a translation.
func (c *Config) Decode(data []byte) ([]bytecode.Payload, error) {
	start := time.Now()
	payloads, err := bytecode.Decode(data, c.profile)
	c.log("decode", start, map[string]any{"input_bytes": len(data), "ok": err == nil})
	return payloads, err
}

// Translate decodes data and accumulates it into a resolved module graph.
func (c *Config) Translate(data []byte) (*translate.Translation, error) {
	start := time.Now()
	tr, err := translate.NewBuilder().Translate(data, c.profile)
	functions := 0
	if tr != nil {
		functions = len(tr.Module.Functions)
	}
	c.log("translate", start, map[string]any{"input_bytes": len(data), "functions": functions, "ok": err == nil})
	return tr, err
}

// Disassemble decodes data and returns its full textual disassembly.
func (c *Config) Disassemble(data []byte) (string, error) {
	tr, err := c.Translate(data)
	if err != nil {
		return "", err
	}
	start := time.Now()
	out, err := disasm.Disassemble(tr)
	c.log("disassemble", start, map[string]any{"functions": len(tr.Module.Functions), "ok": err == nil})
	return out, err
}

// CompiledFunction is the SSA builder scaffold produced for one function,
// plus enough context to report it.
type CompiledFunction struct {
	Index     uint32
	Name      string
	Signature ssa.Signature
	Body      ssa.FunctionBody
}

// Compile decodes data, translates it, and runs the SSA builder scaffold
// over every function. Per §5's concurrency model, distinct functions'
// builders share only the (read-only) translation, so they may run in
// parallel goroutines bounded by GOMAXPROCS. A single function's builder
// failure does not stop the others: the returned slice holds an entry for
// every function, and the first build error, if any, is returned with it.
func (c *Config) Compile(data []byte) ([]CompiledFunction, error) {
	tr, err := c.Translate(data)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	n := len(tr.Module.Functions)
	results := make([]CompiledFunction, n)
	errs := make([]error, n)

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i := range tr.Module.Functions {
		i := i
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			fn := &tr.Module.Functions[i]
			sig, body, buildErr := ssa.NewBuilder(fn).Build()
			name, ok := tr.AtomName(fn.Header.NameAtom)
			if !ok || name == "" {
				name = fmt.Sprintf("lambda_fn_%d", fn.Index)
			}
			results[i] = CompiledFunction{Index: fn.Index, Name: name, Signature: sig, Body: body}
			errs[i] = buildErr
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	c.log("build", start, map[string]any{"functions": n, "failed": failed, "ok": failed == 0})

	return results, firstError(errs)
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Symbolicate decodes data, translates it, and annotates rawTrace against
// the resulting module, returning the rendered report one line per entry.
func (c *Config) Symbolicate(data []byte, rawTrace string) ([]string, error) {
	tr, err := c.Translate(data)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	lines, err := trace.Symbolicate(tr, rawTrace)
	c.log("symbolicate", start, map[string]any{"lines": len(lines), "ok": err == nil})
	return lines, err
}
