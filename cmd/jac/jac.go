// Command jac is a thin CLI over the root jac package: decode, disasm,
// compile, and symbolicate subcommands, each reading its bytecode input
// from a file argument or stdin, with optional transparent gzip/zstd
// decompression.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/saulecabrera/jac"
	"github.com/saulecabrera/jac/profile"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr))
}

// doMain is separated out for the purpose of unit testing.
func doMain(stdOut, stdErr io.Writer) int {
	flag.CommandLine.SetOutput(stdErr)
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage(stdErr)
		return 1
	}

	subCmd := flag.Arg(0)
	args := flag.Args()[1:]
	switch subCmd {
	case "decode":
		return doDecode(args, stdOut, stdErr)
	case "disasm":
		return doDisasm(args, stdOut, stdErr)
	case "compile":
		return doCompile(args, stdOut, stdErr)
	case "symbolicate":
		return doSymbolicate(args, stdOut, stdErr)
	default:
		fmt.Fprintln(stdErr, "invalid command")
		printUsage(stdErr)
		return 1
	}
}

func doDecode(args []string, stdOut, stdErr io.Writer) int {
	flags, profilePath := newSubFlagSet("decode", stdErr)
	_ = flags.Parse(args)

	cfg, rc := configFromProfileFlag(*profilePath, stdErr)
	if rc != 0 {
		return rc
	}

	data, rc := loadInput(flags.Arg(0), stdErr)
	if rc != 0 {
		return rc
	}

	payloads, err := cfg.Decode(data)
	if err != nil {
		return reportError(stdErr, "decode", err)
	}
	for _, p := range payloads {
		fmt.Fprintf(stdOut, "%v\n", p.Kind)
	}
	return 0
}

func doDisasm(args []string, stdOut, stdErr io.Writer) int {
	flags, profilePath := newSubFlagSet("disasm", stdErr)
	_ = flags.Parse(args)

	cfg, rc := configFromProfileFlag(*profilePath, stdErr)
	if rc != 0 {
		return rc
	}

	data, rc := loadInput(flags.Arg(0), stdErr)
	if rc != 0 {
		return rc
	}

	out, err := cfg.Disassemble(data)
	if err != nil {
		return reportError(stdErr, "disasm", err)
	}
	fmt.Fprint(stdOut, out)
	return 0
}

func doCompile(args []string, stdOut, stdErr io.Writer) int {
	flags, profilePath := newSubFlagSet("compile", stdErr)
	_ = flags.Parse(args)

	cfg, rc := configFromProfileFlag(*profilePath, stdErr)
	if rc != 0 {
		return rc
	}

	data, rc := loadInput(flags.Arg(0), stdErr)
	if rc != 0 {
		return rc
	}

	fns, err := cfg.Compile(data)
	if err != nil {
		return reportError(stdErr, "compile", err)
	}
	for _, fn := range fns {
		fmt.Fprintf(stdOut, "func %s: %d locals, %d blocks\n", fn.Name, len(fn.Body.Locals), len(fn.Body.Blocks))
	}
	return 0
}

func doSymbolicate(args []string, stdOut, stdErr io.Writer) int {
	flags, profilePath := newSubFlagSet("symbolicate", stdErr)
	_ = flags.Parse(args)

	cfg, rc := configFromProfileFlag(*profilePath, stdErr)
	if rc != 0 {
		return rc
	}

	if flags.NArg() < 2 {
		fmt.Fprintln(stdErr, "missing bytecode file and trace file")
		return 1
	}

	data, rc := loadInput(flags.Arg(0), stdErr)
	if rc != 0 {
		return rc
	}

	traceBytes, rc := loadInput(flags.Arg(1), stdErr)
	if rc != 0 {
		return rc
	}

	lines, err := cfg.Symbolicate(data, string(traceBytes))
	if err != nil {
		return reportError(stdErr, "symbolicate", err)
	}
	for _, line := range lines {
		fmt.Fprintln(stdOut, line)
	}
	return 0
}

func newSubFlagSet(name string, stdErr io.Writer) (*flag.FlagSet, *string) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(stdErr)
	profilePath := flags.String("profile", "", "path to a YAML profile overriding the default bytecode profile")
	return flags, profilePath
}

func configFromProfileFlag(path string, stdErr io.Writer) (*jac.Config, int) {
	cfg := jac.NewConfig().WithLogger(jac.NewLogger(stderrWriter{stdErr}))
	if path == "" {
		return cfg, 0
	}
	p, err := profile.LoadFile(path)
	if err != nil {
		fmt.Fprintf(stdErr, "error loading profile: %v\n", err)
		return nil, 1
	}
	return cfg.WithProfile(p), 0
}

// stderrWriter adapts an io.Writer to jac.Writer (io.Writer + io.StringWriter).
type stderrWriter struct{ io.Writer }

func (w stderrWriter) WriteString(s string) (int, error) {
	return io.WriteString(w.Writer, s)
}

// loadInput reads path (or stdin, for "" or "-"), transparently
// decompressing a .gz or .zst suffix.
func loadInput(path string, stdErr io.Writer) ([]byte, int) {
	var r io.Reader
	if path == "" || path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(stdErr, "error opening input: %v\n", err)
			return nil, 1
		}
		defer f.Close()
		r = f
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			fmt.Fprintf(stdErr, "error opening gzip input: %v\n", err)
			return nil, 1
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			fmt.Fprintf(stdErr, "error opening zstd input: %v\n", err)
			return nil, 1
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		fmt.Fprintf(stdErr, "error reading input: %v\n", err)
		return nil, 1
	}
	return data, 0
}

func reportError(stdErr io.Writer, stage string, err error) int {
	fmt.Fprintf(stdErr, "%s: %v\n", stage, err)
	return 1
}

func printUsage(stdErr io.Writer) {
	fmt.Fprintln(stdErr, "jac CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  jac <command> [-profile path] <bytecode-file> [trace-file]")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Commands:")
	fmt.Fprintln(stdErr, "  decode\t\tDumps the raw payload stream")
	fmt.Fprintln(stdErr, "  disasm\t\tPrints disassembly")
	fmt.Fprintln(stdErr, "  compile\t\tRuns the SSA builder and prints a per-function summary")
	fmt.Fprintln(stdErr, "  symbolicate\t\tAnnotates a trace file against the bytecode")
}
