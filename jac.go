package jac

import (
	"github.com/saulecabrera/jac/internal/bytecode"
)

// Decode is a convenience wrapper around NewConfig().Decode, for callers
// that don't need a custom profile or logger.
func Decode(data []byte) ([]bytecode.Payload, error) {
	return NewConfig().Decode(data)
}

// Disassemble is a convenience wrapper around NewConfig().Disassemble.
func Disassemble(data []byte) (string, error) {
	return NewConfig().Disassemble(data)
}

// Compile is a convenience wrapper around NewConfig().Compile.
func Compile(data []byte) ([]CompiledFunction, error) {
	return NewConfig().Compile(data)
}

// Symbolicate is a convenience wrapper around NewConfig().Symbolicate.
func Symbolicate(data []byte, rawTrace string) ([]string, error) {
	return NewConfig().Symbolicate(data, rawTrace)
}
