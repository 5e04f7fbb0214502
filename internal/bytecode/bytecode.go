// Package bytecode implements the QuickJS bytecode decoder: a finite-state
// parser that walks a raw bytecode buffer and emits a stream of typed
// Payload values (version, header, module header, per-function header,
// locals, closure vars, an operators sub-reader, optional debug info, and
// a terminal end marker). It never interprets opcodes itself — that is
// package opcode's job once the translation layer hands it a function's
// operator sub-reader.
package bytecode

import (
	"unicode/utf16"

	"github.com/saulecabrera/jac/internal/errs"
	"github.com/saulecabrera/jac/internal/reader"
	"github.com/saulecabrera/jac/profile"
)

// Kind identifies which fields of a Payload are populated.
type Kind int

const (
	Version Kind = iota
	Header
	ModuleHeader
	FunctionHeader
	FunctionLocals
	FunctionClosureVars
	FunctionOperators
	FunctionDebugInfo
	End
)

var kindNames = [...]string{
	Version:             "Version",
	Header:              "Header",
	ModuleHeader:        "ModuleHeader",
	FunctionHeader:      "FunctionHeader",
	FunctionLocals:      "FunctionLocals",
	FunctionClosureVars: "FunctionClosureVars",
	FunctionOperators:   "FunctionOperators",
	FunctionDebugInfo:   "FunctionDebugInfo",
	End:                 "End",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Local is one function-local variable record.
type Local struct {
	NameAtom   uint32
	ScopeLevel uint32
	ScopeNext  uint32
	Flags      uint8
}

// ClosureVar is one closure-variable record.
type ClosureVar struct {
	NameAtom uint32
	Outer    uint32
	Flags    uint8
}

// FuncHeader is a function section's fixed-width header.
type FuncHeader struct {
	Flags            uint16
	Strict           uint8
	NameAtom         uint32
	ArgCount         uint32
	VarCount         uint32
	DefinedArgCount  uint32
	StackSize        uint32
	ClosureVarCount  uint32
	ConstantPoolSize uint32
	BytecodeLen      uint32
	LocalCount       uint32
}

// ExportEntry is one module export directory entry.
type ExportEntry struct {
	Local          bool
	VarIndex       uint32 // valid when Local
	ModuleIndex    uint32 // valid when !Local
	LocalNameAtom  uint32 // valid when !Local
	ExportNameAtom uint32
}

// ImportEntry is one module import directory entry.
type ImportEntry struct {
	VarIndex            uint32
	NameAtom            uint32
	RequiredModuleIndex uint32
}

// ModuleDirectory is a Module section's payload.
type ModuleDirectory struct {
	NameAtom        uint32
	RequiredModules []uint32
	Exports         []ExportEntry
	StarExports     []uint32
	Imports         []ImportEntry
	TopLevelAwait   bool
}

// DebugInfo is a function's optional debug-info record.
type DebugInfo struct {
	FilenameAtom uint32
	LineNumber   uint32
	LineBuf      []byte
	ColumnNumber uint32
	ColumnBuf    []byte
}

// Payload is one emission of the decoder. Which fields are meaningful
// depends on Kind.
type Payload struct {
	Kind        Kind
	Version     byte
	Atoms       []string
	Module      ModuleDirectory
	Function    FuncHeader
	Locals      []Local
	ClosureVars []ClosureVar
	Operators   *reader.Reader
	Debug       DebugInfo
}

// Decode parses data against prof and returns the full payload stream, in
// wire order: Version, Header, then repeated Tags sections until the
// buffer is exhausted, followed by a final End payload.
func Decode(data []byte, prof profile.Profile) ([]Payload, error) {
	r := reader.New(data)
	var out []Payload

	version, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	if version != prof.ExpectedVersion {
		return nil, errs.AtOffset(errs.VersionMismatch, 0,
			"bytecode version %d does not match profile %q's expected version %d", version, prof.Name, prof.ExpectedVersion)
	}
	out = append(out, Payload{Kind: Version, Version: version})

	atoms, err := decodeAtoms(r)
	if err != nil {
		return nil, err
	}
	out = append(out, Payload{Kind: Header, Atoms: atoms})

	for !r.Done() {
		tagOffset := r.Offset()
		tag, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		switch {
		case tag == prof.ModuleTag:
			mod, err := decodeModuleDirectory(r)
			if err != nil {
				return nil, err
			}
			out = append(out, Payload{Kind: ModuleHeader, Module: mod})
		case tag == prof.FunctionBytecodeTag:
			payloads, err := decodeFunction(r, prof)
			if err != nil {
				return nil, err
			}
			out = append(out, payloads...)
		default:
			return nil, errs.AtOffset(errs.UnsupportedTag, tagOffset, "unsupported section tag byte %d", tag)
		}
	}

	out = append(out, Payload{Kind: End})
	return out, nil
}

func decodeAtoms(r *reader.Reader) ([]string, error) {
	count, err := r.ReadULEB()
	if err != nil {
		return nil, err
	}
	atoms := make([]string, count)
	for i := range atoms {
		s, err := decodeAtomString(r)
		if err != nil {
			return nil, err
		}
		atoms[i] = s
	}
	return atoms, nil
}

func decodeAtomString(r *reader.Reader) (string, error) {
	b, wide, err := r.ReadStrBytes()
	if err != nil {
		return "", err
	}
	if !wide {
		return string(b), nil
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	return string(utf16.Decode(units)), nil
}

func decodeModuleDirectory(r *reader.Reader) (ModuleDirectory, error) {
	var mod ModuleDirectory

	nameAtom, err := r.ReadAtom()
	if err != nil {
		return mod, err
	}
	mod.NameAtom = nameAtom

	reqCount, err := r.ReadULEB()
	if err != nil {
		return mod, err
	}
	mod.RequiredModules = make([]uint32, reqCount)
	for i := range mod.RequiredModules {
		a, err := r.ReadAtom()
		if err != nil {
			return mod, err
		}
		mod.RequiredModules[i] = a
	}

	exportCount, err := r.ReadULEB()
	if err != nil {
		return mod, err
	}
	mod.Exports = make([]ExportEntry, exportCount)
	for i := range mod.Exports {
		entryType, err := r.ReadU8()
		if err != nil {
			return mod, err
		}
		var e ExportEntry
		if entryType == 0 {
			e.Local = true
			if e.VarIndex, err = r.ReadULEB(); err != nil {
				return mod, err
			}
			if e.ExportNameAtom, err = r.ReadAtom(); err != nil {
				return mod, err
			}
		} else {
			if e.ModuleIndex, err = r.ReadULEB(); err != nil {
				return mod, err
			}
			if e.LocalNameAtom, err = r.ReadAtom(); err != nil {
				return mod, err
			}
			if e.ExportNameAtom, err = r.ReadAtom(); err != nil {
				return mod, err
			}
		}
		mod.Exports[i] = e
	}

	starCount, err := r.ReadULEB()
	if err != nil {
		return mod, err
	}
	mod.StarExports = make([]uint32, starCount)
	for i := range mod.StarExports {
		idx, err := r.ReadULEB()
		if err != nil {
			return mod, err
		}
		mod.StarExports[i] = idx
	}

	importCount, err := r.ReadULEB()
	if err != nil {
		return mod, err
	}
	mod.Imports = make([]ImportEntry, importCount)
	for i := range mod.Imports {
		var e ImportEntry
		if e.VarIndex, err = r.ReadULEB(); err != nil {
			return mod, err
		}
		if e.NameAtom, err = r.ReadAtom(); err != nil {
			return mod, err
		}
		if e.RequiredModuleIndex, err = r.ReadULEB(); err != nil {
			return mod, err
		}
		mod.Imports[i] = e
	}

	awaitByte, err := r.ReadU8()
	if err != nil {
		return mod, err
	}
	mod.TopLevelAwait = awaitByte != 0

	return mod, nil
}

func decodeFunction(r *reader.Reader, prof profile.Profile) ([]Payload, error) {
	var payloads []Payload

	var h FuncHeader
	flags, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	h.Flags = flags
	if h.Strict, err = r.ReadU8(); err != nil {
		return nil, err
	}
	if h.NameAtom, err = r.ReadAtom(); err != nil {
		return nil, err
	}
	for _, field := range []*uint32{
		&h.ArgCount, &h.VarCount, &h.DefinedArgCount, &h.StackSize,
		&h.ClosureVarCount, &h.ConstantPoolSize, &h.BytecodeLen, &h.LocalCount,
	} {
		v, err := r.ReadULEB()
		if err != nil {
			return nil, err
		}
		*field = v
	}
	payloads = append(payloads, Payload{Kind: FunctionHeader, Function: h})

	locals := make([]Local, h.LocalCount)
	for i := range locals {
		var l Local
		if l.NameAtom, err = r.ReadAtom(); err != nil {
			return nil, err
		}
		if l.ScopeLevel, err = r.ReadULEB(); err != nil {
			return nil, err
		}
		if l.ScopeNext, err = r.ReadULEB(); err != nil {
			return nil, err
		}
		if l.Flags, err = r.ReadU8(); err != nil {
			return nil, err
		}
		locals[i] = l
	}
	payloads = append(payloads, Payload{Kind: FunctionLocals, Locals: locals})

	closureVars := make([]ClosureVar, h.ClosureVarCount)
	for i := range closureVars {
		var c ClosureVar
		if c.NameAtom, err = r.ReadAtom(); err != nil {
			return nil, err
		}
		if c.Outer, err = r.ReadULEB(); err != nil {
			return nil, err
		}
		if c.Flags, err = r.ReadU8(); err != nil {
			return nil, err
		}
		closureVars[i] = c
	}
	payloads = append(payloads, Payload{Kind: FunctionClosureVars, ClosureVars: closureVars})

	ops, err := r.Window(int(h.BytecodeLen))
	if err != nil {
		return nil, err
	}
	payloads = append(payloads, Payload{Kind: FunctionOperators, Operators: ops})

	if prof.HasDebugInfo(h.Flags) {
		debug, err := decodeDebugInfo(r)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, Payload{Kind: FunctionDebugInfo, Debug: debug})
	}

	return payloads, nil
}

func decodeDebugInfo(r *reader.Reader) (DebugInfo, error) {
	var d DebugInfo
	var err error
	if d.FilenameAtom, err = r.ReadAtom(); err != nil {
		return d, err
	}
	if d.LineNumber, err = r.ReadULEB(); err != nil {
		return d, err
	}
	lineLen, err := r.ReadULEB()
	if err != nil {
		return d, err
	}
	if d.LineBuf, err = r.ReadBytes(int(lineLen)); err != nil {
		return d, err
	}
	if d.ColumnNumber, err = r.ReadULEB(); err != nil {
		return d, err
	}
	columnLen, err := r.ReadULEB()
	if err != nil {
		return d, err
	}
	if d.ColumnBuf, err = r.ReadBytes(int(columnLen)); err != nil {
		return d, err
	}
	return d, nil
}
