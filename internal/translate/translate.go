// Package translate accumulates a bytecode.Payload stream into a resolved,
// in-memory module graph: a flat list of functions (operators left
// unparsed, as a reader window, for the disassembler and the trace
// symbolicator to decode later) plus the
// name-resolution methods package opcode's NameResolver interface needs to
// render human-readable disassembly and traces.
package translate

import (
	"github.com/saulecabrera/jac/internal/atom"
	"github.com/saulecabrera/jac/internal/bytecode"
	"github.com/saulecabrera/jac/internal/reader"
	"github.com/saulecabrera/jac/profile"
)

// ConstantPoolOffset accounts for the "current function" slot implicit in
// every function's constant pool: an operator referencing constant-pool
// index i, from function f, names the module-absolute function f+i+1 once
// functions are flattened into a single module-wide list.
const ConstantPoolOffset = 1

// FunctionTranslation is one function's resolved header plus its
// as-yet-uninterpreted operator bytes.
type FunctionTranslation struct {
	Header      bytecode.FuncHeader
	Locals      []bytecode.Local
	ClosureVars []bytecode.ClosureVar
	Operators   *reader.Reader
	Debug       *bytecode.DebugInfo
	Index       uint32
}

// argNameIndex resolves the atom index of the index'th argument. Arguments
// occupy the first ArgCount entries of Locals.
func (f *FunctionTranslation) argNameIndex(index uint32) (uint32, bool) {
	if int(index) >= len(f.Locals) {
		return 0, false
	}
	return f.Locals[index].NameAtom, true
}

// localNameIndex resolves the atom index of the index'th non-argument
// local; locals are stored after the function's arguments.
func (f *FunctionTranslation) localNameIndex(index uint32) (uint32, bool) {
	i := int(index) + int(f.Header.ArgCount)
	if i < 0 || i >= len(f.Locals) {
		return 0, false
	}
	return f.Locals[i].NameAtom, true
}

// ModuleTranslation holds every function translated from a single module,
// indexed by a flat, module-absolute FuncIndex assigned in decode order.
type ModuleTranslation struct {
	Header    bytecode.ModuleDirectory
	Functions []FunctionTranslation
}

func (m *ModuleTranslation) pushFunc(header bytecode.FuncHeader) uint32 {
	index := uint32(len(m.Functions))
	m.Functions = append(m.Functions, FunctionTranslation{Header: header, Index: index})
	return index
}

// Translation is the fully resolved result of translating one bytecode
// buffer: the interned atom table plus the module it describes.
//
// TODO: one module per Translation; multi-module programs are out of
// scope until the wire format grows a way to chain them.
type Translation struct {
	// Atoms holds this module's own interned strings, in header order,
	// excluding the built-in prefix. Addressing a module's interned
	// string by atom index requires atom.BuiltinCount + its position
	// here; AtomName and the other NameResolver methods apply that
	// offset automatically.
	Atoms  []string
	Table  *atom.Table
	Module ModuleTranslation
}

// AtomName implements opcode.NameResolver. index addresses the combined
// atom space: the built-in table followed by this module's interned
// strings.
func (t *Translation) AtomName(index uint32) (string, bool) {
	name, err := t.Table.Name(index)
	if err != nil {
		return "", false
	}
	return name, true
}

func (t *Translation) function(index uint32) (*FunctionTranslation, bool) {
	if int(index) >= len(t.Module.Functions) {
		return nil, false
	}
	return &t.Module.Functions[index], true
}

// FuncName implements opcode.NameResolver. index is already module-absolute
// — callers resolving a constant-pool-relative operand must add the current
// function's index and ConstantPoolOffset before calling this.
func (t *Translation) FuncName(index uint32) (string, bool) {
	fn, ok := t.function(index)
	if !ok {
		return "", false
	}
	return t.AtomName(fn.Header.NameAtom)
}

// LocalName implements opcode.NameResolver.
func (t *Translation) LocalName(fnIndex, index uint32) (string, bool) {
	fn, ok := t.function(fnIndex)
	if !ok {
		return "", false
	}
	atom, ok := fn.localNameIndex(index)
	if !ok {
		return "", false
	}
	return t.AtomName(atom)
}

// ArgName implements opcode.NameResolver.
func (t *Translation) ArgName(fnIndex, index uint32) (string, bool) {
	fn, ok := t.function(fnIndex)
	if !ok {
		return "", false
	}
	atom, ok := fn.argNameIndex(index)
	if !ok {
		return "", false
	}
	return t.AtomName(atom)
}

// ClosureName implements opcode.NameResolver.
func (t *Translation) ClosureName(fnIndex, index uint32) (string, bool) {
	fn, ok := t.function(fnIndex)
	if !ok {
		return "", false
	}
	if int(index) >= len(fn.ClosureVars) {
		return "", false
	}
	return t.AtomName(fn.ClosureVars[index].NameAtom)
}

// Builder accumulates a single Translate call's state: the translation
// under construction plus the index of the function currently being filled
// in.
type Builder struct {
	translation Translation
	current     uint32
}

// NewBuilder returns an empty Builder ready for Translate.
func NewBuilder() *Builder {
	return &Builder{}
}

// Translate parses data against prof and folds the resulting payload
// stream into a Translation. Operator bytes are kept as sub-reader windows
// and not interpreted here; the disassembler and the trace symbolicator
// decode them.
func (b *Builder) Translate(data []byte, prof profile.Profile) (*Translation, error) {
	payloads, err := bytecode.Decode(data, prof)
	if err != nil {
		return nil, err
	}
	for _, p := range payloads {
		switch p.Kind {
		case bytecode.Header:
			b.translation.Atoms = p.Atoms
			b.translation.Table = atom.NewTable(p.Atoms)
		case bytecode.ModuleHeader:
			b.translation.Module.Header = p.Module
		case bytecode.FunctionHeader:
			b.current = b.translation.Module.pushFunc(p.Function)
		case bytecode.FunctionLocals:
			b.translation.Module.Functions[b.current].Locals = p.Locals
		case bytecode.FunctionClosureVars:
			b.translation.Module.Functions[b.current].ClosureVars = p.ClosureVars
		case bytecode.FunctionOperators:
			b.translation.Module.Functions[b.current].Operators = p.Operators
		case bytecode.FunctionDebugInfo:
			debug := p.Debug
			b.translation.Module.Functions[b.current].Debug = &debug
		case bytecode.Version, bytecode.End:
			// no state to accumulate
		}
	}
	return &b.translation, nil
}
