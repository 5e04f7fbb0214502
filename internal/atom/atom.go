// Package atom implements the QuickJS atom table: a fixed built-in name
// list (JS keywords, well-known property names, typed-array constructor
// names, error types, and well-known symbols) prepended to whatever
// strings a given module's header interns.
package atom

import "github.com/saulecabrera/jac/internal/errs"

// builtinNames is the fixed built-in atom table, ported verbatim from the
// reference QuickJS build this toolchain targets. Index 0 is the
// sentinel "no name" atom used by anonymous functions.
var builtinNames = [...]string{
	"", // JS_ATOM_NULL: default name for lambda functions, rendered as "".
	"null",
	"false",
	"true",
	"if",
	"else",
	"return",
	"var",
	"this",
	"delete",
	"void",
	"typeof",
	"new",
	"in",
	"instanceof",
	"do",
	"while",
	"for",
	"break",
	"continue",
	"switch",
	"case",
	"default",
	"throw",
	"try",
	"catch",
	"finally",
	"function",
	"debugger",
	"with",
	"class",
	"const",
	"enum",
	"export",
	"extends",
	"import",
	"super",
	"implements",
	"interface",
	"let",
	"package",
	"private",
	"protected",
	"public",
	"static",
	"yield",
	"await",
	"",
	"length",
	"fileName",
	"lineNumber",
	"columnNumber",
	"message",
	"cause",
	"errors",
	"stack",
	"name",
	"toString",
	"toLocaleString",
	"valueOf",
	"eval",
	"prototype",
	"constructor",
	"configurable",
	"writable",
	"enumerable",
	"value",
	"get",
	"set",
	"of",
	"__proto__",
	"undefined",
	"number",
	"boolean",
	"string",
	"object",
	"symbol",
	"integer",
	"unknown",
	"arguments",
	"callee",
	"caller",
	"<eval>",
	"<ret>",
	"<var>",
	"<arg_var>",
	"<with>",
	"lastIndex",
	"target",
	"index",
	"input",
	"defineProperties",
	"apply",
	"join",
	"concat",
	"split",
	"construct",
	"getPrototypeOf",
	"setPrototypeOf",
	"isExtensible",
	"preventExtensions",
	"has",
	"deleteProperty",
	"defineProperty",
	"getOwnPropertyDescriptor",
	"ownKeys",
	"add",
	"done",
	"next",
	"values",
	"source",
	"flags",
	"global",
	"unicode",
	"raw",
	"new.target",
	"this.active_func",
	"<home_object>",
	"<computed_field>",
	"<static_computed_field>",
	"<class_fields_init>",
	"<brand>",
	"#constructor",
	"as",
	"from",
	"meta",
	"*default*",
	"*",
	"Module",
	"then",
	"resolve",
	"reject",
	"promise",
	"proxy",
	"revoke",
	"async",
	"exec",
	"groups",
	"indices",
	"status",
	"reason",
	"globalThis",
	"bigint",
	"bigfloat",
	"bigdecimal",
	"roundingMode",
	"maximumSignificantDigits",
	"maximumFractionDigits",
	"not-equal",
	"timed-out",
	"ok",
	"toJSON",
	"Object",
	"Array",
	"Error",
	"Number",
	"String",
	"Boolean",
	"Symbol",
	"Arguments",
	"Math",
	"JSON",
	"Date",
	"Function",
	"GeneratorFunction",
	"ForInIterator",
	"RegExp",
	"ArrayBuffer",
	"SharedArrayBuffer",
	"Uint8ClampedArray",
	"Int8Array",
	"Uint8Array",
	"Int16Array",
	"Uint16Array",
	"Int32Array",
	"Uint32Array",
	"BigInt64Array",
	"BigUint64Array",
	"Float32Array",
	"Float64Array",
	"DataView",
	"BigInt",
	"BigFloat",
	"BigFloatEnv",
	"BigDecimal",
	"OperatorSet",
	"Operators",
	"Map",
	"Set",
	"WeakMap",
	"WeakSet",
	"Map Iterator",
	"Set Iterator",
	"Array Iterator",
	"String Iterator",
	"RegExp String Iterator",
	"Generator",
	"Proxy",
	"Promise",
	"PromiseResolveFunction",
	"PromiseRejectFunction",
	"AsyncFunction",
	"AsyncFunctionResolve",
	"AsyncFunctionReject",
	"AsyncGeneratorFunction",
	"AsyncGenerator",
	"EvalError",
	"RangeError",
	"ReferenceError",
	"SyntaxError",
	"TypeError",
	"URIError",
	"InternalError",
	"<brand>",
	"Symbol.toPrimitive",
	"Symbol.iterator",
	"Symbol.match",
	"Symbol.matchAll",
	"Symbol.replace",
	"Symbol.search",
	"Symbol.split",
	"Symbol.toStringTag",
	"Symbol.isConcatSpreadable",
	"Symbol.hasInstance",
	"Symbol.species",
	"Symbol.unscopables",
	"Symbol.asyncIterator",
	"Symbol.operatorSet",
}

// BuiltinCount is the number of reserved built-in atom slots preceding any
// module's own interned strings.
const BuiltinCount = len(builtinNames)

// Table is an atom table: the fixed built-in names followed by a given
// module's interned strings, in header order.
type Table struct {
	interned []string
}

// NewTable builds a Table from a module header's interned atom strings,
// in the order they were decoded.
func NewTable(interned []string) *Table {
	return &Table{interned: interned}
}

// Len reports the total number of addressable atoms: built-ins plus
// interned strings.
func (t *Table) Len() int {
	return BuiltinCount + len(t.interned)
}

// Name resolves an atom index to its string, or UnknownAtom if index is
// out of range.
func (t *Table) Name(index uint32) (string, error) {
	i := int(index)
	if i < BuiltinCount {
		return builtinNames[i], nil
	}
	i -= BuiltinCount
	if i < 0 || i >= len(t.interned) {
		return "", errs.AtOffset(errs.UnknownAtom, -1, "atom index %d out of range (table has %d entries)", index, t.Len())
	}
	return t.interned[i], nil
}
