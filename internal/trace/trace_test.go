package trace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saulecabrera/jac/internal/atom"
	"github.com/saulecabrera/jac/internal/errs"
	"github.com/saulecabrera/jac/internal/leb128"
	"github.com/saulecabrera/jac/internal/translate"
	"github.com/saulecabrera/jac/profile"
)

type buf struct{ b []byte }

func (w *buf) u8(v byte) *buf    { w.b = append(w.b, v); return w }
func (w *buf) u16(v uint16) *buf { w.b = append(w.b, byte(v), byte(v>>8)); return w }
func (w *buf) uleb(v uint32) *buf {
	w.b = append(w.b, leb128.EncodeUint32(v)...)
	return w
}
func (w *buf) atom(idx uint32) *buf { return w.uleb(idx << 1) }

// internedAtom addresses the i'th string a test's header() call interns,
// past the built-in table that precedes it in the real atom index space.
func (w *buf) internedAtom(i uint32) *buf { return w.atom(uint32(atom.BuiltinCount) + i) }
func (w *buf) narrowStr(s string) *buf {
	w.uleb(uint32(len(s)) << 1)
	w.b = append(w.b, s...)
	return w
}
func (w *buf) raw(bs ...byte) *buf { w.b = append(w.b, bs...); return w }

func header(atoms ...string) *buf {
	w := &buf{}
	w.u8(profile.Default.ExpectedVersion)
	w.uleb(uint32(len(atoms)))
	for _, a := range atoms {
		w.narrowStr(a)
	}
	return w
}

func fixedU32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// program builds a module with one named function "fn" whose body is
// `GetVar "foo"; ReturnUndef` (opcodes at offsets 0 and 5).
func program() []byte {
	w := header("mod", "fn", "foo").
		u8(profile.Default.ModuleTag).
		internedAtom(0).uleb(0).uleb(0).uleb(0).uleb(0).u8(0)

	ops := []byte{}
	ops = append(ops, 56) // GetVar
	ops = append(ops, fixedU32(uint32(atom.BuiltinCount)+2)...)
	ops = append(ops, 41) // ReturnUndef

	w.u8(profile.Default.FunctionBytecodeTag).
		u16(0).
		u8(0).
		internedAtom(1).
		uleb(0).uleb(0).uleb(0).uleb(0).uleb(0).uleb(0).
		uleb(uint32(len(ops))).
		uleb(0)
	w.raw(ops...)

	return w.b
}

func translation(t *testing.T) *translate.Translation {
	t.Helper()
	b := translate.NewBuilder()
	tr, err := b.Translate(program(), profile.Default)
	require.NoError(t, err)
	return tr
}

// anonymousProgram builds a module with one function whose name atom is the
// real "no name" sentinel (atom index 0), body `Nop; ReturnUndef`.
func anonymousProgram() []byte {
	w := header("mod").
		u8(profile.Default.ModuleTag).
		internedAtom(0).uleb(0).uleb(0).uleb(0).uleb(0).u8(0)

	ops := []byte{181, 41} // Nop, ReturnUndef
	w.u8(profile.Default.FunctionBytecodeTag).
		u16(0).
		u8(0).
		atom(0). // built-in sentinel atom 0 == "" (no name)
		uleb(0).uleb(0).uleb(0).uleb(0).uleb(0).uleb(0).
		uleb(uint32(len(ops))).
		uleb(0)
	w.raw(ops...)

	return w.b
}

func anonymousTranslation(t *testing.T) *translate.Translation {
	t.Helper()
	b := translate.NewBuilder()
	tr, err := b.Translate(anonymousProgram(), profile.Default)
	require.NoError(t, err)
	return tr
}

func TestParseClassifiesEventKinds(t *testing.T) {
	raw := "header\n" +
		"1,0,START,0,\n" +
		"0,0,00,3,\n" +
		"1,0,05,2,\n" +
		"1,5,00,1,\n" +
		"1,0,END,0,\n"
	events, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, events, 5)

	require.Equal(t, FunctionStart, events[0].Kind)
	require.Equal(t, uint32(1), events[0].FuncID)

	require.Equal(t, SystemSetup, events[1].Kind)
	require.Equal(t, uint32(3), events[1].Fuel)

	require.Equal(t, FunctionSetup, events[2].Kind)
	require.Equal(t, uint32(1), events[2].FuncID)
	require.Equal(t, uint32(2), events[2].Fuel)

	require.Equal(t, OpcodeRun, events[3].Kind)
	require.Equal(t, uint32(5), events[3].Offset)
	require.Equal(t, byte(0x00), events[3].OpcodeByte)

	require.Equal(t, FunctionEnd, events[4].Kind)
}

func TestParseSkipsBlankLines(t *testing.T) {
	raw := "header\n1,0,START,0,\n\n1,0,END,0,\n"
	events, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, events, 2)
}

func TestParseRejectsMalformedLine(t *testing.T) {
	raw := "header\nnotanumber,0,START,0,\n"
	_, err := Parse(raw)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.MalformedTrace))
}

func TestParseNativeCallsFlatSequence(t *testing.T) {
	calls, err := parseNativeCalls("3:S:10|3:E:8")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	require.Equal(t, uint32(3), calls[0].WasmFuncID)
	require.Equal(t, uint32(10), calls[0].StartFuel)
	require.Equal(t, uint32(8), calls[0].EndFuel)
}

func TestParseNativeCallsNested(t *testing.T) {
	calls, err := parseNativeCalls("1:S:10|2:S:9|2:E:7|1:E:5")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	require.Equal(t, uint32(1), calls[0].WasmFuncID)
	require.Len(t, calls[0].Calls, 1)
	require.Equal(t, uint32(2), calls[0].Calls[0].WasmFuncID)
	require.Equal(t, uint32(7), calls[0].Calls[0].EndFuel)
	require.Equal(t, uint32(5), calls[0].EndFuel)
}

func TestParseNativeCallsRootEndIsMalformed(t *testing.T) {
	// A top-level E with wasm_func_id 0 must never be treated as closing
	// the (nonexistent) root frame.
	_, err := parseNativeCalls("0:E:1")
	require.Error(t, err)
}

func TestParseNativeCallsUnmatchedEndIsMalformed(t *testing.T) {
	_, err := parseNativeCalls("1:S:10|2:E:8")
	require.Error(t, err)
}

func TestMatchPairExactAlignment(t *testing.T) {
	tr := translation(t)
	meta, err := buildOperatorMetadata(tr)
	require.NoError(t, err)

	defn := meta[0]
	recovered := []offsetByte{{offset: 0, b: 56}, {offset: 5, b: 41}}
	matched, ok := matchPair(recovered, defn)
	require.True(t, ok)
	require.Len(t, matched, 2)
}

func TestMatchPairRejectsByteMismatchAtSameOffset(t *testing.T) {
	tr := translation(t)
	meta, err := buildOperatorMetadata(tr)
	require.NoError(t, err)

	recovered := []offsetByte{{offset: 0, b: 99}}
	_, ok := matchPair(recovered, meta[0])
	require.False(t, ok)
}

func TestMatchAllFunctionsClaimsOneToOne(t *testing.T) {
	tr := translation(t)
	meta, err := buildOperatorMetadata(tr)
	require.NoError(t, err)

	recovered := map[uint32][]offsetByte{
		7: {{offset: 0, b: 56}, {offset: 5, b: 41}},
	}
	matched := matchAllFunctions(meta, recovered)
	require.Contains(t, matched, uint32(7))
	require.Equal(t, uint32(0), matched[7].funcIndex)
}

func TestMatchAllFunctionsLeavesUnmatchedOut(t *testing.T) {
	tr := translation(t)
	meta, err := buildOperatorMetadata(tr)
	require.NoError(t, err)

	recovered := map[uint32][]offsetByte{
		9: {{offset: 0, b: 0xff}},
	}
	matched := matchAllFunctions(meta, recovered)
	require.NotContains(t, matched, uint32(9))
}

func TestSymbolicateRendersMatchedOpcodesWithResolvedNames(t *testing.T) {
	tr := translation(t)
	raw := "header\n" +
		"0,0,START,0,\n" +
		"0,0,38,5,\n" +
		"0,5,29,2,\n" +
		"0,0,END,0,\n"
	// An offset-0 line with recovered id 0 is a system setup event, not an
	// opcode run; 0x29 = 41 (ReturnUndef) at offset 5 matches function 0.
	lines, err := Symbolicate(tr, raw)
	require.NoError(t, err)
	require.Contains(t, lines[0], "FUNCTION START")
	require.Contains(t, lines[0], "fn")
	require.Contains(t, lines[1], "SYSTEM COST: 5")
	require.Contains(t, lines[2], "fuel_cost: 2")
	require.Contains(t, lines[2], "ReturnUndef")
	require.Contains(t, lines[3], "FUNCTION END")
}

func TestSymbolicateAssignsIntrinsicNamesInFirstAppearanceOrder(t *testing.T) {
	tr := translation(t)
	raw := "header\n" +
		"5,0,START,0,\n" +
		"5,0,END,0,\n" +
		"6,0,START,0,\n" +
		"6,0,END,0,\n"
	lines, err := Symbolicate(tr, raw)
	require.NoError(t, err)
	require.Contains(t, lines[0], "intrinsic_fn_0")
	require.Contains(t, lines[2], "intrinsic_fn_1")
}

func TestSymbolicateNamesFunctionsReferencedOnlyViaStartEnd(t *testing.T) {
	// Function id 42 never appears in an OpcodeRun event; it must still
	// get a name and must not cause the whole report to collapse.
	tr := translation(t)
	raw := "header\n42,0,START,0,\n42,0,END,0,\n"
	lines, err := Symbolicate(tr, raw)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "intrinsic_fn_0")
	require.Contains(t, lines[1], "intrinsic_fn_0")
}

func TestSymbolicateAnonymousMatchedFunctionUsesLambdaFallback(t *testing.T) {
	tr := anonymousTranslation(t)
	raw := "header\n" +
		"3,0,START,0,\n" +
		"3,1,29,1,\n" + // 0x29 = 41 (ReturnUndef) at offset 1, matches the sole function
		"3,0,END,0,\n"
	lines, err := Symbolicate(tr, raw)
	require.NoError(t, err)
	require.Contains(t, lines[0], "FUNCTION START")
	require.Contains(t, lines[0], "lambda_fn_0")
	require.Contains(t, lines[2], "FUNCTION END")
	require.Contains(t, lines[2], "lambda_fn_0")
}

func TestSymbolicateUnmatchedOpcodeFallsBackToMnemonic(t *testing.T) {
	tr := translation(t)
	raw := "header\n99,3,06,1,\n" // 0x06 = Undefined, offset != 0 so not a setup event
	lines, err := Symbolicate(tr, raw)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "3: Undefined")
	require.Contains(t, lines[0], "fuel_cost: 1")
}
