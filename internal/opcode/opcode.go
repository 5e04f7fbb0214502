// Package opcode decodes QuickJS bytecode operators and renders them back
// to text. Mirroring the wire format, Op is a single flat enum whose
// numeric value equals the on-disk byte; Instruction is a single flat
// struct whose fields carry every operand any Op might need, with the
// active subset depending on Op — Go has no tagged union, so unlike the
// reference implementation's per-variant enum this package follows the
// same flattened-instruction approach used elsewhere in this toolchain's
// teacher lineage.
package opcode

import (
	"fmt"

	"github.com/saulecabrera/jac/internal/errs"
	"github.com/saulecabrera/jac/internal/reader"
)

// Op identifies a QuickJS bytecode operator. Its numeric value is the
// operator's wire byte.
type Op uint16

const (
	Invalid Op = iota
	PushI32
	PushConst
	FClosure
	PushAtomValue
	PrivateSymbol
	Undefined
	Null
	PushThis
	PushFalse
	PushTrue
	Object
	SpecialObject
	Rest
	Drop
	Nip
	Nip1
	Dup
	Dup1
	Dup2
	Dup3
	Insert2
	Insert3
	Insert4
	Perm3
	Perm4
	Perm5
	Swap
	Swap2
	Rot3L
	Rot3R
	Rot4L
	Rot5L
	CallConstructor
	Call
	TailCall
	CallMethod
	TailCallMethod
	ArrayFrom
	Apply
	Return
	ReturnUndef
	CheckCtorReturn
	CheckCtor
	CheckBrand
	AddBrand
	ReturnAsync
	Throw
	ThrowError
	Eval
	ApplyEval
	Regexp
	GetSuper
	Import
	CheckVar
	GetVarUndef
	GetVar
	PutVar
	PutVarInit
	PutVarStrict
	GetRefValue
	PutRefValue
	DefineVar
	CheckDefineVar
	DefineFunc
	GetField
	GetField2
	PutField
	GetPrivateField
	PutPrivateField
	DefinePrivateField
	GetArrayEl
	GetArrayEl2
	PutArrayEl
	GetSuperValue
	PutSuperValue
	DefineField
	SetName
	SetNameComputed
	SetProto
	SetHomeObject
	DefineArrayEl
	Append
	CopyDataProperties
	DefineMethod
	DefineMethodComputed
	DefineClass
	DefineClassComputed
	GetLoc
	PutLoc
	SetLoc
	GetArg
	PutArg
	SetArg
	GetVarRef
	PutVarRef
	SetVarRef
	SetLocUninit
	GetLocCheck
	PutLocCheck
	PutLocCheckInit
	GetLocCheckThis
	GetVarRefCheck
	PutVarRefCheck
	PutVarRefCheckInit
	CloseLoc
	IfFalse
	IfTrue
	GoTo
	Catch
	GoSub
	Ret
	NipCatch
	ToObject
	ToPropKey
	ToPropKey2
	WithGetVar
	WithPutVar
	WithDeleteVar
	WithMakeRef
	WithGetRef
	WithGetRefUndef
	MakeLocRef
	MakeArgRef
	MakeVarRefRef
	MakeVarRef
	ForInStart
	ForOfStart
	ForAwaitOfStart
	ForInNext
	ForOfNext
	IteratorCheckObject
	IteratorGetValueDone
	IteratorClose
	IteratorNext
	IteratorCall
	InitialYield
	Yield
	YieldStar
	AsyncYieldStar
	Await
	Neg
	Plus
	Dec
	Inc
	PostDec
	PostInc
	DecLoc
	IncLoc
	AddLoc
	Not
	LNot
	TypeOf
	Delete
	DeleteVar
	Mul
	Div
	Mod
	Add
	Sub
	Pow
	Shl
	Sar
	Shr
	Lt
	Lte
	Gt
	Gte
	InstanceOf
	In
	Eq
	Neq
	StrictEq
	StrictNeq
	And
	Xor
	Or
	UndefOrNull
	PrivateIn
	MulPow10
	MathMod
	Nop
	PushMinus1
	Push0
	Push1
	Push2
	Push3
	Push4
	Push5
	Push6
	Push7
	PushI8
	PushI16
	PushConst8
	FClosure8
	PushEmptyString
	GetLoc8
	PutLoc8
	SetLoc8
	GetLoc0
	GetLoc1
	GetLoc2
	GetLoc3
	PutLoc0
	PutLoc1
	PutLoc2
	PutLoc3
	SetLoc0
	SetLoc1
	SetLoc2
	SetLoc3
	GetArg0
	GetArg1
	GetArg2
	GetArg3
	PutArg0
	PutArg1
	PutArg2
	PutArg3
	SetArg0
	SetArg1
	SetArg2
	SetArg3
	GetVarRef0
	GetVarRef1
	GetVarRef2
	GetVarRef3
	PutVarRef0
	PutVarRef1
	PutVarRef2
	PutVarRef3
	SetVarRef0
	SetVarRef1
	SetVarRef2
	SetVarRef3
	GetLength
	IfFalse8
	IfTrue8
	GoTo8
	GoTo16
	Call0
	Call1
	Call2
	Call3
	IsUndefined
	IsNull
	TypeOfIsUndefined
	TypeOfIsFunction

	opEnd
)

var mnemonics = [...]string{
	"Invalid", "PushI32", "PushConst", "FClosure", "PushAtomValue", "PrivateSymbol",
	"Undefined", "Null", "PushThis", "PushFalse", "PushTrue", "Object", "SpecialObject",
	"Rest", "Drop", "Nip", "Nip1", "Dup", "Dup1", "Dup2", "Dup3", "Insert2", "Insert3",
	"Insert4", "Perm3", "Perm4", "Perm5", "Swap", "Swap2", "Rot3L", "Rot3R", "Rot4L",
	"Rot5L", "CallConstructor", "Call", "TailCall", "CallMethod", "TailCallMethod",
	"ArrayFrom", "Apply", "Return", "ReturnUndef", "CheckCtorReturn", "CheckCtor",
	"CheckBrand", "AddBrand", "ReturnAsync", "Throw", "ThrowError", "Eval", "ApplyEval",
	"Regexp", "GetSuper", "Import", "CheckVar", "GetVarUndef", "GetVar", "PutVar",
	"PutVarInit", "PutVarStrict", "GetRefValue", "PutRefValue", "DefineVar",
	"CheckDefineVar", "DefineFunc", "GetField", "GetField2", "PutField",
	"GetPrivateField", "PutPrivateField", "DefinePrivateField", "GetArrayEl",
	"GetArrayEl2", "PutArrayEl", "GetSuperValue", "PutSuperValue", "DefineField",
	"SetName", "SetNameComputed", "SetProto", "SetHomeObject", "DefineArrayEl",
	"Append", "CopyDataProperties", "DefineMethod", "DefineMethodComputed",
	"DefineClass", "DefineClassComputed", "GetLoc", "PutLoc", "SetLoc", "GetArg",
	"PutArg", "SetArg", "GetVarRef", "PutVarRef", "SetVarRef", "SetLocUninit",
	"GetLocCheck", "PutLocCheck", "PutLocCheckInit", "GetLocCheckThis",
	"GetVarRefCheck", "PutVarRefCheck", "PutVarRefCheckInit", "CloseLoc", "IfFalse",
	"IfTrue", "GoTo", "Catch", "GoSub", "Ret", "NipCatch", "ToObject", "ToPropKey",
	"ToPropKey2", "WithGetVar", "WithPutVar", "WithDeleteVar", "WithMakeRef",
	"WithGetRef", "WithGetRefUndef", "MakeLocRef", "MakeArgRef", "MakeVarRefRef",
	"MakeVarRef", "ForInStart", "ForOfStart", "ForAwaitOfStart", "ForInNext",
	"ForOfNext", "IteratorCheckObject", "IteratorGetValueDone", "IteratorClose",
	"IteratorNext", "IteratorCall", "InitialYield", "Yield", "YieldStar",
	"AsyncYieldStar", "Await", "Neg", "Plus", "Dec", "Inc", "PostDec", "PostInc",
	"DecLoc", "IncLoc", "AddLoc", "Not", "LNot", "TypeOf", "Delete", "DeleteVar",
	"Mul", "Div", "Mod", "Add", "Sub", "Pow", "Shl", "Sar", "Shr", "Lt", "Lte", "Gt",
	"Gte", "InstanceOf", "In", "Eq", "Neq", "StrictEq", "StrictNeq", "And", "Xor",
	"Or", "UndefOrNull", "PrivateIn", "MulPow10", "MathMod", "Nop", "PushMinus1",
	"Push0", "Push1", "Push2", "Push3", "Push4", "Push5", "Push6", "Push7", "PushI8",
	"PushI16", "PushConst8", "FClosure8", "PushEmptyString", "GetLoc8", "PutLoc8",
	"SetLoc8", "GetLoc0", "GetLoc1", "GetLoc2", "GetLoc3", "PutLoc0", "PutLoc1",
	"PutLoc2", "PutLoc3", "SetLoc0", "SetLoc1", "SetLoc2", "SetLoc3", "GetArg0",
	"GetArg1", "GetArg2", "GetArg3", "PutArg0", "PutArg1", "PutArg2", "PutArg3",
	"SetArg0", "SetArg1", "SetArg2", "SetArg3", "GetVarRef0", "GetVarRef1",
	"GetVarRef2", "GetVarRef3", "PutVarRef0", "PutVarRef1", "PutVarRef2",
	"PutVarRef3", "SetVarRef0", "SetVarRef1", "SetVarRef2", "SetVarRef3",
	"GetLength", "IfFalse8", "IfTrue8", "GoTo8", "GoTo16", "Call0", "Call1", "Call2",
	"Call3", "IsUndefined", "IsNull", "TypeOfIsUndefined", "TypeOfIsFunction",
}

// String returns the operator's mnemonic, or "Unknown" for a value outside
// the known opcode range.
func (op Op) String() string {
	if int(op) < len(mnemonics) {
		return mnemonics[op]
	}
	return "Unknown"
}

// Instruction is a single decoded operator together with its operands.
// Which fields are meaningful depends on Op; see Decode for exactly which
// ones each operator populates.
type Instruction struct {
	Op    Op
	PC    uint32
	Atom  uint32
	Index uint32
	Imm   int32
	// Target is the absolute branch offset, set only when IsBranch is true.
	Target uint32
	Flags  uint8
	Diff   uint32
	Argc   uint16
	Scope  uint16
}

// Decode reads one operator and its operands from r. The returned
// Instruction's PC is the offset of the opcode byte itself. Branch
// displacements are relative to the end of the displacement operand, not
// to PC; for the operators IsBranch reports, Target holds the resolved
// absolute offset.
func Decode(r *reader.Reader) (Instruction, error) {
	pc := uint32(r.Offset())
	byteOp, err := r.ReadU8()
	if err != nil {
		return Instruction{}, err
	}
	ins := Instruction{PC: pc}

	readAtom := func() (uint32, error) { return r.ReadU32() }

	switch byteOp {
	case 0:
		ins.Op = Invalid
	case 1:
		v, err := r.ReadI32()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Imm = PushI32, v
	case 2:
		v, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Index = PushConst, v
	case 3:
		v, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Index = FClosure, v
	case 4:
		a, err := readAtom()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Atom = PushAtomValue, a
	case 5:
		a, err := readAtom()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Atom = PrivateSymbol, a
	case 6:
		ins.Op = Undefined
	case 7:
		ins.Op = Null
	case 8:
		ins.Op = PushThis
	case 9:
		ins.Op = PushFalse
	case 10:
		ins.Op = PushTrue
	case 11:
		ins.Op = Object
	case 12:
		v, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Imm = SpecialObject, int32(v)
	case 13:
		v, err := r.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Index = Rest, uint32(v)
	case 14:
		ins.Op = Drop
	case 15:
		ins.Op = Nip
	case 16:
		ins.Op = Nip1
	case 17:
		ins.Op = Dup
	case 18:
		ins.Op = Dup1
	case 19:
		ins.Op = Dup2
	case 20:
		ins.Op = Dup3
	case 21:
		ins.Op = Insert2
	case 22:
		ins.Op = Insert3
	case 23:
		ins.Op = Insert4
	case 24:
		ins.Op = Perm3
	case 25:
		ins.Op = Perm4
	case 26:
		ins.Op = Perm5
	case 27:
		ins.Op = Swap
	case 28:
		ins.Op = Swap2
	case 29:
		ins.Op = Rot3L
	case 30:
		ins.Op = Rot3R
	case 31:
		ins.Op = Rot4L
	case 32:
		ins.Op = Rot5L
	case 33, 34, 35, 36, 37, 38:
		v, err := r.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		ins.Argc = v
		switch byteOp {
		case 33:
			ins.Op = CallConstructor
		case 34:
			ins.Op = Call
		case 35:
			ins.Op = TailCall
		case 36:
			ins.Op = CallMethod
		case 37:
			ins.Op = TailCallMethod
		case 38:
			ins.Op = ArrayFrom
		}
	case 39:
		v, err := r.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Argc = Apply, v
	case 40:
		ins.Op = Return
	case 41:
		ins.Op = ReturnUndef
	case 42:
		ins.Op = CheckCtorReturn
	case 43:
		ins.Op = CheckCtor
	case 44:
		ins.Op = CheckBrand
	case 45:
		ins.Op = AddBrand
	case 46:
		ins.Op = ReturnAsync
	case 47:
		ins.Op = Throw
	case 48:
		a, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		ty, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Atom, ins.Flags = ThrowError, a, ty
	case 49:
		argc, err := r.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		scope, err := r.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Argc, ins.Scope = Eval, argc, scope-1
	case 50:
		scope, err := r.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Scope = ApplyEval, scope-1
	case 51:
		ins.Op = Regexp
	case 52:
		ins.Op = GetSuper
	case 53:
		ins.Op = Import
	case 54, 55, 56, 57, 58, 59:
		a, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		ins.Atom = a
		switch byteOp {
		case 54:
			ins.Op = CheckVar
		case 55:
			ins.Op = GetVarUndef
		case 56:
			ins.Op = GetVar
		case 57:
			ins.Op = PutVar
		case 58:
			ins.Op = PutVarInit
		case 59:
			ins.Op = PutVarStrict
		}
	case 60:
		ins.Op = GetRefValue
	case 61:
		ins.Op = PutRefValue
	case 62, 63:
		a, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		flags, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Atom, ins.Flags = a, flags
		if byteOp == 62 {
			ins.Op = DefineVar
		} else {
			ins.Op = CheckDefineVar
		}
	case 64:
		a, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		flags, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Atom, ins.Flags = DefineFunc, a, flags
	case 65, 66, 67, 76, 77:
		a, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		ins.Atom = a
		switch byteOp {
		case 65:
			ins.Op = GetField
		case 66:
			ins.Op = GetField2
		case 67:
			ins.Op = PutField
		case 76:
			ins.Op = DefineField
		case 77:
			ins.Op = SetName
		}
	case 68:
		ins.Op = GetPrivateField
	case 69:
		ins.Op = PutPrivateField
	case 70:
		ins.Op = DefinePrivateField
	case 71:
		ins.Op = GetArrayEl
	case 72:
		ins.Op = GetArrayEl2
	case 73:
		ins.Op = PutArrayEl
	case 74:
		ins.Op = GetSuperValue
	case 75:
		ins.Op = PutSuperValue
	case 78:
		ins.Op = SetNameComputed
	case 79:
		ins.Op = SetProto
	case 80:
		ins.Op = SetHomeObject
	case 81:
		ins.Op = DefineArrayEl
	case 82:
		ins.Op = Append
	case 83:
		v, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Flags = CopyDataProperties, v
	case 84:
		a, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		flags, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Atom, ins.Flags = DefineMethod, a, flags
	case 85:
		v, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Flags = DefineMethodComputed, v
	case 86, 87:
		a, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		flags, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Atom, ins.Flags = a, flags
		if byteOp == 86 {
			ins.Op = DefineClass
		} else {
			ins.Op = DefineClassComputed
		}
	case 88, 89, 90, 91, 92, 93, 94, 95, 96, 97, 98, 99, 100, 101, 102, 103, 104, 105:
		v, err := r.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		ins.Index = uint32(v)
		switch byteOp {
		case 88:
			ins.Op = GetLoc
		case 89:
			ins.Op = PutLoc
		case 90:
			ins.Op = SetLoc
		case 91:
			ins.Op = GetArg
		case 92:
			ins.Op = PutArg
		case 93:
			ins.Op = SetArg
		case 94:
			ins.Op = GetVarRef
		case 95:
			ins.Op = PutVarRef
		case 96:
			ins.Op = SetVarRef
		case 97:
			ins.Op = SetLocUninit
		case 98:
			ins.Op = GetLocCheck
		case 99:
			ins.Op = PutLocCheck
		case 100:
			ins.Op = PutLocCheckInit
		case 101:
			ins.Op = GetLocCheckThis
		case 102:
			ins.Op = GetVarRefCheck
		case 103:
			ins.Op = PutVarRefCheck
		case 104:
			ins.Op = PutVarRefCheckInit
		case 105:
			ins.Op = CloseLoc
		}
	case 106, 107, 108:
		v, err := r.ReadI32()
		if err != nil {
			return Instruction{}, err
		}
		ins.Imm = v
		switch byteOp {
		case 106:
			ins.Op = IfFalse
		case 107:
			ins.Op = IfTrue
		case 108:
			ins.Op = GoTo
		}
	case 109, 110:
		v, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		ins.Diff = v
		if byteOp == 109 {
			ins.Op = Catch
		} else {
			ins.Op = GoSub
		}
	case 111:
		ins.Op = Ret
	case 112:
		ins.Op = NipCatch
	case 113:
		ins.Op = ToObject
	case 114:
		ins.Op = ToPropKey
	case 115:
		ins.Op = ToPropKey2
	case 116, 117, 118, 119, 120, 121:
		a, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		diff, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		isWith, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Atom, ins.Diff, ins.Flags = a, diff, isWith
		switch byteOp {
		case 116:
			ins.Op = WithGetVar
		case 117:
			ins.Op = WithPutVar
		case 118:
			ins.Op = WithDeleteVar
		case 119:
			ins.Op = WithMakeRef
		case 120:
			ins.Op = WithGetRef
		case 121:
			ins.Op = WithGetRefUndef
		}
	case 122, 123, 124:
		a, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		idx, err := r.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		ins.Atom, ins.Index = a, uint32(idx)
		switch byteOp {
		case 122:
			ins.Op = MakeLocRef
		case 123:
			ins.Op = MakeArgRef
		case 124:
			ins.Op = MakeVarRefRef
		}
	case 125:
		a, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Atom = MakeVarRef, a
	case 126:
		ins.Op = ForInStart
	case 127:
		ins.Op = ForOfStart
	case 128:
		ins.Op = ForAwaitOfStart
	case 129:
		ins.Op = ForInNext
	case 130:
		// Zero-extended per SPEC_FULL §4.3's short-displacement policy, not
		// sign-extended as the Rust scaffold reads it.
		v, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Imm = ForOfNext, int32(v)
	case 131:
		ins.Op = IteratorCheckObject
	case 132:
		ins.Op = IteratorGetValueDone
	case 133:
		ins.Op = IteratorClose
	case 134:
		ins.Op = IteratorNext
	case 135:
		v, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Flags = IteratorCall, v
	case 136:
		ins.Op = InitialYield
	case 137:
		ins.Op = Yield
	case 138:
		ins.Op = YieldStar
	case 139:
		ins.Op = AsyncYieldStar
	case 140:
		ins.Op = Await
	case 141:
		ins.Op = Neg
	case 142:
		ins.Op = Plus
	case 143:
		ins.Op = Dec
	case 144:
		ins.Op = Inc
	case 145:
		ins.Op = PostDec
	case 146:
		ins.Op = PostInc
	case 147, 148, 149:
		v, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Index = uint32(v)
		switch byteOp {
		case 147:
			ins.Op = DecLoc
		case 148:
			ins.Op = IncLoc
		case 149:
			ins.Op = AddLoc
		}
	case 150:
		ins.Op = Not
	case 151:
		ins.Op = LNot
	case 152:
		ins.Op = TypeOf
	case 153:
		ins.Op = Delete
	case 154:
		a, err := r.ReadU32()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Atom = DeleteVar, a
	case 155:
		ins.Op = Mul
	case 156:
		ins.Op = Div
	case 157:
		ins.Op = Mod
	case 158:
		ins.Op = Add
	case 159:
		ins.Op = Sub
	case 160:
		ins.Op = Pow
	case 161:
		ins.Op = Shl
	case 162:
		ins.Op = Sar
	case 163:
		ins.Op = Shr
	case 164:
		ins.Op = Lt
	case 165:
		ins.Op = Lte
	case 166:
		ins.Op = Gt
	case 167:
		ins.Op = Gte
	case 168:
		ins.Op = InstanceOf
	case 169:
		ins.Op = In
	case 170:
		ins.Op = Eq
	case 171:
		ins.Op = Neq
	case 172:
		ins.Op = StrictEq
	case 173:
		ins.Op = StrictNeq
	case 174:
		ins.Op = And
	case 175:
		ins.Op = Xor
	case 176:
		ins.Op = Or
	case 177:
		ins.Op = UndefOrNull
	case 178:
		ins.Op = PrivateIn
	case 179:
		ins.Op = MulPow10
	case 180:
		ins.Op = MathMod
	case 181:
		ins.Op = Nop
	case 182:
		ins.Op = PushMinus1
	case 183:
		ins.Op = Push0
	case 184:
		ins.Op = Push1
	case 185:
		ins.Op = Push2
	case 186:
		ins.Op = Push3
	case 187:
		ins.Op = Push4
	case 188:
		ins.Op = Push5
	case 189:
		ins.Op = Push6
	case 190:
		ins.Op = Push7
	case 191:
		v, err := r.ReadI8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Imm = PushI8, int32(v)
	case 192:
		v, err := r.ReadI16()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Imm = PushI16, int32(v)
	case 193, 194, 196, 197, 198:
		v, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Index = uint32(v)
		switch byteOp {
		case 193:
			ins.Op = PushConst8
		case 194:
			ins.Op = FClosure8
		case 196:
			ins.Op = GetLoc8
		case 197:
			ins.Op = PutLoc8
		case 198:
			ins.Op = SetLoc8
		}
	case 195:
		ins.Op = PushEmptyString
	case 199, 200, 201, 202:
		ins.Op = Op(GetLoc0 + Op(byteOp-199))
		ins.Index = uint32(byteOp - 199)
	case 203, 204, 205, 206:
		ins.Op = Op(PutLoc0 + Op(byteOp-203))
		ins.Index = uint32(byteOp - 203)
	case 207, 208, 209, 210:
		ins.Op = Op(SetLoc0 + Op(byteOp-207))
		ins.Index = uint32(byteOp - 207)
	case 211, 212, 213, 214:
		ins.Op = Op(GetArg0 + Op(byteOp-211))
		ins.Index = uint32(byteOp - 211)
	case 215, 216, 217, 218:
		ins.Op = Op(PutArg0 + Op(byteOp-215))
		ins.Index = uint32(byteOp - 215)
	case 219, 220, 221, 222:
		ins.Op = Op(SetArg0 + Op(byteOp-219))
		ins.Index = uint32(byteOp - 219)
	case 223, 224, 225, 226:
		ins.Op = Op(GetVarRef0 + Op(byteOp-223))
		ins.Index = uint32(byteOp - 223)
	case 227, 228, 229, 230:
		ins.Op = Op(PutVarRef0 + Op(byteOp-227))
		ins.Index = uint32(byteOp - 227)
	case 231, 232, 233, 234:
		ins.Op = Op(SetVarRef0 + Op(byteOp-231))
		ins.Index = uint32(byteOp - 231)
	case 235:
		ins.Op = GetLength
	case 236, 237, 238:
		// Zero-extended per SPEC_FULL §4.3, unlike the 32-bit IfFalse/IfTrue/
		// GoTo forms (and GoTo16) which are sign-extended.
		v, err := r.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Imm = int32(v)
		switch byteOp {
		case 236:
			ins.Op = IfFalse8
		case 237:
			ins.Op = IfTrue8
		case 238:
			ins.Op = GoTo8
		}
	case 239:
		v, err := r.ReadI16()
		if err != nil {
			return Instruction{}, err
		}
		ins.Op, ins.Imm = GoTo16, int32(v)
	case 240, 241, 242, 243:
		ins.Op = Op(Call0 + Op(byteOp-240))
		ins.Argc = uint16(byteOp - 240)
	case 244:
		ins.Op = IsUndefined
	case 245:
		ins.Op = IsNull
	case 246:
		ins.Op = TypeOfIsUndefined
	case 247:
		ins.Op = TypeOfIsFunction
	default:
		return Instruction{}, errs.AtOffset(errs.UnsupportedOpcode, int(pc), "unsupported opcode byte %d", byteOp)
	}
	if ins.IsBranch() {
		ins.Target = ins.BranchTarget(uint32(r.Offset()))
	}
	return ins, nil
}

// NameResolver resolves symbolic names for an instruction's atom, local,
// argument, closure-variable and nested-function operands. Implementations
// live in package translate, which owns the per-module/per-function name
// tables; this interface exists so package opcode does not need to import
// translate (which itself decodes operators, and would otherwise form an
// import cycle).
type NameResolver interface {
	AtomName(atom uint32) (string, bool)
	FuncName(index uint32) (string, bool)
	LocalName(fnIndex, index uint32) (string, bool)
	ArgName(fnIndex, index uint32) (string, bool)
	ClosureName(fnIndex, index uint32) (string, bool)
}

// Report renders ins as "pc: Mnemonic { resolved-name ... }", falling back
// to a raw field dump when names is nil or cannot resolve the operand.
// fnIndex identifies the function ins belongs to, used to resolve
// FClosure's constant-pool-relative target and the local/arg/closure
// variable tables, which are scoped per function.
func (ins Instruction) Report(fnIndex uint32, names NameResolver) string {
	return fmt.Sprintf("%d: %s", ins.PC, ins.reportBody(fnIndex, names))
}

// Body renders the same name-resolved mnemonic and operand text as Report,
// without the leading "pc: " prefix, so callers that want a different
// offset rendering (e.g. the disassembler's hex column) can format it
// themselves.
func (ins Instruction) Body(fnIndex uint32, names NameResolver) string {
	return ins.reportBody(fnIndex, names)
}

func (ins Instruction) reportBody(fnIndex uint32, names NameResolver) string {
	raw := ins.raw

	if names == nil {
		return raw()
	}

	switch ins.Op {
	case FClosure, FClosure8:
		if name, ok := names.FuncName(ins.Index + fnIndex + 1); ok {
			return fmt.Sprintf("%s { %s }", ins.Op, name)
		}
	case PushAtomValue, PrivateSymbol, CheckVar, GetVarUndef, GetVar, PutVar,
		PutVarInit, PutVarStrict, GetField, GetField2, PutField, DefineField,
		SetName, MakeVarRef, DeleteVar:
		if name, ok := names.AtomName(ins.Atom); ok {
			return fmt.Sprintf("%s { %s }", ins.Op, name)
		}
	case ThrowError:
		if name, ok := names.AtomName(ins.Atom); ok {
			return fmt.Sprintf("%s { ty: %d %s }", ins.Op, ins.Flags, name)
		}
	case DefineVar, CheckDefineVar, DefineFunc, DefineClass, DefineClassComputed:
		if name, ok := names.AtomName(ins.Atom); ok {
			return fmt.Sprintf("%s { flags: %d %s }", ins.Op, ins.Flags, name)
		}
	case DefineMethod:
		if name, ok := names.AtomName(ins.Atom); ok {
			return fmt.Sprintf("%s { %s %d }", ins.Op, name, ins.Flags)
		}
	case GetLoc, PutLoc, SetLoc, SetLocUninit, GetLocCheck, PutLocCheck,
		PutLocCheckInit, GetLocCheckThis, GetLoc8, PutLoc8, SetLoc8, DecLoc,
		IncLoc, AddLoc,
		GetLoc0, GetLoc1, GetLoc2, GetLoc3, PutLoc0, PutLoc1, PutLoc2, PutLoc3,
		SetLoc0, SetLoc1, SetLoc2, SetLoc3:
		if name, ok := names.LocalName(fnIndex, ins.Index); ok {
			return fmt.Sprintf("%s { %s }", ins.Op, name)
		}
	case GetArg, PutArg, SetArg,
		GetArg0, GetArg1, GetArg2, GetArg3, PutArg0, PutArg1, PutArg2, PutArg3,
		SetArg0, SetArg1, SetArg2, SetArg3:
		if name, ok := names.ArgName(fnIndex, ins.Index); ok {
			return fmt.Sprintf("%s { %s }", ins.Op, name)
		}
	case GetVarRef, PutVarRef, SetVarRef, GetVarRefCheck, PutVarRefCheck,
		PutVarRefCheckInit,
		GetVarRef0, GetVarRef1, GetVarRef2, GetVarRef3,
		PutVarRef0, PutVarRef1, PutVarRef2, PutVarRef3,
		SetVarRef0, SetVarRef1, SetVarRef2, SetVarRef3:
		if name, ok := names.ClosureName(fnIndex, ins.Index); ok {
			return fmt.Sprintf("%s { %s }", ins.Op, name)
		}
	case WithGetVar, WithPutVar, WithDeleteVar, WithMakeRef, WithGetRef, WithGetRefUndef:
		if name, ok := names.AtomName(ins.Atom); ok {
			return fmt.Sprintf("%s { %s diff: %d is_with: %d }", ins.Op, name, ins.Diff, ins.Flags)
		}
	case MakeLocRef, MakeArgRef, MakeVarRefRef:
		if name, ok := names.AtomName(ins.Atom); ok {
			return fmt.Sprintf("%s { %s idx: %d }", ins.Op, name, ins.Index)
		}
	}
	return raw()
}

// raw formats the instruction's mnemonic and operand fields without any
// name resolution, used when a symbolic name is unavailable or was never
// requested.
func (ins Instruction) raw() string {
	switch ins.Op {
	case PushI32, PushI8, PushI16, SpecialObject, IfFalse, IfTrue, GoTo,
		IfFalse8, IfTrue8, GoTo8, GoTo16, ForOfNext:
		return fmt.Sprintf("%s { %d }", ins.Op, ins.Imm)
	case PushConst, FClosure, Rest, PushConst8, FClosure8:
		return fmt.Sprintf("%s { %d }", ins.Op, ins.Index)
	case PushAtomValue, PrivateSymbol, CheckVar, GetVarUndef, GetVar, PutVar,
		PutVarInit, PutVarStrict, GetField, GetField2, PutField, DefineField,
		SetName, MakeVarRef, DeleteVar:
		return fmt.Sprintf("%s { atom: %d }", ins.Op, ins.Atom)
	case ThrowError:
		return fmt.Sprintf("%s { ty: %d atom: %d }", ins.Op, ins.Flags, ins.Atom)
	case CallConstructor, Call, TailCall, CallMethod, TailCallMethod, ArrayFrom, Apply:
		return fmt.Sprintf("%s { argc: %d }", ins.Op, ins.Argc)
	case Eval:
		return fmt.Sprintf("%s { scope: %d argc: %d }", ins.Op, ins.Scope, ins.Argc)
	case ApplyEval:
		return fmt.Sprintf("%s { scope: %d }", ins.Op, ins.Scope)
	case DefineVar, CheckDefineVar, DefineFunc, DefineClass, DefineClassComputed:
		return fmt.Sprintf("%s { flags: %d atom: %d }", ins.Op, ins.Flags, ins.Atom)
	case DefineMethod:
		return fmt.Sprintf("%s { atom: %d flags: %d }", ins.Op, ins.Atom, ins.Flags)
	case DefineMethodComputed, CopyDataProperties, IteratorCall:
		return fmt.Sprintf("%s { %d }", ins.Op, ins.Flags)
	case GetLoc, PutLoc, SetLoc, GetArg, PutArg, SetArg, GetVarRef, PutVarRef,
		SetVarRef, SetLocUninit, GetLocCheck, PutLocCheck, PutLocCheckInit,
		GetLocCheckThis, GetVarRefCheck, PutVarRefCheck, PutVarRefCheckInit,
		CloseLoc, GetLoc8, PutLoc8, SetLoc8, DecLoc, IncLoc, AddLoc:
		return fmt.Sprintf("%s { %d }", ins.Op, ins.Index)
	case Catch, GoSub:
		return fmt.Sprintf("%s { %d }", ins.Op, ins.Diff)
	case WithGetVar, WithPutVar, WithDeleteVar, WithMakeRef, WithGetRef, WithGetRefUndef:
		return fmt.Sprintf("%s { atom: %d diff: %d is_with: %d }", ins.Op, ins.Atom, ins.Diff, ins.Flags)
	case MakeLocRef, MakeArgRef, MakeVarRefRef:
		return fmt.Sprintf("%s { atom: %d idx: %d }", ins.Op, ins.Atom, ins.Index)
	case GetLoc0, GetLoc1, GetLoc2, GetLoc3, PutLoc0, PutLoc1, PutLoc2, PutLoc3,
		SetLoc0, SetLoc1, SetLoc2, SetLoc3, GetArg0, GetArg1, GetArg2, GetArg3,
		PutArg0, PutArg1, PutArg2, PutArg3, SetArg0, SetArg1, SetArg2, SetArg3,
		GetVarRef0, GetVarRef1, GetVarRef2, GetVarRef3, PutVarRef0, PutVarRef1,
		PutVarRef2, PutVarRef3, SetVarRef0, SetVarRef1, SetVarRef2, SetVarRef3:
		return fmt.Sprintf("%s { %d }", ins.Op, ins.Index)
	case Call0, Call1, Call2, Call3:
		return ins.Op.String()
	default:
		return ins.Op.String()
	}
}

// IsBranch reports whether ins transfers control by a displacement (Imm)
// relative to the end of its displacement operand, as opposed to a fixed
// or fallthrough target.
func (ins Instruction) IsBranch() bool {
	switch ins.Op {
	case IfFalse, IfTrue, GoTo, IfFalse8, IfTrue8, GoTo8, GoTo16:
		return true
	default:
		return false
	}
}

// BranchTarget returns the absolute byte offset ins branches to, valid
// only when IsBranch reports true. QuickJS encodes displacements relative
// to the end of the displacement operand (operandEnd), not ins.PC.
func (ins Instruction) BranchTarget(operandEnd uint32) uint32 {
	return uint32(int64(operandEnd) + int64(ins.Imm))
}
