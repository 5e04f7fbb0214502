package ssa

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saulecabrera/jac/internal/bytecode"
	"github.com/saulecabrera/jac/internal/errs"
	"github.com/saulecabrera/jac/internal/translate"
)

func fnTranslation(argCount, definedArgCount, varCount uint32) *translate.FunctionTranslation {
	return &translate.FunctionTranslation{
		Header: bytecode.FuncHeader{
			ArgCount:        argCount,
			DefinedArgCount: definedArgCount,
			VarCount:        varCount,
			LocalCount:      definedArgCount + varCount,
		},
	}
}

func TestBuildProducesEntryAndOutBlocks(t *testing.T) {
	b := NewBuilder(fnTranslation(2, 2, 1))
	sig, body, err := b.Build()
	require.NoError(t, err)

	require.Equal(t, []Type{I64}, sig.Results)
	require.Equal(t, []Type{I64, I64}, sig.Params)
	require.Len(t, body.Locals, 3)
	require.Len(t, body.Out.Params(), 1)
	require.Len(t, body.Entry.Params(), 2)
	require.False(t, body.Entry.Sealed())
	require.False(t, body.Out.Sealed())
}

func TestDeclareLocalRejectsRedeclaration(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 1))
	require.NoError(t, b.DeclareLocal(Local(0)))
	err := b.DeclareLocal(Local(0))
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errs.Redeclaration, e.Kind())
}

func TestSetAndGetLocalInSameBlock(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 1))
	blk := b.AddBlock()
	b.SetCurrentBlock(blk)
	require.NoError(t, b.DeclareLocal(Local(0)))
	require.NoError(t, b.SetLocal(Local(0), Value(42)))

	v, err := b.GetLocal(Local(0))
	require.NoError(t, err)
	require.Equal(t, Value(42), v)
}

func TestGetLocalOnUnsealedBlockRecordsPlaceholder(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 1))
	blk := b.AddBlock()
	b.SetCurrentBlock(blk)

	v, err := b.GetLocal(Local(0))
	require.NoError(t, err)
	require.True(t, v.valid())
	require.Contains(t, blk.unknown, Local(0))
}

func TestSealSingleSealedPredecessorResolvesDirectly(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 1))
	pred := b.AddBlock()
	b.SetCurrentBlock(pred)
	require.NoError(t, b.SetLocal(Local(0), Value(7)))
	require.NoError(t, b.Seal(pred))

	succ := b.AddBlock()
	require.NoError(t, b.AddPred(succ, pred))
	require.NoError(t, b.Seal(succ))

	b.SetCurrentBlock(succ)
	v, err := b.GetLocal(Local(0))
	require.NoError(t, err)
	require.Equal(t, Value(7), v)
}

func TestSealWithMultiplePredecessorsSynthesizesBlockParam(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 1))

	pred1 := b.AddBlock()
	b.SetCurrentBlock(pred1)
	require.NoError(t, b.SetLocal(Local(0), Value(1)))
	require.NoError(t, b.Seal(pred1))

	pred2 := b.AddBlock()
	b.SetCurrentBlock(pred2)
	require.NoError(t, b.SetLocal(Local(0), Value(2)))
	require.NoError(t, b.Seal(pred2))

	join := b.AddBlock()
	require.NoError(t, b.AddPred(join, pred1))
	require.NoError(t, b.AddPred(join, pred2))
	b.SetCurrentBlock(join)
	_, err := b.GetLocal(Local(0))
	require.NoError(t, err)
	require.NoError(t, b.Seal(join))

	require.Len(t, join.Params(), 1)
}

func TestSealResolvesPlaceholderRecordedBeforePredecessorsKnown(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 1))

	join := b.AddBlock()
	b.SetCurrentBlock(join)
	placeholder, err := b.GetLocal(Local(0))
	require.NoError(t, err)
	require.Contains(t, join.unknown, Local(0))

	pred := b.AddBlock()
	b.SetCurrentBlock(pred)
	require.NoError(t, b.SetLocal(Local(0), Value(99)))
	require.NoError(t, b.Seal(pred))

	require.NoError(t, b.AddPred(join, pred))
	require.NoError(t, b.Seal(join))

	require.Equal(t, placeholder, join.lastDefs[Local(0)])
}

func TestSealFailsWhenNoProducingPredecessor(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 1))
	join := b.AddBlock()
	b.SetCurrentBlock(join)
	_, err := b.GetLocal(Local(0))
	require.NoError(t, err)

	unreachable := b.AddBlock()
	require.NoError(t, b.AddPred(join, unreachable))
	require.NoError(t, b.Seal(unreachable))

	err = b.Seal(join)
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errs.SealOrder, e.Kind())
}

func TestValidateFailsOnUnsealedBlock(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 0))
	b.AddBlock()
	err := b.Validate()
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errs.UnsealedBlock, e.Kind())
}

func TestValidatePassesWhenAllSealed(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 0))
	blk := b.AddBlock()
	require.NoError(t, b.Seal(blk))
	require.NoError(t, b.Validate())
}

func TestSealIsIdempotent(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 0))
	blk := b.AddBlock()
	require.NoError(t, b.Seal(blk))
	require.NoError(t, b.Seal(blk))
}

func TestShadowOperandStack(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 0))
	b.PushOperand(I64, Value(1))
	b.PushOperand(I64, Value(2))
	require.Equal(t, 2, b.StackDepth())

	top, ok := b.PopOperand()
	require.True(t, ok)
	require.Equal(t, Value(2), top.Value)
	require.Equal(t, 1, b.StackDepth())

	_, ok = b.PopOperand()
	require.True(t, ok)
	_, ok = b.PopOperand()
	require.False(t, ok)
}

func TestControlFrameStack(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 0))
	out := b.AddBlock()
	b.PushFrame(Frame{Kind: FrameBlock, Block: out})

	top, ok := b.TopFrame()
	require.True(t, ok)
	require.Equal(t, FrameBlock, top.Kind)

	popped, ok := b.PopFrame()
	require.True(t, ok)
	require.Equal(t, out, popped.Block)

	_, ok = b.PopFrame()
	require.False(t, ok)
}

func TestAddPredFailsOnSealedBlock(t *testing.T) {
	b := NewBuilder(fnTranslation(0, 0, 0))
	blk := b.AddBlock()
	require.NoError(t, b.Seal(blk))

	pred := b.AddBlock()
	err := b.AddPred(blk, pred)
	require.Error(t, err)
}
