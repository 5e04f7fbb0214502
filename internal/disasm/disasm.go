// Package disasm renders a translate.Translation's functions as textual
// disassembly: one line per opcode, hex offset followed by the
// name-resolved mnemonic and operands, grounded on the same
// name-resolving convention opcode.Instruction.Report already implements.
package disasm

import (
	"fmt"
	"strings"

	"github.com/saulecabrera/jac/internal/opcode"
	"github.com/saulecabrera/jac/internal/reader"
	"github.com/saulecabrera/jac/internal/translate"
)

// Disassemble walks every function in tr and returns its textual
// disassembly: "func: <name>" followed by one "<hex offset>  <mnemonic>
// [<operand>]" line per opcode, with a blank line separating functions.
func Disassemble(tr *translate.Translation) (string, error) {
	var sb strings.Builder
	for i := range tr.Module.Functions {
		fn := &tr.Module.Functions[i]
		if err := disassembleFunc(&sb, tr, fn); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func disassembleFunc(sb *strings.Builder, tr *translate.Translation, fn *translate.FunctionTranslation) error {
	name, ok := tr.AtomName(fn.Header.NameAtom)
	if !ok || name == "" {
		name = fmt.Sprintf("lambda_fn_%d", fn.Index)
	}
	fmt.Fprintf(sb, "func: %s\n", name)

	ops := reader.New(fn.Operators.Remaining())
	for !ops.Done() {
		ins, err := opcode.Decode(ops)
		if err != nil {
			return err
		}
		fmt.Fprintf(sb, "%#x  %s\n", ins.PC, ins.Body(fn.Index, tr))
	}
	sb.WriteString("\n")
	return nil
}
