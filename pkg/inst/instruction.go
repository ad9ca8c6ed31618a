// Package inst carries the instruction model: the operand sum type
// (Location, in operand.go), the JumpKind enumeration (jump.go), and the
// Instruction sum type plus its NASM-rendering rules (this file).
package inst

import "fmt"

// Kind discriminates the Instruction sum type.
type Kind uint8

const (
	Mov Kind = iota
	Add
	Adc
	Sbb
	Sub
	Cmp
	Jump
	Daa
	Aaa
	Inc
	Dec
)

var kindMnemonic = map[Kind]string{
	Mov: "mov", Add: "add", Adc: "adc", Sbb: "sbb", Sub: "sub", Cmp: "cmp",
	Daa: "daa", Aaa: "aaa", Inc: "inc", Dec: "dec",
}

// Instruction is the decoded, architecture-neutral representation of one
// 8086 instruction. By convention Src is always the first operand of the
// encoding and Dst the second, regardless of the encoded d-bit — rendering
// reverses this to Intel's "op dest, src" order.
type Instruction struct {
	Kind Kind

	// Mov/Add/Adc/Sbb/Sub/Cmp
	Src Location
	Dst Location

	// Jump
	JumpKind JumpKind
	Offset   int8

	// Inc/Dec
	Amount *int16 // nil means the implicit amount of 1
}

func (ins Instruction) String() string {
	switch ins.Kind {
	case Mov, Add, Adc, Sbb, Sub, Cmp:
		return fmt.Sprintf("%s %s, %s", kindMnemonic[ins.Kind], ins.Dst, ins.Src)
	case Jump:
		return fmt.Sprintf("%s %d", ins.JumpKind, ins.Offset)
	case Daa:
		return "daa"
	case Aaa:
		return "aaa"
	case Inc:
		return fmt.Sprintf("inc %s", ins.Dst)
	case Dec:
		return fmt.Sprintf("dec %s", ins.Dst)
	default:
		return "?"
	}
}

// Emitter renders a decoded instruction stream as NASM-compatible text. It
// owns the monotonically increasing label counter used for jump targets, so
// output is deterministic per Emitter instance rather than depending on any
// shared mutable state.
type Emitter struct {
	counter int
}

// NewEmitter returns an Emitter with its label counter reset to zero.
func NewEmitter() *Emitter { return &Emitter{} }

// Line renders one instruction as a line of NASM-compatible assembly. Jump
// instructions get a fresh label_N; the relationship between N and the
// instruction's actual byte-offset target is not computed, so the label
// numbering does not correspond to real branch targets.
func (e *Emitter) Line(ins Instruction) string {
	if ins.Kind != Jump {
		return ins.String()
	}
	n := e.counter
	e.counter++
	return fmt.Sprintf("%s label_%d ; %d", ins.JumpKind, n, ins.Offset)
}
