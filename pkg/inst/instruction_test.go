package inst

import (
	"testing"

	"github.com/BrankoKrstic/sim8086/pkg/reg"
	"github.com/stretchr/testify/require"
)

// TestMemoryRendering covers the effective-address table's text form,
// including the direct-address and negative-displacement cases.
func TestMemoryRendering(t *testing.T) {
	tests := []struct {
		mem  Memory
		want string
	}{
		{Memory{Regs: []reg.Register{reg.BX, reg.SI}}, "[bx + si]"},
		{Memory{Regs: []reg.Register{reg.BX}, Disp: -303, HasDisp: true}, "[bx - 303]"},
		{Memory{Regs: []reg.Register{reg.BP}, Disp: 4, HasDisp: true}, "[bp + 4]"},
		{Memory{Disp: 13330, HasDisp: true}, "[13330]"},
	}
	for _, tc := range tests {
		got := tc.mem.String()
		require.Equal(t, tc.want, got)
	}
}

// TestInstructionRendering exercises the "op dest, src" reversal rule
// across register, immediate, and memory operands.
func TestInstructionRendering(t *testing.T) {
	movCxBx := Instruction{Kind: Mov, Src: RegLoc(reg.BX), Dst: RegLoc(reg.CX)}
	require.Equal(t, "mov cx, bx", movCxBx.String())

	movCxImm := Instruction{Kind: Mov, Src: ImmLoc(Immediate{Value: 4660}), Dst: RegLoc(reg.CX)}
	require.Equal(t, "mov cx, 4660", movCxImm.String())

	movAxMem := Instruction{
		Kind: Mov,
		Src:  MemLoc(Memory{Regs: []reg.Register{reg.BX}, Disp: -303, HasDisp: true}),
		Dst:  RegLoc(reg.AX),
	}
	require.Equal(t, "mov ax, [bx - 303]", movAxMem.String())

	addBx5 := Instruction{Kind: Add, Src: ImmLoc(Immediate{Value: 5}), Dst: RegLoc(reg.BX)}
	require.Equal(t, "add bx, 5", addBx5.String())
}

func TestEmitterLabelCounterMonotonic(t *testing.T) {
	e := NewEmitter()
	jmp := Instruction{Kind: Jump, JumpKind: JE, Offset: 5}
	first := e.Line(jmp)
	second := e.Line(jmp)
	require.Equal(t, "je label_0 ; 5", first)
	require.Equal(t, "je label_1 ; 5", second)
}

func TestImmediateWidthTag(t *testing.T) {
	require.Equal(t, "5", Immediate{Value: 5}.String())
	require.Equal(t, "byte 5", Immediate{Value: 5, Tag: Byte}.String())
	require.Equal(t, "word 4660", Immediate{Value: 4660, Tag: Word}.String())
}
