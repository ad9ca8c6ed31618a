package cpu

import (
	"bytes"
	"testing"

	"github.com/BrankoKrstic/sim8086/pkg/decoder"
	"github.com/BrankoKrstic/sim8086/pkg/inst"
	"github.com/BrankoKrstic/sim8086/pkg/reg"
	"github.com/stretchr/testify/require"
)

func newExecutor(t *testing.T, program ...byte) *Executor {
	t.Helper()
	d := decoder.New(bytes.NewReader(program))
	return NewExecutor(d)
}

// TestHighLowAliasing checks that mov ah,0x12 then mov al,0x34 leaves
// ax == 0x1234.
func TestHighLowAliasing(t *testing.T) {
	e := newExecutor(t)
	e.Regs.Write(reg.AH, 0x12)
	e.Regs.Write(reg.AL, 0x34)
	require.Equal(t, uint16(0x1234), e.Regs.Read(reg.AX))
}

func TestMovPreservesOtherHalfOfCell(t *testing.T) {
	e := newExecutor(t)
	e.Regs.Write(reg.AX, 0xBEEF)
	e.Regs.Write(reg.AL, 0x11)
	require.Equal(t, uint16(0xBE11), e.Regs.Read(reg.AX))
}

// TestSubFlagsIdenticalOperands checks that sub reg, reg (same register)
// zeroes the result and sets ZF/PF without SF/OF.
func TestSubFlagsIdenticalOperands(t *testing.T) {
	e := newExecutor(t)
	e.Regs.Write(reg.BX, 7)
	ins := inst.Instruction{Kind: inst.Sub, Src: inst.RegLoc(reg.BX), Dst: inst.RegLoc(reg.BX)}
	err := e.Execute(ins)
	require.NoError(t, err)
	require.True(t, e.Flags.Zero)
	require.False(t, e.Flags.Sign)
	require.True(t, e.Flags.Parity)
	require.False(t, e.Flags.Overflow)
}

// TestSubFlagsBorrow checks that 1-2 across 16 bits sets SF and OF.
func TestSubFlagsBorrow(t *testing.T) {
	e := newExecutor(t)
	e.Regs.Write(reg.BX, 1)
	ins := inst.Instruction{Kind: inst.Sub, Src: inst.ImmLoc(inst.Immediate{Value: 2}), Dst: inst.RegLoc(reg.BX)}
	require.NoError(t, e.Execute(ins))
	require.True(t, e.Flags.Sign)
	require.True(t, e.Flags.Overflow)
	require.False(t, e.Flags.Zero)
}

// TestCmpDoesNotMutateDestination checks that cmp updates flags but leaves
// the register file untouched.
func TestCmpDoesNotMutateDestination(t *testing.T) {
	e := newExecutor(t)
	e.Regs.Write(reg.BX, 1)
	before := e.Regs
	ins := inst.Instruction{Kind: inst.Cmp, Src: inst.ImmLoc(inst.Immediate{Value: 2}), Dst: inst.RegLoc(reg.BX)}
	require.NoError(t, e.Execute(ins))
	require.True(t, before.Equal(e.Regs))
	require.True(t, e.Flags.Sign)
	require.True(t, e.Flags.Overflow)
}

// TestAddOverflowIsUnsignedCarryStyle documents the deliberately
// non-architectural ADD overflow rule: OF mirrors unsigned wraparound.
func TestAddOverflowIsUnsignedCarryStyle(t *testing.T) {
	e := newExecutor(t)
	e.Regs.Write(reg.AX, 0xFFFF)
	ins := inst.Instruction{Kind: inst.Add, Src: inst.ImmLoc(inst.Immediate{Value: 1}), Dst: inst.RegLoc(reg.AX)}
	require.NoError(t, e.Execute(ins))
	require.Equal(t, uint16(0), e.Regs.Read(reg.AX))
	require.True(t, e.Flags.Overflow)
}

// TestArithImmediateToRegisterByte checks that decoding and executing
// "add bx, 5" from zeroed state leaves bx=5, ZF=0, SF=0, PF=1, OF=0.
func TestArithImmediateToRegisterByte(t *testing.T) {
	e := newExecutor(t, 0x83, 0xC3, 0x05) // 83 C3 05 = add bx, 5
	ins, err := e.dec.Next()
	require.NoError(t, err)
	require.NoError(t, e.Execute(ins))
	require.Equal(t, uint16(5), e.Regs.Read(reg.BX))
	require.False(t, e.Flags.Zero)
	require.False(t, e.Flags.Sign)
	require.True(t, e.Flags.Parity)
	require.False(t, e.Flags.Overflow)
}

// TestMemoryOperandExecutionRefused covers the explicit non-goal that
// decoded memory operands are refused at execution time.
func TestMemoryOperandExecutionRefused(t *testing.T) {
	e := newExecutor(t)
	ins := inst.Instruction{
		Kind: inst.Mov,
		Src:  inst.ImmLoc(inst.Immediate{Value: 1}),
		Dst:  inst.MemLoc(inst.Memory{Regs: []reg.Register{reg.BX}}),
	}
	err := e.Execute(ins)
	require.Error(t, err)
	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
}

// TestUnimplementedKindIsFatalExecutionError checks that Daa/Aaa/Inc/Dec
// fail execution rather than being silently skipped.
func TestUnimplementedKindIsFatalExecutionError(t *testing.T) {
	e := newExecutor(t)
	err := e.Execute(inst.Instruction{Kind: inst.Daa})
	require.Error(t, err)
	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
}

// TestAdcSbbCarryInIsAlwaysZero checks that, since this core has no
// persistent carry flag, Adc behaves exactly like Add and Sbb exactly
// like Sub.
func TestAdcSbbCarryInIsAlwaysZero(t *testing.T) {
	e := newExecutor(t)
	e.Regs.Write(reg.BX, 3)
	require.NoError(t, e.Execute(inst.Instruction{
		Kind: inst.Adc, Src: inst.ImmLoc(inst.Immediate{Value: 4}), Dst: inst.RegLoc(reg.BX),
	}))
	require.Equal(t, uint16(7), e.Regs.Read(reg.BX))

	require.NoError(t, e.Execute(inst.Instruction{
		Kind: inst.Sbb, Src: inst.ImmLoc(inst.Immediate{Value: 2}), Dst: inst.RegLoc(reg.BX),
	}))
	require.Equal(t, uint16(5), e.Regs.Read(reg.BX))
}

// TestLoopNZLoop checks that "mov cx, 2; label: loopnz label" executes
// the loop body exactly twice and ends with cx=0, ZF=1.
//
// Encoding: B9 02 00 (mov cx,2), then a loopnz (0xE0) whose target is
// itself: offset -2, the length of its own two-byte encoding.
func TestLoopNZLoop(t *testing.T) {
	e := newExecutor(t, 0xB9, 0x02, 0x00, 0xE0, 0xFE)
	iterations := 0
	for {
		ins, err := e.dec.Next()
		if err != nil {
			break
		}
		require.NoError(t, e.Execute(ins))
		if ins.Kind == inst.Jump {
			iterations++
			if iterations > 10 {
				t.Fatal("loop did not terminate")
			}
		}
	}
	require.Equal(t, uint16(0), e.Regs.Read(reg.CX))
	require.True(t, e.Flags.Zero)
	require.Equal(t, 2, iterations)
}

// TestTraceLineFormat checks the per-instruction trace line format.
func TestTraceLineFormat(t *testing.T) {
	e := newExecutor(t)
	var buf bytes.Buffer
	e.Trace = &buf
	ins := inst.Instruction{Kind: inst.Mov, Src: inst.ImmLoc(inst.Immediate{Value: 42}), Dst: inst.RegLoc(reg.AX)}
	require.NoError(t, e.Execute(ins))
	require.Equal(t, "mov ax: 0x0000->0x002a\n", buf.String())
}

// TestSnapshotListsFlagsInFixedOrder checks the fixed Z,S,P,O flag
// rendering order in the snapshot output.
func TestSnapshotListsFlagsInFixedOrder(t *testing.T) {
	e := newExecutor(t)
	e.Flags = Flags{Zero: true, Parity: true}
	snap := e.Snapshot()
	require.Contains(t, snap, "flags: ZP")
}

// TestRunDrivesToCleanEOF exercises Run's top-level loop against a short
// well-formed program.
func TestRunDrivesToCleanEOF(t *testing.T) {
	// mov cx, bx (89 D9); add bx, 5 (83 C3 05)
	e := newExecutor(t, 0x89, 0xD9, 0x83, 0xC3, 0x05)
	require.NoError(t, e.Run())
	require.Equal(t, uint16(5), e.Regs.Read(reg.BX))
}

// TestRunPropagatesDecodeError exercises Run's error path.
func TestRunPropagatesDecodeError(t *testing.T) {
	e := newExecutor(t, 0x08, 0xC0) // or al, al: unsupported
	err := e.Run()
	require.Error(t, err)
}
