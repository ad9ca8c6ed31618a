// Package decoder implements the 8086 instruction decoder: it pulls bytes
// from a seek-capable source and emits one inst.Instruction per call to
// Next, or io.EOF between instructions. Opcodes are classified by their
// leading bit pattern rather than through a flat lookup table, since 8086
// encoding is variable-length with overlapping opcode ranges.
package decoder

import (
	"fmt"
	"io"
	"iter"

	"github.com/BrankoKrstic/sim8086/pkg/inst"
	"github.com/BrankoKrstic/sim8086/pkg/reg"
)

// Decoder decodes a stream of 8086 machine code. It owns no buffering: src
// is read one byte at a time so that Jump's relative Seek always lines up
// with the logical instruction boundary, never a buffered read-ahead.
type Decoder struct {
	src    io.ReadSeeker
	offset int64 // bytes consumed so far, for error messages only
}

// New wraps a seek-capable byte source. src is typically an *os.File or a
// *bytes.Reader; both satisfy io.ReadSeeker.
func New(src io.ReadSeeker) *Decoder {
	return &Decoder{src: src}
}

// Next decodes and returns the next instruction. It returns io.EOF when the
// stream ends cleanly between instructions. A failed read of an
// instruction's opening byte is returned as a wrapped I/O error; every
// other error is a *DecodeError (malformed opcode, or truncation
// mid-instruction).
func (d *Decoder) Next() (inst.Instruction, error) {
	b1, err := d.readFirstByte()
	if err != nil {
		return inst.Instruction{}, err
	}

	if kind, ok := inst.JumpKindForOpcode(b1); ok {
		off, err := d.readByte()
		if err != nil {
			return inst.Instruction{}, d.truncated(b1, "short jump missing displacement byte")
		}
		return inst.Instruction{Kind: inst.Jump, JumpKind: kind, Offset: int8(off)}, nil
	}
	switch b1 {
	case 0x37:
		return inst.Instruction{Kind: inst.Aaa}, nil
	case 0x27:
		return inst.Instruction{Kind: inst.Daa}, nil
	}

	switch b1 >> 4 {
	case 0xB:
		return d.decodeMovImmToReg(b1)
	case 0x8:
		return d.decode8x(b1)
	case 0xC:
		return d.decodeMovImmToRM(b1)
	case 0xA:
		return d.decodeAccumulatorMov(b1)
	case 0x0, 0x2, 0x3:
		return d.decodeArith(b1)
	case 0x4:
		return d.decodeIncDecReg(b1)
	}

	return inst.Instruction{}, d.decodeErr(b1, "unsupported opcode prefix")
}

// Jump repositions the byte source by the signed 8-bit offset, relative to
// the current read position — which is already "after" the jump's own
// two-byte encoding, since Next consumed both bytes before returning the
// Jump instruction.
func (d *Decoder) Jump(offset int8) error {
	_, err := d.src.Seek(int64(offset), io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("decoder: jump seek failed: %w", err)
	}
	d.offset += int64(offset)
	return nil
}

// Iterate returns a lazy, finite, non-restartable sequence of Instructions,
// obtained by repeatedly calling Next. Iteration stops silently at a clean
// end of stream, or yields exactly one (zero-value, error) pair and stops
// on a decode failure.
func (d *Decoder) Iterate() iter.Seq2[inst.Instruction, error] {
	return func(yield func(inst.Instruction, error) bool) {
		for {
			ins, err := d.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(inst.Instruction{}, err)
				return
			}
			if !yield(ins, nil) {
				return
			}
		}
	}
}

// readFirstByte reads the opening byte of a new instruction. A clean EOF
// here (zero bytes available) is the normal end-of-stream terminator.
func (d *Decoder) readFirstByte() (byte, error) {
	var buf [1]byte
	n, err := d.src.Read(buf[:])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("decoder: read failed: %w", err)
	}
	d.offset++
	return buf[0], nil
}

// readByte reads one byte that is required to complete an in-progress
// instruction; any failure (including EOF) here is truncation.
func (d *Decoder) readByte() (byte, error) {
	var buf [1]byte
	n, err := d.src.Read(buf[:])
	if n == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	d.offset++
	return buf[0], nil
}

// readWord reads a little-endian 16-bit value: low byte first, then high.
func (d *Decoder) readWord() (uint16, error) {
	lo, err := d.readByte()
	if err != nil {
		return 0, err
	}
	hi, err := d.readByte()
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

func (d *Decoder) decodeErr(b byte, msg string) *DecodeError {
	return &DecodeError{Offset: d.offset - 1, Byte: b, Msg: msg}
}

func (d *Decoder) truncated(b byte, msg string) *DecodeError {
	return &DecodeError{Offset: d.offset, Byte: b, Msg: "truncated: " + msg}
}

// --- 0xB_: immediate-to-register MOV ---

func (d *Decoder) decodeMovImmToReg(b1 byte) (inst.Instruction, error) {
	w := b1&0b0000_1000 != 0
	code := b1 & 0b111
	var val uint16
	var err error
	if w {
		val, err = d.readWord()
	} else {
		var b byte
		b, err = d.readByte()
		val = uint16(b)
	}
	if err != nil {
		return inst.Instruction{}, d.truncated(b1, "missing immediate")
	}
	return inst.Instruction{
		Kind: inst.Mov,
		Src:  inst.ImmLoc(inst.Immediate{Value: int16(val)}),
		Dst:  inst.RegLoc(reg.New(code, w)),
	}, nil
}

// --- 0x8_: either arithmetic-immediate-to-r/m (100000sw) or
// register/memory MOV (100010dw) ---

func (d *Decoder) decode8x(b1 byte) (inst.Instruction, error) {
	if b1>>2 == 0b10_0000 {
		return d.decodeArithImmToRM(b1)
	}
	if b1>>2 == 0b10_0010 {
		return d.decodeMovRegRM(b1)
	}
	return inst.Instruction{}, d.decodeErr(b1, "unsupported 0x8x opcode")
}

func (d *Decoder) decodeMovRegRM(b1 byte) (inst.Instruction, error) {
	dBit := b1&0b10 != 0
	w := b1&0b01 != 0

	modByte, err := d.readByte()
	if err != nil {
		return inst.Instruction{}, d.truncated(b1, "missing mod/reg/r-m byte")
	}
	mod := modByte >> 6
	regField := (modByte >> 3) & 0b111
	rmField := modByte & 0b111

	regLoc := inst.RegLoc(reg.New(regField, w))
	rmLoc, err := d.rmOperand(mod, rmField, w)
	if err != nil {
		return inst.Instruction{}, err
	}

	src, dst := regLoc, rmLoc
	if dBit {
		src, dst = rmLoc, regLoc
	}
	return inst.Instruction{Kind: inst.Mov, Src: src, Dst: dst}, nil
}

// arithOp maps the 3-bit opcode-selector field shared by the
// register/memory, immediate-to-accumulator, and immediate-to-r/m
// arithmetic families to the Instruction Kind it produces. OR/AND/XOR have
// no representation in this core's Instruction model and are therefore
// rejected as decode errors, even though the bit pattern is a valid 8086
// encoding.
var arithOp = map[uint8]inst.Kind{
	0b000: inst.Add,
	0b010: inst.Adc,
	0b011: inst.Sbb,
	0b101: inst.Sub,
	0b111: inst.Cmp,
}

func (d *Decoder) decodeArithImmToRM(b1 byte) (inst.Instruction, error) {
	s := b1&0b10 != 0
	w := b1&0b01 != 0

	modByte, err := d.readByte()
	if err != nil {
		return inst.Instruction{}, d.truncated(b1, "missing mod/reg/r-m byte")
	}
	mod := modByte >> 6
	opField := (modByte >> 3) & 0b111
	rmField := modByte & 0b111

	kind, ok := arithOp[opField]
	if !ok {
		return inst.Instruction{}, d.decodeErr(b1, "unsupported arithmetic operation (OR/AND/XOR not modeled)")
	}

	rmLoc, err := d.rmOperand(mod, rmField, w)
	if err != nil {
		return inst.Instruction{}, err
	}

	var val int16
	if w && !s {
		v, err := d.readWord()
		if err != nil {
			return inst.Instruction{}, d.truncated(b1, "missing word immediate")
		}
		val = int16(v)
	} else {
		b, err := d.readByte()
		if err != nil {
			return inst.Instruction{}, d.truncated(b1, "missing byte immediate")
		}
		val = int16(int8(b))
	}

	tag := inst.NoWidth
	if rmLoc.Kind == inst.LocMemory {
		if w {
			tag = inst.Word
		} else {
			tag = inst.Byte
		}
	}

	return inst.Instruction{
		Kind: kind,
		Src:  inst.ImmLoc(inst.Immediate{Value: val, Tag: tag}),
		Dst:  rmLoc,
	}, nil
}

// --- 0xC6/0xC7: immediate-to-register/memory MOV ---

func (d *Decoder) decodeMovImmToRM(b1 byte) (inst.Instruction, error) {
	if b1 != 0xC6 && b1 != 0xC7 {
		return inst.Instruction{}, d.decodeErr(b1, "unsupported 0xCx opcode")
	}
	w := b1&0b01 != 0

	modByte, err := d.readByte()
	if err != nil {
		return inst.Instruction{}, d.truncated(b1, "missing mod/reg/r-m byte")
	}
	mod := modByte >> 6
	rmField := modByte & 0b111

	rmLoc, err := d.rmOperand(mod, rmField, w)
	if err != nil {
		return inst.Instruction{}, err
	}

	var val int16
	if w {
		v, err := d.readWord()
		if err != nil {
			return inst.Instruction{}, d.truncated(b1, "missing word immediate")
		}
		val = int16(v)
	} else {
		b, err := d.readByte()
		if err != nil {
			return inst.Instruction{}, d.truncated(b1, "missing byte immediate")
		}
		val = int16(int8(b))
	}

	tag := inst.NoWidth
	if rmLoc.Kind == inst.LocMemory {
		if w {
			tag = inst.Word
		} else {
			tag = inst.Byte
		}
	}

	return inst.Instruction{
		Kind: inst.Mov,
		Src:  inst.ImmLoc(inst.Immediate{Value: val, Tag: tag}),
		Dst:  rmLoc,
	}, nil
}

// --- 0xA0-0xA3: accumulator direct-memory MOV ---

func (d *Decoder) decodeAccumulatorMov(b1 byte) (inst.Instruction, error) {
	if b1 < 0xA0 || b1 > 0xA3 {
		return inst.Instruction{}, d.decodeErr(b1, "unsupported 0xAx opcode")
	}
	w := b1&0b01 != 0
	memToAcc := b1&0b10 == 0

	var disp int16
	if w {
		v, err := d.readWord()
		if err != nil {
			return inst.Instruction{}, d.truncated(b1, "missing 16-bit address")
		}
		disp = int16(v)
	} else {
		b, err := d.readByte()
		if err != nil {
			return inst.Instruction{}, d.truncated(b1, "missing 8-bit address")
		}
		disp = int16(int8(b))
	}

	mem := inst.MemLoc(inst.Memory{Disp: disp, HasDisp: true})
	acc := inst.RegLoc(reg.New(0, w)) // AL or AX

	if memToAcc {
		return inst.Instruction{Kind: inst.Mov, Src: mem, Dst: acc}, nil
	}
	return inst.Instruction{Kind: inst.Mov, Src: acc, Dst: mem}, nil
}

// --- 0x0_, 0x2_, 0x3_: ADD/SUB/CMP register/memory or
// immediate-to-accumulator. The ADC/SBB forms of this family (0x10-0x1D)
// are not dispatched here and fail as an unsupported opcode prefix; ADC/SBB
// decode only from the 0x80-0x83 immediate-to-r/m family. ---

func (d *Decoder) decodeArith(b1 byte) (inst.Instruction, error) {
	opField := (b1 >> 3) & 0b111
	kind, ok := arithOp[opField]
	if !ok {
		return inst.Instruction{}, d.decodeErr(b1, "unsupported arithmetic operation (OR/AND/XOR not modeled)")
	}

	variant := b1 & 0b111
	switch variant {
	case 0, 1, 2, 3:
		return d.decodeArithRegRM(b1, kind, variant)
	case 4, 5:
		return d.decodeArithAccImm(b1, kind, variant == 5)
	default:
		return inst.Instruction{}, d.decodeErr(b1, "unsupported variant (segment override / push-pop not modeled)")
	}
}

func (d *Decoder) decodeArithRegRM(b1 byte, kind inst.Kind, variant byte) (inst.Instruction, error) {
	dBit := variant&0b10 != 0
	w := variant&0b01 != 0

	modByte, err := d.readByte()
	if err != nil {
		return inst.Instruction{}, d.truncated(b1, "missing mod/reg/r-m byte")
	}
	mod := modByte >> 6
	regField := (modByte >> 3) & 0b111
	rmField := modByte & 0b111

	regLoc := inst.RegLoc(reg.New(regField, w))
	rmLoc, err := d.rmOperand(mod, rmField, w)
	if err != nil {
		return inst.Instruction{}, err
	}

	src, dst := regLoc, rmLoc
	if dBit {
		src, dst = rmLoc, regLoc
	}
	return inst.Instruction{Kind: kind, Src: src, Dst: dst}, nil
}

func (d *Decoder) decodeArithAccImm(b1 byte, kind inst.Kind, w bool) (inst.Instruction, error) {
	var val int16
	if w {
		v, err := d.readWord()
		if err != nil {
			return inst.Instruction{}, d.truncated(b1, "missing word immediate")
		}
		val = int16(v)
	} else {
		b, err := d.readByte()
		if err != nil {
			return inst.Instruction{}, d.truncated(b1, "missing byte immediate")
		}
		val = int16(int8(b))
	}
	return inst.Instruction{
		Kind: kind,
		Src:  inst.ImmLoc(inst.Immediate{Value: val}),
		Dst:  inst.RegLoc(reg.New(0, w)), // AL or AX
	}, nil
}

// --- 0x4_: INC/DEC of a 16-bit general register ---

func (d *Decoder) decodeIncDecReg(b1 byte) (inst.Instruction, error) {
	code := b1 & 0b111
	dst := inst.RegLoc(reg.New(code, true))
	if b1&0b1000 == 0 {
		return inst.Instruction{Kind: inst.Inc, Dst: dst}, nil
	}
	return inst.Instruction{Kind: inst.Dec, Dst: dst}, nil
}

// --- shared mod/reg/r-m effective-address table ---

func (d *Decoder) rmOperand(mod, rm uint8, w bool) (inst.Location, error) {
	if mod == 0b11 {
		return inst.RegLoc(reg.New(rm, w)), nil
	}

	var regs []reg.Register
	direct := false
	switch rm {
	case 0b000:
		regs = []reg.Register{reg.BX, reg.SI}
	case 0b001:
		regs = []reg.Register{reg.BX, reg.DI}
	case 0b010:
		regs = []reg.Register{reg.BP, reg.SI}
	case 0b011:
		regs = []reg.Register{reg.BP, reg.DI}
	case 0b100:
		regs = []reg.Register{reg.SI}
	case 0b101:
		regs = []reg.Register{reg.DI}
	case 0b110:
		if mod == 0b00 {
			direct = true
		} else {
			regs = []reg.Register{reg.BP}
		}
	case 0b111:
		regs = []reg.Register{reg.BX}
	}

	var disp int16
	hasDisp := false
	switch {
	case direct:
		v, err := d.readWord()
		if err != nil {
			return inst.Location{}, d.truncated(0, "missing direct-address displacement")
		}
		disp = int16(v)
		hasDisp = true
	case mod == 0b00:
		// no displacement
	case mod == 0b01:
		b, err := d.readByte()
		if err != nil {
			return inst.Location{}, d.truncated(0, "missing 8-bit displacement")
		}
		disp = int16(int8(b))
		hasDisp = true
	case mod == 0b10:
		v, err := d.readWord()
		if err != nil {
			return inst.Location{}, d.truncated(0, "missing 16-bit displacement")
		}
		disp = int16(v)
		hasDisp = true
	}

	return inst.MemLoc(inst.Memory{Regs: regs, Disp: disp, HasDisp: hasDisp}), nil
}
