package inst

import (
	"strconv"
	"strings"

	"github.com/BrankoKrstic/sim8086/pkg/reg"
)

// Width tags an Immediate's explicit byte/word size, used only when the
// immediate's destination is memory (otherwise the destination register's
// width already disambiguates the size).
type Width uint8

const (
	NoWidth Width = iota
	Byte
	Word
)

// Memory is an 8086 effective-address descriptor: up to two base/index
// registers plus a signed 16-bit displacement. When both registers are
// absent the displacement is a direct address.
type Memory struct {
	Regs    []reg.Register // 0, 1, or 2 base/index registers, in encoding order
	Disp    int16
	HasDisp bool // true unless the address is purely register(s), no displacement
}

func (m Memory) String() string {
	var parts []string
	for _, r := range m.Regs {
		parts = append(parts, r.String())
	}
	if len(m.Regs) == 0 {
		// Direct address: the displacement IS the address.
		return "[" + strconv.Itoa(int(m.Disp)) + "]"
	}
	body := strings.Join(parts, " + ")
	if m.HasDisp && m.Disp != 0 {
		if m.Disp < 0 {
			body += " - " + strconv.Itoa(int(-m.Disp))
		} else {
			body += " + " + strconv.Itoa(int(m.Disp))
		}
	}
	return "[" + body + "]"
}

// Immediate is a signed 16-bit datum with an optional explicit width tag.
type Immediate struct {
	Value int16
	Tag   Width
}

func (i Immediate) String() string {
	switch i.Tag {
	case Byte:
		return "byte " + strconv.Itoa(int(i.Value))
	case Word:
		return "word " + strconv.Itoa(int(i.Value))
	default:
		return strconv.Itoa(int(i.Value))
	}
}

// LocKind discriminates the Location sum type.
type LocKind uint8

const (
	LocRegister LocKind = iota
	LocMemory
	LocImmediate
)

// Location is the operand sum type: Register, Memory, or Immediate.
// Instruction operands are always Locations; write destinations must not be
// LocImmediate.
type Location struct {
	Kind LocKind
	Reg  reg.Register
	Mem  Memory
	Imm  Immediate
}

// RegLoc builds a register operand.
func RegLoc(r reg.Register) Location { return Location{Kind: LocRegister, Reg: r} }

// MemLoc builds a memory operand.
func MemLoc(m Memory) Location { return Location{Kind: LocMemory, Mem: m} }

// ImmLoc builds an immediate operand.
func ImmLoc(i Immediate) Location { return Location{Kind: LocImmediate, Imm: i} }

// IsWritable reports whether this Location may be a write destination.
func (l Location) IsWritable() bool { return l.Kind != LocImmediate }

func (l Location) String() string {
	switch l.Kind {
	case LocRegister:
		return l.Reg.String()
	case LocMemory:
		return l.Mem.String()
	case LocImmediate:
		return l.Imm.String()
	default:
		return "?"
	}
}
