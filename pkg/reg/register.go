// Package reg implements the 8086 register enumeration: the four general
// registers in their byte-low/byte-high/word views, the four pointer/index
// registers, and the three segment registers.
package reg

// View selects which slice of a 16-bit cell a Register reads and writes.
type View uint8

const (
	Word View = iota // full 16-bit cell
	Low              // low 8 bits of a general-register cell
	High             // high 8 bits of a general-register cell
)

// Register is one of the nineteen named 8086 registers. The identity
// encodes both the backing cell and the view into it: callers see a flat
// enumeration, the (cell, view) pair lives only in the lookup tables below.
type Register uint8

const (
	AL Register = iota
	CL
	DL
	BL
	AH
	CH
	DH
	BH
	AX
	CX
	DX
	BX
	SP
	BP
	SI
	DI
	SS
	DS
	ES

	count
)

// Cell indices into the eleven-cell register file.
const (
	CellA = iota
	CellB
	CellC
	CellD
	CellSP
	CellBP
	CellSI
	CellDI
	CellSS
	CellDS
	CellES

	NumCells
)

var cellOf = [count]uint8{
	AL: CellA, CL: CellC, DL: CellD, BL: CellB,
	AH: CellA, CH: CellC, DH: CellD, BH: CellB,
	AX: CellA, CX: CellC, DX: CellD, BX: CellB,
	SP: CellSP, BP: CellBP, SI: CellSI, DI: CellDI,
	SS: CellSS, DS: CellDS, ES: CellES,
}

var viewOf = [count]View{
	AL: Low, CL: Low, DL: Low, BL: Low,
	AH: High, CH: High, DH: High, BH: High,
	AX: Word, CX: Word, DX: Word, BX: Word,
	SP: Word, BP: Word, SI: Word, DI: Word,
	SS: Word, DS: Word, ES: Word,
}

var mnemonic = [count]string{
	AL: "al", CL: "cl", DL: "dl", BL: "bl",
	AH: "ah", CH: "ch", DH: "dh", BH: "bh",
	AX: "ax", CX: "cx", DX: "dx", BX: "bx",
	SP: "sp", BP: "bp", SI: "si", DI: "di",
	SS: "ss", DS: "ds", ES: "es",
}

// byteRegs and wordRegs are the standard 8086 REG field tables (w=0 / w=1).
var byteRegs = [8]Register{AL, CL, DL, BL, AH, CH, DH, BH}
var wordRegs = [8]Register{AX, CX, DX, BX, SP, BP, SI, DI}

// New maps a 3-bit REG/R-M field plus the w bit to the register it names.
// code must be in [0,7]; any other value is a programming error, since the
// decoder only ever extracts 3-bit fields.
func New(code uint8, w bool) Register {
	if code > 7 {
		panic("reg: code out of range")
	}
	if w {
		return wordRegs[code]
	}
	return byteRegs[code]
}

// Cell returns the register-file cell index this register reads/writes.
func (r Register) Cell() uint8 { return cellOf[r] }

// View returns which bits of the cell this register exposes.
func (r Register) View() View { return viewOf[r] }

// String renders the canonical lowercase two-letter mnemonic.
func (r Register) String() string { return mnemonic[r] }

// IsSegment reports whether r is one of SS/DS/ES.
func (r Register) IsSegment() bool {
	return r == SS || r == DS || r == ES
}
