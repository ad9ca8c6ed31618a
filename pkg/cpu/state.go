package cpu

import "github.com/BrankoKrstic/sim8086/pkg/reg"

// RegisterFile holds the eleven 16-bit cells of the 8086 register file:
// four general-register cells shared between their byte-low/byte-high/word
// views, four pointer/index cells, and three segment cells. It fits
// comfortably in a cache line and is cheap to copy by value.
type RegisterFile struct {
	cells [reg.NumCells]uint16
}

// Equal reports whether two register files hold identical cell values.
func (f RegisterFile) Equal(o RegisterFile) bool {
	return f.cells == o.cells
}

// Read returns r's current value at its own width: the full cell for a
// word-view register, or the relevant 8 bits for a byte-low/byte-high view.
func (f *RegisterFile) Read(r reg.Register) uint16 {
	cell := f.cells[r.Cell()]
	switch r.View() {
	case reg.Low:
		return cell & 0x00FF
	case reg.High:
		return cell >> 8
	default:
		return cell
	}
}

// Write stores val into r, preserving the bits of the owning cell that r's
// view does not cover.
func (f *RegisterFile) Write(r reg.Register, val uint16) {
	cell := &f.cells[r.Cell()]
	switch r.View() {
	case reg.Low:
		*cell = (*cell & 0xFF00) | (val & 0x00FF)
	case reg.High:
		*cell = (*cell & 0x00FF) | ((val & 0x00FF) << 8)
	default:
		*cell = val
	}
}
