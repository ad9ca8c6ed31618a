package reg

import "testing"

// TestNewTable verifies the 8086 REG field table for both operand widths.
func TestNewTable(t *testing.T) {
	tests := []struct {
		code uint8
		w    bool
		want Register
		text string
	}{
		{0, false, AL, "al"}, {1, false, CL, "cl"}, {2, false, DL, "dl"}, {3, false, BL, "bl"},
		{4, false, AH, "ah"}, {5, false, CH, "ch"}, {6, false, DH, "dh"}, {7, false, BH, "bh"},
		{0, true, AX, "ax"}, {1, true, CX, "cx"}, {2, true, DX, "dx"}, {3, true, BX, "bx"},
		{4, true, SP, "sp"}, {5, true, BP, "bp"}, {6, true, SI, "si"}, {7, true, DI, "di"},
	}

	for _, tc := range tests {
		got := New(tc.code, tc.w)
		if got != tc.want {
			t.Errorf("New(%d, %v) = %v, want %v", tc.code, tc.w, got, tc.want)
		}
		if got.String() != tc.text {
			t.Errorf("New(%d, %v).String() = %q, want %q", tc.code, tc.w, got.String(), tc.text)
		}
	}
}

// TestAliasing verifies AL/AH/AX and friends share a cell but differ in view.
func TestAliasing(t *testing.T) {
	pairs := []struct {
		low, high, word Register
	}{
		{AL, AH, AX},
		{CL, CH, CX},
		{DL, DH, DX},
		{BL, BH, BX},
	}
	for _, p := range pairs {
		if p.low.Cell() != p.high.Cell() || p.high.Cell() != p.word.Cell() {
			t.Errorf("%v/%v/%v do not share a cell", p.low, p.high, p.word)
		}
		if p.low.View() != Low || p.high.View() != High || p.word.View() != Word {
			t.Errorf("%v/%v/%v have wrong views: %v/%v/%v", p.low, p.high, p.word, p.low.View(), p.high.View(), p.word.View())
		}
	}
}

func TestSegmentMnemonics(t *testing.T) {
	segs := map[Register]string{SS: "ss", DS: "ds", ES: "es"}
	for r, want := range segs {
		if !r.IsSegment() {
			t.Errorf("%v.IsSegment() = false, want true", r)
		}
		if r.String() != want {
			t.Errorf("%v.String() = %q, want %q", r, r.String(), want)
		}
	}
	if AX.IsSegment() {
		t.Error("AX.IsSegment() = true, want false")
	}
}
