package cpu

// Flags is the small status-flag record this core tracks: Zero, Sign,
// Parity, Overflow. Carry and Auxiliary Carry are part of the real 8086 but
// are not required by this execution subset.
type Flags struct {
	Zero     bool
	Sign     bool
	Parity   bool
	Overflow bool
}

// String renders the active flag letters in fixed Z,S,P,O order, omitting
// unset flags.
func (f Flags) String() string {
	var letters [4]byte
	i := 0
	if f.Zero {
		letters[i] = 'Z'
		i++
	}
	if f.Sign {
		letters[i] = 'S'
		i++
	}
	if f.Parity {
		letters[i] = 'P'
		i++
	}
	if f.Overflow {
		letters[i] = 'O'
		i++
	}
	return string(letters[:i])
}

// parityTable16 precomputes, for every possible 16-bit result, whether its
// population count is even. This core computes parity over the full
// 16-bit result rather than just the low byte the real 8086 ALU uses.
var parityTable16 [65536]bool

func init() {
	for i := 0; i < 65536; i++ {
		v := uint16(i)
		ones := 0
		for v != 0 {
			ones += int(v & 1)
			v >>= 1
		}
		parityTable16[i] = ones%2 == 0
	}
}

// fromResult computes ZF/SF/PF from a 16-bit arithmetic result. Overflow is
// operation-specific and is set by the caller.
func fromResult(r uint16) Flags {
	return Flags{
		Zero:   r == 0,
		Sign:   r&0x8000 != 0,
		Parity: parityTable16[r],
	}
}
