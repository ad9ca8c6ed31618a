package decoder

import "fmt"

// DecodeError reports a byte pattern with no matching 8086 opcode class, or
// input truncated mid-instruction.
type DecodeError struct {
	Offset int64
	Byte   byte
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at offset %d (byte 0x%02X): %s", e.Offset, e.Byte, e.Msg)
}
