package inst

// JumpKind is one of the 20 short conditional/loop opcodes of page 161 of
// the 8086 User Manual.
type JumpKind uint8

const (
	JE JumpKind = iota
	JL
	JLE
	JB
	JBE
	JP
	JO
	JS
	JNE
	JNL
	JNLE
	JNB
	JNBE
	JNP
	JNO
	JNS
	LOOP
	LOOPZ
	LOOPNZ
	JCXZ

	jumpKindCount
)

var jumpMnemonic = [jumpKindCount]string{
	JE: "je", JL: "jl", JLE: "jle", JB: "jb", JBE: "jbe",
	JP: "jp", JO: "jo", JS: "js", JNE: "jne", JNL: "jnl",
	JNLE: "jnle", JNB: "jnb", JNBE: "jnbe", JNP: "jnp", JNO: "jno",
	JNS: "jns", LOOP: "loop", LOOPZ: "loopz", LOOPNZ: "loopnz", JCXZ: "jcxz",
}

func (k JumpKind) String() string { return jumpMnemonic[k] }

// jumpOpcodes maps each short-jump opcode byte to its JumpKind. 0xE1 is
// loopz/loope on the 8086.
var jumpOpcodes = map[byte]JumpKind{
	0x74: JE,
	0x7C: JL,
	0x7E: JLE,
	0x72: JB,
	0x76: JBE,
	0x7A: JP,
	0x70: JO,
	0x78: JS,
	0x75: JNE,
	0x7D: JNL,
	0x7F: JNLE,
	0x73: JNB,
	0x77: JNBE,
	0x7B: JNP,
	0x71: JNO,
	0x79: JNS,
	0xE2: LOOP,
	0xE1: LOOPZ,
	0xE0: LOOPNZ,
	0xE3: JCXZ,
}

// JumpKindForOpcode returns the JumpKind for a short-jump opcode byte and
// whether that byte is one of the 20 recognized short-jump opcodes.
func JumpKindForOpcode(b byte) (JumpKind, bool) {
	k, ok := jumpOpcodes[b]
	return k, ok
}
