package payload

// 16-bit real-mode encodings emitted by the assembler and understood by the
// firmware simulator.
const (
	OpIncBX    = 0x43
	OpIncSI    = 0x46
	OpXorRM16  = 0x31
	OpCmpALImm = 0x3C
	OpJE       = 0x74
	OpJNE      = 0x75
	OpGrp1Imm  = 0x81
	OpMovR8RM  = 0x8A
	OpMovSegRM = 0x8E
	OpMovALMem = 0xA0
	OpLodsb    = 0xAC
	OpMovALImm = 0xB0
	OpMovAHImm = 0xB4
	OpMovBXImm = 0xBB
	OpMovSIImm = 0xBE
	OpInt      = 0xCD
	OpJmpShort = 0xEB
	OpHlt      = 0xF4
	OpCli      = 0xFA

	ModRMAddBX   = 0xC3
	ModRMAddSI   = 0xC6
	ModRMALAtBX  = 0x07
	ModRMAXAX    = 0xC0
	ModRMDSAX    = 0xD8
	IntVideo     = 0x10
	VideoTTYFunc = 0x0E
)

// SelfLoop is `jmp $`, the conventional end of a boot sector that has
// nothing left to do.
var SelfLoop = []byte{OpJmpShort, 0xFE}

type Reg16 int

const (
	RegBX Reg16 = iota
	RegSI
)

func (r Reg16) String() string {
	switch r {
	case RegBX:
		return "bx"
	case RegSI:
		return "si"
	default:
		return "?"
	}
}

func (r Reg16) movImm() byte {
	if r == RegSI {
		return OpMovSIImm
	}
	return OpMovBXImm
}

func (r Reg16) addModRM() byte {
	if r == RegSI {
		return ModRMAddSI
	}
	return ModRMAddBX
}

func (r Reg16) inc() byte {
	if r == RegSI {
		return OpIncSI
	}
	return OpIncBX
}
