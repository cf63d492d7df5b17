// Package insts provides Milo832 instruction definitions and decoding.
package insts

// Op represents a Milo832 opcode. Opcode values match the 8-bit encoding
// emitted by the shader assembler.
type Op uint8

// Milo832 opcodes.
const (
	// Control
	OpNOP  Op = 0x00
	OpMOV  Op = 0x07
	OpEXIT Op = 0xFF

	// Integer arithmetic
	OpADD  Op = 0x01
	OpSUB  Op = 0x02
	OpMUL  Op = 0x03
	OpIMAD Op = 0x05
	OpNEG  Op = 0x06
	OpIDIV Op = 0x36
	OpIREM Op = 0x37
	OpIABS Op = 0x38
	OpIMIN Op = 0x39
	OpIMAX Op = 0x3A

	// Integer comparison
	OpSLT Op = 0x04
	OpSLE Op = 0x70
	OpSEQ Op = 0x71

	// Logic
	OpAND Op = 0x50
	OpOR  Op = 0x51
	OpXOR Op = 0x52
	OpNOT Op = 0x53

	// Shift
	OpSHL Op = 0x60
	OpSHR Op = 0x61
	OpSHA Op = 0x62

	// Memory
	OpLDR Op = 0x10
	OpSTR Op = 0x11
	OpLDS Op = 0x12
	OpSTS Op = 0x13

	// Control flow
	OpBEQ  Op = 0x20
	OpBNE  Op = 0x21
	OpBRA  Op = 0x22
	OpSSY  Op = 0x23
	OpJOIN Op = 0x24
	OpBAR  Op = 0x25
	OpTID  Op = 0x26
	OpCALL Op = 0x27
	OpRET  Op = 0x28

	// Floating point
	OpFADD Op = 0x30
	OpFSUB Op = 0x31
	OpFMUL Op = 0x32
	OpFDIV Op = 0x33
	OpFTOI Op = 0x34
	OpFFMA Op = 0x35
	OpFMIN Op = 0x3B
	OpFMAX Op = 0x3C
	OpFABS Op = 0x3D
	OpITOF Op = 0x3E
	OpFNEG Op = 0x54

	// Floating-point comparison
	OpFSLT Op = 0x72
	OpFSLE Op = 0x73
	OpFSEQ Op = 0x74

	// Bit manipulation
	OpPOPC Op = 0x68
	OpCLZ  Op = 0x69
	OpBREV Op = 0x6A
	OpCNOT Op = 0x6B

	// Predicates
	OpISETP Op = 0x80
	OpFSETP Op = 0x81
	OpSELP  Op = 0x82

	// Special Function Unit
	OpSIN  Op = 0x40
	OpCOS  Op = 0x41
	OpEX2  Op = 0x42
	OpLG2  Op = 0x43
	OpRCP  Op = 0x44
	OpRSQ  Op = 0x45
	OpSQRT Op = 0x46
	OpTANH Op = 0x47

	// Texture
	OpTEX Op = 0x90
	OpTXL Op = 0x91
	OpTXB Op = 0x92
)

// PredAlways is the predicate guard value meaning "always execute".
const PredAlways = 0x7

// Inst represents a decoded Milo832 instruction.
//
// The 64-bit word layout is:
//
//	[63:56] opcode
//	[55:48] rd    - destination register
//	[47:40] rs1   - source register 1
//	[39:32] rs2   - source register 2
//	[31:28] pred  - predicate guard
//	[27:20] rs3   - source register 3
//	[19:0]  imm20 - short immediate, sign-extended to 32 bits
type Inst struct {
	Op   Op
	Rd   uint8
	Rs1  uint8
	Rs2  uint8
	Rs3  uint8
	Pred uint8

	// Imm is the 20-bit immediate sign-extended to 32 bits.
	Imm int32
}

// Decoder decodes Milo832 machine words into instructions.
type Decoder struct{}

// NewDecoder creates a new Milo832 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 64-bit Milo832 instruction word.
func (d *Decoder) Decode(word uint64) *Inst {
	return &Inst{
		Op:   Op(word >> 56),
		Rd:   uint8(word >> 48),
		Rs1:  uint8(word >> 40),
		Rs2:  uint8(word >> 32),
		Pred: uint8(word>>28) & 0x0F,
		Rs3:  uint8(word>>20) & 0xFF,
		Imm:  signExtend20(uint32(word) & 0xFFFFF),
	}
}

// Encode packs an instruction into its 64-bit word form. Encoding then
// decoding recovers all fields the core consumes; immediates outside the
// signed 20-bit range are truncated, matching the assembler.
func Encode(inst Inst) uint64 {
	pred := inst.Pred
	if pred == 0 {
		pred = PredAlways
	}

	word := uint64(inst.Op) << 56
	word |= uint64(inst.Rd) << 48
	word |= uint64(inst.Rs1) << 40
	word |= uint64(inst.Rs2) << 32
	word |= uint64(pred&0x0F) << 28
	word |= uint64(inst.Rs3) << 20
	word |= uint64(uint32(inst.Imm) & 0xFFFFF)

	return word
}

// signExtend20 sign-extends a 20-bit immediate to 32 bits.
func signExtend20(imm uint32) int32 {
	if imm&0x80000 != 0 {
		imm |= 0xFFF00000
	}
	return int32(imm)
}
