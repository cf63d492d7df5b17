package insts

import (
	"fmt"
	"io"
)

var opNames = map[Op]string{
	OpNOP: "NOP", OpMOV: "MOV", OpEXIT: "EXIT",
	OpADD: "ADD", OpSUB: "SUB", OpMUL: "MUL", OpIMAD: "IMAD", OpNEG: "NEG",
	OpIDIV: "IDIV", OpIREM: "IREM", OpIABS: "IABS", OpIMIN: "IMIN", OpIMAX: "IMAX",
	OpSLT: "SLT", OpSLE: "SLE", OpSEQ: "SEQ",
	OpAND: "AND", OpOR: "OR", OpXOR: "XOR", OpNOT: "NOT",
	OpSHL: "SHL", OpSHR: "SHR", OpSHA: "SHA",
	OpLDR: "LDR", OpSTR: "STR", OpLDS: "LDS", OpSTS: "STS",
	OpBEQ: "BEQ", OpBNE: "BNE", OpBRA: "BRA", OpSSY: "SSY", OpJOIN: "JOIN",
	OpBAR: "BAR", OpTID: "TID", OpCALL: "CALL", OpRET: "RET",
	OpFADD: "FADD", OpFSUB: "FSUB", OpFMUL: "FMUL", OpFDIV: "FDIV",
	OpFTOI: "FTOI", OpFFMA: "FFMA", OpFMIN: "FMIN", OpFMAX: "FMAX",
	OpFABS: "FABS", OpITOF: "ITOF", OpFNEG: "FNEG",
	OpFSLT: "FSLT", OpFSLE: "FSLE", OpFSEQ: "FSEQ",
	OpPOPC: "POPC", OpCLZ: "CLZ", OpBREV: "BREV", OpCNOT: "CNOT",
	OpISETP: "ISETP", OpFSETP: "FSETP", OpSELP: "SELP",
	OpSIN: "SIN", OpCOS: "COS", OpEX2: "EX2", OpLG2: "LG2",
	OpRCP: "RCP", OpRSQ: "RSQ", OpSQRT: "SQRT", OpTANH: "TANH",
	OpTEX: "TEX", OpTXL: "TXL", OpTXB: "TXB",
}

// String returns the assembler mnemonic for the opcode.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("???(0x%02X)", uint8(o))
}

// Disassemble renders one instruction word in the assembler's listing
// format: mnemonic, rd, rs1, rs2 and the raw immediate.
func Disassemble(word uint64) string {
	d := Decoder{}
	inst := d.Decode(word)
	return fmt.Sprintf("%-6s r%d, r%d, r%d, 0x%08X",
		inst.Op, inst.Rd, inst.Rs1, inst.Rs2, uint32(inst.Imm))
}

// DisassembleProgram writes a listing of the whole program to w.
func DisassembleProgram(code []uint64, w io.Writer) {
	for i, word := range code {
		fmt.Fprintf(w, "%04X: %016X  %s\n", i, word, Disassemble(word))
	}
}
