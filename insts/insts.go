// Package insts provides Milo832 instruction definitions and decoding.
//
// This package implements decoding of 64-bit Milo832 shader instruction
// words into structured instruction representations. It covers the full
// opcode table consumed by the SIMT core:
//   - Integer arithmetic: ADD, SUB, MUL, IMAD, NEG, IDIV, IREM, IABS, IMIN, IMAX
//   - Logic and shifts: AND, OR, XOR, NOT, SHL, SHR, SHA
//   - Bit manipulation: POPC, CLZ, BREV, CNOT
//   - Floating point: FADD, FSUB, FMUL, FDIV, FFMA, FMIN, FMAX, FABS, FNEG,
//     FTOI, ITOF and ordered comparisons
//   - Special functions: SIN, COS, EX2, LG2, RCP, RSQ, SQRT, TANH
//   - Control flow: BEQ, BNE, BRA, SSY, JOIN, BAR, TID, CALL, RET, EXIT
//   - Memory: LDR, STR (global), LDS, STS (shared)
//   - Texture: TEX
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(word)
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
package insts
