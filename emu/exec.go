package emu

import (
	"math"

	"github.com/sarchlab/milosim/insts"
)

var (
	alu ALU
	fpu FPU
	sfu = NewSFU()
)

// Execute computes the result of a register-computing instruction from its
// source operand values. It covers every opcode whose only effect is
// writing one destination register: integer, logic, shift, bit, float,
// comparison, SFU, and select operations.
//
// The returned bool is false for opcodes Execute does not handle
// (control flow, memory, texture, TID), which the caller must implement.
//
// ADD treats a nonzero immediate as the second operand, matching the
// hardware's combined register/immediate form.
func Execute(inst *insts.Inst, s1, s2, s3 uint32) (uint32, bool) {
	i1 := int32(s1)
	i2 := int32(s2)
	f1 := math.Float32frombits(s1)
	f2 := math.Float32frombits(s2)

	switch inst.Op {
	case insts.OpMOV:
		return s1, true

	case insts.OpADD:
		if inst.Imm != 0 {
			return uint32(alu.Add(i1, inst.Imm)), true
		}
		return uint32(alu.Add(i1, i2)), true
	case insts.OpSUB:
		return uint32(alu.Sub(i1, i2)), true
	case insts.OpMUL:
		return uint32(alu.Mul(i1, i2)), true
	case insts.OpIMAD:
		return uint32(alu.Mad(i1, i2, int32(s3))), true
	case insts.OpNEG:
		return uint32(alu.Neg(i1)), true
	case insts.OpIDIV:
		return uint32(alu.Div(i1, i2)), true
	case insts.OpIREM:
		return uint32(alu.Rem(i1, i2)), true
	case insts.OpIABS:
		return uint32(alu.Abs(i1)), true
	case insts.OpIMIN:
		return uint32(alu.Min(i1, i2)), true
	case insts.OpIMAX:
		return uint32(alu.Max(i1, i2)), true

	case insts.OpSLT:
		return uint32(alu.Slt(i1, i2)), true
	case insts.OpSLE:
		return uint32(alu.Sle(i1, i2)), true
	case insts.OpSEQ:
		return uint32(alu.Seq(i1, i2)), true

	case insts.OpAND:
		return alu.And(s1, s2), true
	case insts.OpOR:
		return alu.Or(s1, s2), true
	case insts.OpXOR:
		return alu.Xor(s1, s2), true
	case insts.OpNOT:
		return alu.Not(s1), true

	case insts.OpSHL:
		return alu.Shl(s1, s2), true
	case insts.OpSHR:
		return alu.Shr(s1, s2), true
	case insts.OpSHA:
		return uint32(alu.Sha(i1, s2)), true

	case insts.OpPOPC:
		return uint32(alu.Popc(s1)), true
	case insts.OpCLZ:
		return uint32(alu.Clz(s1)), true
	case insts.OpBREV:
		return alu.Brev(s1), true
	case insts.OpCNOT:
		return alu.Cnot(s1), true

	case insts.OpFADD:
		return math.Float32bits(fpu.Add(f1, f2)), true
	case insts.OpFSUB:
		return math.Float32bits(fpu.Sub(f1, f2)), true
	case insts.OpFMUL:
		return math.Float32bits(fpu.Mul(f1, f2)), true
	case insts.OpFDIV:
		return math.Float32bits(fpu.Div(f1, f2)), true
	case insts.OpFFMA:
		return math.Float32bits(fpu.Fma(f1, f2, math.Float32frombits(s3))), true
	case insts.OpFNEG:
		return math.Float32bits(fpu.Neg(f1)), true
	case insts.OpFABS:
		return math.Float32bits(fpu.Abs(f1)), true
	case insts.OpFMIN:
		return math.Float32bits(fpu.Min(f1, f2)), true
	case insts.OpFMAX:
		return math.Float32bits(fpu.Max(f1, f2)), true
	case insts.OpFTOI:
		return uint32(fpu.Ftoi(f1)), true
	case insts.OpITOF:
		return math.Float32bits(fpu.Itof(i1)), true

	case insts.OpFSLT:
		return uint32(fpu.Slt(f1, f2)), true
	case insts.OpFSLE:
		return uint32(fpu.Sle(f1, f2)), true
	case insts.OpFSEQ:
		return uint32(fpu.Seq(f1, f2)), true

	case insts.OpSELP:
		if int32(s3) != 0 {
			return s1, true
		}
		return s2, true

	case insts.OpSIN:
		return math.Float32bits(sfu.Sin(f1)), true
	case insts.OpCOS:
		return math.Float32bits(sfu.Cos(f1)), true
	case insts.OpEX2:
		return math.Float32bits(sfu.Exp2(f1)), true
	case insts.OpLG2:
		return math.Float32bits(sfu.Log2(f1)), true
	case insts.OpRCP:
		return math.Float32bits(sfu.Rcp(f1)), true
	case insts.OpRSQ:
		return math.Float32bits(sfu.Rsq(f1)), true
	case insts.OpSQRT:
		return math.Float32bits(sfu.Sqrt(f1)), true
	case insts.OpTANH:
		return math.Float32bits(sfu.Tanh(f1)), true
	}

	return 0, false
}

// ReferenceSFU returns the shared special-function unit so tests can
// compare hardware results against the reference tables.
func ReferenceSFU() *SFU {
	return sfu
}
