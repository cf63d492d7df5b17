package emu

import "math/bits"

// ALU implements the Milo832 integer arithmetic, logic, shift, and bit
// manipulation operations. It is stateless; operands come in, a result
// comes out.
type ALU struct{}

// Add performs signed addition.
func (ALU) Add(a, b int32) int32 { return a + b }

// Sub performs signed subtraction.
func (ALU) Sub(a, b int32) int32 { return a - b }

// Mul performs signed multiplication.
func (ALU) Mul(a, b int32) int32 { return a * b }

// Mad performs a multiply-add: a*b + c.
func (ALU) Mad(a, b, c int32) int32 { return a*b + c }

// Neg negates the operand.
func (ALU) Neg(a int32) int32 { return -a }

// Div performs signed division. Division by zero yields 0 rather than a
// fault so the pipeline never stalls on it.
func (ALU) Div(a, b int32) int32 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Rem computes the signed remainder. Remainder by zero yields 0.
func (ALU) Rem(a, b int32) int32 {
	if b == 0 {
		return 0
	}
	return a % b
}

// Abs computes the absolute value.
func (ALU) Abs(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}

// Min returns the smaller of two signed values.
func (ALU) Min(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two signed values.
func (ALU) Max(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// Slt returns 1 if a < b (signed), else 0.
func (ALU) Slt(a, b int32) int32 { return b2i(a < b) }

// Sle returns 1 if a <= b (signed), else 0.
func (ALU) Sle(a, b int32) int32 { return b2i(a <= b) }

// Seq returns 1 if a == b, else 0.
func (ALU) Seq(a, b int32) int32 { return b2i(a == b) }

// And performs bitwise AND.
func (ALU) And(a, b uint32) uint32 { return a & b }

// Or performs bitwise OR.
func (ALU) Or(a, b uint32) uint32 { return a | b }

// Xor performs bitwise XOR.
func (ALU) Xor(a, b uint32) uint32 { return a ^ b }

// Not performs bitwise complement.
func (ALU) Not(a uint32) uint32 { return ^a }

// Shl shifts left. The shift amount is masked to the register width.
func (ALU) Shl(a, amount uint32) uint32 { return a << (amount & 31) }

// Shr shifts right logically. The shift amount is masked.
func (ALU) Shr(a, amount uint32) uint32 { return a >> (amount & 31) }

// Sha shifts right arithmetically. The shift amount is masked.
func (ALU) Sha(a int32, amount uint32) int32 { return a >> (amount & 31) }

// Popc counts set bits.
func (ALU) Popc(a uint32) int32 { return int32(bits.OnesCount32(a)) }

// Clz counts leading zeros.
func (ALU) Clz(a uint32) int32 { return int32(bits.LeadingZeros32(a)) }

// Brev reverses the bit order.
func (ALU) Brev(a uint32) uint32 { return bits.Reverse32(a) }

// Cnot returns 1 if the operand is zero, else 0.
func (ALU) Cnot(a uint32) uint32 {
	if a == 0 {
		return 1
	}
	return 0
}

func b2i(c bool) int32 {
	if c {
		return 1
	}
	return 0
}
