package emu

import "math"

// FPU implements the Milo832 IEEE-754 single-precision floating-point
// operations. Like the ALU it is stateless.
//
// FDIV deviates from IEEE semantics: division by zero yields 0.0 rather
// than infinity, matching the hardware's behavior.
type FPU struct{}

// Add performs floating-point addition.
func (FPU) Add(a, b float32) float32 { return a + b }

// Sub performs floating-point subtraction.
func (FPU) Sub(a, b float32) float32 { return a - b }

// Mul performs floating-point multiplication.
func (FPU) Mul(a, b float32) float32 { return a * b }

// Div performs floating-point division. Division by zero yields 0.0.
func (FPU) Div(a, b float32) float32 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Fma performs a fused multiply-add: a*b + c.
func (FPU) Fma(a, b, c float32) float32 {
	return float32(math.FMA(float64(a), float64(b), float64(c)))
}

// Neg negates the operand.
func (FPU) Neg(a float32) float32 { return -a }

// Abs computes the absolute value.
func (FPU) Abs(a float32) float32 {
	return math.Float32frombits(math.Float32bits(a) &^ (1 << 31))
}

// Min returns the smaller of two values.
func (FPU) Min(a, b float32) float32 {
	return float32(math.Min(float64(a), float64(b)))
}

// Max returns the larger of two values.
func (FPU) Max(a, b float32) float32 {
	return float32(math.Max(float64(a), float64(b)))
}

// Ftoi converts a float to a signed integer, truncating toward zero.
func (FPU) Ftoi(a float32) int32 { return int32(a) }

// Itof converts a signed integer to a float.
func (FPU) Itof(a int32) float32 { return float32(a) }

// Slt returns 1 if a < b (ordered), else 0.
func (FPU) Slt(a, b float32) int32 { return b2i(a < b) }

// Sle returns 1 if a <= b (ordered), else 0.
func (FPU) Sle(a, b float32) int32 { return b2i(a <= b) }

// Seq returns 1 if a == b (ordered), else 0.
func (FPU) Seq(a, b float32) int32 { return b2i(a == b) }
