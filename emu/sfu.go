package emu

import "math"

// sfuTableSize is the number of segments in each SFU lookup table.
const sfuTableSize = 256

// SFU implements the Milo832 special-function unit: table-based
// approximations of the transcendental functions. Each function reduces
// its argument to a table domain, then linearly interpolates between two
// adjacent table entries.
//
// The tables defined here are the reference approximation. Results are
// not bit-exact to libm and are not meant to be; equivalence tests must
// compare against this unit, not against a math library.
type SFU struct {
	sinTable  [sfuTableSize + 1]float32 // phase in [0, 1) of a full turn
	exp2Table [sfuTableSize + 1]float32 // fraction in [0, 1)
	log2Table [sfuTableSize + 1]float32 // mantissa in [1, 2)
	rcpTable  [sfuTableSize + 1]float32 // mantissa in [1, 2)
	sqrtTable [sfuTableSize + 1]float32 // mantissa in [0.5, 2)
	tanhTable [sfuTableSize + 1]float32 // argument in [0, 8)
}

// NewSFU builds the special-function unit with its lookup tables.
func NewSFU() *SFU {
	s := &SFU{}
	for i := 0; i <= sfuTableSize; i++ {
		t := float64(i) / sfuTableSize
		s.sinTable[i] = float32(math.Sin(2 * math.Pi * t))
		s.exp2Table[i] = float32(math.Exp2(t))
		s.log2Table[i] = float32(math.Log2(1 + t))
		s.rcpTable[i] = float32(1 / (1 + t))
		s.sqrtTable[i] = float32(math.Sqrt(0.5 + 1.5*t))
		s.tanhTable[i] = float32(math.Tanh(8 * t))
	}
	return s
}

// lookup interpolates a table at position pos in [0, 1].
func lookup(table *[sfuTableSize + 1]float32, pos float64) float32 {
	if pos <= 0 {
		return table[0]
	}
	if pos >= 1 {
		return table[sfuTableSize]
	}
	scaled := pos * sfuTableSize
	i := int(scaled)
	frac := scaled - float64(i)
	a := float64(table[i])
	b := float64(table[i+1])
	return float32(a + frac*(b-a))
}

// Sin approximates sin(x).
func (s *SFU) Sin(x float32) float32 {
	t := float64(x) / (2 * math.Pi)
	t -= math.Floor(t)
	return lookup(&s.sinTable, t)
}

// Cos approximates cos(x).
func (s *SFU) Cos(x float32) float32 {
	return s.Sin(x + float32(math.Pi/2))
}

// Exp2 approximates 2**x.
func (s *SFU) Exp2(x float32) float32 {
	if x >= 128 {
		return float32(math.Inf(1))
	}
	if x < -126 {
		return 0
	}
	e := math.Floor(float64(x))
	frac := float64(x) - e
	return float32(math.Ldexp(float64(lookup(&s.exp2Table, frac)), int(e)))
}

// Log2 approximates log2(x). Non-positive inputs yield -Inf.
func (s *SFU) Log2(x float32) float32 {
	if x <= 0 {
		return float32(math.Inf(-1))
	}
	m, e := math.Frexp(float64(x)) // x = m * 2**e, m in [0.5, 1)
	return float32(e-1) + lookup(&s.log2Table, m*2-1)
}

// Rcp approximates 1/x. Zero yields +Inf.
func (s *SFU) Rcp(x float32) float32 {
	if x == 0 {
		return float32(math.Inf(1))
	}
	sign := float32(1)
	a := float64(x)
	if a < 0 {
		sign = -1
		a = -a
	}
	m, e := math.Frexp(a) // a = m * 2**e, m in [0.5, 1)
	recip := lookup(&s.rcpTable, m*2-1)
	return sign * float32(math.Ldexp(float64(recip), -(e-1)))
}

// Sqrt approximates sqrt(x). Negative inputs yield 0.
func (s *SFU) Sqrt(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x == 0 {
		return 0
	}
	m, e := math.Frexp(float64(x))
	if e%2 != 0 {
		m *= 2
		e--
	}
	// m in [0.5, 2) with e even
	root := lookup(&s.sqrtTable, (m-0.5)/1.5)
	return float32(math.Ldexp(float64(root), e/2))
}

// Rsq approximates 1/sqrt(x). Non-positive inputs yield +Inf.
func (s *SFU) Rsq(x float32) float32 {
	if x <= 0 {
		return float32(math.Inf(1))
	}
	return s.Rcp(s.Sqrt(x))
}

// Tanh approximates tanh(x). Saturates to +/-1 beyond |x| >= 8.
func (s *SFU) Tanh(x float32) float32 {
	sign := float32(1)
	a := float64(x)
	if a < 0 {
		sign = -1
		a = -a
	}
	if a >= 8 {
		return sign
	}
	return sign * lookup(&s.tanhTable, a/8)
}
