// Package emu provides functional Milo832 emulation.
package emu

import "math"

// NumRegs is the number of general registers per thread.
const NumRegs = 64

// RegFile represents one thread's Milo832 register file.
// Each register is a 32-bit word interpretable as a signed integer,
// an unsigned integer, or an IEEE-754 single-precision float.
// Register 0 is hard-wired to zero; writes to it are discarded.
type RegFile struct {
	regs [NumRegs]uint32
}

// Read reads a register value. Register 0 returns 0; out-of-range
// register indices also read as 0.
func (r *RegFile) Read(reg uint8) uint32 {
	if reg == 0 || int(reg) >= NumRegs {
		return 0
	}
	return r.regs[reg]
}

// Write writes a value to a register. Writes to register 0 and to
// out-of-range indices are discarded.
func (r *RegFile) Write(reg uint8, value uint32) {
	if reg == 0 || int(reg) >= NumRegs {
		return
	}
	r.regs[reg] = value
}

// ReadInt reads a register as a signed integer.
func (r *RegFile) ReadInt(reg uint8) int32 {
	return int32(r.Read(reg))
}

// WriteInt writes a signed integer to a register.
func (r *RegFile) WriteInt(reg uint8, value int32) {
	r.Write(reg, uint32(value))
}

// ReadFloat reads a register as an IEEE-754 single-precision float.
func (r *RegFile) ReadFloat(reg uint8) float32 {
	return math.Float32frombits(r.Read(reg))
}

// WriteFloat writes a float to a register.
func (r *RegFile) WriteFloat(reg uint8, value float32) {
	r.Write(reg, math.Float32bits(value))
}

// Reset clears all registers.
func (r *RegFile) Reset() {
	r.regs = [NumRegs]uint32{}
}
