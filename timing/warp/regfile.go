package warp

import (
	"math"

	"github.com/sarchlab/milosim/emu"
)

// VRegFile is a warp's vector register file: emu.NumRegs 32-bit
// registers per lane. Register 0 reads as zero in every lane and writes
// to it are discarded. No other warp or lane can alias this storage.
type VRegFile struct {
	regs [LaneCount][emu.NumRegs]uint32
}

// NewVRegFile creates a zeroed vector register file.
func NewVRegFile() *VRegFile {
	return &VRegFile{}
}

// Read reads one lane's register.
func (v *VRegFile) Read(lane int, reg uint8) uint32 {
	if reg == 0 || int(reg) >= emu.NumRegs {
		return 0
	}
	return v.regs[lane][reg]
}

// Write writes one lane's register. Writes to register 0 are discarded.
func (v *VRegFile) Write(lane int, reg uint8, value uint32) {
	if reg == 0 || int(reg) >= emu.NumRegs {
		return
	}
	v.regs[lane][reg] = value
}

// ReadInt reads one lane's register as a signed integer.
func (v *VRegFile) ReadInt(lane int, reg uint8) int32 {
	return int32(v.Read(lane, reg))
}

// ReadFloat reads one lane's register as a float.
func (v *VRegFile) ReadFloat(lane int, reg uint8) float32 {
	return math.Float32frombits(v.Read(lane, reg))
}

// WriteFloat writes a float to one lane's register.
func (v *VRegFile) WriteFloat(lane int, reg uint8, value float32) {
	v.Write(lane, reg, math.Float32bits(value))
}

// Reset clears every register in every lane.
func (v *VRegFile) Reset() {
	v.regs = [LaneCount][emu.NumRegs]uint32{}
}
