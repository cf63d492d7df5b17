// Package latency provides instruction timing lookups for the core.
//
// Values come from a TimingConfig, which can be loaded from JSON to
// explore different machine points without recompiling.
package latency

import (
	"github.com/sarchlab/milosim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a latency table with custom timing.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// IssueLatency returns the cycles an instruction occupies the warp at
// issue. Memory, shared, and texture operations return the issue cost
// only; their completion is tracked by the unit that serves them.
func (t *Table) IssueLatency(inst *insts.Inst) uint64 {
	if inst == nil {
		return 1
	}

	switch {
	case t.IsSFUOp(inst):
		return t.config.SFULatency
	case t.IsFloatOp(inst):
		return t.config.FPULatency
	case t.IsBranchOp(inst):
		return t.config.BranchLatency
	default:
		return t.config.ALULatency
	}
}

// IsMemoryOp reports whether the instruction accesses global memory.
func (t *Table) IsMemoryOp(inst *insts.Inst) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpLDR || inst.Op == insts.OpSTR
}

// IsSharedOp reports whether the instruction accesses shared memory.
func (t *Table) IsSharedOp(inst *insts.Inst) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpLDS || inst.Op == insts.OpSTS
}

// IsTextureOp reports whether the instruction samples a texture.
func (t *Table) IsTextureOp(inst *insts.Inst) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpTEX
}

// IsBranchOp reports whether the instruction is control flow.
func (t *Table) IsBranchOp(inst *insts.Inst) bool {
	if inst == nil {
		return false
	}
	switch inst.Op {
	case insts.OpBRA, insts.OpBEQ, insts.OpBNE,
		insts.OpSSY, insts.OpJOIN, insts.OpCALL, insts.OpRET:
		return true
	default:
		return false
	}
}

// IsSFUOp reports whether the instruction runs on the special
// function unit.
func (t *Table) IsSFUOp(inst *insts.Inst) bool {
	if inst == nil {
		return false
	}
	switch inst.Op {
	case insts.OpSIN, insts.OpCOS, insts.OpEX2, insts.OpLG2,
		insts.OpRCP, insts.OpRSQ, insts.OpSQRT, insts.OpTANH:
		return true
	default:
		return false
	}
}

// IsFloatOp reports whether the instruction runs on the float pipe.
func (t *Table) IsFloatOp(inst *insts.Inst) bool {
	if inst == nil {
		return false
	}
	switch inst.Op {
	case insts.OpFADD, insts.OpFSUB, insts.OpFMUL, insts.OpFDIV,
		insts.OpFFMA, insts.OpFNEG, insts.OpFABS, insts.OpFMIN,
		insts.OpFMAX, insts.OpFSLT, insts.OpFSLE, insts.OpFSEQ,
		insts.OpFSETP, insts.OpFTOI, insts.OpITOF:
		return true
	default:
		return false
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
