// Package warp provides per-warp execution state for the SIMT core:
// the program counter, the lane active mask, the divergence and return
// stacks, and the per-lane vector register file.
package warp

import "fmt"

const (
	// LaneCount is the number of lockstep lanes per warp.
	LaneCount = 32

	// DivStackDepth bounds the divergence stack. A push on a full
	// stack faults instead of corrupting state.
	DivStackDepth = 32

	// RetStackDepth bounds the call return stack.
	RetStackDepth = 256

	// FullMask has every lane active.
	FullMask uint32 = 0xFFFFFFFF
)

// State marks what state a warp is in.
type State int

// A list of all possible warp states.
const (
	// StateIdle marks a warp not part of the current dispatch.
	StateIdle State = iota
	// StateReady marks a warp that can issue an instruction this cycle.
	StateReady
	// StateStalledMem marks a warp waiting on global memory responses.
	StateStalledMem
	// StateStalledShared marks a warp waiting on a shared-memory batch.
	StateStalledShared
	// StateStalledTex marks a warp waiting on texture responses.
	StateStalledTex
	// StateAtBarrier marks a warp waiting for the other warps.
	StateAtBarrier
	// StateDone marks a warp that executed EXIT or returned with an
	// empty stack.
	StateDone
	// StateFaulted marks a warp halted on a fault.
	StateFaulted
)

// String returns a short name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateStalledMem:
		return "stalled-mem"
	case StateStalledShared:
		return "stalled-shared"
	case StateStalledTex:
		return "stalled-tex"
	case StateAtBarrier:
		return "at-barrier"
	case StateDone:
		return "done"
	case StateFaulted:
		return "faulted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StackEntryKind distinguishes the two kinds of divergence stack entries.
type StackEntryKind int

const (
	// SyncEntry is pushed by SSY: it records the reconvergence point
	// and the mask to restore there.
	SyncEntry StackEntryKind = iota

	// BranchEntry is pushed by a divergent conditional branch: it
	// records the deferred path's target and lane subset.
	BranchEntry
)

// StackEntry is one divergence stack record.
type StackEntry struct {
	Kind     StackEntryKind
	ResumePC uint32
	Mask     uint32
}

// Warp is one warp's complete architectural state. Only the scheduler
// mutates PC and ActiveMask; only the divergence controller pushes and
// pops the stack.
type Warp struct {
	ID int

	PC         uint32
	ActiveMask uint32
	State      State

	RegFile *VRegFile

	divStack []StackEntry
	retStack []uint32

	// InstCount counts instructions retired at warp granularity,
	// including ones with lanes masked off.
	InstCount uint64

	// EmptyJoinWarnings counts JOIN pops on an empty stack.
	EmptyJoinWarnings uint64
}

// New creates a warp in the idle state.
func New(id int) *Warp {
	return &Warp{
		ID:       id,
		State:    StateIdle,
		RegFile:  NewVRegFile(),
		divStack: make([]StackEntry, 0, DivStackDepth),
		retStack: make([]uint32, 0, RetStackDepth),
	}
}

// Reset prepares the warp for a fresh dispatch: PC zero, all lanes
// active, registers cleared, stacks emptied.
func (w *Warp) Reset() {
	w.PC = 0
	w.ActiveMask = FullMask
	w.State = StateReady
	w.RegFile.Reset()
	w.divStack = w.divStack[:0]
	w.retStack = w.retStack[:0]
	w.InstCount = 0
	w.EmptyJoinWarnings = 0
}

// Finished reports whether the warp can make no further progress.
func (w *Warp) Finished() bool {
	return w.State == StateDone || w.State == StateFaulted || w.State == StateIdle
}

// LaneActive reports whether a lane executes the current instruction.
func (w *Warp) LaneActive(lane int) bool {
	return w.ActiveMask&(1<<uint(lane)) != 0
}

// PushDiv pushes a divergence stack entry. It reports false when the
// stack is full, which the caller must treat as a fatal fault.
func (w *Warp) PushDiv(e StackEntry) bool {
	if len(w.divStack) >= DivStackDepth {
		return false
	}
	w.divStack = append(w.divStack, e)
	return true
}

// PopDiv pops the divergence stack. ok is false on an empty stack.
func (w *Warp) PopDiv() (StackEntry, bool) {
	n := len(w.divStack)
	if n == 0 {
		return StackEntry{}, false
	}
	e := w.divStack[n-1]
	w.divStack = w.divStack[:n-1]
	return e, true
}

// DivDepth returns the current divergence stack depth.
func (w *Warp) DivDepth() int {
	return len(w.divStack)
}

// PushRet pushes a return address. Pushes beyond the stack capacity are
// dropped, matching the hardware.
func (w *Warp) PushRet(pc uint32) {
	if len(w.retStack) < RetStackDepth {
		w.retStack = append(w.retStack, pc)
	}
}

// PopRet pops a return address. ok is false on an empty stack, which
// ends the warp's execution.
func (w *Warp) PopRet() (uint32, bool) {
	n := len(w.retStack)
	if n == 0 {
		return 0, false
	}
	pc := w.retStack[n-1]
	w.retStack = w.retStack[:n-1]
	return pc, true
}
