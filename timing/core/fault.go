package core

import "fmt"

// FaultCause classifies why a dispatch halted.
type FaultCause int

const (
	// FaultPCOutOfBounds means a warp's program counter left the
	// loaded instruction range.
	FaultPCOutOfBounds FaultCause = iota

	// FaultStackOverflow means a divergence stack push exceeded the
	// stack depth.
	FaultStackOverflow

	// FaultUnknownOpcode means an instruction decoded to an opcode
	// the core does not implement.
	FaultUnknownOpcode

	// FaultWatchdog means the dispatch ran past the cycle limit.
	FaultWatchdog
)

func (c FaultCause) String() string {
	switch c {
	case FaultPCOutOfBounds:
		return "pc out of bounds"
	case FaultStackOverflow:
		return "divergence stack overflow"
	case FaultUnknownOpcode:
		return "unknown opcode"
	case FaultWatchdog:
		return "watchdog expired"
	}
	return fmt.Sprintf("fault(%d)", int(c))
}

// Fault halts the whole dispatch. WarpID is -1 for faults not tied to
// one warp, such as the watchdog.
type Fault struct {
	Cause  FaultCause
	WarpID int
	PC     uint32
}

func (f *Fault) Error() string {
	if f.WarpID < 0 {
		return fmt.Sprintf("fault: %s at cycle limit", f.Cause)
	}
	return fmt.Sprintf("fault: %s (warp %d, pc %d)", f.Cause, f.WarpID, f.PC)
}
