package emu

import (
	"fmt"
	"math"

	"github.com/sarchlab/milosim/insts"
)

const (
	// MaxCode is the instruction store capacity in 64-bit words.
	MaxCode = 4096

	// StackSize bounds the divergence and return stacks.
	StackSize = 256

	// MaxTextures is the number of texture units.
	MaxTextures = 8

	// DefaultMaxCycles guards against runaway programs.
	DefaultMaxCycles = 100000
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Exited is true if the program terminated via EXIT or a return
	// with an empty return stack.
	Exited bool

	// Err is set if a fault occurred during execution.
	Err error
}

// Emulator executes Milo832 instructions functionally for one logical
// thread. It is the golden model: the timing core must match it bit for
// bit, per lane, on integer and IEEE float results.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder

	code []uint64
	pc   uint32

	divStack []uint32
	retStack []uint32

	textures [MaxTextures]*Texture

	threadID int32

	running    bool
	cycleCount int
	maxCycles  int

	emptyJoinWarnings uint64
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMaxCycles bounds the number of instructions a run may execute.
func WithMaxCycles(max int) EmulatorOption {
	return func(e *Emulator) {
		e.maxCycles = max
	}
}

// WithThreadID sets the value the TID instruction reads. The default is
// 0; cross-validation against the SIMT core sets the lane's global
// thread index here.
func WithThreadID(tid int32) EmulatorOption {
	return func(e *Emulator) {
		e.threadID = tid
	}
}

// WithMemory substitutes a custom data memory.
func WithMemory(m *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = m
	}
}

// NewEmulator creates a new Milo832 emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile:   &RegFile{},
		memory:    NewMemory(),
		decoder:   insts.NewDecoder(),
		divStack:  make([]uint32, 0, StackSize),
		retStack:  make([]uint32, 0, StackSize),
		maxCycles: DefaultMaxCycles,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's data memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// PC returns the current program counter.
func (e *Emulator) PC() uint32 {
	return e.pc
}

// CycleCount returns the number of instructions executed so far.
func (e *Emulator) CycleCount() int {
	return e.cycleCount
}

// EmptyJoinWarnings counts JOIN pops on an empty divergence stack, which
// usually indicate malformed control flow in the compiled program.
func (e *Emulator) EmptyJoinWarnings() uint64 {
	return e.emptyJoinWarnings
}

// LoadProgram copies an instruction binary into the instruction store.
func (e *Emulator) LoadProgram(code []uint64) error {
	if len(code) > MaxCode {
		return fmt.Errorf("code too large (%d > %d words)", len(code), MaxCode)
	}
	e.code = append(e.code[:0], code...)
	return nil
}

// BindTexture attaches a texture to a texture unit.
func (e *Emulator) BindTexture(unit int, tex *Texture) {
	if unit >= 0 && unit < MaxTextures {
		e.textures[unit] = tex
	}
}

// Reset clears execution state for a fresh run. The instruction store
// and texture bindings survive; registers and stacks do not.
func (e *Emulator) Reset() {
	e.regFile.Reset()
	e.pc = 0
	e.divStack = e.divStack[:0]
	e.retStack = e.retStack[:0]
	e.running = true
	e.cycleCount = 0
	e.emptyJoinWarnings = 0
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.pc >= uint32(len(e.code)) {
		e.running = false
		return StepResult{Err: fmt.Errorf("pc out of bounds: %d", e.pc)}
	}

	inst := e.decoder.Decode(e.code[e.pc])
	e.pc++
	e.cycleCount++

	s1 := e.regFile.Read(inst.Rs1)
	s2 := e.regFile.Read(inst.Rs2)
	s3 := e.regFile.Read(inst.Rs3)

	if result, ok := Execute(inst, s1, s2, s3); ok {
		e.regFile.Write(inst.Rd, result)
		return StepResult{}
	}

	switch inst.Op {
	case insts.OpNOP:

	case insts.OpEXIT:
		e.running = false
		return StepResult{Exited: true}

	case insts.OpBRA:
		e.pc = uint32(inst.Imm)

	case insts.OpBEQ:
		if int32(s1) == int32(s2) {
			e.pc = uint32(inst.Imm)
		}

	case insts.OpBNE:
		if int32(s1) != int32(s2) {
			e.pc = uint32(inst.Imm)
		}

	case insts.OpSSY:
		if len(e.divStack) < StackSize {
			e.divStack = append(e.divStack, uint32(inst.Imm))
		}

	case insts.OpJOIN:
		if n := len(e.divStack); n > 0 {
			e.divStack = e.divStack[:n-1]
		} else {
			e.emptyJoinWarnings++
		}

	case insts.OpCALL:
		if len(e.retStack) < StackSize {
			e.retStack = append(e.retStack, e.pc)
		}
		e.pc = uint32(inst.Imm)

	case insts.OpRET:
		if n := len(e.retStack); n > 0 {
			e.pc = e.retStack[n-1]
			e.retStack = e.retStack[:n-1]
		} else {
			e.running = false
			return StepResult{Exited: true}
		}

	case insts.OpTID:
		e.regFile.WriteInt(inst.Rd, e.threadID)

	case insts.OpBAR:
		// Barrier is a no-op for a single thread.

	case insts.OpTEX:
		e.execTEX(inst, s1, s2)

	case insts.OpLDR:
		addr := s1 + uint32(inst.Imm)
		e.regFile.Write(inst.Rd, e.memory.ReadWord(addr))

	case insts.OpSTR:
		addr := s1 + uint32(inst.Imm)
		e.memory.WriteWord(addr, s2)

	case insts.OpLDS, insts.OpSTS:
		// Shared memory is a core resource; the scalar golden model
		// has no banked scratchpad and treats these as no-ops.

	default:
		e.running = false
		return StepResult{
			Err: fmt.Errorf("unknown opcode: 0x%02X at pc %d", uint8(inst.Op), e.pc-1),
		}
	}

	return StepResult{}
}

func (e *Emulator) execTEX(inst *insts.Inst, s1, s2 uint32) {
	unit := int(int32(s1))
	u := math.Float32frombits(s2)
	v := e.regFile.ReadFloat(inst.Rs2 + 1)

	if unit >= 0 && unit < MaxTextures && e.textures[unit] != nil {
		rgba := e.textures[unit].Sample(u, v)
		e.regFile.WriteFloat(inst.Rd, float32((rgba>>0)&0xFF)/255.0)
		e.regFile.WriteFloat(inst.Rd+1, float32((rgba>>8)&0xFF)/255.0)
		e.regFile.WriteFloat(inst.Rd+2, float32((rgba>>16)&0xFF)/255.0)
		e.regFile.WriteFloat(inst.Rd+3, float32((rgba>>24)&0xFF)/255.0)
	} else {
		e.regFile.WriteFloat(inst.Rd, 1.0)
		e.regFile.WriteFloat(inst.Rd+1, 0.0)
		e.regFile.WriteFloat(inst.Rd+2, 1.0)
		e.regFile.WriteFloat(inst.Rd+3, 1.0)
	}
}

// Run resets the emulator and executes until exit, fault, or the cycle
// guard trips.
func (e *Emulator) Run() error {
	e.Reset()
	return e.runLoaded()
}

// runLoaded executes without resetting, so callers can seed registers.
func (e *Emulator) runLoaded() error {
	for e.running && e.cycleCount < e.maxCycles {
		res := e.Step()
		if res.Err != nil {
			return res.Err
		}
		if res.Exited {
			return nil
		}
	}
	if e.cycleCount >= e.maxCycles {
		return fmt.Errorf("exceeded max cycles (%d)", e.maxCycles)
	}
	return nil
}
