// Package core implements the SIMT core: a set of warps executing
// per-warp instruction stores in lockstep lanes, a round-robin scheduler, the
// divergence controller, and the ports into global memory, shared
// memory, and the texture unit.
//
// Per-lane arithmetic goes through the same dispatcher as the
// functional emulator, so a timed run and an emulated run of the same
// program produce identical register values lane for lane.
package core

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/sarchlab/milosim/emu"
	"github.com/sarchlab/milosim/insts"
	"github.com/sarchlab/milosim/timing/latency"
	"github.com/sarchlab/milosim/timing/memsys"
	"github.com/sarchlab/milosim/timing/sharedmem"
	"github.com/sarchlab/milosim/timing/texture"
	"github.com/sarchlab/milosim/timing/warp"
)

// Stats aggregates the counters of one dispatch.
type Stats struct {
	Cycles               uint64
	Instructions         uint64
	MemReads             uint64
	MemWrites            uint64
	SharedAccesses       uint64
	SharedConflictCycles uint64
	TexSamples           uint64
	TexCacheHits         uint64
	TexCacheMisses       uint64
	EmptyJoinWarnings    uint64
}

type laneReq struct {
	lane    int
	addr    uint64
	isWrite bool
	data    uint32
}

type memOp struct {
	rd          uint8
	isStore     bool
	toIssue     []laneReq
	outstanding int
}

type texReq struct {
	lane int
	slot int
	u, v float32
}

type texOp struct {
	rd          uint8
	toIssue     []texReq
	outstanding int
}

type laneTag struct {
	warpID int
	lane   int
}

// Core drives a dispatch of warps over one loaded program.
type Core struct {
	config  *latency.TimingConfig
	table   *latency.Table
	decoder *insts.Decoder

	code   [][]uint64
	warps  []*warp.Warp
	mem    *memsys.Controller
	shared *sharedmem.Unit
	tex    *texture.Unit

	memOps     map[int]*memOp
	texOps     map[int]*texOp
	pendingMem map[string]laneTag
	pendingTex map[string]laneTag
	sharedRd   map[int]uint8
	sharedLoad map[int]bool

	busy   []int
	rrNext int
	cycle  uint64
	fault  *Fault
}

// Option configures a Core.
type Option func(*Core)

// WithConfig replaces the default timing configuration.
func WithConfig(config *latency.TimingConfig) Option {
	return func(c *Core) {
		c.config = config
	}
}

// NumWarps is the number of warp slots per core.
const NumWarps = 16

// NewCore creates a core with idle warps and empty memories.
func NewCore(opts ...Option) *Core {
	c := &Core{
		config:     latency.DefaultTimingConfig(),
		decoder:    insts.NewDecoder(),
		memOps:     map[int]*memOp{},
		texOps:     map[int]*texOp{},
		pendingMem: map[string]laneTag{},
		pendingTex: map[string]laneTag{},
		sharedRd:   map[int]uint8{},
		sharedLoad: map[int]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.table = latency.NewTableWithConfig(c.config)
	c.mem = memsys.NewController(
		c.config.MemSize,
		int(c.config.MemLatency),
		memsys.WithWidth(int(c.config.MemWidth)),
	)
	c.shared = sharedmem.New(int(c.config.SharedWords))
	c.tex = texture.NewUnit(texture.WithCacheConfig(texture.CacheConfig{
		NumSets:       16,
		Associativity: 4,
		BlockSize:     64,
		HitLatency:    int(c.config.TexHitLatency),
		FillLatency:   int(c.config.TexFillLatency),
	}))

	for i := 0; i < NumWarps; i++ {
		c.warps = append(c.warps, warp.New(i))
	}
	c.busy = make([]int, NumWarps)
	c.code = make([][]uint64, NumWarps)
	return c
}

// LoadProgram copies an instruction binary into every warp's
// instruction store.
func (c *Core) LoadProgram(code []uint64) error {
	if len(code) > emu.MaxCode {
		return fmt.Errorf("code too large (%d > %d words)", len(code), emu.MaxCode)
	}
	for id := range c.code {
		c.code[id] = append(c.code[id][:0], code...)
	}
	return nil
}

// LoadInstruction stores one encoded instruction word at the given
// address of one warp's instruction store. Gaps left below addr read
// as NOP.
func (c *Core) LoadInstruction(warpID int, addr uint32, word uint64) error {
	if warpID < 0 || warpID >= NumWarps {
		return fmt.Errorf("warp %d out of range", warpID)
	}
	if addr >= emu.MaxCode {
		return fmt.Errorf("instruction address %d out of range (max %d)",
			addr, emu.MaxCode)
	}
	for uint32(len(c.code[warpID])) <= addr {
		c.code[warpID] = append(c.code[warpID], 0)
	}
	c.code[warpID][addr] = word
	return nil
}

// BindTexture attaches a texture to a sampler slot.
func (c *Core) BindTexture(slot int, tex *emu.Texture) {
	c.tex.Bind(slot, tex)
}

// Memory returns the global memory controller, for setup and
// inspection around a dispatch.
func (c *Core) Memory() *memsys.Controller {
	return c.mem
}

// SharedMem returns the shared memory unit.
func (c *Core) SharedMem() *sharedmem.Unit {
	return c.shared
}

// Warp returns one warp's state.
func (c *Core) Warp(id int) *warp.Warp {
	return c.warps[id]
}

// Start begins a dispatch of warpCount warps at PC zero. Warps beyond
// warpCount stay idle.
func (c *Core) Start(warpCount int) {
	if warpCount > NumWarps {
		warpCount = NumWarps
	}
	c.cycle = 0
	c.rrNext = 0
	c.fault = nil
	for i, w := range c.warps {
		c.busy[i] = 0
		if i < warpCount {
			w.Reset()
		} else {
			w.State = warp.StateIdle
		}
	}
}

// Done reports whether every warp has finished or the dispatch
// faulted.
func (c *Core) Done() bool {
	if c.fault != nil {
		return true
	}
	for _, w := range c.warps {
		if !w.Finished() {
			return false
		}
	}
	return true
}

// Fault returns the fault that halted the dispatch, or nil.
func (c *Core) Fault() *Fault {
	return c.fault
}

// Cycle returns the cycle count of the current dispatch.
func (c *Core) Cycle() uint64 {
	return c.cycle
}

// Run ticks the core until the dispatch finishes. It returns the
// fault that halted the dispatch, if any.
func (c *Core) Run() error {
	for !c.Done() {
		c.Tick()
	}
	if c.fault != nil {
		return c.fault
	}
	return nil
}

// Tick advances the core by one cycle.
func (c *Core) Tick() {
	if c.Done() {
		return
	}
	c.cycle++
	if c.cycle > c.config.MaxCycles {
		c.raise(&Fault{Cause: FaultWatchdog, WarpID: -1})
		return
	}

	c.mem.Tick()
	c.shared.Tick()
	c.tex.Tick()

	c.drainMemResponses()
	c.drainTexResponses()

	for id, w := range c.warps {
		switch w.State {
		case warp.StateStalledMem:
			c.progressMem(id)
		case warp.StateStalledTex:
			c.progressTex(id)
		case warp.StateStalledShared:
			c.progressShared(id)
		}
	}

	c.releaseBarrier()
	c.issueOne()
}

func (c *Core) raise(f *Fault) {
	c.fault = f
	for _, w := range c.warps {
		if !w.Finished() {
			w.State = warp.StateFaulted
		}
	}
}

// issueOne picks the next ready warp round-robin and executes one
// instruction for it.
func (c *Core) issueOne() {
	for i := range c.busy {
		if c.busy[i] > 0 {
			c.busy[i]--
		}
	}

	for off := 0; off < len(c.warps); off++ {
		id := (c.rrNext + off) % len(c.warps)
		w := c.warps[id]
		if w.State != warp.StateReady || c.busy[id] > 0 {
			continue
		}
		c.rrNext = (id + 1) % len(c.warps)
		c.execute(w)
		return
	}
}

func (c *Core) releaseBarrier() {
	waiting := 0
	for _, w := range c.warps {
		switch w.State {
		case warp.StateAtBarrier:
			waiting++
		case warp.StateDone, warp.StateFaulted, warp.StateIdle:
		default:
			return
		}
	}
	if waiting == 0 {
		return
	}
	for _, w := range c.warps {
		if w.State == warp.StateAtBarrier {
			w.State = warp.StateReady
		}
	}
}

func (c *Core) execute(w *warp.Warp) {
	code := c.code[w.ID]
	if w.PC >= uint32(len(code)) {
		c.raise(&Fault{Cause: FaultPCOutOfBounds, WarpID: w.ID, PC: w.PC})
		return
	}

	inst := c.decoder.Decode(code[w.PC])
	instPC := w.PC
	w.PC++
	w.InstCount++
	c.busy[w.ID] = int(c.table.IssueLatency(inst)) - 1

	// Register-computing operations share the emulator's dispatcher.
	if c.executeLanes(w, inst) {
		return
	}

	switch inst.Op {
	case insts.OpNOP:

	case insts.OpEXIT:
		w.State = warp.StateDone

	case insts.OpBRA:
		w.PC = uint32(inst.Imm)

	case insts.OpBEQ, insts.OpBNE:
		c.executeBranch(w, inst, instPC)

	case insts.OpSSY:
		ok := w.PushDiv(warp.StackEntry{
			Kind:     warp.SyncEntry,
			ResumePC: uint32(inst.Imm),
			Mask:     w.ActiveMask,
		})
		if !ok {
			c.raise(&Fault{Cause: FaultStackOverflow, WarpID: w.ID, PC: instPC})
		}

	case insts.OpJOIN:
		c.executeJoin(w)

	case insts.OpCALL:
		w.PushRet(w.PC)
		w.PC = uint32(inst.Imm)

	case insts.OpRET:
		if pc, ok := w.PopRet(); ok {
			w.PC = pc
		} else {
			w.State = warp.StateDone
		}

	case insts.OpTID:
		for lane := 0; lane < warp.LaneCount; lane++ {
			if w.LaneActive(lane) {
				tid := int32(w.ID*warp.LaneCount + lane)
				w.RegFile.Write(lane, inst.Rd, uint32(tid))
			}
		}

	case insts.OpBAR:
		w.State = warp.StateAtBarrier

	case insts.OpLDR, insts.OpSTR:
		c.startMemOp(w, inst)

	case insts.OpLDS, insts.OpSTS:
		c.startSharedOp(w, inst)

	case insts.OpTEX:
		c.startTexOp(w, inst)

	default:
		c.raise(&Fault{Cause: FaultUnknownOpcode, WarpID: w.ID, PC: instPC})
	}
}

// executeLanes runs a register-computing instruction on every active
// lane. It reports false when the opcode is not of that family.
func (c *Core) executeLanes(w *warp.Warp, inst *insts.Inst) bool {
	handled := false
	for lane := 0; lane < warp.LaneCount; lane++ {
		if !w.LaneActive(lane) {
			continue
		}
		s1 := w.RegFile.Read(lane, inst.Rs1)
		s2 := w.RegFile.Read(lane, inst.Rs2)
		s3 := w.RegFile.Read(lane, inst.Rs3)
		result, ok := emu.Execute(inst, s1, s2, s3)
		if !ok {
			return false
		}
		handled = true
		w.RegFile.Write(lane, inst.Rd, result)
	}
	if handled {
		return true
	}

	// All lanes masked off. Probe with zero operands so fully
	// predicated-away compute still advances past this instruction.
	_, ok := emu.Execute(inst, 0, 0, 0)
	return ok
}

// executeBranch evaluates the branch condition per lane. Uniform
// outcomes branch or fall through scalar fashion; a split pushes the
// taken subset and keeps running the fall-through lanes.
func (c *Core) executeBranch(w *warp.Warp, inst *insts.Inst, instPC uint32) {
	var taken uint32
	for lane := 0; lane < warp.LaneCount; lane++ {
		if !w.LaneActive(lane) {
			continue
		}
		s1 := w.RegFile.ReadInt(lane, inst.Rs1)
		s2 := w.RegFile.ReadInt(lane, inst.Rs2)
		cond := s1 == s2
		if inst.Op == insts.OpBNE {
			cond = s1 != s2
		}
		if cond {
			taken |= 1 << uint(lane)
		}
	}

	switch taken {
	case 0:
		// Fall through.
	case w.ActiveMask:
		w.PC = uint32(inst.Imm)
	default:
		ok := w.PushDiv(warp.StackEntry{
			Kind:     warp.BranchEntry,
			ResumePC: uint32(inst.Imm),
			Mask:     taken,
		})
		if !ok {
			c.raise(&Fault{Cause: FaultStackOverflow, WarpID: w.ID, PC: instPC})
			return
		}
		w.ActiveMask &^= taken
	}
}

func (c *Core) executeJoin(w *warp.Warp) {
	e, ok := w.PopDiv()
	if !ok {
		w.EmptyJoinWarnings++
		return
	}
	switch e.Kind {
	case warp.BranchEntry:
		// Run the deferred taken path; it rejoins at this JOIN.
		w.PC = e.ResumePC
		w.ActiveMask = e.Mask
	case warp.SyncEntry:
		w.ActiveMask = e.Mask
	}
}

func (c *Core) startMemOp(w *warp.Warp, inst *insts.Inst) {
	op := &memOp{rd: inst.Rd, isStore: inst.Op == insts.OpSTR}
	for lane := 0; lane < warp.LaneCount; lane++ {
		if !w.LaneActive(lane) {
			continue
		}
		// Byte address; the access touches the containing word, as
		// the functional emulator does.
		byteAddr := w.RegFile.Read(lane, inst.Rs1) + uint32(inst.Imm)
		req := laneReq{
			lane: lane,
			addr: uint64(byteAddr &^ 3),
		}
		if inst.Op == insts.OpSTR {
			req.isWrite = true
			req.data = w.RegFile.Read(lane, inst.Rs2)
		}
		op.toIssue = append(op.toIssue, req)
	}
	if len(op.toIssue) == 0 {
		return
	}
	c.memOps[w.ID] = op
	w.State = warp.StateStalledMem
	c.progressMem(w.ID)
}

func (c *Core) progressMem(warpID int) {
	op := c.memOps[warpID]
	for len(op.toIssue) > 0 {
		req := op.toIssue[0]
		id := xid.New().String()
		ok := c.mem.TryIssue(memsys.Request{
			ID:      id,
			Addr:    req.addr,
			IsWrite: req.isWrite,
			Data:    req.data,
		})
		if !ok {
			return
		}
		c.pendingMem[id] = laneTag{warpID: warpID, lane: req.lane}
		op.outstanding++
		op.toIssue = op.toIssue[1:]
	}
	c.checkMemDone(warpID)
}

func (c *Core) drainMemResponses() {
	for {
		rsp, ok := c.mem.PopResponse()
		if !ok {
			return
		}
		tag, ok := c.pendingMem[rsp.ID]
		if !ok {
			continue
		}
		delete(c.pendingMem, rsp.ID)

		op := c.memOps[tag.warpID]
		if op == nil {
			continue
		}
		w := c.warps[tag.warpID]
		// Loads write back; store acks only retire the request.
		if !op.isStore {
			w.RegFile.Write(tag.lane, op.rd, rsp.Data)
		}
		op.outstanding--
		c.checkMemDone(tag.warpID)
	}
}

func (c *Core) checkMemDone(warpID int) {
	op := c.memOps[warpID]
	if op == nil || len(op.toIssue) > 0 || op.outstanding > 0 {
		return
	}
	delete(c.memOps, warpID)
	if c.warps[warpID].State == warp.StateStalledMem {
		c.warps[warpID].State = warp.StateReady
	}
}

func (c *Core) startSharedOp(w *warp.Warp, inst *insts.Inst) {
	var accesses []sharedmem.Access
	for lane := 0; lane < warp.LaneCount; lane++ {
		if !w.LaneActive(lane) {
			continue
		}
		a := sharedmem.Access{
			Lane:     lane,
			WordAddr: w.RegFile.Read(lane, inst.Rs1) + uint32(inst.Imm),
		}
		if inst.Op == insts.OpSTS {
			a.IsStore = true
			a.Data = w.RegFile.Read(lane, inst.Rs2)
		}
		accesses = append(accesses, a)
	}
	if len(accesses) == 0 {
		return
	}
	c.shared.Submit(w.ID, accesses)
	c.sharedRd[w.ID] = inst.Rd
	c.sharedLoad[w.ID] = inst.Op == insts.OpLDS
	w.State = warp.StateStalledShared
}

func (c *Core) progressShared(warpID int) {
	results, done := c.shared.Completed(warpID)
	if !done {
		return
	}
	w := c.warps[warpID]
	if c.sharedLoad[warpID] {
		for _, r := range results {
			w.RegFile.Write(r.Lane, c.sharedRd[warpID], r.Data)
		}
	}
	w.State = warp.StateReady
}

func (c *Core) startTexOp(w *warp.Warp, inst *insts.Inst) {
	op := &texOp{rd: inst.Rd}
	for lane := 0; lane < warp.LaneCount; lane++ {
		if !w.LaneActive(lane) {
			continue
		}
		op.toIssue = append(op.toIssue, texReq{
			lane: lane,
			slot: int(int32(w.RegFile.Read(lane, inst.Rs1))),
			u:    w.RegFile.ReadFloat(lane, inst.Rs2),
			v:    w.RegFile.ReadFloat(lane, inst.Rs2+1),
		})
	}
	if len(op.toIssue) == 0 {
		return
	}
	c.texOps[w.ID] = op
	w.State = warp.StateStalledTex
	c.progressTex(w.ID)
}

func (c *Core) progressTex(warpID int) {
	op := c.texOps[warpID]
	for len(op.toIssue) > 0 {
		req := op.toIssue[0]
		id := xid.New().String()
		ok := c.tex.TryIssue(texture.Request{
			ID:   id,
			Slot: req.slot,
			U:    req.u,
			V:    req.v,
		})
		if !ok {
			return
		}
		c.pendingTex[id] = laneTag{warpID: warpID, lane: req.lane}
		op.outstanding++
		op.toIssue = op.toIssue[1:]
	}
	c.checkTexDone(warpID)
}

func (c *Core) drainTexResponses() {
	for {
		rsp, ok := c.tex.PopResponse()
		if !ok {
			return
		}
		tag, ok := c.pendingTex[rsp.ID]
		if !ok {
			continue
		}
		delete(c.pendingTex, rsp.ID)

		op := c.texOps[tag.warpID]
		if op == nil {
			continue
		}
		w := c.warps[tag.warpID]
		rgba := rsp.Color
		w.RegFile.WriteFloat(tag.lane, op.rd, float32((rgba>>0)&0xFF)/255.0)
		w.RegFile.WriteFloat(tag.lane, op.rd+1, float32((rgba>>8)&0xFF)/255.0)
		w.RegFile.WriteFloat(tag.lane, op.rd+2, float32((rgba>>16)&0xFF)/255.0)
		w.RegFile.WriteFloat(tag.lane, op.rd+3, float32((rgba>>24)&0xFF)/255.0)
		op.outstanding--
		c.checkTexDone(tag.warpID)
	}
}

func (c *Core) checkTexDone(warpID int) {
	op := c.texOps[warpID]
	if op == nil || len(op.toIssue) > 0 || op.outstanding > 0 {
		return
	}
	delete(c.texOps, warpID)
	if c.warps[warpID].State == warp.StateStalledTex {
		c.warps[warpID].State = warp.StateReady
	}
}

// Stats returns the aggregated counters of the current dispatch.
func (c *Core) Stats() Stats {
	s := Stats{
		Cycles:               c.cycle,
		SharedAccesses:       c.shared.Accesses(),
		SharedConflictCycles: c.shared.ConflictCycles(),
	}
	for _, w := range c.warps {
		s.Instructions += w.InstCount
		s.EmptyJoinWarnings += w.EmptyJoinWarnings
	}
	s.MemReads, s.MemWrites = c.mem.Counts()
	s.TexSamples, s.TexCacheHits, s.TexCacheMisses = c.tex.Stats()
	return s
}
