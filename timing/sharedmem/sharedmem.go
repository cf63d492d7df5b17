// Package sharedmem models the banked scratchpad shared by the warps of
// a core. The address space is word addressed and interleaved across 32
// banks; a batch of lane accesses completes in one cycle when every lane
// hits a distinct bank, and serializes otherwise.
package sharedmem

// NumBanks is the bank count of the scratchpad. Word address modulo
// NumBanks selects the bank.
const NumBanks = 32

// DefaultWords is the scratchpad capacity in words.
const DefaultWords = 4096

// Access is one lane's request within a batch.
type Access struct {
	Lane     int
	WordAddr uint32
	IsStore  bool
	Data     uint32
}

// Result carries the loaded word back to a lane. Stores produce a
// Result with zero data so every access gets exactly one completion.
type Result struct {
	Lane int
	Data uint32
}

type batch struct {
	warpID   int
	pending  []Access
	snapshot []uint32
	results  []Result
}

// Unit is the shared memory conflict arbiter. It serves one batch at a
// time; batches submitted while another is in flight queue behind it.
type Unit struct {
	words []uint32
	queue []*batch

	conflictCycles uint64
	accesses       uint64
}

// New creates a scratchpad with the given capacity in words.
func New(numWords int) *Unit {
	if numWords <= 0 {
		numWords = DefaultWords
	}
	return &Unit{words: make([]uint32, numWords)}
}

// Submit queues a batch of accesses for one warp. Loads within the
// batch observe the scratchpad as it was at submission; stores from the
// same batch do not feed back into its own loads.
func (u *Unit) Submit(warpID int, accesses []Access) {
	b := &batch{
		warpID:   warpID,
		pending:  append([]Access(nil), accesses...),
		snapshot: append([]uint32(nil), u.words...),
	}
	u.queue = append(u.queue, b)
}

// Tick serves up to one access per bank from the head batch, lowest
// lane first. A cycle in which any bank has two or more contenders is
// counted as a conflict cycle.
func (u *Unit) Tick() {
	if len(u.queue) == 0 {
		return
	}
	b := u.queue[0]

	contenders := [NumBanks]int{}
	for _, a := range b.pending {
		contenders[int(a.WordAddr)%NumBanks]++
	}
	for _, n := range contenders {
		if n >= 2 {
			u.conflictCycles++
			break
		}
	}

	served := [NumBanks]bool{}
	remaining := b.pending[:0]
	for _, a := range b.pending {
		bank := int(a.WordAddr) % NumBanks
		if served[bank] {
			remaining = append(remaining, a)
			continue
		}
		served[bank] = true
		u.serve(b, a)
	}
	b.pending = remaining
}

func (u *Unit) serve(b *batch, a Access) {
	u.accesses++
	r := Result{Lane: a.Lane}
	if a.IsStore {
		if int(a.WordAddr) < len(u.words) {
			u.words[a.WordAddr] = a.Data
		}
	} else {
		if int(a.WordAddr) < len(b.snapshot) {
			r.Data = b.snapshot[a.WordAddr]
		}
	}
	b.results = append(b.results, r)
}

// Completed returns the results of warpID's batch once every access in
// it has been served, and removes the batch. It reports false while the
// batch is still in flight or queued.
func (u *Unit) Completed(warpID int) ([]Result, bool) {
	if len(u.queue) == 0 {
		return nil, false
	}
	b := u.queue[0]
	if b.warpID != warpID || len(b.pending) > 0 {
		return nil, false
	}
	u.queue = u.queue[1:]
	return b.results, true
}

// Busy reports whether any batch is queued or in flight.
func (u *Unit) Busy() bool {
	return len(u.queue) > 0
}

// ConflictCycles returns the number of cycles in which at least one
// bank had more than one contender.
func (u *Unit) ConflictCycles() uint64 {
	return u.conflictCycles
}

// Accesses returns the total number of served lane accesses.
func (u *Unit) Accesses() uint64 {
	return u.accesses
}

// WriteWord stores a word directly, bypassing timing.
func (u *Unit) WriteWord(addr uint32, value uint32) {
	if int(addr) < len(u.words) {
		u.words[addr] = value
	}
}

// ReadWord loads a word directly, bypassing timing.
func (u *Unit) ReadWord(addr uint32) uint32 {
	if int(addr) >= len(u.words) {
		return 0
	}
	return u.words[addr]
}
