package emu

// DefaultMemSize is the default data memory size in bytes, matching the
// constant-table memory of the original core.
const DefaultMemSize = 8192

// Memory is the byte-addressed data memory visible to LDR/STR. Accesses
// resolve to the word containing the byte address.
// Out-of-bounds loads return zero; out-of-bounds stores are dropped.
type Memory struct {
	words []uint32
	size  uint32
}

// NewMemory creates a data memory of DefaultMemSize bytes.
func NewMemory() *Memory {
	return NewMemorySized(DefaultMemSize)
}

// NewMemorySized creates a data memory of the given size in bytes.
func NewMemorySized(size uint32) *Memory {
	return &Memory{
		words: make([]uint32, size/4),
		size:  size,
	}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint32 {
	return m.size
}

// ReadWord loads the 32-bit word containing the byte address addr.
func (m *Memory) ReadWord(addr uint32) uint32 {
	if addr >= m.size {
		return 0
	}
	return m.words[addr/4]
}

// WriteWord stores a 32-bit word at the byte address addr.
func (m *Memory) WriteWord(addr uint32, value uint32) {
	if addr >= m.size {
		return
	}
	m.words[addr/4] = value
}

// Reset clears the memory contents.
func (m *Memory) Reset() {
	for i := range m.words {
		m.words[i] = 0
	}
}
