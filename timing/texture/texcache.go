package texture

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// CacheConfig holds texel cache parameters.
type CacheConfig struct {
	NumSets       int
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
	// HitLatency in cycles
	HitLatency int
	// FillLatency in cycles charged per missed line
	FillLatency int
}

// DefaultCacheConfig returns the texel cache configuration used when
// none is given: 4KB, 4-way, 64B lines.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		NumSets:       16,
		Associativity: 4,
		BlockSize:     64,
		HitLatency:    1,
		FillLatency:   20,
	}
}

// texCache is a read-only texel cache. Texture memory is immutable
// during a dispatch, so there is no dirty state and no writeback path.
type texCache struct {
	config    CacheConfig
	directory *akitacache.DirectoryImpl
	dataStore [][]byte

	// fill copies one line of texture memory into buf.
	fill func(blockAddr uint64, buf []byte)

	hits   uint64
	misses uint64
}

func newTexCache(config CacheConfig, fill func(uint64, []byte)) *texCache {
	totalBlocks := config.NumSets * config.Associativity
	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &texCache{
		config: config,
		directory: akitacache.NewDirectory(
			config.NumSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		fill:      fill,
	}
}

func (c *texCache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// ReadWord returns the word at addr and whether it was resident. On a
// miss the line is filled before the word is returned, so the caller
// only has to charge the fill latency.
func (c *texCache) ReadWord(addr uint64) (uint32, bool) {
	blockSize := uint64(c.config.BlockSize)
	blockAddr := (addr / blockSize) * blockSize
	offset := addr % blockSize

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.hits++
		c.directory.Visit(block)
		return wordAt(c.dataStore[c.blockIndex(block)], offset), true
	}

	c.misses++
	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return 0, false
	}

	victimData := c.dataStore[c.blockIndex(victim)]
	c.fill(blockAddr, victimData)

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return wordAt(victimData, offset), false
}

// Reset invalidates all lines and clears the counters.
func (c *texCache) Reset() {
	c.directory.Reset()
	c.hits = 0
	c.misses = 0
}

func wordAt(data []byte, offset uint64) uint32 {
	if int(offset)+4 > len(data) {
		return 0
	}
	var w uint32
	for i := 0; i < 4; i++ {
		w |= uint32(data[int(offset)+i]) << (i * 8)
	}
	return w
}
