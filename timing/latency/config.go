package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for the units of the core.
type TimingConfig struct {
	// ALULatency is the execution latency for integer and logic
	// operations. Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// FPULatency is the execution latency for float arithmetic.
	// Default: 1 cycle.
	FPULatency uint64 `json:"fpu_latency"`

	// SFULatency is the execution latency for the special function
	// unit (SIN, EX2, RCP and friends). Default: 4 cycles.
	SFULatency uint64 `json:"sfu_latency"`

	// BranchLatency is the execution latency for control flow,
	// including the divergence stack operations. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// MemLatency is the global memory access latency in cycles.
	// Default: 100 cycles.
	MemLatency uint64 `json:"mem_latency"`

	// MemWidth is how many global memory requests the controller
	// accepts per cycle. Default: 1.
	MemWidth uint64 `json:"mem_width"`

	// MemSize is the global memory size in bytes. Default: 64KB.
	MemSize uint64 `json:"mem_size"`

	// SharedWords is the shared memory capacity in 32-bit words.
	// Default: 4096.
	SharedWords uint64 `json:"shared_words"`

	// TexHitLatency is the texel cache hit latency. Default: 1 cycle.
	TexHitLatency uint64 `json:"tex_hit_latency"`

	// TexFillLatency is the latency charged per texel cache line
	// fill. Default: 20 cycles.
	TexFillLatency uint64 `json:"tex_fill_latency"`

	// MaxCycles is the watchdog limit. A dispatch still running after
	// this many cycles is declared hung. Default: 1,000,000.
	MaxCycles uint64 `json:"max_cycles"`
}

// DefaultTimingConfig returns a TimingConfig with default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:     1,
		FPULatency:     1,
		SFULatency:     4,
		BranchLatency:  1,
		MemLatency:     100,
		MemWidth:       1,
		MemSize:        64 * 1024,
		SharedWords:    4096,
		TexHitLatency:  1,
		TexFillLatency: 20,
		MaxCycles:      1000000,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields absent from
// the file keep their defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are usable.
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.FPULatency == 0 {
		return fmt.Errorf("fpu_latency must be > 0")
	}
	if c.SFULatency == 0 {
		return fmt.Errorf("sfu_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.MemLatency == 0 {
		return fmt.Errorf("mem_latency must be > 0")
	}
	if c.MemWidth == 0 {
		return fmt.Errorf("mem_width must be > 0")
	}
	if c.MemSize == 0 {
		return fmt.Errorf("mem_size must be > 0")
	}
	if c.SharedWords == 0 {
		return fmt.Errorf("shared_words must be > 0")
	}
	if c.MaxCycles == 0 {
		return fmt.Errorf("max_cycles must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
