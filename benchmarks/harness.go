// Package benchmarks provides shader workloads for calibrating and
// validating the timed core against the functional emulator.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sarchlab/milosim/insts"
	"github.com/sarchlab/milosim/timing/core"
	"github.com/sarchlab/milosim/timing/latency"
)

// Result holds the timing results for a single shader run.
type Result struct {
	// Name identifies the workload
	Name string `json:"name"`

	// Warps is how many warps were dispatched
	Warps int `json:"warps"`

	// Cycles is the total cycle count from the timed core
	Cycles uint64 `json:"cycles"`

	// Instructions is the number of retired instructions
	Instructions uint64 `json:"instructions"`

	// IPC is instructions per cycle
	IPC float64 `json:"ipc"`

	// SharedConflictCycles counts cycles lost to bank conflicts
	SharedConflictCycles uint64 `json:"shared_conflict_cycles"`

	// TexCacheHitRate is the texel cache hit fraction, 0 when the
	// workload samples no textures
	TexCacheHitRate float64 `json:"tex_cache_hit_rate"`
}

// Workload is a shader program plus the setup it needs.
type Workload struct {
	Name    string
	Program []insts.Inst
	Warps   int

	// Setup runs before the dispatch, for seeding memory and
	// binding textures.
	Setup func(c *core.Core)
}

// Assemble encodes a workload's program into instruction words.
func (w *Workload) Assemble() []uint64 {
	code := make([]uint64, 0, len(w.Program))
	for _, inst := range w.Program {
		code = append(code, insts.Encode(inst))
	}
	return code
}

// Run dispatches the workload on a fresh core and collects results.
func Run(w *Workload, config *latency.TimingConfig) (*Result, error) {
	if config == nil {
		config = latency.DefaultTimingConfig()
	}

	c := core.NewCore(core.WithConfig(config))
	if err := c.LoadProgram(w.Assemble()); err != nil {
		return nil, fmt.Errorf("%s: %w", w.Name, err)
	}
	if w.Setup != nil {
		w.Setup(c)
	}

	warps := w.Warps
	if warps < 1 {
		warps = 1
	}
	c.Start(warps)
	if err := c.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w", w.Name, err)
	}

	stats := c.Stats()
	result := &Result{
		Name:                 w.Name,
		Warps:                warps,
		Cycles:               stats.Cycles,
		Instructions:         stats.Instructions,
		SharedConflictCycles: stats.SharedConflictCycles,
	}
	if stats.Cycles > 0 {
		result.IPC = float64(stats.Instructions) / float64(stats.Cycles)
	}
	if probes := stats.TexCacheHits + stats.TexCacheMisses; probes > 0 {
		result.TexCacheHitRate = float64(stats.TexCacheHits) / float64(probes)
	}
	return result, nil
}

// WriteReport writes results as indented JSON.
func WriteReport(w io.Writer, results []*Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	_, err = w.Write(data)
	return err
}
