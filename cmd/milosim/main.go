// Package main provides the entry point for milosim.
// Milosim is a warp-level SIMT shader core simulator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/sarchlab/milosim/emu"
	"github.com/sarchlab/milosim/insts"
	"github.com/sarchlab/milosim/loader"
	"github.com/sarchlab/milosim/timing/core"
	"github.com/sarchlab/milosim/timing/latency"
	"github.com/sarchlab/milosim/timing/warp"
)

var (
	timing     = flag.Bool("timing", false, "Run the timed SIMT core instead of the functional emulator")
	warpCount  = flag.Int("warps", 1, "Number of warps to dispatch in timing mode")
	configPath = flag.String("config", "", "Path to timing configuration JSON file")
	disasm     = flag.Bool("disasm", false, "Print the program disassembly and exit")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: milosim [options] <shader.mlo>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	prog, err := loader.LoadFile(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading shader: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Instructions: %d\n", len(prog.Code))
	}

	if *disasm {
		insts.DisassembleProgram(prog.Code, os.Stdout)
		return
	}

	if *timing {
		os.Exit(runTiming(prog, programPath))
	}
	os.Exit(runEmulation(prog, programPath))
}

// runEmulation runs the shader on the scalar functional emulator.
func runEmulation(prog *loader.Program, programPath string) int {
	emulator := emu.NewEmulator()
	if err := emulator.LoadProgram(prog.Code); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := emulator.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Emulation failed: %v\n", err)
		return 1
	}

	if *verbose {
		fmt.Printf("\nProgram: %s\n", programPath)
		fmt.Printf("Instructions executed: %d\n", emulator.CycleCount())
	}
	return 0
}

// runTiming runs the shader on the timed SIMT core and reports stats.
func runTiming(prog *loader.Program, programPath string) int {
	var timingConfig *latency.TimingConfig
	if *configPath != "" {
		var err error
		timingConfig, err = latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			return 1
		}
		if err := timingConfig.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid timing config: %v\n", err)
			return 1
		}
	} else {
		timingConfig = latency.DefaultTimingConfig()
	}

	c := core.NewCore(core.WithConfig(timingConfig))
	if err := c.LoadProgram(prog.Code); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	c.Start(*warpCount)
	if err := c.Run(); err != nil {
		color.Red("Dispatch halted: %v", err)
		return 1
	}

	stats := c.Stats()
	totalCycles := stats.Cycles
	if totalCycles == 0 {
		totalCycles = 1
	}
	lanes := uint64(*warpCount) * warp.LaneCount

	bold := color.New(color.Bold)

	fmt.Printf("\n")
	bold.Printf("Program: %s\n", programPath)
	fmt.Printf("Warps: %d (%d lanes)\n", *warpCount, lanes)
	fmt.Printf("Total Instructions: %d\n", stats.Instructions)
	fmt.Printf("Total Cycles: %d\n", stats.Cycles)
	fmt.Printf("IPC: %.2f\n", float64(stats.Instructions)/float64(totalCycles))
	fmt.Printf("\n")
	bold.Printf("Memory:\n")
	fmt.Printf("  Global reads:  %d\n", stats.MemReads)
	fmt.Printf("  Global writes: %d\n", stats.MemWrites)
	fmt.Printf("  Shared accesses:        %d\n", stats.SharedAccesses)
	fmt.Printf("  Shared conflict cycles: %d (%5.1f%%)\n",
		stats.SharedConflictCycles,
		100.0*float64(stats.SharedConflictCycles)/float64(totalCycles))
	fmt.Printf("\n")
	bold.Printf("Texture:\n")
	fmt.Printf("  Samples:      %d\n", stats.TexSamples)
	fmt.Printf("  Cache hits:   %d\n", stats.TexCacheHits)
	fmt.Printf("  Cache misses: %d\n", stats.TexCacheMisses)

	if stats.EmptyJoinWarnings > 0 {
		fmt.Printf("\n")
		color.Yellow("Warnings: %d JOIN(s) on an empty divergence stack", stats.EmptyJoinWarnings)
	}

	return 0
}
