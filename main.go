// Package main provides the entry point for milosim.
// Milosim is a warp-level SIMT shader core simulator.
//
// For the full CLI, use: go run ./cmd/milosim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("Milosim - SIMT Shader Core Simulator")
	fmt.Println("")
	fmt.Println("Usage: milosim [options] <shader.mlo>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -timing    Run the timed SIMT core instead of the functional emulator")
	fmt.Println("  -warps     Number of warps to dispatch in timing mode")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -disasm    Print the program disassembly and exit")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/milosim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/milosim' instead.")
	}
}
