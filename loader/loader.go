// Package loader reads compiled shader binaries into instruction words.
//
// A binary is a 12-byte header followed by the code: magic "MILO"
// (0x4D494C4F), a format version, and the instruction count, all
// little-endian uint32, then count 64-bit instruction words.
package loader

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Magic identifies a shader binary.
const Magic uint32 = 0x4D494C4F

// Version is the binary format version this loader understands.
const Version uint32 = 1

// MaxWords bounds the instruction count a binary may declare, matching
// the instruction store size.
const MaxWords = 4096

// Program is a loaded shader binary.
type Program struct {
	Version uint32
	Code    []uint64
}

// Load reads a shader binary from r.
func Load(r io.Reader) (*Program, error) {
	var header struct {
		Magic   uint32
		Version uint32
		Count   uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read shader header: %w", err)
	}

	if header.Magic != Magic {
		return nil, fmt.Errorf("not a shader binary: magic 0x%08X", header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("unsupported shader binary version %d", header.Version)
	}
	if header.Count > MaxWords {
		return nil, fmt.Errorf("shader too large: %d words (max %d)", header.Count, MaxWords)
	}

	code := make([]uint64, header.Count)
	if err := binary.Read(r, binary.LittleEndian, code); err != nil {
		return nil, fmt.Errorf("failed to read shader code: %w", err)
	}

	return &Program{Version: header.Version, Code: code}, nil
}

// LoadFile reads a shader binary from a file.
func LoadFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shader binary: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Save writes a shader binary to w.
func Save(w io.Writer, code []uint64) error {
	if len(code) > MaxWords {
		return fmt.Errorf("shader too large: %d words (max %d)", len(code), MaxWords)
	}

	header := struct {
		Magic   uint32
		Version uint32
		Count   uint32
	}{Magic, Version, uint32(len(code))}

	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write shader header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, code); err != nil {
		return fmt.Errorf("failed to write shader code: %w", err)
	}
	return nil
}

// SaveFile writes a shader binary to a file.
func SaveFile(path string, code []uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create shader binary: %w", err)
	}
	defer f.Close()

	return Save(f, code)
}
