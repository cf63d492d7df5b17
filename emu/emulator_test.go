package emu_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/milosim/emu"
	"github.com/sarchlab/milosim/insts"
)

// asm assembles instruction structs into a binary program.
func asm(program ...insts.Inst) []uint64 {
	code := make([]uint64, 0, len(program))
	for _, inst := range program {
		code = append(code, insts.Encode(inst))
	}
	return code
}

var _ = Describe("Emulator", func() {
	var e *emu.Emulator

	BeforeEach(func() {
		e = emu.NewEmulator()
	})

	load := func(program ...insts.Inst) {
		Expect(e.LoadProgram(asm(program...))).To(Succeed())
	}

	It("should reject programs that overflow the instruction store", func() {
		Expect(e.LoadProgram(make([]uint64, emu.MaxCode+1))).ToNot(Succeed())
	})

	It("should execute a MOV/ADD/EXIT program", func() {
		load(
			insts.Inst{Op: insts.OpADD, Rd: 1, Rs1: 0, Imm: 21},
			insts.Inst{Op: insts.OpADD, Rd: 2, Rs1: 1, Rs2: 1},
			insts.Inst{Op: insts.OpMOV, Rd: 3, Rs1: 2},
			insts.Inst{Op: insts.OpEXIT},
		)

		Expect(e.Run()).To(Succeed())

		Expect(e.RegFile().ReadInt(2)).To(Equal(int32(42)))
		Expect(e.RegFile().ReadInt(3)).To(Equal(int32(42)))
	})

	It("should keep register 0 hard-wired to zero", func() {
		load(
			insts.Inst{Op: insts.OpADD, Rd: 0, Rs1: 0, Imm: 99},
			insts.Inst{Op: insts.OpMOV, Rd: 1, Rs1: 0},
			insts.Inst{Op: insts.OpEXIT},
		)

		Expect(e.Run()).To(Succeed())

		Expect(e.RegFile().Read(0)).To(Equal(uint32(0)))
		Expect(e.RegFile().Read(1)).To(Equal(uint32(0)))
	})

	It("should loop with BNE until the counter runs out", func() {
		load(
			insts.Inst{Op: insts.OpADD, Rd: 1, Rs1: 0, Imm: 5},  // 0: limit
			insts.Inst{Op: insts.OpADD, Rd: 2, Rs1: 2, Imm: 1},  // 1: i++
			insts.Inst{Op: insts.OpADD, Rd: 3, Rs1: 3, Imm: 2},  // 2: sum += 2
			insts.Inst{Op: insts.OpBNE, Rs1: 2, Rs2: 1, Imm: 1}, // 3: loop
			insts.Inst{Op: insts.OpEXIT},
		)

		Expect(e.Run()).To(Succeed())

		Expect(e.RegFile().ReadInt(3)).To(Equal(int32(10)))
	})

	It("should take BEQ when operands match", func() {
		load(
			insts.Inst{Op: insts.OpBEQ, Rs1: 0, Rs2: 0, Imm: 3}, // 0: always taken
			insts.Inst{Op: insts.OpADD, Rd: 1, Rs1: 0, Imm: 1},  // 1: skipped
			insts.Inst{Op: insts.OpEXIT},                        // 2
			insts.Inst{Op: insts.OpADD, Rd: 2, Rs1: 0, Imm: 7},  // 3
			insts.Inst{Op: insts.OpEXIT},                        // 4
		)

		Expect(e.Run()).To(Succeed())

		Expect(e.RegFile().ReadInt(1)).To(Equal(int32(0)))
		Expect(e.RegFile().ReadInt(2)).To(Equal(int32(7)))
	})

	It("should call and return through the return stack", func() {
		load(
			insts.Inst{Op: insts.OpCALL, Imm: 3},               // 0
			insts.Inst{Op: insts.OpADD, Rd: 2, Rs1: 1, Imm: 1}, // 1: after return
			insts.Inst{Op: insts.OpEXIT},                       // 2
			insts.Inst{Op: insts.OpADD, Rd: 1, Rs1: 0, Imm: 5}, // 3: callee
			insts.Inst{Op: insts.OpRET},                        // 4
		)

		Expect(e.Run()).To(Succeed())

		Expect(e.RegFile().ReadInt(1)).To(Equal(int32(5)))
		Expect(e.RegFile().ReadInt(2)).To(Equal(int32(6)))
	})

	It("should treat RET with an empty return stack as program exit", func() {
		load(
			insts.Inst{Op: insts.OpADD, Rd: 1, Rs1: 0, Imm: 1},
			insts.Inst{Op: insts.OpRET},
			insts.Inst{Op: insts.OpADD, Rd: 1, Rs1: 0, Imm: 99}, // unreachable
		)

		Expect(e.Run()).To(Succeed())

		Expect(e.RegFile().ReadInt(1)).To(Equal(int32(1)))
	})

	It("should load and store through data memory", func() {
		load(
			insts.Inst{Op: insts.OpADD, Rd: 1, Rs1: 0, Imm: 0x40}, // base
			insts.Inst{Op: insts.OpADD, Rd: 2, Rs1: 0, Imm: 1234},
			insts.Inst{Op: insts.OpSTR, Rs1: 1, Rs2: 2, Imm: 4},
			insts.Inst{Op: insts.OpLDR, Rd: 3, Rs1: 1, Imm: 4},
			insts.Inst{Op: insts.OpEXIT},
		)

		Expect(e.Run()).To(Succeed())

		Expect(e.RegFile().ReadInt(3)).To(Equal(int32(1234)))
		Expect(e.Memory().ReadWord(0x44)).To(Equal(uint32(1234)))
	})

	It("should read zero from out-of-bounds addresses and drop out-of-bounds stores", func() {
		load(
			insts.Inst{Op: insts.OpADD, Rd: 1, Rs1: 0, Imm: 0x7FFF0},
			insts.Inst{Op: insts.OpADD, Rd: 2, Rs1: 0, Imm: 77},
			insts.Inst{Op: insts.OpSTR, Rs1: 1, Rs2: 2}, // dropped
			insts.Inst{Op: insts.OpLDR, Rd: 3, Rs1: 1},  // reads zero
			insts.Inst{Op: insts.OpEXIT},
		)

		Expect(e.Run()).To(Succeed())

		Expect(e.RegFile().Read(3)).To(Equal(uint32(0)))
	})

	It("should fault on an unknown opcode", func() {
		Expect(e.LoadProgram([]uint64{uint64(0xEE) << 56})).To(Succeed())

		err := e.Run()

		Expect(err).To(MatchError(ContainSubstring("unknown opcode")))
	})

	It("should fault when the PC runs off the end of the program", func() {
		load(insts.Inst{Op: insts.OpNOP})

		err := e.Run()

		Expect(err).To(MatchError(ContainSubstring("pc out of bounds")))
	})

	It("should stop a runaway program at the cycle guard", func() {
		e = emu.NewEmulator(emu.WithMaxCycles(100))
		Expect(e.LoadProgram(asm(
			insts.Inst{Op: insts.OpBRA, Imm: 0},
		))).To(Succeed())

		err := e.Run()

		Expect(err).To(MatchError(ContainSubstring("max cycles")))
	})

	It("should push and pop the divergence stack via SSY and JOIN", func() {
		load(
			insts.Inst{Op: insts.OpSSY, Imm: 3},
			insts.Inst{Op: insts.OpADD, Rd: 1, Rs1: 0, Imm: 1},
			insts.Inst{Op: insts.OpJOIN},
			insts.Inst{Op: insts.OpEXIT},
		)

		Expect(e.Run()).To(Succeed())

		Expect(e.EmptyJoinWarnings()).To(Equal(uint64(0)))
	})

	It("should flag a JOIN on an empty divergence stack as a warning", func() {
		load(
			insts.Inst{Op: insts.OpJOIN},
			insts.Inst{Op: insts.OpEXIT},
		)

		Expect(e.Run()).To(Succeed())

		Expect(e.EmptyJoinWarnings()).To(Equal(uint64(1)))
	})

	It("should report the configured thread index through TID", func() {
		e = emu.NewEmulator(emu.WithThreadID(37))
		Expect(e.LoadProgram(asm(
			insts.Inst{Op: insts.OpTID, Rd: 1},
			insts.Inst{Op: insts.OpEXIT},
		))).To(Succeed())

		Expect(e.Run()).To(Succeed())

		Expect(e.RegFile().ReadInt(1)).To(Equal(int32(37)))
	})

	Describe("TEX", func() {
		It("should unpack a sampled color into four registers", func() {
			tex := emu.NewSolidTexture(4, 4, 0xFF0080FF)
			e.BindTexture(0, tex)
			load(
				// r1 = unit 0 (register 0), r2 = u, r3 = v
				insts.Inst{Op: insts.OpTEX, Rd: 4, Rs1: 0, Rs2: 2},
				insts.Inst{Op: insts.OpEXIT},
			)

			Expect(e.Run()).To(Succeed())

			Expect(e.RegFile().ReadFloat(4)).To(BeNumerically("~", 1.0, 1e-6))       // R
			Expect(e.RegFile().ReadFloat(5)).To(BeNumerically("~", 128.0/255, 1e-6)) // G
			Expect(e.RegFile().ReadFloat(6)).To(BeNumerically("~", 0.0, 1e-6))       // B
			Expect(e.RegFile().ReadFloat(7)).To(BeNumerically("~", 1.0, 1e-6))       // A
		})

		It("should sample a defined texel when the coordinates are NaN", func() {
			tex := emu.NewCheckerTexture(8, 8, 0xFF000000, 0xFFFFFFFF, 2)
			e.BindTexture(0, tex)
			load(
				// RCP(0) is +Inf; scaling it by zero yields NaN in u.
				insts.Inst{Op: insts.OpRCP, Rd: 2, Rs1: 0},
				insts.Inst{Op: insts.OpFMUL, Rd: 2, Rs1: 2, Rs2: 0},
				insts.Inst{Op: insts.OpTEX, Rd: 4, Rs1: 0, Rs2: 2},
				insts.Inst{Op: insts.OpEXIT},
			)

			Expect(e.Run()).To(Succeed())

			want := tex.Sample(0, 0)
			Expect(e.RegFile().ReadFloat(4)).
				To(BeNumerically("~", float64(want&0xFF)/255, 1e-6))
			Expect(e.RegFile().ReadFloat(7)).
				To(BeNumerically("~", float64(want>>24)/255, 1e-6))
		})

		It("should substitute magenta for an unbound unit", func() {
			load(
				insts.Inst{Op: insts.OpTEX, Rd: 4, Rs1: 0, Rs2: 2},
				insts.Inst{Op: insts.OpEXIT},
			)

			Expect(e.Run()).To(Succeed())

			Expect(e.RegFile().ReadFloat(4)).To(Equal(float32(1)))
			Expect(e.RegFile().ReadFloat(5)).To(Equal(float32(0)))
			Expect(e.RegFile().ReadFloat(6)).To(Equal(float32(1)))
			Expect(e.RegFile().ReadFloat(7)).To(Equal(float32(1)))
		})
	})
})

var _ = Describe("Shader harness", func() {
	It("should pass fragment inputs through the register convention", func() {
		e := emu.NewEmulator()
		// fragColor = v_color: copy r7-r10 into r4-r7.
		Expect(e.LoadProgram(asm(
			insts.Inst{Op: insts.OpMOV, Rd: 4, Rs1: 7},
			insts.Inst{Op: insts.OpMOV, Rd: 5, Rs1: 8},
			insts.Inst{Op: insts.OpMOV, Rd: 6, Rs1: 9},
			insts.Inst{Op: insts.OpMOV, Rd: 7, Rs1: 10},
			insts.Inst{Op: insts.OpEXIT},
		))).To(Succeed())

		out, err := e.ExecFragment(emu.FragmentIn{
			R: 0.25, G: 0.5, B: 0.75, A: 1.0, Z: 0.5,
		})

		Expect(err).ToNot(HaveOccurred())
		Expect(out.R).To(Equal(float32(0.25)))
		Expect(out.G).To(Equal(float32(0.5)))
		Expect(out.B).To(Equal(float32(0.75)))
		Expect(out.A).To(Equal(float32(1.0)))
		Expect(out.Depth).To(Equal(float32(0.5)))
	})

	It("should run a vertex passthrough", func() {
		e := emu.NewEmulator()
		Expect(e.LoadProgram(asm(
			insts.Inst{Op: insts.OpMOV, Rd: 1, Rs1: 2}, // clip.x = in.x
			insts.Inst{Op: insts.OpEXIT},
		))).To(Succeed())

		out, err := e.ExecVertex(emu.VertexIn{X: 3.5})

		Expect(err).ToNot(HaveOccurred())
		Expect(out.X).To(Equal(float32(3.5)))
	})
})

var _ = Describe("Register file", func() {
	It("should view a word as int or float without conversion", func() {
		rf := &emu.RegFile{}

		rf.WriteFloat(1, 1.5)

		Expect(rf.Read(1)).To(Equal(math.Float32bits(1.5)))
		Expect(rf.ReadFloat(1)).To(Equal(float32(1.5)))
	})

	It("should discard out-of-range register accesses", func() {
		rf := &emu.RegFile{}

		rf.Write(200, 5)

		Expect(rf.Read(200)).To(Equal(uint32(0)))
	})
})
