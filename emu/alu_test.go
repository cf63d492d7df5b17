package emu_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/milosim/emu"
	"github.com/sarchlab/milosim/insts"
)

// compute runs one register-computing instruction through the
// arithmetic-unit dispatcher.
func compute(op insts.Op, s1, s2, s3 uint32) uint32 {
	result, ok := emu.Execute(&insts.Inst{Op: op}, s1, s2, s3)
	Expect(ok).To(BeTrue())
	return result
}

func computeF(op insts.Op, a, b float32) float32 {
	bits := compute(op, math.Float32bits(a), math.Float32bits(b), 0)
	return math.Float32frombits(bits)
}

// signed reinterprets a signed value as register bits.
func signed(v int32) uint32 {
	return uint32(v)
}

var _ = Describe("ALU", func() {
	It("should add and subtract", func() {
		Expect(int32(compute(insts.OpADD, 7, signed(-3), 0))).To(Equal(int32(4)))
		Expect(int32(compute(insts.OpSUB, 3, 10, 0))).To(Equal(int32(-7)))
	})

	It("should use the immediate form of ADD when imm is nonzero", func() {
		result, ok := emu.Execute(
			&insts.Inst{Op: insts.OpADD, Imm: 100}, 1, 99, 0)

		Expect(ok).To(BeTrue())
		Expect(result).To(Equal(uint32(101)))
	})

	It("should define division by zero as zero", func() {
		Expect(compute(insts.OpIDIV, 42, 0, 0)).To(Equal(uint32(0)))
		Expect(compute(insts.OpIREM, 42, 0, 0)).To(Equal(uint32(0)))
	})

	It("should divide and take remainders with signs", func() {
		Expect(int32(compute(insts.OpIDIV, signed(-7), 2, 0))).To(Equal(int32(-3)))
		Expect(int32(compute(insts.OpIREM, signed(-7), 2, 0))).To(Equal(int32(-1)))
	})

	It("should mask shift amounts to the register width", func() {
		Expect(compute(insts.OpSHL, 1, 4, 0)).To(Equal(uint32(16)))
		Expect(compute(insts.OpSHL, 1, 32, 0)).To(Equal(uint32(1)))
		Expect(compute(insts.OpSHR, 0x80000000, 31, 0)).To(Equal(uint32(1)))
	})

	It("should shift arithmetically with sign extension", func() {
		Expect(int32(compute(insts.OpSHA, signed(-8), 1, 0))).To(Equal(int32(-4)))
	})

	It("should complement bits", func() {
		Expect(compute(insts.OpNOT, 0xFF00FF00, 0, 0)).To(Equal(uint32(0x00FF00FF)))
	})

	It("should count and reverse bits", func() {
		Expect(compute(insts.OpPOPC, 0xF0F0, 0, 0)).To(Equal(uint32(8)))
		Expect(compute(insts.OpCLZ, 1, 0, 0)).To(Equal(uint32(31)))
		Expect(compute(insts.OpCLZ, 0, 0, 0)).To(Equal(uint32(32)))
		Expect(compute(insts.OpBREV, 0x00000001, 0, 0)).To(Equal(uint32(0x80000000)))
		Expect(compute(insts.OpCNOT, 0, 0, 0)).To(Equal(uint32(1)))
		Expect(compute(insts.OpCNOT, 5, 0, 0)).To(Equal(uint32(0)))
	})

	It("should compare signed values", func() {
		Expect(compute(insts.OpSLT, signed(-1), 0, 0)).To(Equal(uint32(1)))
		Expect(compute(insts.OpSLE, 3, 3, 0)).To(Equal(uint32(1)))
		Expect(compute(insts.OpSEQ, 3, 4, 0)).To(Equal(uint32(0)))
	})

	It("should compute min, max, abs, and negate", func() {
		Expect(int32(compute(insts.OpIMIN, signed(-5), 2, 0))).To(Equal(int32(-5)))
		Expect(int32(compute(insts.OpIMAX, signed(-5), 2, 0))).To(Equal(int32(2)))
		Expect(int32(compute(insts.OpIABS, signed(-9), 0, 0))).To(Equal(int32(9)))
		Expect(int32(compute(insts.OpNEG, 9, 0, 0))).To(Equal(int32(-9)))
	})

	It("should multiply-add through IMAD", func() {
		Expect(int32(compute(insts.OpIMAD, 3, 4, 5))).To(Equal(int32(17)))
	})

	It("should select through SELP", func() {
		Expect(compute(insts.OpSELP, 11, 22, 1)).To(Equal(uint32(11)))
		Expect(compute(insts.OpSELP, 11, 22, 0)).To(Equal(uint32(22)))
	})
})

var _ = Describe("FPU", func() {
	It("should add: FADD(1.0, 2.0) = 3.0", func() {
		Expect(computeF(insts.OpFADD, 1.0, 2.0)).To(Equal(float32(3.0)))
	})

	It("should divide: FDIV(1.0, 3.0) is about 0.3333", func() {
		Expect(computeF(insts.OpFDIV, 1.0, 3.0)).To(BeNumerically("~", 0.3333, 0.01))
	})

	It("should define FDIV by zero as zero", func() {
		Expect(computeF(insts.OpFDIV, 1.0, 0.0)).To(Equal(float32(0.0)))
	})

	It("should truncate on FTOI", func() {
		result := int32(compute(insts.OpFTOI, math.Float32bits(123.7), 0, 0))
		Expect(result).To(SatisfyAny(Equal(int32(123)), Equal(int32(124))))
	})

	It("should convert integers to floats", func() {
		result := math.Float32frombits(compute(insts.OpITOF, signed(-3), 0, 0))
		Expect(result).To(Equal(float32(-3)))
	})

	It("should fuse multiply-add", func() {
		bits := compute(insts.OpFFMA,
			math.Float32bits(2.0), math.Float32bits(3.0), math.Float32bits(4.0))
		Expect(math.Float32frombits(bits)).To(Equal(float32(10.0)))
	})

	It("should take min, max, abs, and negate", func() {
		Expect(computeF(insts.OpFMIN, -1.5, 2.0)).To(Equal(float32(-1.5)))
		Expect(computeF(insts.OpFMAX, -1.5, 2.0)).To(Equal(float32(2.0)))
		Expect(computeF(insts.OpFABS, -1.5, 0)).To(Equal(float32(1.5)))
		Expect(computeF(insts.OpFNEG, 1.5, 0)).To(Equal(float32(-1.5)))
	})

	It("should compare ordered floats", func() {
		Expect(compute(insts.OpFSLT, math.Float32bits(1), math.Float32bits(2), 0)).
			To(Equal(uint32(1)))
		Expect(compute(insts.OpFSLE, math.Float32bits(2), math.Float32bits(2), 0)).
			To(Equal(uint32(1)))
		Expect(compute(insts.OpFSEQ, math.Float32bits(1), math.Float32bits(2), 0)).
			To(Equal(uint32(0)))
	})
})
