package emu_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/milosim/emu"
)

// The SFU contract is "matches the reference lookup-table
// approximation", so these tests check coarse accuracy, edge handling,
// and determinism against the unit itself rather than libm exactness.
var _ = Describe("SFU", func() {
	var sfu *emu.SFU

	BeforeEach(func() {
		sfu = emu.NewSFU()
	})

	It("should approximate sin and cos", func() {
		Expect(sfu.Sin(0)).To(BeNumerically("~", 0.0, 1e-3))
		Expect(sfu.Sin(math.Pi/2)).To(BeNumerically("~", 1.0, 1e-3))
		Expect(sfu.Cos(0)).To(BeNumerically("~", 1.0, 1e-3))
		Expect(sfu.Cos(math.Pi)).To(BeNumerically("~", -1.0, 1e-3))
	})

	It("should approximate exp2 and log2 as inverses", func() {
		Expect(sfu.Exp2(3)).To(BeNumerically("~", 8.0, 0.01))
		Expect(sfu.Log2(8)).To(BeNumerically("~", 3.0, 0.01))
		Expect(sfu.Exp2(-1)).To(BeNumerically("~", 0.5, 0.01))
	})

	It("should return -Inf for log2 of non-positive inputs", func() {
		Expect(math.IsInf(float64(sfu.Log2(0)), -1)).To(BeTrue())
		Expect(math.IsInf(float64(sfu.Log2(-1)), -1)).To(BeTrue())
	})

	It("should approximate reciprocals", func() {
		Expect(sfu.Rcp(2)).To(BeNumerically("~", 0.5, 0.01))
		Expect(sfu.Rcp(-4)).To(BeNumerically("~", -0.25, 0.01))
		Expect(math.IsInf(float64(sfu.Rcp(0)), 1)).To(BeTrue())
	})

	It("should approximate square roots", func() {
		Expect(sfu.Sqrt(4)).To(BeNumerically("~", 2.0, 0.01))
		Expect(sfu.Sqrt(2)).To(BeNumerically("~", 1.41421, 0.01))
		Expect(sfu.Sqrt(0)).To(Equal(float32(0)))
		Expect(sfu.Sqrt(-1)).To(Equal(float32(0)))
	})

	It("should approximate reciprocal square roots", func() {
		Expect(sfu.Rsq(4)).To(BeNumerically("~", 0.5, 0.01))
		Expect(math.IsInf(float64(sfu.Rsq(0)), 1)).To(BeTrue())
		Expect(math.IsInf(float64(sfu.Rsq(-1)), 1)).To(BeTrue())
	})

	It("should approximate tanh and saturate", func() {
		Expect(sfu.Tanh(0)).To(BeNumerically("~", 0.0, 1e-3))
		Expect(sfu.Tanh(1)).To(BeNumerically("~", 0.7616, 0.01))
		Expect(sfu.Tanh(10)).To(Equal(float32(1)))
		Expect(sfu.Tanh(-10)).To(Equal(float32(-1)))
	})

	It("should be deterministic across instances", func() {
		other := emu.NewSFU()
		for _, x := range []float32{0.1, 0.7, 1.3, 2.9, 13.37, -4.2} {
			Expect(sfu.Sin(x)).To(Equal(other.Sin(x)))
			Expect(sfu.Exp2(x)).To(Equal(other.Exp2(x)))
			Expect(sfu.Tanh(x)).To(Equal(other.Tanh(x)))
		}
	})

	It("should expose the shared reference unit", func() {
		ref := emu.ReferenceSFU()
		Expect(ref.Sqrt(9)).To(Equal(sfu.Sqrt(9)))
	})
})
