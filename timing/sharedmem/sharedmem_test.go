package sharedmem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/milosim/timing/sharedmem"
)

var _ = Describe("Unit", func() {
	var u *sharedmem.Unit

	BeforeEach(func() {
		u = sharedmem.New(0)
	})

	It("should serve a conflict-free batch in one cycle", func() {
		var accesses []sharedmem.Access
		for lane := 0; lane < 32; lane++ {
			u.WriteWord(uint32(lane), uint32(lane*10))
			accesses = append(accesses, sharedmem.Access{
				Lane:     lane,
				WordAddr: uint32(lane),
			})
		}
		u.Submit(0, accesses)

		u.Tick()

		results, done := u.Completed(0)
		Expect(done).To(BeTrue())
		Expect(results).To(HaveLen(32))
		for _, r := range results {
			Expect(r.Data).To(Equal(uint32(r.Lane * 10)))
		}
		Expect(u.ConflictCycles()).To(Equal(uint64(0)))
	})

	It("should serialize a fully conflicting batch over many cycles", func() {
		u.WriteWord(64, 0xABCD)

		var accesses []sharedmem.Access
		for lane := 0; lane < 32; lane++ {
			accesses = append(accesses, sharedmem.Access{
				Lane:     lane,
				WordAddr: 64,
			})
		}
		u.Submit(0, accesses)

		cycles := 0
		var results []sharedmem.Result
		for {
			u.Tick()
			cycles++
			if r, done := u.Completed(0); done {
				results = r
				break
			}
			Expect(cycles).To(BeNumerically("<", 100))
		}

		Expect(cycles).To(Equal(32))
		Expect(results).To(HaveLen(32))
		for _, r := range results {
			Expect(r.Data).To(Equal(uint32(0xABCD)))
		}
		Expect(u.ConflictCycles()).To(BeNumerically(">", uint64(0)))
	})

	It("should serve the lowest lane first on a conflict", func() {
		u.WriteWord(8, 1)
		u.Submit(0, []sharedmem.Access{
			{Lane: 2, WordAddr: 8},
			{Lane: 5, WordAddr: 8, IsStore: true, Data: 99},
		})

		u.Tick()
		u.Tick()
		results, done := u.Completed(0)
		Expect(done).To(BeTrue())
		Expect(results[0].Lane).To(Equal(2))
		Expect(results[1].Lane).To(Equal(5))
		Expect(u.ReadWord(8)).To(Equal(uint32(99)))
	})

	It("should read the value present at batch submission", func() {
		u.WriteWord(3, 7)
		u.Submit(0, []sharedmem.Access{
			{Lane: 0, WordAddr: 3, IsStore: true, Data: 50},
			{Lane: 1, WordAddr: 35},
		})

		// Lane 1's address maps to bank 3 as well, so its load lands a
		// cycle after lane 0's store. It still sees the submission-time
		// contents of word 35, not anything written meanwhile.
		u.WriteWord(35, 1234)

		u.Tick()
		u.Tick()
		results, done := u.Completed(0)
		Expect(done).To(BeTrue())
		Expect(results[1].Data).To(Equal(uint32(0)))
		Expect(u.ReadWord(3)).To(Equal(uint32(50)))
	})

	It("should produce exactly one result per access including stores", func() {
		u.Submit(0, []sharedmem.Access{
			{Lane: 0, WordAddr: 0, IsStore: true, Data: 1},
			{Lane: 1, WordAddr: 1},
			{Lane: 2, WordAddr: 2, IsStore: true, Data: 3},
		})

		u.Tick()
		results, done := u.Completed(0)
		Expect(done).To(BeTrue())
		Expect(results).To(HaveLen(3))
		Expect(u.Accesses()).To(Equal(uint64(3)))
	})

	It("should queue batches from different warps in order", func() {
		u.WriteWord(0, 11)
		u.Submit(0, []sharedmem.Access{{Lane: 0, WordAddr: 0}})
		u.Submit(1, []sharedmem.Access{{Lane: 0, WordAddr: 0, IsStore: true, Data: 22}})

		u.Tick()
		_, done := u.Completed(1)
		Expect(done).To(BeFalse())

		results, done := u.Completed(0)
		Expect(done).To(BeTrue())
		Expect(results[0].Data).To(Equal(uint32(11)))

		u.Tick()
		_, done = u.Completed(1)
		Expect(done).To(BeTrue())
		Expect(u.ReadWord(0)).To(Equal(uint32(22)))
	})

	It("should ignore out-of-range addresses without faulting", func() {
		u.Submit(0, []sharedmem.Access{
			{Lane: 0, WordAddr: 100000, IsStore: true, Data: 9},
			{Lane: 1, WordAddr: 100001},
		})
		u.Tick()
		results, done := u.Completed(0)
		Expect(done).To(BeTrue())
		Expect(results).To(HaveLen(2))
	})
})
