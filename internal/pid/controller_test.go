package pid_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pidlab/internal/pid"
)

func mustNew(dt, max, min, kp, kd, ki float64) *pid.Controller {
	c, err := pid.New(dt, max, min, kp, kd, ki)
	Expect(err).NotTo(HaveOccurred())
	return c
}

var _ = Describe("Controller", func() {
	Describe("clamping", func() {
		var c *pid.Controller

		BeforeEach(func() {
			c = mustNew(1.0, 50, -50, 10, 5, 1)
		})

		It("saturates at exactly the upper bound", func() {
			Expect(c.Compute(100, 0)).To(Equal(50.0))
		})

		It("saturates at exactly the lower bound on the next call", func() {
			c.Compute(100, 0)
			Expect(c.Compute(-100, 0)).To(Equal(-50.0))
		})

		It("marks saturated steps", func() {
			s, err := c.Step(100, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Saturated).To(BeTrue())
			Expect(s.Raw).To(BeNumerically(">", 50))
		})
	})

	Describe("inside the output range", func() {
		It("returns the raw sum of the terms", func() {
			c := mustNew(1.0, 100, -100, 1, 0.1, 0.5)
			Expect(c.Compute(10, 0)).To(BeNumerically("~", 16.0, 0.01))
		})

		It("reports the term breakdown", func() {
			c := mustNew(1.0, 100, -100, 1, 0.1, 0.5)
			s, err := c.Step(10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Error).To(Equal(10.0))
			Expect(s.P).To(BeNumerically("~", 10, 1e-12))
			Expect(s.I).To(BeNumerically("~", 5, 1e-12))
			Expect(s.D).To(BeNumerically("~", 1, 1e-12))
			Expect(s.Saturated).To(BeFalse())
			Expect(s.Output).To(Equal(s.Raw))
		})
	})

	Describe("state updates", func() {
		It("uses error/dt as the first derivative", func() {
			c := mustNew(0.5, 1000, -1000, 0, 2, 0)
			s, _ := c.Step(3, 0)
			Expect(s.D).To(BeNumerically("~", 2*3/0.5, 1e-12))
		})

		It("accumulates the integral additively", func() {
			const e, dt, ki = 4.0, 0.25, 0.3
			c := mustNew(dt, 1000, -1000, 0, 0, ki)
			c.Step(e, 0)
			s, _ := c.Step(e, 0)
			Expect(s.I).To(BeNumerically("~", ki*2*e*dt, 1e-12))
		})

		It("changes only the integral term on a repeated error", func() {
			c := mustNew(0.1, 100, -100, 0.1, 0.5, 0.01)
			first, _ := c.Step(10, 5)
			second, _ := c.Step(10, 5)

			Expect(second.D).To(BeZero())
			Expect(second.P).To(Equal(first.P))
			Expect(second.I).To(BeNumerically("~", 2*first.I, 1e-12))
			Expect(second.Output).To(BeNumerically("~", 0.1*5+0.01*2*5*0.1, 1e-9))
		})

		It("keeps updating the previous error while saturated", func() {
			c := mustNew(1.0, 1, -1, 1, 1, 0)
			c.Compute(100, 0)
			_, prev := c.State()
			Expect(prev).To(Equal(100.0))
		})
	})

	It("is deterministic for identical inputs", func() {
		a := mustNew(0.05, 20, -20, 1.2, 0.3, 0.8)
		b := mustNew(0.05, 20, -20, 1.2, 0.3, 0.8)
		inputs := [][2]float64{{1, 0}, {1, 0.4}, {2, 0.9}, {-3, 1.5}, {0, 0}}
		for _, in := range inputs {
			Expect(a.Compute(in[0], in[1])).To(Equal(b.Compute(in[0], in[1])))
		}
	})
})
