package engine_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/latticefield/engine"
	"github.com/sarchlab/latticefield/igsoa"
	"github.com/sarchlab/latticefield/satphiggs"
	"github.com/sarchlab/latticefield/status"
)

func TestEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Engine Suite")
}

var _ = Describe("IGSOAEngine", func() {
	It("rejects an axis size above the 1D/2D limit", func() {
		_, st := engine.NewIGSOAEngine(5000, 1, 1, 1, igsoa.Config{DT: 0.01}, nil)
		Expect(st.Ok()).To(BeFalse())
		Expect(st.Code).To(Equal(status.InvalidLatticeSize))
	})

	It("rejects dt outside (0,1]", func() {
		_, st := engine.NewIGSOAEngine(8, 1, 1, 1, igsoa.Config{RC: 2, RCSet: true, DT: 0}, nil)
		Expect(st.Ok()).To(BeFalse())
		Expect(st.Code).To(Equal(status.InvalidDT))
	})

	It("rejects a negative kappa", func() {
		_, st := engine.NewIGSOAEngine(8, 1, 1, 1, igsoa.Config{RC: 2, RCSet: true, DT: 0.01, Kappa: -1}, nil)
		Expect(st.Ok()).To(BeFalse())
		Expect(st.Code).To(Equal(status.InvalidKappa))
	})

	It("rejects an unset R_c (RCSet false, the zero-value footgun)", func() {
		_, st := engine.NewIGSOAEngine(8, 1, 1, 1, igsoa.Config{DT: 0.01}, nil)
		Expect(st.Ok()).To(BeFalse())
		Expect(st.Code).To(Equal(status.InvalidRC))
	})

	It("rejects an explicitly out-of-range R_c", func() {
		_, st := engine.NewIGSOAEngine(8, 1, 1, 1, igsoa.Config{RC: -1, RCSet: true, DT: 0.01}, nil)
		Expect(st.Ok()).To(BeFalse())
		Expect(st.Code).To(Equal(status.InvalidRC))
	})

	It("advances the simulation time and step count on Advance", func() {
		e, st := engine.NewIGSOAEngine(8, 1, 1, 1, igsoa.Config{RC: 2, RCSet: true, DT: 0.01}, nil)
		Expect(st.Ok()).To(BeTrue())

		Expect(e.Advance(3).Ok()).To(BeTrue())
		m := e.Metrics()
		Expect(m.StepsTaken).To(Equal(uint64(3)))
		Expect(m.SimTime).To(BeNumerically("~", 0.03, 1e-12))
	})

	It("advances identically whether Workers is left at 0 or set above 1", func() {
		cfg := igsoa.Config{RC: 2, RCSet: true, Kappa: 0.1, DT: 0.01}
		seq, st := engine.NewIGSOAEngine(16, 1, 1, 1, cfg, nil)
		Expect(st.Ok()).To(BeTrue())
		par, st := engine.NewIGSOAEngine(16, 1, 1, 1, cfg, nil)
		Expect(st.Ok()).To(BeTrue())
		par.Workers = 4

		Expect(seq.Advance(3).Ok()).To(BeTrue())
		Expect(par.Advance(3).Ok()).To(BeTrue())

		for i := range seq.Field.Nodes {
			Expect(par.Field.Nodes[i].Psi).To(Equal(seq.Field.Nodes[i].Psi))
		}
	})

	It("emits a cache-rebuilt event on the first Advance when R_c > 0", func() {
		var kinds []engine.EventKind
		e, st := engine.NewIGSOAEngine(8, 1, 1, 1, igsoa.Config{RC: 2, RCSet: true, DT: 0.01},
			func(ev engine.Event) { kinds = append(kinds, ev.Kind) })
		Expect(st.Ok()).To(BeTrue())

		Expect(e.Advance(1).Ok()).To(BeTrue())
		Expect(kinds).To(ContainElement(engine.EventCacheRebuilt))
		Expect(kinds).To(ContainElement(engine.EventStepCompleted))
	})

	It("derives NsPerOp/OpsPerSec/TotalOps from accumulated step timings", func() {
		e, st := engine.NewIGSOAEngine(4, 1, 1, 1, igsoa.Config{RC: 0, RCSet: true, DT: 0.01}, nil)
		Expect(st.Ok()).To(BeTrue())

		m := e.Metrics()
		Expect(m.NsPerOp()).To(Equal(0.0))
		Expect(m.OpsPerSec()).To(Equal(0.0))
		Expect(m.TotalOps()).To(Equal(uint64(0)))

		Expect(e.Advance(5).Ok()).To(BeTrue())
		m = e.Metrics()
		Expect(m.TotalOps()).To(Equal(uint64(5)))
		Expect(m.NsPerOp()).To(BeNumerically(">", 0))
		Expect(m.OpsPerSec()).To(BeNumerically(">", 0))
	})

	It("resets metrics and simulation time without touching field state", func() {
		e, st := engine.NewIGSOAEngine(4, 1, 1, 1, igsoa.Config{RC: 0, RCSet: true, DT: 0.01}, nil)
		Expect(st.Ok()).To(BeTrue())
		e.Field.Nodes[0].Psi = complex(1, 0)

		Expect(e.Advance(2).Ok()).To(BeTrue())
		e.Reset()

		m := e.Metrics()
		Expect(m.StepsTaken).To(Equal(uint64(0)))
		Expect(m.SimTime).To(Equal(0.0))
	})
})

var _ = Describe("SATPHiggsEngine", func() {
	It("rejects dt above the CFL bound at construction", func() {
		_, st := engine.NewSATPHiggsEngine(8, 1, 1, 1,
			satphiggs.Config{Dx: 1, DT: 10, C: 1, LambdaH: 0.5, Mu2: -1}, nil)
		Expect(st.Ok()).To(BeFalse())
		Expect(st.Code).To(Equal(status.InvalidDT))
	})

	It("starts every site at the physics vacuum", func() {
		cfg := satphiggs.Config{Dx: 1, DT: 0.1, C: 1, LambdaH: 0.5, Mu2: -1}
		e, st := engine.NewSATPHiggsEngine(8, 1, 1, 1, cfg, nil)
		Expect(st.Ok()).To(BeTrue())

		vev := cfg.HVev()
		for _, n := range e.Field.Nodes {
			Expect(n.H).To(Equal(vev))
			Expect(n.Phi).To(Equal(0.0))
		}
	})

	It("advances step count and simulation time", func() {
		cfg := satphiggs.Config{Dx: 1, DT: 0.05, C: 1, LambdaH: 0.5, Mu2: -1}
		e, st := engine.NewSATPHiggsEngine(8, 1, 1, 1, cfg, nil)
		Expect(st.Ok()).To(BeTrue())

		Expect(e.Advance(4).Ok()).To(BeTrue())
		m := e.Metrics()
		Expect(m.StepsTaken).To(Equal(uint64(4)))
		Expect(m.SimTime).To(BeNumerically("~", 0.2, 1e-12))
	})

	It("restores the vacuum on Reset", func() {
		cfg := satphiggs.Config{Dx: 1, DT: 0.05, C: 1, LambdaH: 0.5, Mu2: -1}
		e, st := engine.NewSATPHiggsEngine(8, 1, 1, 1, cfg, nil)
		Expect(st.Ok()).To(BeTrue())
		e.Field.Nodes[0].Phi = 5

		e.Reset()
		vev := cfg.HVev()
		for _, n := range e.Field.Nodes {
			Expect(n.H).To(Equal(vev))
			Expect(n.Phi).To(Equal(0.0))
		}
	})
})
