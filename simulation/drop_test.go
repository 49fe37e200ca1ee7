package simulation

import (
	"math/rand/v2"

	"github.com/lncensor/lncensor/adversary"
	"github.com/lncensor/lncensor/asn"
	"github.com/lncensor/lncensor/topology"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("classifier", func() {
	var (
		mapping *asn.Mapping
		set     *adversary.Set
		rng     *rand.Rand
	)

	BeforeEach(func() {
		_, mapping = exampleGraph()

		var err error
		set, err = adversary.Select(mapping, adversary.MaxNodes, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(set.ASNs()).To(Equal([]uint32{100}))

		rng = rand.New(rand.NewPCG(1, 2))
	})

	payment := func(hops ...topology.NodeIndex) *Payment {
		return &Payment{
			Source:      hops[0],
			Destination: hops[len(hops)-1],
			Route:       routeOver(hops...),
		}
	}

	Context("when dropping everything", func() {
		var c *classifier

		BeforeEach(func() {
			c = newClassifier(mapping, set, DropAll)
		})

		It("should deliver payments avoiding adversarial intermediates", func() {
			p := payment(n2, n3, n4)
			Expect(c.classify(p, rng)).To(Equal(Delivered()))
			Expect(p.Crossed).To(BeEmpty())
		})

		It("should censor payments over an adversarial intermediate", func() {
			p := payment(n1, n2, n3)
			Expect(c.classify(p, rng)).To(Equal(CensoredBy(100)))
			Expect(p.Crossed).To(Equal([]uint32{100}))
		})

		It("should not let endpoints censor", func() {
			Expect(c.classify(payment(n2, n5), rng)).To(Equal(Delivered()))
		})

		It("should blame the first adversarial AS along the path", func() {
			both, err := adversary.Select(mapping, adversary.MaxNodes, 2)
			Expect(err).NotTo(HaveOccurred())

			c := newClassifier(mapping, both, DropAll)
			p := payment(n1, n2, n3, n4)

			Expect(c.classify(p, rng)).To(Equal(CensoredBy(100)))
			Expect(p.Crossed).To(Equal([]uint32{100, 200}))
		})

		It("should count an AS once per payment", func() {
			p := payment(n1, n2, n5, n4)
			c.classify(p, rng)
			Expect(p.Crossed).To(Equal([]uint32{100}))
		})
	})

	It("should drop only intra-AS payments under intra-as", func() {
		c := newClassifier(mapping, set, DropIntraAS)

		Expect(c.classify(payment(n2, n5, n4), rng)).To(Equal(CensoredBy(100)))
		Expect(c.classify(payment(n1, n2, n3), rng)).To(Equal(Delivered()))
	})

	It("should drop only inter-AS payments under inter-as", func() {
		c := newClassifier(mapping, set, DropInterAS)

		Expect(c.classify(payment(n2, n5, n4), rng)).To(Equal(Delivered()))
		Expect(c.classify(payment(n1, n2, n3), rng)).To(Equal(CensoredBy(100)))
	})

	It("should drop by intra-AS channel ratio under intra-prob", func() {
		c := newClassifier(mapping, set, DropIntraProbability)
		Expect(c.ratios[100]).To(Equal([]float64{0.33, 0.5, 1}))

		censored := 0
		for i := 0; i < 1000; i++ {
			r := rand.New(rand.NewPCG(7, uint64(i)))
			if c.classify(payment(n1, n2, n3), r).Kind() == OutcomeFailedCensored {
				censored++
			}
		}

		Expect(censored).To(BeNumerically("~", 610, 110))
	})

	Context("when grading intra-prob decisions", func() {
		var c *classifier

		BeforeEach(func() {
			c = newClassifier(mapping, set, DropIntraProbability)
		})

		It("should count certain drops as true and false positives", func() {
			c.ratios[100] = []float64{1}

			away := payment(n1, n2, n3)
			Expect(c.classify(away, rng)).To(Equal(CensoredBy(100)))
			Expect(away.Detections).To(Equal(
				[]Detection{{ASN: 100, Kind: FalsePositive}}))

			home := payment(n3, n2, n5)
			Expect(c.classify(home, rng)).To(Equal(CensoredBy(100)))
			Expect(home.Detections).To(Equal(
				[]Detection{{ASN: 100, Kind: TruePositive}}))

			t := NewTally()
			t.Observe(away)
			t.Observe(home)
			Expect(t.TruePositive).To(Equal(map[uint32]int{100: 1}))
			Expect(t.FalsePositive).To(Equal(map[uint32]int{100: 1}))
			Expect(t.FalseNegative).To(BeEmpty())
		})

		It("should count passed payments to the AS as false negatives", func() {
			c.ratios[100] = []float64{0}

			home := payment(n3, n2, n5)
			Expect(c.classify(home, rng)).To(Equal(Delivered()))
			Expect(home.Detections).To(Equal(
				[]Detection{{ASN: 100, Kind: FalseNegative}}))

			away := payment(n1, n2, n3)
			Expect(c.classify(away, rng)).To(Equal(Delivered()))
			Expect(away.Detections).To(BeEmpty())

			left, right := NewTally(), NewTally()
			left.Observe(home)
			right.Observe(home)
			left.Merge(right)
			Expect(left.FalseNegative).To(Equal(map[uint32]int{100: 2}))
			Expect(left.TruePositive).To(BeEmpty())
		})

		It("should not grade an AS without ratios", func() {
			c.ratios[100] = nil

			p := payment(n3, n2, n5)
			Expect(c.classify(p, rng)).To(Equal(Delivered()))
			Expect(p.Detections).To(BeEmpty())
		})
	})

	It("should be deterministic for a given random stream", func() {
		c := newClassifier(mapping, set, DropIntraProbability)

		for i := 0; i < 50; i++ {
			a := c.classify(payment(n1, n2, n3), rand.New(rand.NewPCG(3, uint64(i))))
			b := c.classify(payment(n1, n2, n3), rand.New(rand.NewPCG(3, uint64(i))))
			Expect(a).To(Equal(b))
		}
	})
})

var _ = Describe("DropStrategy", func() {
	It("should parse every strategy name", func() {
		for _, d := range []DropStrategy{
			DropAll, DropIntraProbability, DropIntraAS, DropInterAS,
		} {
			parsed, err := ParseDropStrategy(d.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(d))
		}

		_, err := ParseDropStrategy("some")
		Expect(err).To(HaveOccurred())
	})
})
