package simulation

import (
	"math/rand/v2"
	"strings"

	"github.com/lncensor/lncensor/adversary"
	"github.com/lncensor/lncensor/asn"
	"github.com/pkg/errors"
)

// DropStrategy decides which routed payments an adversarial AS drops.
type DropStrategy int

const (
	// DropAll drops every payment crossing the AS.
	DropAll DropStrategy = iota
	// DropIntraProbability drops with a probability drawn from the intra-AS
	// channel ratios of the AS's nodes.
	DropIntraProbability
	// DropIntraAS drops payments whose sender and receiver are both in the
	// AS.
	DropIntraAS
	// DropInterAS drops payments whose sender or receiver lies outside the
	// AS.
	DropInterAS
)

var dropStrategyNames = []string{"all", "intra-prob", "intra-as", "inter-as"}

// ParseDropStrategy converts a flag value into a DropStrategy.
func ParseDropStrategy(s string) (DropStrategy, error) {
	for i, name := range dropStrategyNames {
		if strings.EqualFold(s, name) {
			return DropStrategy(i), nil
		}
	}

	return 0, errors.Errorf("unknown drop strategy %q, want one of %s",
		s, strings.Join(dropStrategyNames, ", "))
}

func (d DropStrategy) String() string {
	if int(d) < 0 || int(d) >= len(dropStrategyNames) {
		return "unknown"
	}

	return dropStrategyNames[d]
}

// Set implements pflag.Value.
func (d *DropStrategy) Set(v string) error {
	parsed, err := ParseDropStrategy(v)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// Type implements pflag.Value.
func (d *DropStrategy) Type() string {
	return "drop-strategy"
}

// classifier turns a routed payment into an outcome.
type classifier struct {
	mapping     *asn.Mapping
	adversaries *adversary.Set
	strategy    DropStrategy
	ratios      map[uint32][]float64
}

func newClassifier(
	m *asn.Mapping,
	set *adversary.Set,
	strategy DropStrategy,
) *classifier {
	c := &classifier{mapping: m, adversaries: set, strategy: strategy}

	if strategy == DropIntraProbability {
		c.ratios = make(map[uint32][]float64, set.Size())
		for _, a := range set.ASNs() {
			c.ratios[a] = m.IntraRatios(a)
		}
	}

	return c
}

// crossed returns the distinct adversarial ASes of the route's
// intermediate nodes in path order.
func (c *classifier) crossed(p *Payment) []uint32 {
	var out []uint32

	for _, n := range p.Route.Intermediates() {
		a := c.mapping.ASNOf(n)
		if !c.adversaries.Contains(a) {
			continue
		}

		dup := false
		for _, seen := range out {
			if seen == a {
				dup = true
				break
			}
		}

		if !dup {
			out = append(out, a)
		}
	}

	return out
}

// classify decides the outcome of a routed payment. The first adversarial
// AS along the path that decides to drop is blamed.
func (c *classifier) classify(p *Payment, rng *rand.Rand) Outcome {
	p.Crossed = c.crossed(p)
	p.Detections = p.Detections[:0]

	for _, a := range p.Crossed {
		dropped := c.drops(a, p, rng)
		c.grade(a, p, dropped)

		if dropped {
			return CensoredBy(a)
		}
	}

	return Delivered()
}

// grade records how well an intra-prob decision of a guessed the payment's
// destination AS. ASes without ratios make no decision and are not graded.
func (c *classifier) grade(a uint32, p *Payment, dropped bool) {
	if c.strategy != DropIntraProbability || len(c.ratios[a]) == 0 {
		return
	}

	toAS := c.mapping.ASNOf(p.Destination) == a

	switch {
	case dropped && toAS:
		p.Detections = append(p.Detections, Detection{ASN: a, Kind: TruePositive})
	case dropped:
		p.Detections = append(p.Detections, Detection{ASN: a, Kind: FalsePositive})
	case toAS:
		p.Detections = append(p.Detections, Detection{ASN: a, Kind: FalseNegative})
	}
}

func (c *classifier) drops(a uint32, p *Payment, rng *rand.Rand) bool {
	switch c.strategy {
	case DropAll:
		return true
	case DropIntraProbability:
		ratios := c.ratios[a]
		if len(ratios) == 0 {
			return false
		}

		return rng.Float64() < ratios[rng.IntN(len(ratios))]
	case DropIntraAS:
		return c.mapping.ASNOf(p.Source) == a &&
			c.mapping.ASNOf(p.Destination) == a
	case DropInterAS:
		return c.mapping.ASNOf(p.Source) != a ||
			c.mapping.ASNOf(p.Destination) != a
	}

	return false
}
