// Package adversary selects the autonomous systems assumed to censor
// payments.
package adversary

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lncensor/lncensor/asn"
	"github.com/lncensor/lncensor/topology"
	"github.com/pkg/errors"
)

// Strategy ranks ASes for selection.
type Strategy int

const (
	// MaxNodes ranks ASes by the number of nodes attributed to them.
	MaxNodes Strategy = iota
	// MaxChannels ranks ASes by the number of channels touching them.
	MaxChannels
)

// ParseStrategy accepts the numeric codes 0 and 1 as well as the names
// "nodes" and "channels".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "0", "nodes", "max-nodes":
		return MaxNodes, nil
	case "1", "channels", "max-channels":
		return MaxChannels, nil
	}

	return 0, errors.Errorf("unknown AS selection strategy %q, want 0 or 1", s)
}

func (s Strategy) String() string {
	switch s {
	case MaxNodes:
		return "max-nodes"
	case MaxChannels:
		return "max-channels"
	}

	return "strategy(" + strconv.Itoa(int(s)) + ")"
}

// Set implements pflag.Value.
func (s *Strategy) Set(v string) error {
	parsed, err := ParseStrategy(v)
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// Type implements pflag.Value.
func (s *Strategy) Type() string {
	return "strategy"
}

// Member is a selected AS.
type Member struct {
	ASN    uint32
	Metric int

	// Nodes are the member nodes, highest channel degree first.
	Nodes []topology.NodeIndex
}

// Set is an ordered selection of adversarial ASes. The first member ranks
// highest. A Set is read-only once selected.
type Set struct {
	Strategy  Strategy
	Requested int
	Members   []Member

	// Shortfall is how many fewer ASes were selected than requested.
	Shortfall int

	rank map[uint32]int
}

// Empty returns a set with no adversaries.
func Empty() *Set {
	return &Set{rank: map[uint32]int{}}
}

// Size returns the number of selected ASes.
func (s *Set) Size() int {
	return len(s.Members)
}

// ASNs returns the selected AS numbers in rank order.
func (s *Set) ASNs() []uint32 {
	out := make([]uint32, len(s.Members))
	for i, m := range s.Members {
		out[i] = m.ASN
	}

	return out
}

// Contains tells whether asn is adversarial.
func (s *Set) Contains(asn uint32) bool {
	_, ok := s.rank[asn]
	return ok
}

// Rank returns the zero-based position of asn in the selection.
func (s *Set) Rank(asn uint32) (int, bool) {
	r, ok := s.rank[asn]
	return r, ok
}

// Select returns the n highest-ranked ASes of m under strategy. Ties on the
// metric go to the lower AS number. The sentinel AS for unattributed nodes
// is never selected.
func Select(m *asn.Mapping, strategy Strategy, n int) (*Set, error) {
	if n < 0 {
		return nil, errors.Errorf("cannot select %d adversaries", n)
	}

	var metric func(*asn.System) int
	switch strategy {
	case MaxNodes:
		metric = (*asn.System).NodeCount
	case MaxChannels:
		metric = (*asn.System).Channels
	default:
		return nil, errors.Errorf("unknown strategy %v", strategy)
	}

	candidates := make([]Member, 0, len(m.Systems()))
	for _, s := range m.Systems() {
		if s.ASN == asn.Unattributed {
			continue
		}

		candidates = append(candidates, Member{ASN: s.ASN, Metric: metric(s)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Metric != candidates[j].Metric {
			return candidates[i].Metric > candidates[j].Metric
		}

		return candidates[i].ASN < candidates[j].ASN
	})

	selected := candidates[:min(n, len(candidates))]

	set := &Set{
		Strategy:  strategy,
		Requested: n,
		Members:   make([]Member, len(selected)),
		Shortfall: n - len(selected),
		rank:      make(map[uint32]int, len(selected)),
	}

	g := m.Graph()
	for i, c := range selected {
		s, _ := m.System(c.ASN)
		c.Nodes = rankNodes(g, s.Members)
		set.Members[i] = c
		set.rank[c.ASN] = i
	}

	return set, nil
}

func rankNodes(g *topology.Graph, members []topology.NodeIndex) []topology.NodeIndex {
	nodes := append([]topology.NodeIndex(nil), members...)
	sort.SliceStable(nodes, func(i, j int) bool {
		di, dj := g.Degree(nodes[i]), g.Degree(nodes[j])
		if di != dj {
			return di > dj
		}

		return nodes[i] < nodes[j]
	})

	return nodes
}
