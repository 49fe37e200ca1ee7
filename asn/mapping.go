package asn

import (
	"math"

	"github.com/lncensor/lncensor/topology"
	"go.uber.org/zap"
)

// Unattributed is the AS number given to nodes whose addresses could not
// be attributed, including nodes that announce only onion addresses.
const Unattributed uint32 = 0

// System aggregates the nodes and channels attributed to one AS.
type System struct {
	ASN     uint32
	Members []topology.NodeIndex

	// Intra counts channels with both endpoints in the AS, Inter channels
	// with exactly one.
	Intra int
	Inter int
}

// NodeCount returns the number of member nodes.
func (s *System) NodeCount() int {
	return len(s.Members)
}

// Channels returns the number of channels touching the AS.
func (s *System) Channels() int {
	return s.Intra + s.Inter
}

// Mapping attributes every node of a graph to exactly one AS.
type Mapping struct {
	graph          *topology.Graph
	asnOf          []uint32
	systems        []*System
	index          map[uint32]int
	withoutAddress int
}

// Mapper builds Mappings from a Resolver.
type Mapper struct {
	resolver Resolver
	logger   *zap.Logger
}

// NewMapper creates a Mapper. A nil logger disables logging.
func NewMapper(resolver Resolver, logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Mapper{resolver: resolver, logger: logger}
}

// ResolveNode returns the AS of the first announced clearnet address that
// the resolver knows. Onion addresses are skipped.
func (m *Mapper) ResolveNode(n *topology.Node) uint32 {
	for _, addr := range n.Addresses {
		maddr, kind, err := Classify(addr)

		switch kind {
		case KindOnion:
			continue
		case KindIPv4, KindIPv6:
			ip, ok := IPOf(maddr)
			if !ok {
				continue
			}

			if asn, found := m.resolver.Lookup(ip); found {
				return asn
			}

			m.logger.Warn("no AS announces address",
				zap.String("node", n.ID), zap.Stringer("addr", maddr))
		default:
			m.logger.Warn("address not resolvable",
				zap.String("node", n.ID), zap.String("addr", addr.Addr),
				zap.Stringer("kind", kind), zap.Error(err))
		}
	}

	return Unattributed
}

// Map attributes every node of g.
func (m *Mapper) Map(g *topology.Graph) *Mapping {
	mp := &Mapping{
		graph: g,
		asnOf: make([]uint32, g.NumNodes()),
		index: make(map[uint32]int),
	}

	for i := 0; i < g.NumNodes(); i++ {
		n := topology.NodeIndex(i)
		node := g.Node(n)

		if len(node.Addresses) == 0 {
			mp.withoutAddress++
		}

		asn := m.ResolveNode(node)
		mp.asnOf[i] = asn
		mp.system(asn).Members = append(mp.system(asn).Members, n)
	}

	for c := 0; c < g.NumChannels(); c++ {
		ch := g.Channel(topology.ChannelIndex(c))
		a1, a2 := mp.asnOf[ch.Node1], mp.asnOf[ch.Node2]

		if a1 == a2 {
			mp.system(a1).Intra++
			continue
		}

		mp.system(a1).Inter++
		mp.system(a2).Inter++
	}

	m.logger.Info("attributed nodes to autonomous systems",
		zap.Int("nodes", g.NumNodes()),
		zap.Int("systems", len(mp.systems)),
		zap.Int("without_address", mp.withoutAddress),
		zap.Int("unattributed", mp.NodeCount(Unattributed)))

	return mp
}

func (mp *Mapping) system(asn uint32) *System {
	if i, ok := mp.index[asn]; ok {
		return mp.systems[i]
	}

	mp.index[asn] = len(mp.systems)
	s := &System{ASN: asn}
	mp.systems = append(mp.systems, s)

	return s
}

// Graph returns the graph the mapping was built from.
func (mp *Mapping) Graph() *topology.Graph {
	return mp.graph
}

// ASNOf returns the AS of node n.
func (mp *Mapping) ASNOf(n topology.NodeIndex) uint32 {
	return mp.asnOf[n]
}

// Systems returns every AS in order of first appearance among the nodes.
func (mp *Mapping) Systems() []*System {
	return mp.systems
}

// System returns the aggregate of one AS.
func (mp *Mapping) System(asn uint32) (*System, bool) {
	i, ok := mp.index[asn]
	if !ok {
		return nil, false
	}

	return mp.systems[i], true
}

// NodeCount returns the number of nodes attributed to asn.
func (mp *Mapping) NodeCount(asn uint32) int {
	s, ok := mp.System(asn)
	if !ok {
		return 0
	}

	return s.NodeCount()
}

// NodesWithoutAddress returns the number of nodes announcing no address.
func (mp *Mapping) NodesWithoutAddress() int {
	return mp.withoutAddress
}

// IntraRatios returns, for each member of asn with at least one channel,
// the share of its channels whose peer is in the same AS. Ratios are
// truncated to two decimals.
func (mp *Mapping) IntraRatios(asn uint32) []float64 {
	s, ok := mp.System(asn)
	if !ok {
		return nil
	}

	ratios := make([]float64, 0, len(s.Members))
	for _, n := range s.Members {
		channels := mp.graph.ChannelsOf(n)
		if len(channels) == 0 {
			continue
		}

		same := 0
		for _, c := range channels {
			if mp.asnOf[mp.graph.Peer(c, n)] == asn {
				same++
			}
		}

		ratio := float64(same) / float64(len(channels))
		ratios = append(ratios, math.Trunc(ratio*100+1e-9)/100)
	}

	return ratios
}
