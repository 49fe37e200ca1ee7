package asn

import (
	"net/netip"

	"github.com/lncensor/lncensor/topology"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Mapper", func() {
	var (
		mockCtrl *gomock.Controller
		resolver *MockResolver
		mapper   *Mapper
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		resolver = NewMockResolver(mockCtrl)
		mapper = NewMapper(resolver, nil)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should skip onion addresses", func() {
		resolver.EXPECT().
			Lookup(netip.MustParseAddr("1.2.3.4")).
			Return(uint32(100), true)

		asn := mapper.ResolveNode(&topology.Node{
			ID: "n",
			Addresses: []topology.Address{
				{Network: "tcp", Addr: onion3 + ".onion:9735"},
				{Network: "tcp", Addr: "1.2.3.4:9735"},
			},
		})
		Expect(asn).To(Equal(uint32(100)))
	})

	It("should fall through to the next clearnet address", func() {
		resolver.EXPECT().
			Lookup(netip.MustParseAddr("192.0.2.1")).
			Return(uint32(0), false)
		resolver.EXPECT().
			Lookup(netip.MustParseAddr("1.2.3.4")).
			Return(uint32(200), true)

		asn := mapper.ResolveNode(&topology.Node{
			ID: "n",
			Addresses: []topology.Address{
				{Addr: "192.0.2.1:9735"},
				{Addr: "1.2.3.4:9735"},
			},
		})
		Expect(asn).To(Equal(uint32(200)))
	})

	It("should attribute onion-only nodes to the sentinel AS", func() {
		asn := mapper.ResolveNode(&topology.Node{
			ID:        "n",
			Addresses: []topology.Address{{Addr: onion3 + ".onion:9735"}},
		})
		Expect(asn).To(Equal(Unattributed))
	})
})

var _ = Describe("Mapping", func() {
	var (
		g  *topology.Graph
		mp *Mapping
	)

	BeforeEach(func() {
		resolver, err := OpenPrefixTable("../testdata/asn_prefixes.txt")
		Expect(err).NotTo(HaveOccurred())

		g, err = topology.LoadFile("../testdata/trivial_connected_lnd.json",
			topology.SourceLND)
		Expect(err).NotTo(HaveOccurred())

		mp = NewMapper(resolver, nil).Map(g)
	})

	It("should attribute every node to exactly one AS", func() {
		total := 0
		for _, s := range mp.Systems() {
			total += s.NodeCount()
		}

		Expect(total).To(Equal(g.NumNodes()))
	})

	It("should list systems in order of first appearance", func() {
		var asns []uint32
		for _, s := range mp.Systems() {
			asns = append(asns, s.ASN)
		}

		Expect(asns).To(Equal([]uint32{24940, 797, Unattributed}))
	})

	It("should resolve nodes through their IPv6 address", func() {
		n, _ := g.Lookup("034")
		Expect(mp.ASNOf(n)).To(Equal(uint32(24940)))
	})

	It("should count intra and inter channels", func() {
		s, ok := mp.System(24940)
		Expect(ok).To(BeTrue())
		Expect(s.Intra).To(Equal(1))
		Expect(s.Inter).To(Equal(2))

		s, _ = mp.System(797)
		Expect(s.Intra).To(Equal(0))
		Expect(s.Inter).To(Equal(3))

		s, _ = mp.System(Unattributed)
		Expect(s.Channels()).To(Equal(1))
	})

	It("should compute intra ratios per member", func() {
		Expect(mp.IntraRatios(24940)).To(Equal([]float64{0.5, 0.5}))
		Expect(mp.IntraRatios(797)).To(Equal([]float64{0}))
		Expect(mp.IntraRatios(42)).To(BeNil())
	})

	It("should truncate ratios to two decimals", func() {
		resolver := NewPrefixResolver()
		resolver.Add(netip.MustParsePrefix("10.0.0.0/8"), 1)
		resolver.Add(netip.MustParsePrefix("11.0.0.0/8"), 2)

		b := topology.NewBuilder()
		for _, n := range []struct{ id, addr string }{
			{"hub", "10.0.0.1:9735"},
			{"x", "10.0.0.2:9735"},
			{"y", "11.0.0.1:9735"},
			{"z", "11.0.0.2:9735"},
		} {
			_, err := b.AddNode(topology.Node{
				ID:        n.id,
				Addresses: []topology.Address{{Addr: n.addr}},
			})
			Expect(err).NotTo(HaveOccurred())
		}

		for _, peer := range []string{"x", "y", "z"} {
			_, err := b.AddChannel("hub-"+peer, "hub", peer, 1000, nil, nil)
			Expect(err).NotTo(HaveOccurred())
		}

		m := NewMapper(resolver, nil).Map(b.Build())
		Expect(m.IntraRatios(1)).To(Equal([]float64{0.33, 1}))
	})
})
