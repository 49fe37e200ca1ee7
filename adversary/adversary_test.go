package adversary

import (
	"net/netip"

	"github.com/lncensor/lncensor/asn"
	"github.com/lncensor/lncensor/topology"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Select", func() {
	var mapping *asn.Mapping

	BeforeEach(func() {
		resolver, err := asn.OpenPrefixTable("../testdata/asn_prefixes.txt")
		Expect(err).NotTo(HaveOccurred())

		g, err := topology.LoadFile("../testdata/trivial_connected_lnd.json",
			topology.SourceLND)
		Expect(err).NotTo(HaveOccurred())

		mapping = asn.NewMapper(resolver, nil).Map(g)
	})

	It("should rank by node count", func() {
		set, err := Select(mapping, MaxNodes, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(set.ASNs()).To(Equal([]uint32{24940}))
		Expect(set.Members[0].Metric).To(Equal(2))
		Expect(set.Shortfall).To(Equal(0))
	})

	It("should break channel ties by ascending AS number", func() {
		set, err := Select(mapping, MaxChannels, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(set.ASNs()).To(Equal([]uint32{797, 24940}))

		r, ok := set.Rank(24940)
		Expect(ok).To(BeTrue())
		Expect(r).To(Equal(1))
	})

	It("should never select the sentinel AS", func() {
		set, err := Select(mapping, MaxNodes, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(set.ASNs()).To(Equal([]uint32{24940, 797}))
		Expect(set.Contains(asn.Unattributed)).To(BeFalse())
		Expect(set.Shortfall).To(Equal(3))
	})

	It("should return an empty set for zero", func() {
		set, err := Select(mapping, MaxChannels, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(set.Size()).To(Equal(0))
		Expect(set.Contains(24940)).To(BeFalse())
	})

	It("should order member nodes by degree", func() {
		resolver := asn.NewPrefixResolver()
		resolver.Add(netip.MustParsePrefix("10.0.0.0/8"), 7)

		b := topology.NewBuilder()
		for _, id := range []string{"leaf", "hub", "mid", "x", "y"} {
			_, err := b.AddNode(topology.Node{
				ID:        id,
				Addresses: []topology.Address{{Addr: "10.0.0.1:9735"}},
			})
			Expect(err).NotTo(HaveOccurred())
		}

		for _, c := range [][2]string{
			{"hub", "leaf"}, {"hub", "mid"}, {"hub", "x"}, {"mid", "y"},
		} {
			_, err := b.AddChannel(c[0]+c[1], c[0], c[1], 1000, nil, nil)
			Expect(err).NotTo(HaveOccurred())
		}

		m := asn.NewMapper(resolver, nil).Map(b.Build())
		set, err := Select(m, MaxNodes, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(set.Members[0].Nodes).To(Equal(
			[]topology.NodeIndex{1, 2, 0, 3, 4}))
	})

	It("should reject negative requests", func() {
		_, err := Select(mapping, MaxNodes, -1)
		Expect(err).To(HaveOccurred())
	})

	It("should parse strategy codes", func() {
		var s Strategy
		Expect(s.Set("1")).To(Succeed())
		Expect(s).To(Equal(MaxChannels))
		Expect(s.Set("2")).NotTo(Succeed())
	})
})
