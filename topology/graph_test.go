package topology

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("Builder", func() {
	var b *Builder

	BeforeEach(func() {
		b = NewBuilder()
		for _, id := range []string{"a", "b", "c"} {
			_, err := b.AddNode(Node{ID: id})
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("should index channels by both endpoints", func() {
		p := &Policy{FeeBaseMsat: 1000}
		c, err := b.AddChannel("ab", "a", "b", 100, p, nil)
		Expect(err).NotTo(HaveOccurred())

		g := b.Build()
		Expect(g.NumNodes()).To(Equal(3))
		Expect(g.NumChannels()).To(Equal(1))
		Expect(g.ChannelsOf(0)).To(ConsistOf(c))
		Expect(g.ChannelsOf(1)).To(ConsistOf(c))
		Expect(g.Degree(2)).To(Equal(0))
		Expect(g.Peer(c, 0)).To(Equal(NodeIndex(1)))
		Expect(g.Peer(c, 1)).To(Equal(NodeIndex(0)))
		Expect(g.PolicyFrom(c, 0)).To(BeIdenticalTo(p))
		Expect(g.PolicyFrom(c, 1)).To(BeNil())
		Expect(g.NodesWithChannels()).To(Equal([]NodeIndex{0, 1}))
	})

	It("should reject duplicate node identifiers", func() {
		_, err := b.AddNode(Node{ID: "a"})
		Expect(errors.Is(err, ErrMalformedTopology)).To(BeTrue())
	})

	It("should reject self-loops", func() {
		_, err := b.AddChannel("aa", "a", "a", 100, nil, nil)
		Expect(errors.Is(err, ErrMalformedTopology)).To(BeTrue())
	})

	It("should reject unknown endpoints", func() {
		_, err := b.AddChannel("ax", "a", "x", 100, nil, nil)

		var mErr *MalformedTopologyError
		Expect(errors.As(err, &mErr)).To(BeTrue())
		Expect(mErr.Record).To(Equal("channel ax"))
		Expect(mErr.Reason).To(ContainSubstring("unknown endpoint x"))
	})

	It("should reject duplicate channel identifiers", func() {
		_, err := b.AddChannel("1", "a", "b", 100, nil, nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = b.AddChannel("1", "b", "c", 100, nil, nil)
		Expect(errors.Is(err, ErrMalformedTopology)).To(BeTrue())
	})
})

var _ = Describe("Policy", func() {
	It("should charge base plus proportional fee", func() {
		p := &Policy{FeeBaseMsat: 1000, FeeRatePPM: 100}
		Expect(p.Fee(SatToMsat(btcutil.Amount(100_000)))).
			To(Equal(MilliSatoshi(1000 + 10_000)))
	})

	It("should honor HTLC limits", func() {
		p := &Policy{MinHTLCMsat: 1000, MaxHTLCMsat: 5000}
		Expect(p.Allows(999)).To(BeFalse())
		Expect(p.Allows(1000)).To(BeTrue())
		Expect(p.Allows(5001)).To(BeFalse())

		p.Disabled = true
		Expect(p.Allows(2000)).To(BeFalse())
	})
})

var _ = Describe("Load", func() {
	It("should load an lnd dump", func() {
		g, err := LoadFile("../testdata/trivial_connected_lnd.json", SourceLND)
		Expect(err).NotTo(HaveOccurred())

		Expect(g.NumNodes()).To(Equal(4))
		Expect(g.NumChannels()).To(Equal(4))

		i, ok := g.Lookup("036")
		Expect(ok).To(BeTrue())
		Expect(g.Degree(i)).To(Equal(3))
		Expect(g.Node(i).Addresses).To(Equal(
			[]Address{{Network: "tcp", Addr: "12.1.2.3:9735"}}))

		c := g.Channel(3)
		Expect(c.ID).To(Equal("103"))
		Expect(c.Capacity).To(Equal(btcutil.Amount(500_000)))
		Expect(c.Policy1.MaxHTLCMsat).To(Equal(MilliSatoshi(495_000_000)))
		Expect(c.Policy2).To(BeNil())
	})

	It("should merge both directions of an lnr dump", func() {
		g, err := LoadFile("../testdata/lnbook_example_lnr.json",
			SourceLNResearch)
		Expect(err).NotTo(HaveOccurred())

		Expect(g.NumNodes()).To(Equal(4))
		Expect(g.NumChannels()).To(Equal(3))

		bob, _ := g.Lookup("bob")
		Expect(g.Node(bob).Addresses).To(HaveLen(2))
		Expect(g.Node(bob).Addresses[1].Network).To(Equal("torv3"))

		c := g.Channel(2)
		Expect(c.ID).To(Equal("3x3x3/0"))
		Expect(c.Policy1.Disabled).To(BeFalse())
		Expect(c.Policy2.Disabled).To(BeTrue())
	})

	It("should reject a half edge repeated in the same direction", func() {
		doc := `{"nodes":[{"id":"a"},{"id":"b"}],"adjacency":[
			[{"scid":"1","source":"a","destination":"b","satoshis":1}],
			[{"scid":"1","source":"a","destination":"b","satoshis":1}]]}`

		_, err := Load(strings.NewReader(doc), SourceLNResearch)
		Expect(errors.Is(err, ErrMalformedTopology)).To(BeTrue())
	})

	It("should reject a channel without capacity", func() {
		doc := `{"nodes":[{"pub_key":"a"},{"pub_key":"b"}],
			"edges":[{"channel_id":"1","node1_pub":"a","node2_pub":"b"}]}`

		_, err := Load(strings.NewReader(doc), SourceLND)
		Expect(errors.Is(err, ErrMalformedTopology)).To(BeTrue())
	})

	It("should reject documents that are not JSON objects", func() {
		_, err := Load(strings.NewReader("[1, 2"), SourceLND)
		Expect(errors.Is(err, ErrMalformedTopology)).To(BeTrue())
	})

	It("should reject a document without nodes", func() {
		_, err := Load(strings.NewReader(`{"edges": []}`), SourceLND)
		Expect(errors.Is(err, ErrMalformedTopology)).To(BeTrue())
	})

	It("should parse source names", func() {
		var s Source
		Expect(s.Set("LNR")).To(Succeed())
		Expect(s).To(Equal(SourceLNResearch))
		Expect(s.Set("bogus")).NotTo(Succeed())
	})
})
