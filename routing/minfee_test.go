package routing

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lncensor/lncensor/topology"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("MinFeeRouter", func() {
	var (
		g                     *topology.Graph
		router                *MinFeeRouter
		alice, bob, chn, dina topology.NodeIndex
	)

	BeforeEach(func() {
		var err error
		g, err = topology.LoadFile("../testdata/lnbook_example_lnr.json",
			topology.SourceLNResearch)
		Expect(err).NotTo(HaveOccurred())

		alice, _ = g.Lookup("alice")
		bob, _ = g.Lookup("bob")
		chn, _ = g.Lookup("chan")
		dina, _ = g.Lookup("dina")

		router = NewMinFeeRouter(0)
	})

	It("should route over intermediate nodes and charge their fees", func() {
		route, err := router.FindRoute(context.Background(), g, Request{
			Source:      alice,
			Destination: dina,
			Amount:      btcutil.Amount(10_000),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(route.Hops).To(Equal([]topology.NodeIndex{alice, bob, chn, dina}))
		Expect(route.Channels).To(HaveLen(3))
		Expect(route.Intermediates()).To(Equal([]topology.NodeIndex{bob, chn}))
		Expect(route.FeeMsat).To(Equal(topology.MilliSatoshi(4000)))
	})

	It("should not charge the source", func() {
		route, err := router.FindRoute(context.Background(), g, Request{
			Source:      alice,
			Destination: bob,
			Amount:      btcutil.Amount(10_000),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(route.Intermediates()).To(BeEmpty())
		Expect(route.FeeMsat).To(BeZero())
	})

	It("should skip channels disabled by the forwarding side", func() {
		_, err := router.FindRoute(context.Background(), g, Request{
			Source:      dina,
			Destination: alice,
			Amount:      btcutil.Amount(10_000),
		})

		Expect(errors.Is(err, ErrNoRoute)).To(BeTrue())
	})

	It("should skip channels without enough capacity", func() {
		_, err := router.FindRoute(context.Background(), g, Request{
			Source:      alice,
			Destination: chn,
			Amount:      btcutil.Amount(300_000),
		})

		Expect(errors.Is(err, ErrNoRoute)).To(BeTrue())
	})

	It("should respect the maximum HTLC of intermediate hops", func() {
		_, err := router.FindRoute(context.Background(), g, Request{
			Source:      alice,
			Destination: chn,
			Amount:      btcutil.Amount(199_000),
		})

		Expect(errors.Is(err, ErrNoRoute)).To(BeTrue())
	})

	It("should bound the number of hops", func() {
		_, err := NewMinFeeRouter(2).FindRoute(context.Background(), g,
			Request{Source: alice, Destination: dina, Amount: 10_000})

		Expect(errors.Is(err, ErrNoRoute)).To(BeTrue())
	})

	It("should give up once the context is done", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := router.FindRoute(ctx, g,
			Request{Source: alice, Destination: dina, Amount: 10_000})

		Expect(errors.Is(err, ErrNoRoute)).To(BeTrue())
	})

	It("should prefer the cheaper of two routes", func() {
		b := topology.NewBuilder()
		for _, id := range []string{"s", "cheap", "pricey", "t"} {
			_, err := b.AddNode(topology.Node{ID: id})
			Expect(err).NotTo(HaveOccurred())
		}

		cheap := &topology.Policy{FeeBaseMsat: 10}
		pricey := &topology.Policy{FeeBaseMsat: 5000}

		mustAdd := func(id, n1, n2 string, p1, p2 *topology.Policy) {
			_, err := b.AddChannel(id, n1, n2, 1_000_000, p1, p2)
			Expect(err).NotTo(HaveOccurred())
		}
		mustAdd("s-pricey", "s", "pricey", cheap, cheap)
		mustAdd("pricey-t", "pricey", "t", pricey, pricey)
		mustAdd("s-cheap", "s", "cheap", cheap, cheap)
		mustAdd("cheap-t", "cheap", "t", cheap, cheap)

		g := b.Build()
		route, err := router.FindRoute(context.Background(), g,
			Request{Source: 0, Destination: 3, Amount: 1000})

		Expect(err).NotTo(HaveOccurred())
		Expect(route.Hops).To(Equal([]topology.NodeIndex{0, 1, 3}))
		Expect(route.FeeMsat).To(Equal(topology.MilliSatoshi(10)))
	})

	It("should keep a pricier short prefix when the cheap one runs out of hops", func() {
		b := topology.NewBuilder()
		for _, id := range []string{"s", "a", "b", "c", "x", "d"} {
			_, err := b.AddNode(topology.Node{ID: id})
			Expect(err).NotTo(HaveOccurred())
		}

		free := &topology.Policy{}
		pricey := &topology.Policy{FeeBaseMsat: 5000}

		mustAdd := func(id, n1, n2 string, p1, p2 *topology.Policy) {
			_, err := b.AddChannel(id, n1, n2, 1_000_000, p1, p2)
			Expect(err).NotTo(HaveOccurred())
		}
		mustAdd("s-a", "s", "a", free, free)
		mustAdd("a-b", "a", "b", free, free)
		mustAdd("b-c", "b", "c", free, free)
		mustAdd("s-x", "s", "x", free, free)
		mustAdd("x-c", "x", "c", pricey, pricey)
		mustAdd("c-d", "c", "d", free, free)

		g := b.Build()
		lookup := func(id string) topology.NodeIndex {
			n, ok := g.Lookup(id)
			Expect(ok).To(BeTrue())
			return n
		}

		route, err := NewMinFeeRouter(3).FindRoute(context.Background(), g,
			Request{Source: lookup("s"), Destination: lookup("d"), Amount: 1000})

		Expect(err).NotTo(HaveOccurred())
		Expect(route.Hops).To(Equal([]topology.NodeIndex{
			lookup("s"), lookup("x"), lookup("c"), lookup("d"),
		}))
		Expect(route.FeeMsat).To(Equal(topology.MilliSatoshi(5000)))

		route, err = NewMinFeeRouter(3).FindRoute(context.Background(), g,
			Request{Source: lookup("s"), Destination: lookup("c"), Amount: 1000})

		Expect(err).NotTo(HaveOccurred())
		Expect(route.FeeMsat).To(BeZero())
		Expect(route.Hops).To(HaveLen(4))
	})
})
