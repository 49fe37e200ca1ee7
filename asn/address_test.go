package asn

import (
	"net/netip"

	"github.com/lncensor/lncensor/topology"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const onion3 = "archiveiya74codqgiixo33q62qlrqtkgmcitqx5u2oeqnmn5bpcbiyd"

var _ = Describe("Classify", func() {
	DescribeTable("address kinds",
		func(addr topology.Address, kind Kind, text string) {
			m, k, err := Classify(addr)
			Expect(err).NotTo(HaveOccurred())
			Expect(k).To(Equal(kind))
			Expect(m.String()).To(Equal(text))
		},
		Entry("ipv4", topology.Address{Network: "tcp", Addr: "5.9.10.11:9735"},
			KindIPv4, "/ip4/5.9.10.11/tcp/9735"),
		Entry("ipv4 without port", topology.Address{Network: "ipv4", Addr: "5.9.10.11"},
			KindIPv4, "/ip4/5.9.10.11/tcp/9735"),
		Entry("ipv6", topology.Address{Network: "tcp", Addr: "[2a01:4f8::2]:9736"},
			KindIPv6, "/ip6/2a01:4f8::2/tcp/9736"),
		Entry("onion v3", topology.Address{Network: "tcp", Addr: onion3 + ".onion:9735"},
			KindOnion, "/onion3/"+onion3+":9735"),
		Entry("dns", topology.Address{Network: "dns", Addr: "node.example.com:9735"},
			KindDNS, "/dns/node.example.com/tcp/9735"),
	)

	It("should recognize malformed onion addresses as onion", func() {
		_, k, err := Classify(topology.Address{Addr: "short.onion:9735"})
		Expect(err).To(HaveOccurred())
		Expect(k).To(Equal(KindOnion))
	})

	It("should extract the IP of a multiaddr", func() {
		m, _, err := Classify(topology.Address{Addr: "[2a01:4f8::2]:9735"})
		Expect(err).NotTo(HaveOccurred())

		ip, ok := IPOf(m)
		Expect(ok).To(BeTrue())
		Expect(ip).To(Equal(netip.MustParseAddr("2a01:4f8::2")))
	})
})
