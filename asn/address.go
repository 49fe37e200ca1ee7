// Package asn attributes network nodes to the autonomous systems that
// announce their addresses.
package asn

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/lncensor/lncensor/topology"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/pkg/errors"
)

// DefaultPort is assumed when an address omits its port.
const DefaultPort = "9735"

// Kind classifies an announced address.
type Kind int

// Address kinds.
const (
	KindUnknown Kind = iota
	KindIPv4
	KindIPv6
	KindOnion
	KindDNS
)

func (k Kind) String() string {
	switch k {
	case KindIPv4:
		return "ipv4"
	case KindIPv6:
		return "ipv6"
	case KindOnion:
		return "onion"
	case KindDNS:
		return "dns"
	}

	return "unknown"
}

// Classify normalizes an announced address into a multiaddr and reports
// its kind. Onion addresses are recognized even when the multiaddr cannot
// be built, in which case the kind is returned together with the error.
func Classify(addr topology.Address) (ma.Multiaddr, Kind, error) {
	host, port := splitHostPort(addr.Addr)

	if strings.HasSuffix(host, ".onion") || strings.HasPrefix(addr.Network, "tor") {
		label := strings.TrimSuffix(host, ".onion")

		var s string
		switch len(label) {
		case 16:
			s = fmt.Sprintf("/onion/%s:%s", label, port)
		case 56:
			s = fmt.Sprintf("/onion3/%s:%s", label, port)
		default:
			return nil, KindOnion, errors.Errorf("bad onion address %q", addr.Addr)
		}

		m, err := ma.NewMultiaddr(s)
		if err != nil {
			return nil, KindOnion, errors.Wrapf(err, "onion address %q", addr.Addr)
		}

		return m, KindOnion, nil
	}

	var (
		s    string
		kind Kind
	)

	if ip, err := netip.ParseAddr(host); err == nil {
		ip = ip.Unmap().WithZone("")
		if ip.Is4() {
			s, kind = fmt.Sprintf("/ip4/%s/tcp/%s", ip, port), KindIPv4
		} else {
			s, kind = fmt.Sprintf("/ip6/%s/tcp/%s", ip, port), KindIPv6
		}
	} else if host != "" {
		s, kind = fmt.Sprintf("/dns/%s/tcp/%s", host, port), KindDNS
	} else {
		return nil, KindUnknown, errors.Errorf("empty address")
	}

	m, err := ma.NewMultiaddr(s)
	if err != nil {
		return nil, KindUnknown, errors.Wrapf(err, "address %q", addr.Addr)
	}

	return m, kind, nil
}

// IPOf extracts the IP carried by an ip4 or ip6 multiaddr.
func IPOf(m ma.Multiaddr) (netip.Addr, bool) {
	for _, code := range []int{ma.P_IP4, ma.P_IP6} {
		v, err := m.ValueForProtocol(code)
		if err != nil {
			continue
		}

		ip, err := netip.ParseAddr(v)
		if err != nil {
			return netip.Addr{}, false
		}

		return ip, true
	}

	return netip.Addr{}, false
}

func splitHostPort(s string) (string, string) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return strings.Trim(s, "[]"), DefaultPort
	}

	if port == "" {
		port = DefaultPort
	}

	return host, port
}
