package topology

import (
	"io"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

type lnrGraph struct {
	Nodes     []lnrNode       `json:"nodes"`
	Adjacency [][]lnrHalfEdge `json:"adjacency"`
}

type lnrNode struct {
	ID        string `json:"id"`
	Alias     string `json:"alias"`
	Addresses string `json:"addresses"`
}

type lnrHalfEdge struct {
	SCID                      flexString `json:"scid"`
	Source                    string     `json:"source"`
	Destination               string     `json:"destination"`
	Satoshis                  *flexUint  `json:"satoshis"`
	FeeBaseMsat               flexUint   `json:"fee_base_msat"`
	FeeProportionalMillionths flexUint   `json:"fee_proportional_millionths"`
	HTLCMinimumMsat           flexUint   `json:"htlc_minimim_msat"`
	HTLCMaximumMsat           flexUint   `json:"htlc_maximum_msat"`
	CLTVExpiryDelta           flexUint   `json:"cltv_expiry_delta"`
	Active                    *bool      `json:"active"`
}

func (h *lnrHalfEdge) policy() *Policy {
	return &Policy{
		FeeBaseMsat:   MilliSatoshi(h.FeeBaseMsat),
		FeeRatePPM:    uint64(h.FeeProportionalMillionths),
		MinHTLCMsat:   MilliSatoshi(h.HTLCMinimumMsat),
		MaxHTLCMsat:   MilliSatoshi(h.HTLCMaximumMsat),
		TimeLockDelta: uint32(h.CLTVExpiryDelta),
		Disabled:      h.Active != nil && !*h.Active,
	}
}

// lnrChannel collects the two directions of one channel.
type lnrChannel struct {
	id       string
	node1    string
	node2    string
	capacity btcutil.Amount
	policy1  *Policy
	policy2  *Policy
}

// parseURIAddresses splits "ipv4://1.2.3.4:9735,torv3://x.onion:9735".
func parseURIAddresses(s string) []Address {
	var out []Address

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		network, addr, found := strings.Cut(part, "://")
		if !found {
			network, addr = "tcp", part
		}

		out = append(out, Address{Network: network, Addr: addr})
	}

	return out
}

func loadLNResearch(r io.Reader) (*Graph, error) {
	var doc lnrGraph
	if err := decodeJSON(r, &doc); err != nil {
		return nil, err
	}

	if doc.Nodes == nil {
		return nil, malformed("document", "missing nodes")
	}

	b := NewBuilder()

	for _, n := range doc.Nodes {
		node := Node{
			ID:        n.ID,
			Alias:     n.Alias,
			Addresses: parseURIAddresses(n.Addresses),
		}

		if _, err := b.AddNode(node); err != nil {
			return nil, err
		}
	}

	channels, err := mergeHalfEdges(doc.Adjacency)
	if err != nil {
		return nil, err
	}

	for _, c := range channels {
		_, err := b.AddChannel(c.id, c.node1, c.node2, c.capacity,
			c.policy1, c.policy2)
		if err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

// mergeHalfEdges pairs both directions of every channel. Channels keep the
// order in which their first direction appears.
func mergeHalfEdges(adjacency [][]lnrHalfEdge) ([]*lnrChannel, error) {
	var order []*lnrChannel
	byID := make(map[string]*lnrChannel)

	for _, list := range adjacency {
		for i := range list {
			h := &list[i]
			id := string(h.SCID)
			record := "channel " + id

			if id == "" {
				return nil, malformed("channel", "empty identifier")
			}

			if h.Satoshis == nil {
				return nil, malformed(record, "missing capacity")
			}

			c, seen := byID[id]
			if !seen {
				c = &lnrChannel{
					id:       id,
					node1:    h.Source,
					node2:    h.Destination,
					capacity: btcutil.Amount(*h.Satoshis),
					policy1:  h.policy(),
				}
				byID[id] = c
				order = append(order, c)

				continue
			}

			if h.Source != c.node2 || h.Destination != c.node1 {
				return nil, malformed(record,
					"duplicate identifier for %s->%s", h.Source, h.Destination)
			}

			if c.policy2 != nil {
				return nil, malformed(record, "duplicate direction")
			}

			c.policy2 = h.policy()
		}
	}

	return order, nil
}
