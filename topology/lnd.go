package topology

import (
	"io"

	"github.com/btcsuite/btcd/btcutil"
)

type lndGraph struct {
	Nodes []lndNode `json:"nodes"`
	Edges []lndEdge `json:"edges"`
}

type lndNode struct {
	PubKey    string       `json:"pub_key"`
	Alias     string       `json:"alias"`
	Addresses []lndAddress `json:"addresses"`
}

type lndAddress struct {
	Network string `json:"network"`
	Addr    string `json:"addr"`
}

type lndEdge struct {
	ChannelID   flexString `json:"channel_id"`
	Node1Pub    string     `json:"node1_pub"`
	Node2Pub    string     `json:"node2_pub"`
	Capacity    *flexUint  `json:"capacity"`
	Node1Policy *lndPolicy `json:"node1_policy"`
	Node2Policy *lndPolicy `json:"node2_policy"`
}

type lndPolicy struct {
	TimeLockDelta    flexUint `json:"time_lock_delta"`
	MinHTLC          flexUint `json:"min_htlc"`
	FeeBaseMsat      flexUint `json:"fee_base_msat"`
	FeeRateMilliMsat flexUint `json:"fee_rate_milli_msat"`
	Disabled         bool     `json:"disabled"`
	MaxHTLCMsat      flexUint `json:"max_htlc_msat"`
}

func (p *lndPolicy) toPolicy() *Policy {
	if p == nil {
		return nil
	}

	return &Policy{
		FeeBaseMsat:   MilliSatoshi(p.FeeBaseMsat),
		FeeRatePPM:    uint64(p.FeeRateMilliMsat),
		MinHTLCMsat:   MilliSatoshi(p.MinHTLC),
		MaxHTLCMsat:   MilliSatoshi(p.MaxHTLCMsat),
		TimeLockDelta: uint32(p.TimeLockDelta),
		Disabled:      p.Disabled,
	}
}

func loadLND(r io.Reader) (*Graph, error) {
	var doc lndGraph
	if err := decodeJSON(r, &doc); err != nil {
		return nil, err
	}

	if doc.Nodes == nil {
		return nil, malformed("document", "missing nodes")
	}

	if doc.Edges == nil {
		return nil, malformed("document", "missing edges")
	}

	b := NewBuilder()

	for _, n := range doc.Nodes {
		node := Node{ID: n.PubKey, Alias: n.Alias}
		for _, a := range n.Addresses {
			node.Addresses = append(node.Addresses, Address(a))
		}

		if _, err := b.AddNode(node); err != nil {
			return nil, err
		}
	}

	for _, e := range doc.Edges {
		id := string(e.ChannelID)
		if e.Capacity == nil {
			return nil, malformed("channel "+id, "missing capacity")
		}

		_, err := b.AddChannel(id, e.Node1Pub, e.Node2Pub,
			btcutil.Amount(*e.Capacity),
			e.Node1Policy.toPolicy(), e.Node2Policy.toPolicy())
		if err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}
