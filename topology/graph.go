// Package topology holds the channel graph of a payment-channel network.
//
// Nodes and channels are stored in flat slices and referred to by index.
// Adjacency lists hold channel indices, so the graph has no pointer cycles
// and can be shared read-only between goroutines.
package topology

import (
	"github.com/btcsuite/btcd/btcutil"
)

// NodeIndex identifies a node inside a Graph.
type NodeIndex int

// ChannelIndex identifies a channel inside a Graph.
type ChannelIndex int

// MilliSatoshi is the unit used by routing fees and HTLC limits.
type MilliSatoshi uint64

// SatToMsat converts a satoshi amount to millisatoshi.
func SatToMsat(amt btcutil.Amount) MilliSatoshi {
	return MilliSatoshi(amt) * 1000
}

// Address is a network address a node announces.
type Address struct {
	Network string
	Addr    string
}

// Node is a participant of the network.
type Node struct {
	ID        string
	Alias     string
	Addresses []Address
}

// Policy is the forwarding policy one endpoint sets for its side of a
// channel.
type Policy struct {
	FeeBaseMsat   MilliSatoshi
	FeeRatePPM    uint64
	MinHTLCMsat   MilliSatoshi
	MaxHTLCMsat   MilliSatoshi
	TimeLockDelta uint32
	Disabled      bool
}

// Fee returns the fee charged for forwarding amt over the channel.
func (p *Policy) Fee(amt MilliSatoshi) MilliSatoshi {
	return p.FeeBaseMsat + amt*MilliSatoshi(p.FeeRatePPM)/1_000_000
}

// Allows tells whether an HTLC of amt can be forwarded under the policy.
func (p *Policy) Allows(amt MilliSatoshi) bool {
	if p.Disabled {
		return false
	}

	if amt < p.MinHTLCMsat {
		return false
	}

	if p.MaxHTLCMsat > 0 && amt > p.MaxHTLCMsat {
		return false
	}

	return true
}

// Channel is a bidirectional payment channel between two distinct nodes.
// Policy1 is set by Node1 and governs forwarding from Node1 to Node2,
// Policy2 the reverse. Either policy may be nil if it was never announced.
type Channel struct {
	ID       string
	Node1    NodeIndex
	Node2    NodeIndex
	Capacity btcutil.Amount
	Policy1  *Policy
	Policy2  *Policy
}

// Graph is an immutable channel graph.
type Graph struct {
	nodes     []Node
	channels  []Channel
	byID      map[string]NodeIndex
	adjacency [][]ChannelIndex
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumChannels returns the number of channels.
func (g *Graph) NumChannels() int {
	return len(g.channels)
}

// Node returns the node at index i. The returned value must not be modified.
func (g *Graph) Node(i NodeIndex) *Node {
	return &g.nodes[i]
}

// Channel returns the channel at index i. The returned value must not be
// modified.
func (g *Graph) Channel(i ChannelIndex) *Channel {
	return &g.channels[i]
}

// Lookup finds a node by its public identifier.
func (g *Graph) Lookup(id string) (NodeIndex, bool) {
	i, ok := g.byID[id]
	return i, ok
}

// ChannelsOf returns the channels incident to node i in insertion order.
func (g *Graph) ChannelsOf(i NodeIndex) []ChannelIndex {
	return g.adjacency[i]
}

// Degree returns the number of channels incident to node i.
func (g *Graph) Degree(i NodeIndex) int {
	return len(g.adjacency[i])
}

// Peer returns the endpoint of channel c that is not n.
func (g *Graph) Peer(c ChannelIndex, n NodeIndex) NodeIndex {
	ch := &g.channels[c]
	if ch.Node1 == n {
		return ch.Node2
	}

	return ch.Node1
}

// PolicyFrom returns the policy governing forwarding from n over channel c.
func (g *Graph) PolicyFrom(c ChannelIndex, n NodeIndex) *Policy {
	ch := &g.channels[c]
	if ch.Node1 == n {
		return ch.Policy1
	}

	return ch.Policy2
}

// NodesWithChannels returns, in index order, every node with at least one
// channel.
func (g *Graph) NodesWithChannels() []NodeIndex {
	out := make([]NodeIndex, 0, len(g.nodes))
	for i := range g.nodes {
		if len(g.adjacency[i]) > 0 {
			out = append(out, NodeIndex(i))
		}
	}

	return out
}
