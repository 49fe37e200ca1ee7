package topology

import (
	"github.com/btcsuite/btcd/btcutil"
)

// Builder accumulates nodes and channels and checks them as they arrive.
// A Builder must not be used after Build.
type Builder struct {
	nodes     []Node
	channels  []Channel
	byID      map[string]NodeIndex
	chanIDs   map[string]struct{}
	adjacency [][]ChannelIndex
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		byID:    make(map[string]NodeIndex),
		chanIDs: make(map[string]struct{}),
	}
}

// AddNode appends a node. Node identifiers must be unique and non-empty.
func (b *Builder) AddNode(n Node) (NodeIndex, error) {
	if n.ID == "" {
		return 0, malformed("node", "empty identifier")
	}

	if _, dup := b.byID[n.ID]; dup {
		return 0, malformed("node "+n.ID, "duplicate identifier")
	}

	i := NodeIndex(len(b.nodes))
	b.nodes = append(b.nodes, n)
	b.byID[n.ID] = i
	b.adjacency = append(b.adjacency, nil)

	return i, nil
}

// AddChannel appends a channel between two previously added nodes.
func (b *Builder) AddChannel(
	id, node1, node2 string,
	capacity btcutil.Amount,
	policy1, policy2 *Policy,
) (ChannelIndex, error) {
	record := "channel " + id

	if id == "" {
		return 0, malformed("channel", "empty identifier")
	}

	if _, dup := b.chanIDs[id]; dup {
		return 0, malformed(record, "duplicate identifier")
	}

	if node1 == node2 {
		return 0, malformed(record, "self-loop on %s", node1)
	}

	n1, ok := b.byID[node1]
	if !ok {
		return 0, malformed(record, "unknown endpoint %s", node1)
	}

	n2, ok := b.byID[node2]
	if !ok {
		return 0, malformed(record, "unknown endpoint %s", node2)
	}

	if capacity < 0 {
		return 0, malformed(record, "negative capacity %d", capacity)
	}

	c := ChannelIndex(len(b.channels))
	b.channels = append(b.channels, Channel{
		ID:       id,
		Node1:    n1,
		Node2:    n2,
		Capacity: capacity,
		Policy1:  policy1,
		Policy2:  policy2,
	})
	b.chanIDs[id] = struct{}{}
	b.adjacency[n1] = append(b.adjacency[n1], c)
	b.adjacency[n2] = append(b.adjacency[n2], c)

	return c, nil
}

// Build returns the graph.
func (b *Builder) Build() *Graph {
	return &Graph{
		nodes:     b.nodes,
		channels:  b.channels,
		byID:      b.byID,
		adjacency: b.adjacency,
	}
}
