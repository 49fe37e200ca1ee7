package routing

import (
	"context"
	"math"
	"slices"

	"github.com/lncensor/lncensor/topology"
	"github.com/zyedidia/generic/heap"
)

// DefaultMaxHops bounds the length of routes, following the onion packet
// limit.
const DefaultMaxHops = 20

// ctxCheckInterval is how many popped labels pass between context checks.
const ctxCheckInterval = 1024

// MinFeeRouter finds the route with the lowest total fee. Ties go to the
// route with fewer hops. A channel is usable when its capacity covers the
// amount and the forwarding side's policy admits it. The source pays no fee
// on its own channels.
type MinFeeRouter struct {
	maxHops int
}

// NewMinFeeRouter creates a MinFeeRouter. A non-positive maxHops selects
// DefaultMaxHops.
func NewMinFeeRouter(maxHops int) *MinFeeRouter {
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}

	return &MinFeeRouter{maxHops: maxHops}
}

// state is a node reached over a given number of hops.
type state struct {
	node topology.NodeIndex
	hops int
}

type label struct {
	state
	fee topology.MilliSatoshi
}

func labelLess(a, b label) bool {
	if a.fee != b.fee {
		return a.fee < b.fee
	}

	if a.hops != b.hops {
		return a.hops < b.hops
	}

	return a.node < b.node
}

// FindRoute runs a Dijkstra search over (node, hops) states from the source,
// so a cheap but long partial route never hides a pricier short one that
// still fits in the hop bound. A label is dropped once its node was settled
// with no more hops. It gives up with ErrNoRoute once ctx is done.
func (r *MinFeeRouter) FindRoute(
	ctx context.Context,
	g *topology.Graph,
	req Request,
) (Route, error) {
	if req.Source == req.Destination {
		return Route{}, ErrNoRoute
	}

	n := g.NumNodes()
	amt := topology.SatToMsat(req.Amount)

	// fewestSettled holds, per node, the hop count of its last settled
	// state. Later labels need strictly fewer hops to be useful.
	fewestSettled := make([]int, n)
	for i := range fewestSettled {
		fewestSettled[i] = math.MaxInt
	}

	fee := map[state]topology.MilliSatoshi{}
	via := map[state]topology.ChannelIndex{}

	origin := state{node: req.Source}
	fee[origin] = 0

	frontier := heap.New(labelLess)
	frontier.Push(label{state: origin})

	for popped := 0; frontier.Size() > 0; popped++ {
		if popped%ctxCheckInterval == 0 && ctx.Err() != nil {
			return Route{}, ErrNoRoute
		}

		cur, _ := frontier.Pop()
		if cur.hops >= fewestSettled[cur.node] || cur.fee > fee[cur.state] {
			continue
		}

		fewestSettled[cur.node] = cur.hops

		if cur.node == req.Destination {
			return r.trace(g, cur.state, via, cur.fee), nil
		}

		if cur.hops >= r.maxHops {
			continue
		}

		for _, c := range g.ChannelsOf(cur.node) {
			ch := g.Channel(c)
			if ch.Capacity < req.Amount {
				continue
			}

			peer := g.Peer(c, cur.node)
			if cur.hops+1 >= fewestSettled[peer] {
				continue
			}

			hopFee, ok := forwardingFee(g, c, cur.node, req.Source, amt)
			if !ok {
				continue
			}

			next := label{
				state: state{node: peer, hops: cur.hops + 1},
				fee:   cur.fee + hopFee,
			}
			if known, seen := fee[next.state]; seen && known <= next.fee {
				continue
			}

			fee[next.state] = next.fee
			via[next.state] = c
			frontier.Push(next)
		}
	}

	return Route{}, ErrNoRoute
}

// forwardingFee returns what from charges to forward amt over c.
func forwardingFee(
	g *topology.Graph,
	c topology.ChannelIndex,
	from, source topology.NodeIndex,
	amt topology.MilliSatoshi,
) (topology.MilliSatoshi, bool) {
	p := g.PolicyFrom(c, from)

	if from == source {
		if p != nil && p.Disabled {
			return 0, false
		}

		return 0, true
	}

	if p == nil || !p.Allows(amt) {
		return 0, false
	}

	return p.Fee(amt), true
}

func (r *MinFeeRouter) trace(
	g *topology.Graph,
	end state,
	via map[state]topology.ChannelIndex,
	total topology.MilliSatoshi,
) Route {
	var (
		nodes    = []topology.NodeIndex{end.node}
		channels []topology.ChannelIndex
	)

	for s := end; s.hops > 0; {
		c := via[s]
		channels = append(channels, c)
		s = state{node: g.Peer(c, s.node), hops: s.hops - 1}
		nodes = append(nodes, s.node)
	}

	slices.Reverse(nodes)
	slices.Reverse(channels)

	return Route{Hops: nodes, Channels: channels, FeeMsat: total}
}
