// Package routing finds payment routes through a channel graph.
package routing

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lncensor/lncensor/topology"
	"github.com/pkg/errors"
)

var (
	// ErrNoRoute means no usable route exists for the request, or none was
	// found within the allotted time.
	ErrNoRoute = errors.New("no route")

	// ErrRoutingUnavailable means the router could not be consulted at all.
	ErrRoutingUnavailable = errors.New("routing unavailable")
)

// Request asks for a route carrying Amount from Source to Destination.
type Request struct {
	Source      topology.NodeIndex
	Destination topology.NodeIndex
	Amount      btcutil.Amount
}

// Route is a loop-free path. Hops includes both endpoints and Channels[i]
// joins Hops[i] and Hops[i+1].
type Route struct {
	Hops     []topology.NodeIndex
	Channels []topology.ChannelIndex
	FeeMsat  topology.MilliSatoshi
}

// Intermediates returns the nodes strictly between the endpoints.
func (r Route) Intermediates() []topology.NodeIndex {
	if len(r.Hops) <= 2 {
		return nil
	}

	return r.Hops[1 : len(r.Hops)-1]
}

// A Router finds a route for a payment.
type Router interface {
	// FindRoute returns ErrNoRoute when no route exists. Any other error
	// means routing itself failed.
	FindRoute(ctx context.Context, g *topology.Graph, req Request) (Route, error)
}
