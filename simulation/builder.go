package simulation

import (
	"runtime"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lncensor/lncensor/adversary"
	"github.com/lncensor/lncensor/asn"
	"github.com/lncensor/lncensor/routing"
	"github.com/lncensor/lncensor/topology"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultRouteTimeout bounds each route search.
const DefaultRouteTimeout = 5 * time.Second

// ErrNotEnoughNodes is returned when fewer than two nodes can take part in
// payments.
var ErrNotEnoughNodes = errors.New("not enough nodes with channels")

// ProgressTracker follows payments from the start of their route search to
// their classification.
type ProgressTracker interface {
	IncrementInProgress(amount uint64)
	MoveInProgressToFinished(amount uint64)
}

// Builder can be used to build a Simulator.
type Builder struct {
	graph        *topology.Graph
	mapping      *asn.Mapping
	adversaries  *adversary.Set
	router       routing.Router
	amount       btcutil.Amount
	payments     int
	seed         uint64
	drop         DropStrategy
	workers      int
	routeTimeout time.Duration
	logger       *zap.Logger
	progress     ProgressTracker
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		payments:     1000,
		seed:         19,
		drop:         DropAll,
		workers:      runtime.GOMAXPROCS(0),
		routeTimeout: DefaultRouteTimeout,
	}
}

// WithGraph sets the channel graph.
func (b Builder) WithGraph(g *topology.Graph) Builder {
	b.graph = g
	return b
}

// WithMapping sets the node-to-AS mapping of the graph.
func (b Builder) WithMapping(m *asn.Mapping) Builder {
	b.mapping = m
	return b
}

// WithAdversaries sets the adversarial ASes. Without it the run is a
// baseline with no censorship.
func (b Builder) WithAdversaries(s *adversary.Set) Builder {
	b.adversaries = s
	return b
}

// WithRouter sets the route finder.
func (b Builder) WithRouter(r routing.Router) Builder {
	b.router = r
	return b
}

// WithAmount sets the amount of every payment.
func (b Builder) WithAmount(amt btcutil.Amount) Builder {
	b.amount = amt
	return b
}

// WithPayments sets the number of payments.
func (b Builder) WithPayments(n int) Builder {
	b.payments = n
	return b
}

// WithSeed sets the run seed.
func (b Builder) WithSeed(seed uint64) Builder {
	b.seed = seed
	return b
}

// WithDropStrategy sets how adversaries decide to drop payments.
func (b Builder) WithDropStrategy(d DropStrategy) Builder {
	b.drop = d
	return b
}

// WithWorkers sets the number of goroutines routing payments. The result
// does not depend on it.
func (b Builder) WithWorkers(n int) Builder {
	b.workers = n
	return b
}

// WithRouteTimeout bounds each route search.
func (b Builder) WithRouteTimeout(d time.Duration) Builder {
	b.routeTimeout = d
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(l *zap.Logger) Builder {
	b.logger = l
	return b
}

// WithProgress reports finished payments to t.
func (b Builder) WithProgress(t ProgressTracker) Builder {
	b.progress = t
	return b
}

func (b Builder) validate() error {
	switch {
	case b.graph == nil:
		return errors.New("simulation needs a graph")
	case b.mapping == nil:
		return errors.New("simulation needs an AS mapping")
	case b.mapping.Graph() != b.graph:
		return errors.New("AS mapping belongs to a different graph")
	case b.router == nil:
		return errors.New("simulation needs a router")
	case b.amount <= 0:
		return errors.Errorf("payment amount must be positive, got %d", b.amount)
	case b.payments < 0:
		return errors.Errorf("payment count must not be negative, got %d", b.payments)
	case b.routeTimeout <= 0:
		return errors.Errorf("route timeout must be positive, got %v", b.routeTimeout)
	case b.drop < DropAll || b.drop > DropInterAS:
		return errors.Errorf("unknown drop strategy %d", b.drop)
	}

	return nil
}

// Build builds the Simulator.
func (b Builder) Build() (*Simulator, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	if b.adversaries == nil {
		b.adversaries = adversary.Empty()
	}

	if b.logger == nil {
		b.logger = zap.NewNop()
	}

	if b.workers <= 0 {
		b.workers = runtime.GOMAXPROCS(0)
	}

	s := &Simulator{
		graph:        b.graph,
		mapping:      b.mapping,
		adversaries:  b.adversaries,
		router:       b.router,
		amount:       b.amount,
		payments:     b.payments,
		seed:         b.seed,
		drop:         b.drop,
		workers:      b.workers,
		routeTimeout: b.routeTimeout,
		logger:       b.logger,
		progress:     b.progress,
		eligible:     b.graph.NodesWithChannels(),
		classifier:   newClassifier(b.mapping, b.adversaries, b.drop),
	}

	return s, nil
}
