// Package simulation runs batches of payments over a channel graph and
// classifies each as delivered, unroutable, or censored.
package simulation

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lncensor/lncensor/adversary"
	"github.com/lncensor/lncensor/asn"
	"github.com/lncensor/lncensor/routing"
	"github.com/lncensor/lncensor/topology"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Simulator runs one batch of payments of a fixed amount.
type Simulator struct {
	HookableBase

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

	eligible   []topology.NodeIndex
	classifier *classifier
}

// Result is the outcome of one run.
type Result struct {
	Seed         uint64
	Amount       btcutil.Amount
	DropStrategy DropStrategy
	Adversaries  *adversary.Set

	// Payments are in index order.
	Payments []Payment
	Tally    Tally
}

// Run simulates every payment. Payments are routed concurrently, but each
// payment draws from its own random stream derived from the seed and its
// index, so the result is the same for any number of workers. Workers fire
// HookPosPaymentDone as they go; the ordered hooks run after all payments
// are classified, in payment order.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if len(s.eligible) < 2 {
		return nil, errors.Wrapf(ErrNotEnoughNodes,
			"%d of %d nodes have channels", len(s.eligible), s.graph.NumNodes())
	}

	workers := max(min(s.workers, s.payments), 1)
	payments := make([]Payment, s.payments)
	tallies := make([]Tally, workers)

	s.logger.Info("simulation started",
		zap.Uint64("seed", s.seed),
		zap.Int64("amount_sat", int64(s.amount)),
		zap.Int("payments", s.payments),
		zap.Uint32s("adversaries", s.adversaries.ASNs()),
		zap.Stringer("drop_strategy", s.drop),
		zap.Int("workers", workers))

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		tallies[w] = NewTally()

		g.Go(func() error {
			for i := w; i < s.payments; i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}

				if s.progress != nil {
					s.progress.IncrementInProgress(1)
				}

				if err := s.simulatePayment(gctx, i, &payments[i]); err != nil {
					return err
				}

				tallies[w].Observe(&payments[i])

				if s.progress != nil {
					s.progress.MoveInProgressToFinished(1)
				}

				s.InvokeHook(HookCtx{
					Domain: s,
					Pos:    HookPosPaymentDone,
					Item:   &payments[i],
				})
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Seed:         s.seed,
		Amount:       s.amount,
		DropStrategy: s.drop,
		Adversaries:  s.adversaries,
		Payments:     payments,
		Tally:        NewTally(),
	}

	for _, t := range tallies {
		res.Tally.Merge(t)
	}

	for i := range payments {
		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosPaymentClassified,
			Item:   &payments[i],
		})
	}

	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosRunCompleted, Item: res})

	s.logger.Info("simulation finished",
		zap.Int64("amount_sat", int64(s.amount)),
		zap.Int("delivered", res.Tally.Delivered),
		zap.Int("failed_no_path", res.Tally.FailedNoPath),
		zap.Int("failed_censored", res.Tally.FailedCensored),
		zap.Duration("elapsed", time.Since(start)))

	return res, nil
}

func (s *Simulator) simulatePayment(ctx context.Context, i int, p *Payment) error {
	rng := rand.New(rand.NewPCG(s.seed, uint64(i)))
	src, dst := s.drawPair(rng)

	*p = Payment{
		ID:          PaymentID{Seed: s.seed, Index: i},
		Source:      src,
		Destination: dst,
		Amount:      s.amount,
		State:       PaymentCreated,
	}

	rctx, cancel := context.WithTimeout(ctx, s.routeTimeout)
	route, err := s.router.FindRoute(rctx, s.graph, routing.Request{
		Source:      src,
		Destination: dst,
		Amount:      s.amount,
	})
	cancel()

	p.State = PaymentRoutingAttempted

	switch {
	case err == nil:
		p.Route = route
		p.Outcome = s.classifier.classify(p, rng)
	case errors.Is(err, routing.ErrNoRoute):
		p.Outcome = NoPath()
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		p.Outcome = NoPath()
	default:
		return errors.Wrapf(routing.ErrRoutingUnavailable,
			"payment %s: %v", p.ID, err)
	}

	p.State = PaymentClassified

	s.logger.Debug("payment classified",
		zap.Stringer("payment", p.ID),
		zap.String("source", s.graph.Node(src).ID),
		zap.String("destination", s.graph.Node(dst).ID),
		zap.Int("hops", len(p.Route.Channels)),
		zap.Stringer("outcome", p.Outcome))

	return nil
}

// drawPair picks two distinct nodes with channels.
func (s *Simulator) drawPair(rng *rand.Rand) (topology.NodeIndex, topology.NodeIndex) {
	n := len(s.eligible)
	si := rng.IntN(n)

	di := rng.IntN(n - 1)
	if di >= si {
		di++
	}

	return s.eligible[si], s.eligible[di]
}
