// Package report turns simulation results and AS statistics into ordered
// records and writes them out.
package report

import (
	"fmt"

	"github.com/lncensor/lncensor/asn"
	"github.com/lncensor/lncensor/simulation"
	"github.com/lncensor/lncensor/topology"
)

// Metadata describes the parameters a report was produced with.
type Metadata struct {
	RunID               string   `json:"run_id"`
	Seed                uint64   `json:"seed"`
	AmountSat           int64    `json:"amount_sat"`
	Payments            int      `json:"payments"`
	Strategy            string   `json:"as_strategy"`
	DropStrategy        string   `json:"drop_strategy"`
	Requested           int      `json:"requested_adversaries"`
	Adversaries         []uint32 `json:"adversaries"`
	Shortfall           int      `json:"shortfall"`
	GraphSource         string   `json:"graph_source"`
	Nodes               int      `json:"nodes"`
	Channels            int      `json:"channels"`
	NodesWithoutAddress int      `json:"nodes_without_address"`
}

// CensorshipRecord summarizes one adversarial AS.
type CensorshipRecord struct {
	Rank   int
	ASN    uint32
	Metric int
	Nodes  int

	// Exposure counts routed payments crossing the AS, Censored those it
	// was blamed for.
	Exposure int
	Censored int

	// TruePositive, FalsePositive and FalseNegative grade intra-prob drops
	// against the payment's destination AS. They stay zero under other
	// drop strategies.
	TruePositive  int
	FalsePositive int
	FalseNegative int
}

// Report is the aggregate of one run.
type Report struct {
	Metadata Metadata
	Tally    simulation.Tally

	records []CensorshipRecord
}

// Source describes the graph a run used.
type Source struct {
	RunID   string
	Format  topology.Source
	Mapping *asn.Mapping
}

// New aggregates a run result.
func New(res *simulation.Result, src Source) *Report {
	set := res.Adversaries
	g := src.Mapping.Graph()

	r := &Report{
		Metadata: Metadata{
			RunID:               src.RunID,
			Seed:                res.Seed,
			AmountSat:           int64(res.Amount),
			Payments:            len(res.Payments),
			Strategy:            set.Strategy.String(),
			DropStrategy:        res.DropStrategy.String(),
			Requested:           set.Requested,
			Adversaries:         set.ASNs(),
			Shortfall:           set.Shortfall,
			GraphSource:         src.Format.String(),
			Nodes:               g.NumNodes(),
			Channels:            g.NumChannels(),
			NodesWithoutAddress: src.Mapping.NodesWithoutAddress(),
		},
		Tally: res.Tally,
	}

	for i, m := range set.Members {
		r.records = append(r.records, CensorshipRecord{
			Rank:     i + 1,
			ASN:      m.ASN,
			Metric:   m.Metric,
			Nodes:    len(m.Nodes),
			Exposure: res.Tally.Exposure[m.ASN],
			Censored: res.Tally.CensoredBy[m.ASN],

			TruePositive:  res.Tally.TruePositive[m.ASN],
			FalsePositive: res.Tally.FalsePositive[m.ASN],
			FalseNegative: res.Tally.FalseNegative[m.ASN],
		})
	}

	return r
}

// CensorshipRecords returns one record per adversarial AS in rank order.
func (r *Report) CensorshipRecords() []CensorshipRecord {
	return r.records
}

// CensoredShare is the fraction of otherwise deliverable payments that
// were censored.
func (r *Report) CensoredShare() float64 {
	baseline := r.Tally.BaselineDelivered()
	if baseline == 0 {
		return 0
	}

	return float64(r.Tally.FailedCensored) / float64(baseline)
}

func (r *Report) String() string {
	return fmt.Sprintf(
		"%d sat: %d payments, %d delivered, %d without path, %d censored (%.2f%% of deliverable)",
		r.Metadata.AmountSat, r.Tally.Total, r.Tally.Delivered,
		r.Tally.FailedNoPath, r.Tally.FailedCensored, 100*r.CensoredShare())
}
