package report

import (
	"github.com/lncensor/lncensor/asn"
	"github.com/lncensor/lncensor/datarecording"
	"github.com/lncensor/lncensor/simulation"
	"github.com/pkg/errors"
)

// Table names written by Recorder.
const (
	PaymentTable = "payments"
	SummaryTable = "summaries"
)

// PaymentEntry is a row of the payment table.
type PaymentEntry struct {
	RunID          string
	Seed           uint64
	AmountSat      int64
	Seq            int
	Source         string
	Destination    string
	SourceASN      uint32
	DestinationASN uint32
	Hops           int
	FeeMsat        uint64
	Outcome        string
	CensoredBy     uint32
}

// SummaryEntry is a row of the summary table, one per amount.
type SummaryEntry struct {
	RunID          string
	Seed           uint64
	AmountSat      int64
	Payments       int
	Delivered      int
	FailedNoPath   int
	FailedCensored int
}

// Recorder is a simulation hook that stores every classified payment and
// every finished run in a DataRecorder.
type Recorder struct {
	recorder datarecording.DataRecorder
	mapping  *asn.Mapping
	runID    string
	err      error
}

// NewRecorder creates the payment and summary tables.
func NewRecorder(
	recorder datarecording.DataRecorder,
	mapping *asn.Mapping,
	runID string,
) (*Recorder, error) {
	if err := recorder.CreateTable(PaymentTable, PaymentEntry{}); err != nil {
		return nil, err
	}

	if err := recorder.CreateTable(SummaryTable, SummaryEntry{}); err != nil {
		return nil, err
	}

	return &Recorder{recorder: recorder, mapping: mapping, runID: runID}, nil
}

// Func stores the hook item.
func (r *Recorder) Func(ctx simulation.HookCtx) {
	if r.err != nil {
		return
	}

	switch ctx.Pos {
	case simulation.HookPosPaymentClassified:
		r.err = r.recordPayment(ctx.Item.(*simulation.Payment))
	case simulation.HookPosRunCompleted:
		r.err = r.recordRun(ctx.Item.(*simulation.Result))
	}
}

func (r *Recorder) recordPayment(p *simulation.Payment) error {
	g := r.mapping.Graph()
	censor, _ := p.Outcome.Censor()

	return r.recorder.InsertData(PaymentTable, PaymentEntry{
		RunID:          r.runID,
		Seed:           p.ID.Seed,
		AmountSat:      int64(p.Amount),
		Seq:            p.ID.Index,
		Source:         g.Node(p.Source).ID,
		Destination:    g.Node(p.Destination).ID,
		SourceASN:      r.mapping.ASNOf(p.Source),
		DestinationASN: r.mapping.ASNOf(p.Destination),
		Hops:           len(p.Route.Channels),
		FeeMsat:        uint64(p.Route.FeeMsat),
		Outcome:        p.Outcome.Kind().String(),
		CensoredBy:     censor,
	})
}

func (r *Recorder) recordRun(res *simulation.Result) error {
	err := r.recorder.InsertData(SummaryTable, SummaryEntry{
		RunID:          r.runID,
		Seed:           res.Seed,
		AmountSat:      int64(res.Amount),
		Payments:       res.Tally.Total,
		Delivered:      res.Tally.Delivered,
		FailedNoPath:   res.Tally.FailedNoPath,
		FailedCensored: res.Tally.FailedCensored,
	})
	if err != nil {
		return err
	}

	return r.recorder.Flush()
}

// Err returns the first error met while recording.
func (r *Recorder) Err() error {
	return errors.WithMessage(r.err, "record payments")
}
