package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/lncensor/lncensor/adversary"
	"github.com/lncensor/lncensor/asn"
	"github.com/lncensor/lncensor/config"
	"github.com/lncensor/lncensor/datarecording"
	"github.com/lncensor/lncensor/metrics"
	"github.com/lncensor/lncensor/monitoring"
	"github.com/lncensor/lncensor/report"
	"github.com/lncensor/lncensor/routing"
	"github.com/lncensor/lncensor/simulation"
	"github.com/lncensor/lncensor/topology"
)

// RunDir is the directory the reports of a run are written to.
func RunDir(cfg config.Simulation) string {
	return filepath.Join(cfg.Out, "run-"+strconv.FormatUint(cfg.Seed, 10))
}

// RunSimulation loads the graph, selects the adversaries, simulates every
// configured amount, and writes the reports into RunDir(cfg).
func RunSimulation(
	ctx context.Context,
	cfg config.Simulation,
	logger *zap.Logger,
) ([]*report.Report, error) {
	g, err := LoadGraph(cfg.Common, logger)
	if err != nil {
		return nil, err
	}

	mapping, err := MapGraph(g, cfg.Common, logger)
	if err != nil {
		return nil, err
	}

	adversaries, err := selectAdversaries(mapping, cfg, logger)
	if err != nil {
		return nil, err
	}

	r := &run{
		cfg:         cfg,
		logger:      logger,
		id:          xid.New().String(),
		graph:       g,
		mapping:     mapping,
		adversaries: adversaries,
		metrics:     metrics.NewRegistry(),
	}

	if err := r.startMonitor(); err != nil {
		return nil, err
	}
	defer r.stopMonitor()

	if err := r.startRecording(); err != nil {
		return nil, err
	}

	reports, err := r.simulateAll(ctx)

	if recErr := r.stopRecording(); err == nil {
		err = recErr
	}

	if err != nil {
		return nil, err
	}

	dir := RunDir(cfg)
	if err := report.WriteRunDirectory(dir, reports, true); err != nil {
		return nil, err
	}

	logger.Info("reports written", zap.String("dir", dir))

	return reports, nil
}

func selectAdversaries(
	m *asn.Mapping,
	cfg config.Simulation,
	logger *zap.Logger,
) (*adversary.Set, error) {
	strategy, err := adversary.ParseStrategy(cfg.ASStrategy)
	if err != nil {
		return nil, err
	}

	set, err := adversary.Select(m, strategy, cfg.NumAS)
	if err != nil {
		return nil, err
	}

	logger.Info("adversaries selected",
		zap.Stringer("strategy", strategy),
		zap.Int("requested", cfg.NumAS),
		zap.Uint32s("asns", set.ASNs()))

	if set.Shortfall > 0 {
		logger.Warn("fewer eligible ASes than requested",
			zap.Int("requested", cfg.NumAS),
			zap.Int("shortfall", set.Shortfall))
	}

	return set, nil
}

type run struct {
	cfg         config.Simulation
	logger      *zap.Logger
	id          string
	graph       *topology.Graph
	mapping     *asn.Mapping
	adversaries *adversary.Set
	metrics     *metrics.Registry

	monitor    *monitoring.Monitor
	monitorURL string
	recorder datarecording.DataRecorder
	reader   datarecording.DataReader
	exec     *datarecording.ExecRecorder
	payments *report.Recorder
}

func (r *run) startMonitor() error {
	if !r.cfg.Monitor {
		return nil
	}

	r.monitor = monitoring.NewMonitor().
		WithLogger(r.logger).
		WithPortNumber(r.cfg.MonitorPort)
	r.monitor.RegisterMetrics(r.metrics.Handler())

	url, err := r.monitor.StartServer()
	if err != nil {
		return err
	}

	r.monitorURL = url

	if r.cfg.MonitorOpen {
		if err := browser.OpenURL(url + "/api/progress"); err != nil {
			r.logger.Warn("browser not opened", zap.Error(err))
		}
	}

	return nil
}

func (r *run) stopMonitor() {
	if r.monitor == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.monitor.Shutdown(ctx); err != nil {
		r.logger.Warn("monitor not stopped", zap.Error(err))
	}
}

func (r *run) startRecording() error {
	if r.cfg.Record == "" {
		return nil
	}

	rec, err := datarecording.New(r.cfg.Record)
	if err != nil {
		return err
	}

	r.recorder = rec

	r.exec, err = datarecording.NewExecRecorder(rec)
	if err != nil {
		return err
	}

	r.exec.Start()
	r.exec.Note("Run ID", r.id)
	r.exec.Note("Graph File", r.cfg.GraphFile)
	r.exec.Note("Seed", strconv.FormatUint(r.cfg.Seed, 10))

	r.payments, err = report.NewRecorder(rec, r.mapping, r.id)
	if err != nil {
		return err
	}

	r.logger.Info("recording payments", zap.String("file", r.cfg.Record))

	if r.monitor != nil {
		r.reader, err = datarecording.NewReader(datarecording.FileName(r.cfg.Record))
		if err != nil {
			return err
		}

		r.reader.MapTable(report.PaymentTable, report.PaymentEntry{})
		r.reader.MapTable(report.SummaryTable, report.SummaryEntry{})
		r.monitor.RegisterRecords(r.reader)
	}

	return nil
}

func (r *run) stopRecording() error {
	if r.recorder == nil {
		return nil
	}

	if r.exec != nil {
		if err := r.exec.End(); err != nil {
			return err
		}
	}

	if r.reader != nil {
		if err := r.reader.Close(); err != nil {
			r.logger.Warn("recording reader not closed", zap.Error(err))
		}
	}

	return r.recorder.Close()
}

func (r *run) amounts() []int64 {
	if len(r.cfg.Amounts) > 0 {
		return r.cfg.Amounts
	}

	return config.DefaultAmounts
}

func (r *run) simulateAll(ctx context.Context) ([]*report.Report, error) {
	src, err := topology.ParseSource(r.cfg.GraphSource)
	if err != nil {
		return nil, err
	}

	drop, err := simulation.ParseDropStrategy(r.cfg.DropStrategy)
	if err != nil {
		return nil, err
	}

	router := routing.NewMinFeeRouter(r.cfg.MaxHops)

	var reports []*report.Report

	for _, amt := range r.amounts() {
		b := simulation.MakeBuilder().
			WithGraph(r.graph).
			WithMapping(r.mapping).
			WithAdversaries(r.adversaries).
			WithRouter(router).
			WithAmount(btcutil.Amount(amt)).
			WithPayments(r.cfg.Payments).
			WithSeed(r.cfg.Seed).
			WithDropStrategy(drop).
			WithWorkers(r.cfg.Workers).
			WithRouteTimeout(r.cfg.RouteTimeout).
			WithLogger(r.logger)

		var bar *monitoring.ProgressBar
		if r.monitor != nil {
			bar = r.monitor.CreateProgressBar(
				fmt.Sprintf("%d sat", amt), uint64(r.cfg.Payments))
			b = b.WithProgress(bar)
		}

		sim, err := b.Build()
		if err != nil {
			return nil, err
		}

		sim.AcceptHook(r.metrics)

		if r.payments != nil {
			sim.AcceptHook(r.payments)
		}

		if r.monitor != nil {
			r.monitor.RegisterRun(sim)
		}

		res, err := sim.Run(ctx)

		if bar != nil {
			r.monitor.CompleteProgressBar(bar)
		}

		if err != nil {
			return nil, err
		}

		if r.payments != nil {
			if err := r.payments.Err(); err != nil {
				return nil, err
			}
		}

		rep := report.New(res, report.Source{
			RunID:   r.id,
			Format:  src,
			Mapping: r.mapping,
		})

		r.logger.Info("amount simulated",
			zap.Int64("amount_sat", amt),
			zap.Int("delivered", rep.Tally.Delivered),
			zap.Int("failed_no_path", rep.Tally.FailedNoPath),
			zap.Int("failed_censored", rep.Tally.FailedCensored))
		r.logger.Debug(rep.String())

		reports = append(reports, rep)
	}

	return reports, nil
}
