package cli

import (
	"go.uber.org/zap"

	"github.com/lncensor/lncensor/asn"
	"github.com/lncensor/lncensor/config"
	"github.com/lncensor/lncensor/report"
)

func mapAnalysis(cfg config.Analysis, logger *zap.Logger) (*asn.Mapping, error) {
	g, err := LoadGraph(cfg.Common, logger)
	if err != nil {
		return nil, err
	}

	return MapGraph(g, cfg.Common, logger)
}

// RunASNodeDegree writes the channel degree of every AS, or of every node
// when cfg.Detail is set.
func RunASNodeDegree(cfg config.Analysis, logger *zap.Logger) error {
	m, err := mapAnalysis(cfg, logger)
	if err != nil {
		return err
	}

	records := report.DegreeRecords(m)
	if cfg.Detail {
		records = report.NodeDegreeRecords(m)
	}

	if err := report.WriteDegreeCSV(cfg.Out, records, cfg.Overwrite); err != nil {
		return err
	}

	logger.Info("degrees written",
		zap.String("file", cfg.Out),
		zap.Int("rows", len(records)))

	return nil
}

// RunIntraASChannels writes the intra- and inter-AS channel counts of every
// AS, or the per-node intra-AS ratios when cfg.Detail is set.
func RunIntraASChannels(cfg config.Analysis, logger *zap.Logger) error {
	m, err := mapAnalysis(cfg, logger)
	if err != nil {
		return err
	}

	var rows int

	if cfg.Detail {
		records := report.RatioRecords(m)
		rows = len(records)
		err = report.WriteRatioCSV(cfg.Out, records, cfg.Overwrite)
	} else {
		records := report.IntraRecords(m)
		rows = len(records)
		err = report.WriteIntraCSV(cfg.Out, records, cfg.Overwrite)
	}

	if err != nil {
		return err
	}

	logger.Info("channel counts written",
		zap.String("file", cfg.Out),
		zap.Int("rows", rows))

	return nil
}
