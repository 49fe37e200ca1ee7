package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"
)

// ErrOutputExists is returned when an output file exists and overwriting
// was not requested.
var ErrOutputExists = errors.New("output already exists")

// File names inside a run directory.
const (
	MetadataFile   = "metadata.json"
	SummaryFile    = "summary.csv"
	CensorshipFile = "censorship.csv"
)

// writeFile replaces path atomically so readers never see partial output.
func writeFile(path string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.Wrap(ErrOutputExists, path)
		}
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}

	return nil
}

func writeCSV(path string, header []string, rows [][]string, overwrite bool) error {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "encode csv")
	}

	if err := w.WriteAll(rows); err != nil {
		return errors.Wrap(err, "encode csv")
	}

	return writeFile(path, buf.Bytes(), overwrite)
}

func itoa[T ~int | ~int64 | ~uint32 | ~uint64](v T) string {
	return strconv.FormatInt(int64(v), 10)
}

// WriteDegreeCSV writes asn,degree rows.
func WriteDegreeCSV(path string, records []DegreeRecord, overwrite bool) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{itoa(r.ASN), itoa(r.Degree)}
	}

	return writeCSV(path, []string{"asn", "degree"}, rows, overwrite)
}

// WriteIntraCSV writes asn,intra,inter rows.
func WriteIntraCSV(path string, records []IntraRecord, overwrite bool) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{itoa(r.ASN), itoa(r.Intra), itoa(r.Inter)}
	}

	return writeCSV(path, []string{"asn", "intra", "inter"}, rows, overwrite)
}

// WriteRatioCSV writes asn,ratio rows.
func WriteRatioCSV(path string, records []RatioRecord, overwrite bool) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{itoa(r.ASN), strconv.FormatFloat(r.Ratio, 'f', 2, 64)}
	}

	return writeCSV(path, []string{"asn", "ratio"}, rows, overwrite)
}

// WriteRunDirectory writes the metadata, outcome summary, and per-AS
// censorship counts of every report into dir, creating it if needed.
// Without overwrite nothing is written when any of the files exists.
func WriteRunDirectory(dir string, reports []*Report, overwrite bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}

	var (
		metadataPath   = filepath.Join(dir, MetadataFile)
		summaryPath    = filepath.Join(dir, SummaryFile)
		censorshipPath = filepath.Join(dir, CensorshipFile)
	)

	if !overwrite {
		for _, path := range []string{metadataPath, summaryPath, censorshipPath} {
			if _, err := os.Stat(path); err == nil {
				return errors.Wrap(ErrOutputExists, path)
			}
		}
	}

	metadata := make([]Metadata, len(reports))
	for i, r := range reports {
		metadata[i] = r.Metadata
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode metadata")
	}

	var summary, censorship [][]string

	for _, r := range reports {
		t := r.Tally
		summary = append(summary, []string{
			itoa(r.Metadata.AmountSat),
			itoa(t.Total),
			itoa(t.Delivered),
			itoa(t.FailedNoPath),
			itoa(t.FailedCensored),
			itoa(t.BaselineDelivered()),
			strconv.FormatFloat(r.CensoredShare(), 'f', 4, 64),
		})

		for _, c := range r.CensorshipRecords() {
			censorship = append(censorship, []string{
				itoa(r.Metadata.AmountSat),
				itoa(c.Rank),
				itoa(c.ASN),
				itoa(c.Metric),
				itoa(c.Nodes),
				itoa(c.Exposure),
				itoa(c.Censored),
				itoa(c.TruePositive),
				itoa(c.FalsePositive),
				itoa(c.FalseNegative),
			})
		}
	}

	// Conflicts were ruled out above.
	if err := writeFile(metadataPath, append(data, '\n'), true); err != nil {
		return err
	}

	err = writeCSV(summaryPath, []string{
		"amount_sat", "payments", "delivered", "failed_no_path",
		"failed_censored", "baseline_delivered", "censored_share",
	}, summary, true)
	if err != nil {
		return err
	}

	return writeCSV(censorshipPath, []string{
		"amount_sat", "rank", "asn", "metric", "nodes", "exposure", "censored",
		"true_pos", "false_pos", "false_neg",
	}, censorship, true)
}
