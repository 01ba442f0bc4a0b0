// Package reconcile merges per-object predictions from two independently
// trained detectors into one authoritative label per annotation. The primary
// prediction file acts as the template; individual rows are replaced with the
// secondary model's prediction, or forced to the unclassified sentinel, based
// on two confidence thresholds.
package reconcile

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/biolsol/go-cropset/tabular"
)

// Default decision parameters for the biolsol detector pair.
const (
	DefaultPrimaryThreshold   = 0.45
	DefaultSecondaryThreshold = 0.80
	DefaultSentinelLabelID    = "4196"
	DefaultSentinelUserID     = "5"
	DefaultSentinelConfidence = "0.000"
)

// Config holds the reconciliation thresholds and the unclassified sentinel.
type Config struct {
	// PrimaryThreshold is the confidence below which the primary prediction
	// is considered unreliable.
	PrimaryThreshold float64
	// SecondaryThreshold is the confidence the secondary prediction must
	// exceed before it may replace the primary one.
	SecondaryThreshold float64
	// SentinelLabelID is the label meaning "no confident prediction".
	SentinelLabelID string
	// SentinelUserID is the annotator id recorded with forced sentinels.
	SentinelUserID string
	// SentinelConfidence is the confidence recorded with forced sentinels.
	SentinelConfidence string
}

// DefaultConfig returns the thresholds and sentinel used by the dataset
// builds: replace when the primary model is under 45% while the secondary is
// over 80% confident.
func DefaultConfig() Config {
	return Config{
		PrimaryThreshold:   DefaultPrimaryThreshold,
		SecondaryThreshold: DefaultSecondaryThreshold,
		SentinelLabelID:    DefaultSentinelLabelID,
		SentinelUserID:     DefaultSentinelUserID,
		SentinelConfidence: DefaultSentinelConfidence,
	}
}

// Prediction is one per-object prediction row from either source, with the
// label already normalized via tabular.NormalizeID.
type Prediction struct {
	LabelID    string
	UserID     string
	Confidence float64
}

// Outcome is the decision for a single annotation id.
type Outcome int

const (
	// Keep leaves the primary prediction unchanged.
	Keep Outcome = iota
	// Replace adopts the secondary prediction's label, user and confidence.
	Replace
	// ForceUnclassified overwrites the row with the sentinel triple.
	ForceUnclassified
)

// Decide applies the five-rule reconciliation policy, in priority order, to
// one primary prediction and the matching secondary prediction (nil when the
// secondary source has no row for this annotation id). It is a pure function
// so the policy can be tested in isolation from the CSV plumbing.
func Decide(cfg Config, primary Prediction, secondary *Prediction) Outcome {
	if secondary == nil {
		return Keep
	}
	if primary.Confidence < cfg.PrimaryThreshold && secondary.Confidence < cfg.SecondaryThreshold {
		return ForceUnclassified
	}
	if primary.LabelID != cfg.SentinelLabelID {
		if primary.Confidence < cfg.PrimaryThreshold && secondary.Confidence > cfg.SecondaryThreshold {
			return Replace
		}
	} else if secondary.LabelID != cfg.SentinelLabelID && secondary.Confidence > cfg.SecondaryThreshold {
		return Replace
	}
	return Keep
}

// Stats accumulates counters over one reconciliation pass. It is returned by
// Merge rather than held as shared state so independent passes can run in
// parallel.
type Stats struct {
	Processed          int
	Replaced           int
	ForcedUnclassified int
}

// Merge reconciles the primary prediction CSV against the secondary one and
// writes the result to outputCSV. Output rows preserve the primary source's
// header and row order, one output row per primary row, with the confidence
// column always rendered with exactly 3 fractional digits. Any structurally
// broken row (missing column, unparseable confidence) fails the whole pass.
//
// Arguments:
// - primaryCSV: Path to the primary (template) predictions.
// - secondaryCSV: Path to the secondary (refinement) predictions.
// - outputCSV: Destination for the reconciled predictions.
// - cfg: Thresholds and sentinel configuration.
//
// Returns:
// - Stats: Counters for the completed pass.
// - error: Fatal structural or I/O failure.
func Merge(primaryCSV, secondaryCSV, outputCSV string, cfg Config) (Stats, error) {
	var stats Stats

	lookup, err := loadSecondary(secondaryCSV)
	if err != nil {
		return stats, err
	}

	primary, err := tabular.ReadFile(primaryCSV)
	if err != nil {
		return stats, err
	}
	cols, err := predictionColumns(primary, primaryCSV)
	if err != nil {
		return stats, err
	}

	output := &tabular.Table{Header: primary.Header}
	for i, row := range primary.Rows {
		stats.Processed++

		conf, err := strconv.ParseFloat(row[cols.confidence], 64)
		if err != nil {
			return stats, errors.Wrapf(err, "row %d of %s: bad confidence %q",
				i+2, primaryCSV, row[cols.confidence])
		}

		// The output confidence is always the 3-decimal rendering, and the
		// threshold comparison uses the same rounded value the output carries.
		out := append([]string(nil), row...)
		out[cols.confidence] = formatConfidence(conf)
		conf, _ = strconv.ParseFloat(out[cols.confidence], 64)

		annID := tabular.NormalizeID(row[cols.annotationID])
		var secondary *Prediction
		if annID != "" {
			if p, ok := lookup[annID]; ok {
				secondary = &p
			}
		}

		primaryPred := Prediction{
			LabelID:    tabular.NormalizeID(row[cols.labelID]),
			Confidence: conf,
		}

		switch Decide(cfg, primaryPred, secondary) {
		case Replace:
			out[cols.labelID] = secondary.LabelID
			out[cols.userID] = secondary.UserID
			out[cols.confidence] = formatConfidence(secondary.Confidence)
			stats.Replaced++
		case ForceUnclassified:
			out[cols.labelID] = cfg.SentinelLabelID
			out[cols.userID] = cfg.SentinelUserID
			out[cols.confidence] = cfg.SentinelConfidence
			stats.ForcedUnclassified++
		}

		output.Rows = append(output.Rows, out)
	}

	if err := output.WriteFile(outputCSV); err != nil {
		return stats, err
	}
	return stats, nil
}

type columnSet struct {
	annotationID int
	labelID      int
	userID       int
	confidence   int
}

func predictionColumns(t *tabular.Table, path string) (columnSet, error) {
	cols := columnSet{
		annotationID: t.ColumnIndex("annotation_id"),
		labelID:      t.ColumnIndex("label_id"),
		userID:       t.ColumnIndex("user_id"),
		confidence:   t.ColumnIndex("confidence"),
	}
	for name, idx := range map[string]int{
		"annotation_id": cols.annotationID,
		"label_id":      cols.labelID,
		"user_id":       cols.userID,
		"confidence":    cols.confidence,
	} {
		if idx < 0 {
			return cols, errors.Errorf("missing column %q in %s", name, path)
		}
	}
	return cols, nil
}

// loadSecondary indexes the secondary predictions by normalized annotation id
// for constant-time lookups during the primary pass. Rows without a usable
// annotation id are skipped.
func loadSecondary(path string) (map[string]Prediction, error) {
	table, err := tabular.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cols, err := predictionColumns(table, path)
	if err != nil {
		return nil, err
	}

	lookup := make(map[string]Prediction, len(table.Rows))
	for i, row := range table.Rows {
		annID := tabular.NormalizeID(row[cols.annotationID])
		if annID == "" {
			continue
		}
		conf, err := strconv.ParseFloat(row[cols.confidence], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d of %s: bad confidence %q",
				i+2, path, row[cols.confidence])
		}
		lookup[annID] = Prediction{
			LabelID:    tabular.NormalizeID(row[cols.labelID]),
			UserID:     row[cols.userID],
			Confidence: conf,
		}
	}
	return lookup, nil
}

func formatConfidence(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
