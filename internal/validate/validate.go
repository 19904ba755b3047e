// Package validate flags price anomalies in cost records for manual review.
package validate

import (
	"go.uber.org/zap"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

// Config holds the anomaly detection thresholds.
type Config struct {
	AbsoluteMin       float64 `json:"absolute_min"`
	AbsoluteMax       float64 `json:"absolute_max"`
	DeviationFraction float64 `json:"deviation_fraction"`
}

// DefaultConfig returns the thresholds tuned for monthly stay costs.
func DefaultConfig() Config {
	return Config{
		AbsoluteMin:       4000.00,
		AbsoluteMax:       12000.00,
		DeviationFraction: 0.30,
	}
}

// Prices finalizes the validation status of every record and returns the
// result as a new slice; the input is not modified.
//
// Pass 1 flags prices outside the absolute range. Pass 2 partitions the
// remaining records by care type and flags prices outside the deviation
// band around the partition mean. Range-flagged records are excluded
// from the means, so an extreme outlier cannot skew the statistic used
// to detect it. A single-member partition trivially contains its own
// value and is never flagged statistically.
func Prices(records []model.CostRecord, cfg Config) []model.CostRecord {
	out := make([]model.CostRecord, len(records))
	copy(out, records)

	// Pass 1: absolute range.
	rangeFlagged := 0
	for i := range out {
		if out[i].Price < cfg.AbsoluteMin || out[i].Price > cfg.AbsoluteMax {
			out[i].ValidationStatus = model.StatusAnomalyRange
			rangeFlagged++
		} else {
			out[i].ValidationStatus = model.StatusPending
		}
	}

	// Pass 2: deviation band per care type, means over still-pending records.
	means := categoryMeans(out)
	statFlagged := 0
	for i := range out {
		if out[i].ValidationStatus != model.StatusPending {
			continue
		}
		mean := means[out[i].CareType]
		lower := mean * (1 - cfg.DeviationFraction)
		upper := mean * (1 + cfg.DeviationFraction)
		if out[i].Price < lower || out[i].Price > upper {
			out[i].ValidationStatus = model.StatusAnomalyStatistical
			statFlagged++
		} else {
			out[i].ValidationStatus = model.StatusOK
		}
	}

	zap.L().Info("validate: prices checked",
		zap.Int("records", len(out)),
		zap.Int("anomaly_range", rangeFlagged),
		zap.Int("anomaly_statistical", statFlagged),
	)
	return out
}

// categoryMeans computes the mean price per care type over records still
// pending after the range pass.
func categoryMeans(records []model.CostRecord) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range records {
		if r.ValidationStatus != model.StatusPending {
			continue
		}
		sums[r.CareType] += r.Price
		counts[r.CareType]++
	}

	means := make(map[string]float64, len(sums))
	for careType, sum := range sums {
		means[careType] = sum / float64(counts[careType])
	}
	return means
}

// Anomalies returns the records that need manual review.
func Anomalies(records []model.CostRecord) []model.CostRecord {
	var out []model.CostRecord
	for _, r := range records {
		if r.ValidationStatus == model.StatusAnomalyRange || r.ValidationStatus == model.StatusAnomalyStatistical {
			out = append(out, r)
		}
	}
	return out
}
