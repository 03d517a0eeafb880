package consensus

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// AggregationMode selects how a set of values collapses into a single one.
type AggregationMode string

// The supported aggregation modes.
const (
	Average = AggregationMode("average")
	Max     = AggregationMode("max")
	Min     = AggregationMode("min")
)

// ParseAggregationMode parses the attribute name of an aggregation mode.
func ParseAggregationMode(name string) (AggregationMode, error) {
	switch mode := AggregationMode(name); mode {
	case Average, Max, Min:
		return mode, nil
	default:
		return "", errors.Errorf("unknown aggregation mode %q", name)
	}
}

// Apply collapses the values according to the mode.
func (mode AggregationMode) Apply(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("cannot aggregate an empty set of values")
	}
	switch mode {
	case Average:
		return stats.Mean(values)
	case Max:
		return stats.Max(values)
	case Min:
		return stats.Min(values)
	default:
		return 0, errors.Errorf("unknown aggregation mode %q", mode)
	}
}
