package stats

import (
	"log/slog"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Size is a byte count rendered both as a number and in human-readable form.
type Size int64

var _ slog.LogValuer = (*Size)(nil)

func (s *Size) Add(bytes int64) {
	*(*int64)(s) += bytes
}

func (s Size) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("bytes", int64(s)),
		slog.String("text", humanize.IBytes(uint64(max(0, s)))),
	)
}

// SizeSummary describes the distribution of a set of object sizes.
type SizeSummary struct {
	Count int
	Total Size
	Mean  Size
	Min   Size
	Max   Size
}

var _ slog.LogValuer = (*SizeSummary)(nil)

// Summarize computes the summary of the given sizes. An empty input yields
// the zero value.
func Summarize(sizes []int64) SizeSummary {
	if len(sizes) == 0 {
		return SizeSummary{}
	}

	values := make([]float64, len(sizes))

	var total int64

	for idx, i := range sizes {
		values[idx] = float64(i)
		total += i
	}

	return SizeSummary{
		Count: len(sizes),
		Total: Size(total),
		Mean:  Size(stat.Mean(values, nil)),
		Min:   Size(floats.Min(values)),
		Max:   Size(floats.Max(values)),
	}
}

func (s SizeSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Any("total", s.Total),
		slog.Any("mean", s.Mean),
		slog.Any("min", s.Min),
		slog.Any("max", s.Max),
	)
}
