package copycmd

import (
	"log/slog"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hansmi/stack-mirror-tools/internal/stats"
)

type Stats struct {
	mu sync.Mutex

	successCount int64
	errorCount   int64
	uploadCount  int64
	lines        int64
	size         stats.Size
	labels       mapset.Set[string]
}

func NewStats() *Stats {
	return &Stats{
		labels: mapset.NewThreadUnsafeSet[string](),
	}
}

func (s *Stats) add(r FileResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Err != nil {
		s.errorCount++
		return
	}

	s.successCount++
	s.lines += int64(r.Lines)
	s.size.Add(r.Bytes)
	s.labels.Add(r.Label)

	if r.UploadKey != "" {
		s.uploadCount++
	}
}

func (s *Stats) Attrs() []any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return []any{
		slog.Int64("success_count", s.successCount),
		slog.Int64("error_count", s.errorCount),
		slog.Int64("upload_count", s.uploadCount),
		slog.Int("partition_count", s.labels.Cardinality()),
		slog.Int64("lines", s.lines),
		slog.Any("size", s.size),
	}
}
