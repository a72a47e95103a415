package wizard

import (
	"context"
	"fmt"
	"sync"
)

// IDGenerator hands out human-readable application ids, unique per year.
type IDGenerator interface {
	NextApplicationID(ctx context.Context, year int) (string, error)
}

// FormatApplicationID renders prefix-YYYY-NNNNNN.
func FormatApplicationID(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%04d-%06d", prefix, year, seq)
}

// MemoryIDGenerator counts per year in process memory. Ids restart after a
// process restart, so it only suits tests and single-process tools.
type MemoryIDGenerator struct {
	prefix string

	mu   sync.Mutex
	next map[int]int64
}

func NewMemoryIDGenerator(prefix string) *MemoryIDGenerator {
	return &MemoryIDGenerator{prefix: prefix, next: make(map[int]int64)}
}

func (g *MemoryIDGenerator) NextApplicationID(_ context.Context, year int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next[year]++
	return FormatApplicationID(g.prefix, year, g.next[year]), nil
}
