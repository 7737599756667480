package status

import (
	"context"
	"sync"

	"github.com/KotFed0t/portfolio_mood_light/internal/model"
)

// Board holds the latest cycle result for the HTTP handlers. It is the only value shared
// between the refresh loop and the server.
type Board struct {
	mu     sync.RWMutex
	latest *model.CycleResult
	cycles int
}

func NewBoard() *Board {
	return &Board{}
}

func (b *Board) Report(ctx context.Context, result model.CycleResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest = &result
	b.cycles++

	return nil
}

// Latest returns a copy of the last result, ok is false before the first cycle finished.
func (b *Board) Latest() (result model.CycleResult, cycles int, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.latest == nil {
		return model.CycleResult{}, b.cycles, false
	}
	return *b.latest, b.cycles, true
}
