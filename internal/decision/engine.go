package decision

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vmunix/resonarr/internal/download"
)

// Priority orders specifications so cheap in-memory checks run before
// those that hit persistent storage. Ordering affects work done, never
// the outcome: all specifications run for every item.
type Priority int

const (
	PriorityDefault Priority = iota
	PriorityDatabase
)

// Specification is a single named rule producing one Decision per item.
// dl is non-nil when the item belongs to a freshly grabbed download and
// nil when evaluating pre-existing library files. Expected failure modes
// must come back as rejecting Decisions; an error return is reserved for
// infrastructure faults and is converted to a rejection by the engine.
type Specification[T any] interface {
	Name() string
	Priority() Priority
	Evaluate(item T, dl *download.ClientItem) (Decision, error)
}

// Engine evaluates an ordered set of specifications against items.
// Registration order is preserved within a priority class.
type Engine[T any] struct {
	specs []Specification[T]
	log   *slog.Logger
}

// NewEngine creates an engine over the given specifications, stable-sorted
// by priority class.
func NewEngine[T any](log *slog.Logger, specs ...Specification[T]) *Engine[T] {
	if log == nil {
		log = slog.Default()
	}
	sorted := make([]Specification[T], len(specs))
	copy(sorted, specs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &Engine[T]{specs: sorted, log: log}
}

// Specs returns the specifications in evaluation order.
func (e *Engine[T]) Specs() []Specification[T] {
	return e.specs
}

// Evaluate runs every specification against the item and collects all
// rejection reasons. A specification returning an error is logged and
// converted into a temporary rejection so one failing rule never aborts
// the item or its batch.
func (e *Engine[T]) Evaluate(item T, dl *download.ClientItem) []Rejection {
	var rejections []Rejection
	for _, spec := range e.specs {
		d, err := spec.Evaluate(item, dl)
		if err != nil {
			e.log.Error("specification failed", "spec", spec.Name(), "error", err)
			rejections = append(rejections, NewTemporaryRejection(
				fmt.Sprintf("%s: unexpected error: %v", spec.Name(), err)))
			continue
		}
		rejections = append(rejections, d.Rejections()...)
	}
	return rejections
}
