package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/heatguard-service/internal/domain"
)

// FanoutLoader loads each batch into a primary loader, then into secondary
// copies. Only a primary failure fails the batch, so offsets are committed
// once the primary has the bulletins. Secondary failures are logged and the
// batch moves on; a broken archive never stalls the partition or re-publishes
// bulletins the primary already accepted.
type FanoutLoader struct {
	primary   BatchLoader
	secondary []BatchLoader
	logger    *slog.Logger
}

// NewFanoutLoader creates a FanoutLoader. Secondaries are tried in order.
func NewFanoutLoader(logger *slog.Logger, primary BatchLoader, secondary ...BatchLoader) *FanoutLoader {
	return &FanoutLoader{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With("component", "fanout"),
	}
}

func (f *FanoutLoader) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if err := f.primary.LoadBatch(ctx, events); err != nil {
		return err
	}
	for i, l := range f.secondary {
		if err := l.LoadBatch(ctx, events); err != nil {
			f.logger.Error("secondary load failed, continuing",
				"error", err, "secondary", i, "batch_size", len(events))
		}
	}
	return nil
}
