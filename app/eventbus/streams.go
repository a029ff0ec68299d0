package eventbus

import (
	"context"
	"fmt"

	"github.com/fairway-collective/links-backend/app/shared/events"
)

// InitializeStreams provisions every stream the application publishes to.
// Called once during startup, before any module router runs.
func InitializeStreams(ctx context.Context, bus EventBus) error {
	if err := bus.CreateStream(ctx, events.StreamName, events.StreamSubject); err != nil {
		return fmt.Errorf("failed to create %s stream: %w", events.StreamName, err)
	}
	return nil
}
