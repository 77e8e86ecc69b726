package repository

import (
	"context"
	"time"

	"case-portal/internal/domain/model"
)

// FlowStateRepository holds one FlowState per wizard session.
// Implementations serialize Update calls for the same session.
type FlowStateRepository interface {
	Create(ctx context.Context, state *model.FlowState) error
	// Get returns domain.ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, sessionID string) (*model.FlowState, error)
	// Update loads the state, applies fn and stores the result atomically.
	// If fn returns an error nothing is written.
	Update(ctx context.Context, sessionID string, fn func(state *model.FlowState) error) (*model.FlowState, error)
	Delete(ctx context.Context, sessionID string) error
}

// IdleFlowSweeper is implemented by stores that do not expire sessions on their own.
type IdleFlowSweeper interface {
	DeleteIdle(ctx context.Context, before time.Time) (int, error)
}
