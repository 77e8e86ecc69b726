package memory

import (
	"context"
	"sync"
	"time"

	"case-portal/internal/domain"
	"case-portal/internal/domain/model"
	"case-portal/internal/domain/ports/repository"
)

var (
	_ repository.FlowStateRepository = (*FlowStateRepo)(nil)
	_ repository.IdleFlowSweeper     = (*FlowStateRepo)(nil)
)

// FlowStateRepo keeps wizard sessions in process memory.
// Callers always receive copies; the stored value is only touched under mu.
type FlowStateRepo struct {
	mu    sync.Mutex
	flows map[string]*model.FlowState
}

func NewFlowStateRepo() *FlowStateRepo {
	return &FlowStateRepo{flows: make(map[string]*model.FlowState)}
}

func (r *FlowStateRepo) Create(ctx context.Context, state *model.FlowState) error {
	if state == nil || state.SessionID == "" {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flows[state.SessionID]; ok {
		return domain.ErrAlreadyExists
	}
	r.flows[state.SessionID] = state.Clone()
	return nil
}

func (r *FlowStateRepo) Get(ctx context.Context, sessionID string) (*model.FlowState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.flows[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return st.Clone(), nil
}

func (r *FlowStateRepo) Update(ctx context.Context, sessionID string, fn func(state *model.FlowState) error) (*model.FlowState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.flows[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	work := st.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	r.flows[sessionID] = work
	return work.Clone(), nil
}

func (r *FlowStateRepo) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flows[sessionID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.flows, sessionID)
	return nil
}

// DeleteIdle drops sessions not updated since before.
func (r *FlowStateRepo) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, st := range r.flows {
		if st.UpdatedAt.Before(before) {
			delete(r.flows, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of live sessions.
func (r *FlowStateRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}
