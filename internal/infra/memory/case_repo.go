package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"case-portal/internal/domain"
	"case-portal/internal/domain/model"
	"case-portal/internal/domain/ports/repository"
)

var _ repository.CaseRepository = (*CaseRepo)(nil)

// CaseRepo is the in-process case registry used when no database is configured.
type CaseRepo struct {
	mu    sync.RWMutex
	cases map[string]*model.Case
}

func NewCaseRepo() *CaseRepo {
	return &CaseRepo{cases: make(map[string]*model.Case)}
}

func copyCase(c *model.Case) *model.Case {
	cp := *c
	cp.Documents = make(map[model.DocumentSlot]string, len(c.Documents))
	for k, v := range c.Documents {
		cp.Documents[k] = v
	}
	return &cp
}

func (r *CaseRepo) Save(ctx context.Context, tx repository.Tx, c *model.Case) error {
	if c == nil || c.ID == "" {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cases[c.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.cases[c.ID] = copyCase(c)
	return nil
}

func (r *CaseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cases[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyCase(c), nil
}

func (r *CaseRepo) List(ctx context.Context, tx repository.Tx, f repository.CaseFilter) ([]*model.Case, int, error) {
	r.mu.RLock()
	matched := make([]*model.Case, 0, len(r.cases))
	for _, c := range r.cases {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if !c.Matches(f.Search) {
			continue
		}
		matched = append(matched, copyCase(c))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].SubmittedAt.Equal(matched[j].SubmittedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
	})

	total := len(matched)
	if f.Offset >= total {
		return []*model.Case{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return matched[f.Offset:end], total, nil
}

func (r *CaseRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.CaseStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[model.CaseStatus]int)
	for _, c := range r.cases {
		out[c.Status]++
	}
	return out, nil
}

func (r *CaseRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.CaseStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = at
	return nil
}
