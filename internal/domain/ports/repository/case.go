package repository

import (
	"context"
	"time"

	"case-portal/internal/domain/model"
)

// CaseFilter narrows a case listing. An empty Status matches every status.
type CaseFilter struct {
	Search string
	Status model.CaseStatus
	Offset int
	Limit  int
}

// CaseRepository is the port for submitted case persistence.
type CaseRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Case) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Case, error)
	// List returns one page, newest first, and the total number of matches.
	List(ctx context.Context, tx Tx, f CaseFilter) ([]*model.Case, int, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.CaseStatus]int, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.CaseStatus, at time.Time) error
}
