package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"case-portal/internal/domain"
	"case-portal/internal/domain/model"
	"case-portal/internal/domain/ports/repository"
	"case-portal/internal/infra/logging"
	"case-portal/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

var _ CaseUseCase = (*caseUC)(nil)

// CaseUseCase serves the "my cases" and admin application views.
type CaseUseCase interface {
	List(ctx context.Context, f repository.CaseFilter) (*CasePage, error)
	Get(ctx context.Context, id string) (*model.Case, error)
	Stats(ctx context.Context) (*CaseStats, error)
	UpdateStatus(ctx context.Context, id string, status model.CaseStatus) (*model.Case, error)
	// Import stores cases that do not exist yet and returns how many were added.
	Import(ctx context.Context, cases []*model.Case) (int, error)
}

type CasePage struct {
	Data   []*model.Case `json:"data"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type CaseStats struct {
	Total    int                      `json:"total"`
	ByStatus map[model.CaseStatus]int `json:"by_status"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type caseUC struct {
	cases repository.CaseRepository
	tx    repository.TransactionManager
	log   *zerolog.Logger
}

func NewCaseUseCase(cases repository.CaseRepository, tx repository.TransactionManager, logger *zerolog.Logger) *caseUC {
	if logger == nil {
		logger = logging.Nop()
	}
	return &caseUC{cases: cases, tx: tx, log: logger}
}

func (u *caseUC) List(ctx context.Context, f repository.CaseFilter) (*CasePage, error) {
	defer logging.TraceDuration(u.log, "CaseUC.List")()
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Search = strings.TrimSpace(f.Search)
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	items, total, err := u.cases.List(ctx, repository.NoTX, f)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	if items == nil {
		items = []*model.Case{}
	}
	return &CasePage{Data: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (u *caseUC) Get(ctx context.Context, id string) (*model.Case, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.cases.FindByID(ctx, repository.NoTX, id)
}

func (u *caseUC) Stats(ctx context.Context) (*CaseStats, error) {
	counts, err := u.cases.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return nil, fmt.Errorf("count cases: %w", err)
	}
	out := &CaseStats{ByStatus: make(map[model.CaseStatus]int, len(counts))}
	for _, st := range model.CaseStatuses() {
		out.ByStatus[st] = counts[st]
		out.Total += counts[st]
	}
	metrics.SetCasesTotal(out.ByStatus)
	return out, nil
}

func (u *caseUC) UpdateStatus(ctx context.Context, id string, status model.CaseStatus) (*model.Case, error) {
	defer logging.TraceDuration(u.log, "CaseUC.UpdateStatus")()
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	var updated *model.Case
	err := u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		c, err := u.cases.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if c.Status == status {
			updated = c
			return nil
		}
		now := time.Now()
		if err := u.cases.UpdateStatus(ctx, tx, id, status, now); err != nil {
			return err
		}
		c.Status = status
		c.UpdatedAt = now
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCaseStatusChange(status)
	logging.With(logging.WithCaseID(ctx, id), u.log).Info().
		Str("status", string(status)).
		Msg("case status updated")
	return updated, nil
}

func (u *caseUC) Import(ctx context.Context, cases []*model.Case) (int, error) {
	added := 0
	for _, c := range cases {
		if c == nil || c.ID == "" {
			return added, domain.ErrInvalidArgument
		}
		if _, err := u.cases.FindByID(ctx, repository.NoTX, c.ID); err == nil {
			continue
		}
		if err := u.cases.Save(ctx, repository.NoTX, c); err != nil {
			return added, fmt.Errorf("import %s: %w", c.ID, err)
		}
		added++
	}
	return added, nil
}
