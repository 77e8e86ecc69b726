package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"case-portal/internal/domain"
	"case-portal/internal/domain/model"
	"case-portal/internal/domain/ports/repository"
)

const caseColumns = `id, session_id, service_id, service_label, fee, applicant_name, email, phone,
	nationality, address, documents, status, priority, consultant, submitted_at, updated_at`

type PostgresCaseRepo struct {
	pool *pgxpool.Pool
}

func NewCaseRepo(pool *pgxpool.Pool) *PostgresCaseRepo {
	return &PostgresCaseRepo{pool: pool}
}

var _ repository.CaseRepository = (*PostgresCaseRepo)(nil)

func (r *PostgresCaseRepo) Save(ctx context.Context, tx repository.Tx, c *model.Case) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if c.SubmittedAt.IsZero() {
		c.SubmittedAt = time.Now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.SubmittedAt
	}
	docs, err := json.Marshal(c.Documents)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	_, err = exec.Exec(ctx, `
		INSERT INTO cases (`+caseColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, c.ID, c.SessionID, c.ServiceID, c.ServiceLabel, c.Fee, c.ApplicantName, c.Email, c.Phone,
		c.Nationality, c.Address, docs, string(c.Status), string(c.Priority), c.Consultant,
		c.SubmittedAt, c.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *PostgresCaseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Case, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + caseColumns + ` FROM cases WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	c, err := scanCase(exec.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *PostgresCaseRepo) List(ctx context.Context, tx repository.Tx, f repository.CaseFilter) ([]*model.Case, int, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, 0, err
	}

	var (
		conds []string
		args  []interface{}
	)
	if term := strings.TrimSpace(f.Search); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		conds = append(conds, fmt.Sprintf(
			"(id ILIKE $%[1]d OR service_label ILIKE $%[1]d OR applicant_name ILIKE $%[1]d OR consultant ILIKE $%[1]d)", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM cases`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + caseColumns + ` FROM cases` + where + ` ORDER BY submitted_at DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := exec.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*model.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *PostgresCaseRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.CaseStatus]int, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, `SELECT status, COUNT(*) FROM cases GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[model.CaseStatus]int)
	for rows.Next() {
		var (
			st string
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[model.CaseStatus(st)] = n
	}
	return out, rows.Err()
}

func (r *PostgresCaseRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.CaseStatus, at time.Time) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := exec.Exec(ctx, `UPDATE cases SET status=$2, updated_at=$3 WHERE id=$1`, id, string(status), at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCase(row pgx.Row) (*model.Case, error) {
	var (
		c            model.Case
		docs         []byte
		status, prio string
	)
	if err := row.Scan(&c.ID, &c.SessionID, &c.ServiceID, &c.ServiceLabel, &c.Fee, &c.ApplicantName,
		&c.Email, &c.Phone, &c.Nationality, &c.Address, &docs, &status, &prio, &c.Consultant,
		&c.SubmittedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = model.CaseStatus(status)
	c.Priority = model.CasePriority(prio)
	c.Documents = make(map[model.DocumentSlot]string)
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &c.Documents); err != nil {
			return nil, fmt.Errorf("decode documents: %w", err)
		}
	}
	return &c, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
