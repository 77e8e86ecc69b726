package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"case-portal/internal/domain"
	"case-portal/internal/domain/model"
	"case-portal/internal/domain/ports/repository"
	"case-portal/internal/infra/metrics"

	"github.com/go-redis/redis/v8"
)

var _ repository.FlowStateRepository = (*FlowStateRepo)(nil)

// Sealer encrypts applicant PII before it is written to Redis.
type Sealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// FlowStateRepo stores wizard sessions as JSON with a sliding TTL.
// Updates use WATCH/MULTI so concurrent writers to one session retry instead of clobbering.
type FlowStateRepo struct {
	client  *Client
	ttl     time.Duration
	sealer  Sealer
	retries int
}

// flowRecord is the stored layout. PersonalInfo is kept sealed when a Sealer is configured.
type flowRecord struct {
	SessionID    string              `json:"session_id"`
	CurrentStep  model.Step          `json:"current_step"`
	ServiceType  *model.ServiceType  `json:"service_type,omitempty"`
	PersonalInfo *model.PersonalInfo `json:"personal_info,omitempty"`
	SealedInfo   string              `json:"sealed_info,omitempty"`
	Documents    model.Documents     `json:"documents"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func NewFlowStateRepo(client *Client, ttl time.Duration, sealer Sealer) *FlowStateRepo {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &FlowStateRepo{client: client, ttl: ttl, sealer: sealer, retries: 5}
}

func (r *FlowStateRepo) key(sessionID string) string {
	return fmt.Sprintf("case_flow:%s", sessionID)
}

func (r *FlowStateRepo) encode(st *model.FlowState) ([]byte, error) {
	rec := flowRecord{
		SessionID:   st.SessionID,
		CurrentStep: st.CurrentStep,
		ServiceType: st.ServiceType,
		Documents:   st.Documents,
		UpdatedAt:   st.UpdatedAt,
	}
	if r.sealer != nil {
		raw, err := json.Marshal(st.PersonalInfo)
		if err != nil {
			return nil, err
		}
		sealed, err := r.sealer.Encrypt(string(raw))
		if err != nil {
			return nil, fmt.Errorf("seal personal info: %w", err)
		}
		rec.SealedInfo = sealed
	} else {
		info := st.PersonalInfo
		rec.PersonalInfo = &info
	}
	return json.Marshal(rec)
}

func (r *FlowStateRepo) decode(data []byte) (*model.FlowState, error) {
	var rec flowRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	st := &model.FlowState{
		SessionID:   rec.SessionID,
		CurrentStep: rec.CurrentStep,
		ServiceType: rec.ServiceType,
		Documents:   rec.Documents,
		UpdatedAt:   rec.UpdatedAt,
	}
	switch {
	case rec.SealedInfo != "":
		if r.sealer == nil {
			return nil, errors.New("sealed flow state but no sealer configured")
		}
		plain, err := r.sealer.Decrypt(rec.SealedInfo)
		if err != nil {
			return nil, fmt.Errorf("open personal info: %w", err)
		}
		if err := json.Unmarshal([]byte(plain), &st.PersonalInfo); err != nil {
			return nil, err
		}
	case rec.PersonalInfo != nil:
		st.PersonalInfo = *rec.PersonalInfo
	}
	return st, nil
}

func (r *FlowStateRepo) Create(ctx context.Context, state *model.FlowState) error {
	if state == nil || state.SessionID == "" {
		return domain.ErrInvalidArgument
	}
	data, err := r.encode(state)
	if err != nil {
		return err
	}
	ok, err := r.client.cli.SetNX(ctx, r.key(state.SessionID), data, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (r *FlowStateRepo) Get(ctx context.Context, sessionID string) (*model.FlowState, error) {
	data, err := r.client.cli.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.IncCacheRequest("flow_state", "miss")
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	metrics.IncCacheRequest("flow_state", "hit")
	return r.decode(data)
}

func (r *FlowStateRepo) Update(ctx context.Context, sessionID string, fn func(state *model.FlowState) error) (*model.FlowState, error) {
	key := r.key(sessionID)
	var out *model.FlowState

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.ErrNotFound
			}
			return err
		}
		st, err := r.decode(data)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		next, err := r.encode(st)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, r.ttl)
			return nil
		})
		if err == nil {
			out = st
		}
		return err
	}

	for i := 0; i < r.retries; i++ {
		err := r.client.cli.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("update flow %s: too much contention", sessionID)
}

func (r *FlowStateRepo) Delete(ctx context.Context, sessionID string) error {
	n, err := r.client.cli.Del(ctx, r.key(sessionID)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
