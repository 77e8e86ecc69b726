package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"case-portal/internal/domain"
	"case-portal/internal/domain/model"
	"case-portal/internal/domain/ports/adapter"
	"case-portal/internal/domain/ports/repository"
	"case-portal/internal/infra/logging"
	"case-portal/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ FlowUseCase = (*flowUC)(nil)

// FlowUseCase drives the four-step case submission wizard of one session.
type FlowUseCase interface {
	Start(ctx context.Context) (*model.FlowState, error)
	Get(ctx context.Context, sessionID string) (*model.FlowState, error)

	// JumpTo sets the step directly. It does not check completeness of earlier steps.
	JumpTo(ctx context.Context, sessionID string, step model.Step) (*model.FlowState, error)
	// Advance moves forward only if the current view allows it; advanced reports the outcome.
	Advance(ctx context.Context, sessionID string) (st *model.FlowState, advanced bool, err error)
	Back(ctx context.Context, sessionID string) (*model.FlowState, error)

	SelectService(ctx context.Context, sessionID, serviceID string) (*model.FlowState, error)
	UpdatePersonalInfo(ctx context.Context, sessionID string, patch model.PersonalInfoPatch) (*model.FlowState, error)
	AttachDocument(ctx context.Context, sessionID, slot string, ref *model.DocumentRef) (*model.FlowState, error)
	RemoveDocument(ctx context.Context, sessionID, slot string) (*model.FlowState, error)

	// Submit records the case after the processing delay and resets the flow.
	Submit(ctx context.Context, sessionID string) (*SubmitResult, error)
	// Abandon discards the session.
	Abandon(ctx context.Context, sessionID string) error

	Render(st *model.FlowState) View
}

// SubmitResult is returned by a successful submission.
type SubmitResult struct {
	Case  *model.Case      `json:"case"`
	State *model.FlowState `json:"state"`
}

// FlowOptions tunes submission behaviour.
type FlowOptions struct {
	// SubmitDelay simulates back-office processing before the flow resets.
	SubmitDelay time.Duration
	// SubmissionsPerHour caps submits per session; <= 0 disables the check.
	SubmissionsPerHour int
	// Dev logs applicant contact details unredacted.
	Dev bool
}

const submitLockSlack = 30 * time.Second

type flowUC struct {
	flows   repository.FlowStateRepository
	cases   repository.CaseRepository
	locker  adapter.Locker
	limiter adapter.RateLimiter
	seq     *Sequencer
	opts    FlowOptions
	log     *zerolog.Logger

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

// NewFlowUseCase wires the wizard. limiter may be nil.
func NewFlowUseCase(
	flows repository.FlowStateRepository,
	cases repository.CaseRepository,
	locker adapter.Locker,
	limiter adapter.RateLimiter,
	opts FlowOptions,
	logger *zerolog.Logger,
) *flowUC {
	if logger == nil {
		logger = logging.Nop()
	}
	l := logger.With().Str("component", "FlowUC").Logger()
	return &flowUC{
		flows:   flows,
		cases:   cases,
		locker:  locker,
		limiter: limiter,
		seq:     NewSequencer(),
		opts:    opts,
		log:     &l,
		now:     time.Now,
		wait:    sleepCtx,
	}
}

func (f *flowUC) Start(ctx context.Context) (*model.FlowState, error) {
	st := model.NewFlowState("")
	if err := f.flows.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("create flow: %w", err)
	}
	metrics.IncFlowStarted()
	logging.With(logging.WithSessionID(ctx, st.SessionID), f.log).Debug().Msg("flow started")
	return st, nil
}

func (f *flowUC) Get(ctx context.Context, sessionID string) (*model.FlowState, error) {
	return f.flows.Get(ctx, sessionID)
}

func (f *flowUC) JumpTo(ctx context.Context, sessionID string, step model.Step) (*model.FlowState, error) {
	if !step.Valid() {
		return nil, fmt.Errorf("step %d: %w", step, domain.ErrInvalidArgument)
	}
	var from model.Step
	st, err := f.update(ctx, sessionID, func(st *model.FlowState) error {
		from = st.CurrentStep
		st.SetStep(step)
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveTransition(int(from), int(st.CurrentStep))
	return st, nil
}

func (f *flowUC) Advance(ctx context.Context, sessionID string) (*model.FlowState, bool, error) {
	var (
		from    model.Step
		blocked bool
	)
	st, err := f.update(ctx, sessionID, func(st *model.FlowState) error {
		from = st.CurrentStep
		blocked = !f.seq.ViewFor(st.CurrentStep).CanProceed(st)
		if !blocked {
			st.NextStep()
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if blocked {
		metrics.IncAdvanceBlocked(from.String())
		return st, false, nil
	}
	metrics.ObserveTransition(int(from), int(st.CurrentStep))
	return st, st.CurrentStep != from, nil
}

func (f *flowUC) Back(ctx context.Context, sessionID string) (*model.FlowState, error) {
	var from model.Step
	st, err := f.update(ctx, sessionID, func(st *model.FlowState) error {
		from = st.CurrentStep
		st.PrevStep()
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveTransition(int(from), int(st.CurrentStep))
	return st, nil
}

func (f *flowUC) SelectService(ctx context.Context, sessionID, serviceID string) (*model.FlowState, error) {
	svc, ok := model.LookupService(serviceID)
	if !ok {
		return nil, fmt.Errorf("service %q: %w", serviceID, domain.ErrUnknownService)
	}
	return f.update(ctx, sessionID, func(st *model.FlowState) error {
		st.SetServiceType(&svc)
		return nil
	})
}

func (f *flowUC) UpdatePersonalInfo(ctx context.Context, sessionID string, patch model.PersonalInfoPatch) (*model.FlowState, error) {
	return f.update(ctx, sessionID, func(st *model.FlowState) error {
		st.SetPersonalInfo(patch)
		return nil
	})
}

func (f *flowUC) AttachDocument(ctx context.Context, sessionID, slot string, ref *model.DocumentRef) (*model.FlowState, error) {
	s, ok := model.ParseDocumentSlot(slot)
	if !ok {
		return nil, fmt.Errorf("slot %q: %w", slot, domain.ErrUnknownDocumentSlot)
	}
	if ref == nil || ref.Name == "" {
		return nil, fmt.Errorf("document for %s: %w", slot, domain.ErrInvalidArgument)
	}
	cp := *ref
	if cp.UploadedAt.IsZero() {
		cp.UploadedAt = f.now()
	}
	return f.update(ctx, sessionID, func(st *model.FlowState) error {
		st.SetDocument(s, &cp)
		return nil
	})
}

func (f *flowUC) RemoveDocument(ctx context.Context, sessionID, slot string) (*model.FlowState, error) {
	s, ok := model.ParseDocumentSlot(slot)
	if !ok {
		return nil, fmt.Errorf("slot %q: %w", slot, domain.ErrUnknownDocumentSlot)
	}
	return f.update(ctx, sessionID, func(st *model.FlowState) error {
		st.SetDocument(s, nil)
		return nil
	})
}

// Submit holds the session lease for the whole delay, so every mutator is refused
// meanwhile. The flow is reset only if it is unchanged since the snapshot, and the
// case is recorded only after that reset succeeded.
func (f *flowUC) Submit(ctx context.Context, sessionID string) (*SubmitResult, error) {
	defer logging.TraceDuration(f.log, "FlowUC.Submit")()
	ctx = logging.WithSessionID(ctx, sessionID)
	l := logging.With(ctx, f.log)
	start := f.now()

	key := submitKey(sessionID)
	token, err := f.locker.TryLock(ctx, key, f.opts.SubmitDelay+submitLockSlack)
	if err != nil {
		if errors.Is(err, domain.ErrSubmissionInProgress) {
			metrics.IncSubmission("busy")
		}
		return nil, err
	}
	defer func() {
		if err := f.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			l.Warn().Err(err).Msg("release submit lock")
		}
	}()

	snap, err := f.flows.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snap.CurrentStep != model.StepReview {
		metrics.IncSubmission("incomplete")
		return nil, domain.ErrNotAtReview
	}
	if !f.seq.ReadyToSubmit(snap) {
		metrics.IncSubmission("incomplete")
		return nil, domain.ErrIncompleteFlow
	}

	if f.limiter != nil && f.opts.SubmissionsPerHour > 0 {
		ok, err := f.limiter.Allow(ctx, "rate_limit:"+key, f.opts.SubmissionsPerHour, time.Hour)
		if err != nil {
			metrics.IncSubmission("error")
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		if !ok {
			metrics.IncSubmission("limited")
			return nil, domain.ErrTooManySubmissions
		}
	}

	if err := f.wait(ctx, f.opts.SubmitDelay); err != nil {
		metrics.IncSubmission("error")
		return nil, err
	}

	c, err := model.NewCaseFromFlow(snap, f.now())
	if err != nil {
		metrics.IncSubmission("incomplete")
		return nil, err
	}

	reset, err := f.flows.Update(ctx, sessionID, func(st *model.FlowState) error {
		if !st.UpdatedAt.Equal(snap.UpdatedAt) {
			return domain.ErrFlowChanged
		}
		st.Reset()
		return nil
	})
	if err != nil {
		metrics.IncSubmission("conflict")
		return nil, fmt.Errorf("reset flow: %w", err)
	}

	if err := f.cases.Save(ctx, repository.NoTX, c); err != nil {
		metrics.IncSubmission("error")
		if _, rerr := f.flows.Update(context.WithoutCancel(ctx), sessionID, func(st *model.FlowState) error {
			*st = *snap.Clone()
			return nil
		}); rerr != nil {
			l.Error().Err(rerr).Msg("restore flow after failed save")
		}
		return nil, fmt.Errorf("save case: %w", err)
	}

	metrics.IncSubmission("ok")
	metrics.ObserveSubmitSeconds(f.now().Sub(start).Seconds())
	logging.With(logging.WithCaseID(ctx, c.ID), f.log).Info().
		Str("service", c.ServiceID).
		Str("email", logging.Redact(c.Email, f.opts.Dev)).
		Str("phone", logging.Redact(c.Phone, f.opts.Dev)).
		Int("documents", len(c.Documents)).
		Msg("case submitted")

	return &SubmitResult{Case: c, State: reset}, nil
}

func (f *flowUC) Abandon(ctx context.Context, sessionID string) error {
	if err := f.ensureIdle(ctx, sessionID); err != nil {
		return err
	}
	if err := f.flows.Delete(ctx, sessionID); err != nil {
		return err
	}
	logging.With(logging.WithSessionID(ctx, sessionID), f.log).Debug().Msg("flow abandoned")
	return nil
}

func submitKey(sessionID string) string { return "submit:" + sessionID }

// ensureIdle refuses changes while a submission holds the session.
func (f *flowUC) ensureIdle(ctx context.Context, sessionID string) error {
	held, err := f.locker.Held(ctx, submitKey(sessionID))
	if err != nil {
		return fmt.Errorf("submit lease: %w", err)
	}
	if held {
		return domain.ErrSubmissionInProgress
	}
	return nil
}

// update applies fn unless a submission is in flight. fn may run more than once
// on stores that retry, so it must not have side effects.
func (f *flowUC) update(ctx context.Context, sessionID string, fn func(st *model.FlowState) error) (*model.FlowState, error) {
	if err := f.ensureIdle(ctx, sessionID); err != nil {
		return nil, err
	}
	return f.flows.Update(ctx, sessionID, fn)
}

func (f *flowUC) Render(st *model.FlowState) View { return f.seq.Render(st) }

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
