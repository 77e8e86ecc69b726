package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"case-portal/internal/domain"
	"case-portal/internal/domain/model"
	"case-portal/internal/domain/ports/repository"
)

func TestFlowStateRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("should hand out copies", func(t *testing.T) {
		repo := NewFlowStateRepo()
		st := model.NewFlowState("s1")
		if err := repo.Create(ctx, st); err != nil {
			t.Fatal(err)
		}
		st.SetStep(model.StepReview)
		got, _ := repo.Get(ctx, "s1")
		if got.CurrentStep != model.StepServiceType {
			t.Fatal("caller mutation leaked into the store")
		}
	})

	t.Run("should reject duplicates", func(t *testing.T) {
		repo := NewFlowStateRepo()
		_ = repo.Create(ctx, model.NewFlowState("s1"))
		if err := repo.Create(ctx, model.NewFlowState("s1")); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("failed update leaves state unchanged", func(t *testing.T) {
		repo := NewFlowStateRepo()
		_ = repo.Create(ctx, model.NewFlowState("s1"))
		boom := errors.New("boom")
		_, err := repo.Update(ctx, "s1", func(st *model.FlowState) error {
			st.NextStep()
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		got, _ := repo.Get(ctx, "s1")
		if got.CurrentStep != model.StepServiceType {
			t.Fatal("failed update was applied")
		}
	})

	t.Run("updates are serialized", func(t *testing.T) {
		repo := NewFlowStateRepo()
		_ = repo.Create(ctx, model.NewFlowState("s1"))
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = repo.Update(ctx, "s1", func(st *model.FlowState) error {
					st.PrevStep()
					st.NextStep()
					return nil
				})
			}()
		}
		wg.Wait()
		got, _ := repo.Get(ctx, "s1")
		if got.CurrentStep != model.StepPersonalInfo {
			t.Fatalf("expected step 2, got %d", got.CurrentStep)
		}
	})

	t.Run("should sweep idle sessions", func(t *testing.T) {
		repo := NewFlowStateRepo()
		old := model.NewFlowState("old")
		old.UpdatedAt = time.Now().Add(-2 * time.Hour)
		_ = repo.Create(ctx, old)
		_ = repo.Create(ctx, model.NewFlowState("fresh"))

		n, err := repo.DeleteIdle(ctx, time.Now().Add(-time.Hour))
		if err != nil || n != 1 {
			t.Fatalf("expected 1 swept, got %d (%v)", n, err)
		}
		if repo.Len() != 1 {
			t.Fatalf("expected one live session, got %d", repo.Len())
		}
		if _, err := repo.Get(ctx, "old"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected old session gone, got %v", err)
		}
	})
}

func TestCaseRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewCaseRepo()
	at := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	c := &model.Case{ID: "C001", Status: model.CaseStatusSubmitted, Documents: map[model.DocumentSlot]string{model.SlotPassport: "p.pdf"}, SubmittedAt: at}
	if err := repo.Save(ctx, repository.NoTX, c); err != nil {
		t.Fatal(err)
	}
	c.Documents[model.SlotPhoto] = "leak.jpg"

	got, err := repo.FindByID(ctx, repository.NoTX, "C001")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Documents) != 1 {
		t.Fatalf("stored case aliases caller map: %v", got.Documents)
	}
	if err := repo.Save(ctx, repository.NoTX, c); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if got, _ := repo.FindByID(ctx, repository.NoTX, "C001"); len(got.Documents) != 1 {
		t.Fatalf("duplicate save overwrote the stored case: %v", got.Documents)
	}
	if err := repo.UpdateStatus(ctx, repository.NoTX, "C001", model.CaseStatusApproved, at.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.FindByID(ctx, repository.NoTX, "C001")
	if got.Status != model.CaseStatusApproved {
		t.Fatalf("expected approved, got %s", got.Status)
	}

	page, total, _ := repo.List(ctx, repository.NoTX, repository.CaseFilter{Offset: 5})
	if total != 1 || len(page) != 0 {
		t.Fatalf("offset past the end: total=%d len=%d", total, len(page))
	}
}

func TestLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocker()
	now := time.Now()
	l.now = func() time.Time { return now }

	tok, err := l.TryLock(ctx, "k", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.TryLock(ctx, "k", time.Minute); !errors.Is(err, domain.ErrSubmissionInProgress) {
		t.Fatalf("expected ErrSubmissionInProgress, got %v", err)
	}
	_ = l.Unlock(ctx, "k", "someone-else")
	if _, err := l.TryLock(ctx, "k", time.Minute); err == nil {
		t.Fatal("foreign token released the lock")
	}
	_ = l.Unlock(ctx, "k", tok)
	if _, err := l.TryLock(ctx, "k", time.Minute); err != nil {
		t.Fatalf("lock not released: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := l.TryLock(ctx, "k", time.Minute); err != nil {
		t.Fatalf("expired lease should be reclaimable: %v", err)
	}
}

func TestLocker_Held(t *testing.T) {
	ctx := context.Background()
	l := NewLocker()
	now := time.Now()
	l.now = func() time.Time { return now }

	if held, _ := l.Held(ctx, "k"); held {
		t.Fatal("nothing locked yet")
	}
	tok, _ := l.TryLock(ctx, "k", time.Minute)
	if held, _ := l.Held(ctx, "k"); !held {
		t.Fatal("expected the lease to be held")
	}
	now = now.Add(2 * time.Minute)
	if held, _ := l.Held(ctx, "k"); held {
		t.Fatal("expired lease reported as held")
	}
	now = now.Add(-2 * time.Minute)
	_ = l.Unlock(ctx, "k", tok)
	if held, _ := l.Held(ctx, "k"); held {
		t.Fatal("released lease reported as held")
	}
}

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()
	r := NewRateLimiter()
	now := time.Now()
	r.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := r.Allow(ctx, "k", 2, time.Hour); !ok {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if ok, _ := r.Allow(ctx, "k", 2, time.Hour); ok {
		t.Fatal("third call should be limited")
	}
	if ok, _ := r.Allow(ctx, "other", 2, time.Hour); !ok {
		t.Fatal("keys must be independent")
	}
	now = now.Add(time.Hour)
	if ok, _ := r.Allow(ctx, "k", 2, time.Hour); !ok {
		t.Fatal("window should reset")
	}
}
