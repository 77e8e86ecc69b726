package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"case-portal/internal/domain/model"
)

// reverseSealer is a reversible stand-in for the AES-GCM service.
type reverseSealer struct{}

func (reverseSealer) Encrypt(s string) (string, error) { return "sealed:" + reverse(s), nil }

func (reverseSealer) Decrypt(s string) (string, error) {
	if !strings.HasPrefix(s, "sealed:") {
		return "", errors.New("not sealed")
	}
	return reverse(strings.TrimPrefix(s, "sealed:")), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func sampleFlow() *model.FlowState {
	svc, _ := model.LookupService(model.ServiceWorkPermit)
	email := "john@example.com"
	first := "John"
	st := model.NewFlowState("s1")
	st.SetServiceType(&svc)
	st.SetPersonalInfo(model.PersonalInfoPatch{FirstName: &first, Email: &email})
	st.SetDocument(model.SlotPassport, &model.DocumentRef{Name: "passport.pdf", Size: 2048, UploadedAt: time.Now().UTC()})
	st.SetStep(model.StepDocuments)
	return st
}

func TestFlowRecord_SealedRoundTrip(t *testing.T) {
	repo := NewFlowStateRepo(nil, time.Hour, reverseSealer{})
	st := sampleFlow()

	data, err := repo.encode(st)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(data), "john@example.com") {
		t.Fatalf("personal info stored in clear: %s", data)
	}
	var raw map[string]any
	_ = json.Unmarshal(data, &raw)
	if _, ok := raw["personal_info"]; ok {
		t.Fatal("plain personal_info should be omitted when sealed")
	}

	got, err := repo.decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PersonalInfo != st.PersonalInfo {
		t.Errorf("personal info mismatch: %+v vs %+v", got.PersonalInfo, st.PersonalInfo)
	}
	if got.CurrentStep != model.StepDocuments || got.ServiceType.ID != model.ServiceWorkPermit {
		t.Errorf("unexpected state: %+v", got)
	}
	if ref := got.Documents.Get(model.SlotPassport); ref == nil || ref.Name != "passport.pdf" {
		t.Errorf("documents lost: %+v", got.Documents)
	}
}

func TestFlowRecord_PlainRoundTrip(t *testing.T) {
	repo := NewFlowStateRepo(nil, 0, nil)
	if repo.ttl <= 0 {
		t.Fatal("expected a default TTL")
	}
	st := sampleFlow()
	data, err := repo.encode(st)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := repo.decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PersonalInfo != st.PersonalInfo {
		t.Errorf("personal info mismatch: %+v", got.PersonalInfo)
	}

	sealedRepo := NewFlowStateRepo(nil, time.Hour, reverseSealer{})
	sealed, _ := sealedRepo.encode(st)
	if _, err := repo.decode(sealed); err == nil {
		t.Error("decoding sealed data without a sealer should fail")
	}
}

func TestFlowRepo_Key(t *testing.T) {
	repo := NewFlowStateRepo(nil, time.Hour, nil)
	if got := repo.key("abc"); got != "case_flow:abc" {
		t.Errorf("unexpected key %q", got)
	}
}

type fakeCounter struct {
	RedisClient
	counts  map[string]int64
	expires map[string]time.Duration
}

func (f *fakeCounter) Incr(_ context.Context, key string) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounter) Expire(_ context.Context, key string, d time.Duration) error {
	f.expires[key] = d
	return nil
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	fc := &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
	rl := NewRateLimiter(fc)

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "k", 3, time.Hour)
		if err != nil || !ok {
			t.Fatalf("call %d: ok=%v err=%v", i, ok, err)
		}
	}
	if ok, _ := rl.Allow(ctx, "k", 3, time.Hour); ok {
		t.Fatal("fourth call should be limited")
	}
	if fc.expires["k"] != time.Hour {
		t.Errorf("window not set on first hit: %v", fc.expires)
	}
}
