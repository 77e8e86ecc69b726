//go:build !integration

package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"case-portal/internal/domain"
)

func strp(s string) *string { return &s }

// --- Flow State Tests ---

func TestNewFlowState(t *testing.T) {
	t.Run("should start at the first step with empty input", func(t *testing.T) {
		st := NewFlowState("")
		if st.SessionID == "" {
			t.Error("expected a generated session ID")
		}
		if !st.IsInitial() {
			t.Errorf("expected initial state, got %+v", st)
		}
	})

	t.Run("should keep a provided session ID", func(t *testing.T) {
		if st := NewFlowState("abc"); st.SessionID != "abc" {
			t.Errorf("expected session ID abc, got %q", st.SessionID)
		}
	})
}

func TestFlowState_StepClamping(t *testing.T) {
	st := NewFlowState("s1")
	for i := 0; i < 10; i++ {
		st.NextStep()
		if !st.CurrentStep.Valid() {
			t.Fatalf("step left range after NextStep: %d", st.CurrentStep)
		}
	}
	if st.CurrentStep != StepReview {
		t.Errorf("expected review after many NextStep, got %d", st.CurrentStep)
	}
	for i := 0; i < 10; i++ {
		st.PrevStep()
		if !st.CurrentStep.Valid() {
			t.Fatalf("step left range after PrevStep: %d", st.CurrentStep)
		}
	}
	if st.CurrentStep != StepServiceType {
		t.Errorf("expected first step after many PrevStep, got %d", st.CurrentStep)
	}
}

func TestFlowState_SetStepIsUnchecked(t *testing.T) {
	st := NewFlowState("s1")
	st.SetStep(7)
	if st.CurrentStep != 7 {
		t.Fatalf("expected raw step 7, got %d", st.CurrentStep)
	}
	st.NextStep()
	if st.CurrentStep != StepReview {
		t.Errorf("NextStep should clamp to review, got %d", st.CurrentStep)
	}
}

func TestFlowState_StoreDoesNotGate(t *testing.T) {
	st := NewFlowState("s1")
	st.NextStep()
	if st.CurrentStep != StepPersonalInfo {
		t.Errorf("store should advance without a service, got %d", st.CurrentStep)
	}
	if st.HasService() {
		t.Error("expected no service selected")
	}
}

func TestFlowState_SetServiceType(t *testing.T) {
	svc, ok := LookupService(ServiceWorkPermit)
	if !ok {
		t.Fatal("work_permit missing from catalog")
	}
	st := NewFlowState("s1")
	st.SetServiceType(&svc)
	svc.Label = "mutated"
	if st.ServiceType.Label != "Work Permit" || st.ServiceType.Price != "$1,500" {
		t.Errorf("selection should be stored by value, got %+v", st.ServiceType)
	}
	st.SetServiceType(nil)
	if st.HasService() {
		t.Error("nil should clear the selection")
	}
}

func TestFlowState_SetPersonalInfoMerges(t *testing.T) {
	st := NewFlowState("s1")
	st.SetPersonalInfo(PersonalInfoPatch{FirstName: strp("Ana")})
	st.SetPersonalInfo(PersonalInfoPatch{Email: strp("a@b.c")})

	if st.PersonalInfo.FirstName != "Ana" {
		t.Errorf("first name lost on merge: %+v", st.PersonalInfo)
	}
	if st.PersonalInfo.Email != "a@b.c" {
		t.Errorf("email not merged: %+v", st.PersonalInfo)
	}
	if st.HasRequiredPersonalInfo() {
		t.Error("last name and phone are still missing")
	}

	st.SetPersonalInfo(PersonalInfoPatch{LastName: strp("Lee"), Phone: strp("123")})
	if !st.HasRequiredPersonalInfo() {
		t.Errorf("expected required info to be complete: %+v", st.PersonalInfo)
	}
	if got := st.PersonalInfo.FullName(); got != "Ana Lee" {
		t.Errorf("expected full name Ana Lee, got %q", got)
	}
}

func TestFlowState_DocumentSlotsAreIndependent(t *testing.T) {
	st := NewFlowState("s1")
	a := &DocumentRef{Name: "a.pdf"}
	p := &DocumentRef{Name: "photo.jpg"}
	st.SetDocument(SlotPassport, a)
	st.SetDocument(SlotPhoto, p)
	st.SetDocument(SlotPassport, nil)

	if st.Documents.Get(SlotPassport) != nil {
		t.Error("passport should be empty")
	}
	if got := st.Documents.Get(SlotPhoto); got == nil || got.Name != "photo.jpg" {
		t.Errorf("photo should be untouched, got %+v", got)
	}
	if n := st.Documents.Count(); n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
}

func TestFlowState_MandatoryDocuments(t *testing.T) {
	st := NewFlowState("s1")
	for _, slot := range []DocumentSlot{SlotPassport, SlotPhoto, SlotEducation} {
		st.SetDocument(slot, &DocumentRef{Name: string(slot)})
	}
	if st.HasMandatoryDocuments() {
		t.Error("birth certificate is still missing")
	}
	st.SetDocument(SlotBirthCertificate, &DocumentRef{Name: "bc.pdf"})
	if !st.HasMandatoryDocuments() {
		t.Error("all mandatory documents are present")
	}
}

func TestFlowState_Reset(t *testing.T) {
	svc, _ := LookupService(ServiceFamilySponsorship)
	st := NewFlowState("s1")
	st.SetServiceType(&svc)
	st.SetPersonalInfo(PersonalInfoPatch{FirstName: strp("A"), Address: strp("Main St")})
	st.SetDocument(SlotFinancial, &DocumentRef{Name: "bank.pdf"})
	st.SetStep(StepReview)

	st.Reset()
	if !st.IsInitial() {
		t.Errorf("expected defaults after reset, got %+v", st)
	}
	if st.SessionID != "s1" {
		t.Errorf("reset should keep the session ID, got %q", st.SessionID)
	}
}

func TestFlowState_CloneIsDeep(t *testing.T) {
	svc, _ := LookupService(ServiceStudyPermit)
	st := NewFlowState("s1")
	st.SetServiceType(&svc)
	st.SetDocument(SlotPassport, &DocumentRef{Name: "p.pdf"})

	cp := st.Clone()
	cp.ServiceType.Label = "changed"
	cp.Documents.Get(SlotPassport).Name = "changed.pdf"

	if st.ServiceType.Label != "Study Permit" {
		t.Error("clone shares the service type")
	}
	if st.Documents.Get(SlotPassport).Name != "p.pdf" {
		t.Error("clone shares document refs")
	}
}

// --- Catalog Tests ---

func TestServiceCatalog(t *testing.T) {
	want := map[string]string{
		ServiceWorkPermit:         "$1,500",
		ServiceStudyPermit:        "$1,200",
		ServicePermanentResidence: "$3,500",
		ServiceFamilySponsorship:  "$2,000",
	}
	cat := ServiceCatalog()
	if len(cat) != len(want) {
		t.Fatalf("expected %d services, got %d", len(want), len(cat))
	}
	for _, s := range cat {
		if want[s.ID] != s.Price {
			t.Errorf("service %s: expected price %s, got %s", s.ID, want[s.ID], s.Price)
		}
	}
	cat[0].Label = "mutated"
	if got, _ := LookupService(cat[0].ID); got.Label == "mutated" {
		t.Error("catalog copy aliases the lookup table")
	}
	if _, ok := LookupService("tourist_visa"); ok {
		t.Error("unknown service should not resolve")
	}
}

func TestDocumentSlots(t *testing.T) {
	if n := len(DocumentSlots()); n != 6 {
		t.Fatalf("expected 6 slots, got %d", n)
	}
	mandatory := MandatorySlots()
	if len(mandatory) != 3 || mandatory[0] != SlotPassport {
		t.Errorf("unexpected mandatory slots: %v", mandatory)
	}
	if s, ok := ParseDocumentSlot("birthCertificate"); !ok || s != SlotBirthCertificate {
		t.Errorf("expected birthCertificate to parse, got %q %v", s, ok)
	}
	if _, ok := ParseDocumentSlot("visa"); ok {
		t.Error("unknown slot should not parse")
	}
}

func TestStep_String(t *testing.T) {
	tests := map[Step]string{
		StepServiceType:  "service_type",
		StepPersonalInfo: "personal_info",
		StepDocuments:    "documents",
		StepReview:       "review",
		Step(9):          "unknown",
	}
	for step, want := range tests {
		if got := step.String(); got != want {
			t.Errorf("Step(%d).String() = %q, want %q", step, got, want)
		}
	}
}

// --- Case Tests ---

func TestNewCaseFromFlow(t *testing.T) {
	t.Run("should fail without a service", func(t *testing.T) {
		_, err := NewCaseFromFlow(NewFlowState("s1"), time.Now())
		if !errors.Is(err, domain.ErrIncompleteFlow) {
			t.Errorf("expected ErrIncompleteFlow, got %v", err)
		}
	})

	t.Run("should copy applicant data and documents", func(t *testing.T) {
		svc, _ := LookupService(ServicePermanentResidence)
		st := NewFlowState("s1")
		st.SetServiceType(&svc)
		st.SetPersonalInfo(PersonalInfoPatch{FirstName: strp("Li"), LastName: strp("Wei"), Email: strp("li@wei.cn")})
		st.SetDocument(SlotPassport, &DocumentRef{Name: "passport.pdf"})

		at := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		c, err := NewCaseFromFlow(st, at)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(c.ID, "CASE-") {
			t.Errorf("unexpected case ID %q", c.ID)
		}
		if c.ApplicantName != "Li Wei" || c.Fee != "$3,500" || c.Status != CaseStatusSubmitted {
			t.Errorf("unexpected case: %+v", c)
		}
		if c.Documents[SlotPassport] != "passport.pdf" || len(c.Documents) != 1 {
			t.Errorf("unexpected documents: %v", c.Documents)
		}
		if !c.SubmittedAt.Equal(at) {
			t.Errorf("expected submitted at %v, got %v", at, c.SubmittedAt)
		}
	})
}

func TestParseCaseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    CaseStatus
		wantErr bool
	}{
		{"in_review", CaseStatusInReview, false},
		{"In Review", CaseStatusInReview, false},
		{"documents required", CaseStatusDocumentsRequired, false},
		{" APPROVED ", CaseStatusApproved, false},
		{"lost", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseCaseStatus(tc.in)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidStatus) {
					t.Errorf("expected ErrInvalidStatus, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("ParseCaseStatus(%q) = %q, %v", tc.in, got, err)
			}
		})
	}
}

func TestCase_Matches(t *testing.T) {
	c := &Case{ID: "C001", ServiceLabel: "Work Permit", ApplicantName: "John Doe", Consultant: "Sarah Johnson"}
	for _, term := range []string{"", "c001", "permit", "DOE", "sarah"} {
		if !c.Matches(term) {
			t.Errorf("expected %q to match", term)
		}
	}
	if c.Matches("garcia") {
		t.Error("unexpected match")
	}
}
