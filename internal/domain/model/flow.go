package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PersonalInfo is the applicant data collected on the second step.
type PersonalInfo struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Nationality string `json:"nationality"`
	Address     string `json:"address"`
}

// FullName joins first and last name the way the review summary shows it.
func (p PersonalInfo) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PersonalInfoPatch carries a partial update. Nil fields are left untouched.
type PersonalInfoPatch struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Nationality *string `json:"nationality,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// FlowState is the progress of one case submission session.
//
// The mutators below are total: they never fail and never check step
// completeness. Gating forward navigation is the job of the step views.
type FlowState struct {
	SessionID    string       `json:"session_id"`
	CurrentStep  Step         `json:"current_step"`
	ServiceType  *ServiceType `json:"service_type"`
	PersonalInfo PersonalInfo `json:"personal_info"`
	Documents    Documents    `json:"documents"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewFlowState creates a session at its initial defaults.
func NewFlowState(sessionID string) *FlowState {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &FlowState{
		SessionID:   sessionID,
		CurrentStep: FirstStep,
		UpdatedAt:   time.Now(),
	}
}

// SetStep moves to n without any bounds check.
func (f *FlowState) SetStep(n Step) {
	f.CurrentStep = n
	f.touch()
}

// NextStep advances by one, never past the review step.
func (f *FlowState) NextStep() {
	if f.CurrentStep+1 > LastStep {
		f.CurrentStep = LastStep
	} else {
		f.CurrentStep++
	}
	f.touch()
}

// PrevStep goes back by one, never before the first step.
func (f *FlowState) PrevStep() {
	if f.CurrentStep-1 < FirstStep {
		f.CurrentStep = FirstStep
	} else {
		f.CurrentStep--
	}
	f.touch()
}

// SetServiceType replaces the selection wholesale.
func (f *FlowState) SetServiceType(s *ServiceType) {
	if s != nil {
		cp := *s
		s = &cp
	}
	f.ServiceType = s
	f.touch()
}

// SetPersonalInfo merges the provided fields into PersonalInfo.
func (f *FlowState) SetPersonalInfo(p PersonalInfoPatch) {
	merge := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	merge(&f.PersonalInfo.FirstName, p.FirstName)
	merge(&f.PersonalInfo.LastName, p.LastName)
	merge(&f.PersonalInfo.Email, p.Email)
	merge(&f.PersonalInfo.Phone, p.Phone)
	merge(&f.PersonalInfo.Nationality, p.Nationality)
	merge(&f.PersonalInfo.Address, p.Address)
	f.touch()
}

// SetDocument replaces one slot; nil clears it.
func (f *FlowState) SetDocument(slot DocumentSlot, ref *DocumentRef) {
	f.Documents.Set(slot, ref)
	f.touch()
}

// Reset restores every field to its initial default. The session ID is kept.
func (f *FlowState) Reset() {
	f.CurrentStep = FirstStep
	f.ServiceType = nil
	f.PersonalInfo = PersonalInfo{}
	f.Documents = Documents{}
	f.touch()
}

// IsInitial reports whether the state equals a freshly created one.
func (f *FlowState) IsInitial() bool {
	return f.CurrentStep == FirstStep &&
		f.ServiceType == nil &&
		f.PersonalInfo == (PersonalInfo{}) &&
		f.Documents == (Documents{})
}

// Clone returns a deep copy.
func (f *FlowState) Clone() *FlowState {
	cp := *f
	if f.ServiceType != nil {
		s := *f.ServiceType
		cp.ServiceType = &s
	}
	for _, info := range documentSlots {
		if ref := f.Documents.Get(info.Slot); ref != nil {
			r := *ref
			cp.Documents.Set(info.Slot, &r)
		}
	}
	return &cp
}

func (f *FlowState) touch() { f.UpdatedAt = time.Now() }

// Completeness predicates used by the step views.

// HasService reports whether a service type was selected.
func (f *FlowState) HasService() bool { return f.ServiceType != nil }

// HasRequiredPersonalInfo reports whether first/last name, email and phone are non-empty.
func (f *FlowState) HasRequiredPersonalInfo() bool {
	p := f.PersonalInfo
	return p.FirstName != "" && p.LastName != "" && p.Email != "" && p.Phone != ""
}

// HasMandatoryDocuments reports whether every mandatory slot is filled.
func (f *FlowState) HasMandatoryDocuments() bool {
	for _, slot := range MandatorySlots() {
		if f.Documents.Get(slot) == nil {
			return false
		}
	}
	return true
}
