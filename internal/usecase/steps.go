package usecase

import (
	"case-portal/internal/domain/model"
)

// StepView renders one wizard step and owns its forward gate.
type StepView interface {
	Step() model.Step
	// CanProceed reports whether "next" is enabled for st.
	CanProceed(st *model.FlowState) bool
	Render(st *model.FlowState) View
}

// View is what a client needs to draw the current step.
type View struct {
	Step       model.Step `json:"step"`
	Name       string     `json:"name"`
	CanProceed bool       `json:"can_proceed"`
	CanGoBack  bool       `json:"can_go_back"`
	CanSubmit  bool       `json:"can_submit"`

	Services []ServiceOption `json:"services,omitempty"`
	Fields   []FieldView     `json:"fields,omitempty"`
	Slots    []SlotView      `json:"slots,omitempty"`
	Summary  *ReviewSummary  `json:"summary,omitempty"`
}

type ServiceOption struct {
	model.ServiceType
	Selected bool `json:"selected"`
}

type FieldView struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Required bool   `json:"required"`
}

type SlotView struct {
	model.DocumentSlotInfo
	File *model.DocumentRef `json:"file"`
}

// ReviewSummary is the read-only recap shown before submission.
type ReviewSummary struct {
	ServiceLabel  string `json:"service_label"`
	ApplicantName string `json:"applicant_name"`
	Email         string `json:"email"`
	DocumentCount int    `json:"document_count"`
	Fee           string `json:"fee"`
}

// Sequencer maps steps to their views.
type Sequencer struct {
	views map[model.Step]StepView
}

func NewSequencer() *Sequencer {
	s := &Sequencer{views: make(map[model.Step]StepView, 4)}
	for _, v := range []StepView{serviceTypeView{}, personalInfoView{}, documentsView{}, reviewView{}} {
		s.views[v.Step()] = v
	}
	return s
}

// ViewFor returns the view of step; out-of-range steps fall back to the first one.
func (s *Sequencer) ViewFor(step model.Step) StepView {
	if v, ok := s.views[step]; ok {
		return v
	}
	return s.views[model.FirstStep]
}

// Render draws the current step of st.
func (s *Sequencer) Render(st *model.FlowState) View {
	v := s.ViewFor(st.CurrentStep).Render(st)
	v.CanSubmit = v.Step == model.StepReview && s.ReadyToSubmit(st)
	return v
}

// ReadyToSubmit reports whether every forward gate before review is satisfied.
func (s *Sequencer) ReadyToSubmit(st *model.FlowState) bool {
	for step := model.FirstStep; step < model.LastStep; step++ {
		if !s.views[step].CanProceed(st) {
			return false
		}
	}
	return true
}

func baseView(v StepView, st *model.FlowState) View {
	return View{
		Step:       v.Step(),
		Name:       v.Step().String(),
		CanProceed: v.CanProceed(st),
		CanGoBack:  v.Step() > model.FirstStep,
	}
}

// ---- service type ----

type serviceTypeView struct{}

func (serviceTypeView) Step() model.Step { return model.StepServiceType }

func (serviceTypeView) CanProceed(st *model.FlowState) bool { return st.HasService() }

func (v serviceTypeView) Render(st *model.FlowState) View {
	out := baseView(v, st)
	for _, s := range model.ServiceCatalog() {
		out.Services = append(out.Services, ServiceOption{
			ServiceType: s,
			Selected:    st.ServiceType != nil && st.ServiceType.ID == s.ID,
		})
	}
	return out
}

// ---- personal info ----

type personalInfoView struct{}

func (personalInfoView) Step() model.Step { return model.StepPersonalInfo }

func (personalInfoView) CanProceed(st *model.FlowState) bool { return st.HasRequiredPersonalInfo() }

func (v personalInfoView) Render(st *model.FlowState) View {
	out := baseView(v, st)
	p := st.PersonalInfo
	out.Fields = []FieldView{
		{Name: "firstName", Value: p.FirstName, Required: true},
		{Name: "lastName", Value: p.LastName, Required: true},
		{Name: "email", Value: p.Email, Required: true},
		{Name: "phone", Value: p.Phone, Required: true},
		{Name: "nationality", Value: p.Nationality},
		{Name: "address", Value: p.Address},
	}
	return out
}

// ---- documents ----

type documentsView struct{}

func (documentsView) Step() model.Step { return model.StepDocuments }

func (documentsView) CanProceed(st *model.FlowState) bool { return st.HasMandatoryDocuments() }

func (v documentsView) Render(st *model.FlowState) View {
	out := baseView(v, st)
	for _, info := range model.DocumentSlots() {
		out.Slots = append(out.Slots, SlotView{DocumentSlotInfo: info, File: st.Documents.Get(info.Slot)})
	}
	return out
}

// ---- review ----

type reviewView struct{}

func (reviewView) Step() model.Step { return model.StepReview }

// Review is the last step; there is nothing to move forward to.
func (reviewView) CanProceed(*model.FlowState) bool { return false }

func (v reviewView) Render(st *model.FlowState) View {
	out := baseView(v, st)
	sum := &ReviewSummary{
		ApplicantName: st.PersonalInfo.FullName(),
		Email:         st.PersonalInfo.Email,
		DocumentCount: st.Documents.Count(),
	}
	if st.ServiceType != nil {
		sum.ServiceLabel = st.ServiceType.Label
		sum.Fee = st.ServiceType.Price
	}
	out.Summary = sum
	return out
}
