package usecase

import (
	"testing"

	"case-portal/internal/domain/model"
)

func TestSequencer_ViewFor(t *testing.T) {
	seq := NewSequencer()
	for _, step := range []model.Step{model.StepServiceType, model.StepPersonalInfo, model.StepDocuments, model.StepReview} {
		if got := seq.ViewFor(step).Step(); got != step {
			t.Errorf("ViewFor(%d) returned view for %d", step, got)
		}
	}
	if got := seq.ViewFor(9).Step(); got != model.StepServiceType {
		t.Errorf("out of range step should fall back to the first view, got %d", got)
	}
}

func TestSequencer_Render(t *testing.T) {
	seq := NewSequencer()
	st := model.NewFlowState("s1")

	t.Run("service type lists the catalog", func(t *testing.T) {
		svc, _ := model.LookupService(model.ServiceFamilySponsorship)
		st.SetServiceType(&svc)
		v := seq.Render(st)
		if len(v.Services) != 4 || !v.CanProceed || v.CanGoBack {
			t.Fatalf("unexpected view: %+v", v)
		}
		selected := 0
		for _, o := range v.Services {
			if o.Selected {
				selected++
				if o.ID != model.ServiceFamilySponsorship {
					t.Errorf("wrong option selected: %s", o.ID)
				}
			}
		}
		if selected != 1 {
			t.Errorf("expected one selected option, got %d", selected)
		}
	})

	t.Run("documents shows every slot", func(t *testing.T) {
		st.SetStep(model.StepDocuments)
		st.SetDocument(model.SlotPhoto, &model.DocumentRef{Name: "me.jpg"})
		v := seq.Render(st)
		if len(v.Slots) != 6 || v.CanProceed {
			t.Fatalf("unexpected documents view: %+v", v)
		}
		for _, s := range v.Slots {
			if (s.File != nil) != (s.Slot == model.SlotPhoto) {
				t.Errorf("slot %s has unexpected file %+v", s.Slot, s.File)
			}
		}
	})

	t.Run("review summary without submit", func(t *testing.T) {
		st.SetStep(model.StepReview)
		v := seq.Render(st)
		if v.Summary == nil || v.Summary.Fee != "$2,000" || v.Summary.DocumentCount != 1 {
			t.Fatalf("unexpected summary: %+v", v.Summary)
		}
		if v.CanSubmit || v.CanProceed {
			t.Fatal("incomplete flow must not be submittable")
		}
	})
}
