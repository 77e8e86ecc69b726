package seed

import "testing"

func TestDemoCases(t *testing.T) {
	cases := DemoCases()
	if len(cases) == 0 {
		t.Fatal("expected demo cases")
	}
	seen := map[string]bool{}
	for _, c := range cases {
		if seen[c.ID] {
			t.Errorf("duplicate id %s", c.ID)
		}
		seen[c.ID] = true
		if !c.Status.Valid() {
			t.Errorf("%s has invalid status %q", c.ID, c.Status)
		}
		if c.UpdatedAt.Before(c.SubmittedAt) {
			t.Errorf("%s updated before it was submitted", c.ID)
		}
	}
	cases[0].Status = "mutated"
	if DemoCases()[0].Status == "mutated" {
		t.Error("DemoCases must return fresh values")
	}
}
