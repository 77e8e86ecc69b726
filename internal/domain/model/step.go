package model

// Step is a position in the case submission wizard.
type Step int

const (
	StepServiceType  Step = 1
	StepPersonalInfo Step = 2
	StepDocuments    Step = 3
	StepReview       Step = 4

	FirstStep = StepServiceType
	LastStep  = StepReview
)

// Valid reports whether s is one of the four wizard steps.
func (s Step) Valid() bool { return s >= FirstStep && s <= LastStep }

func (s Step) String() string {
	switch s {
	case StepServiceType:
		return "service_type"
	case StepPersonalInfo:
		return "personal_info"
	case StepDocuments:
		return "documents"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}
