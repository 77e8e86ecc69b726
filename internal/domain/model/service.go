package model

// ServiceType is a consulting offering the applicant picks on the first step.
// Price is kept as the display string shown to the applicant.
type ServiceType struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Price string `json:"price"`
}

const (
	ServiceWorkPermit         = "work_permit"
	ServiceStudyPermit        = "study_permit"
	ServicePermanentResidence = "permanent_residence"
	ServiceFamilySponsorship  = "family_sponsorship"
)

// serviceCatalog is ordered as presented to the applicant.
var serviceCatalog = []ServiceType{
	{ID: ServiceWorkPermit, Label: "Work Permit", Price: "$1,500"},
	{ID: ServiceStudyPermit, Label: "Study Permit", Price: "$1,200"},
	{ID: ServicePermanentResidence, Label: "Permanent Residence", Price: "$3,500"},
	{ID: ServiceFamilySponsorship, Label: "Family Sponsorship", Price: "$2,000"},
}

var serviceByID = func() map[string]ServiceType {
	m := make(map[string]ServiceType, len(serviceCatalog))
	for _, s := range serviceCatalog {
		m[s.ID] = s
	}
	return m
}()

// ServiceCatalog returns a copy of the fixed offering list.
func ServiceCatalog() []ServiceType {
	out := make([]ServiceType, len(serviceCatalog))
	copy(out, serviceCatalog)
	return out
}

// LookupService resolves a catalog entry by its identifier.
func LookupService(id string) (ServiceType, bool) {
	s, ok := serviceByID[id]
	return s, ok
}
