// Package seed holds the demo cases shown on the client and admin dashboards.
package seed

import (
	"time"

	"case-portal/internal/domain/model"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// DemoCases returns fresh copies on every call.
func DemoCases() []*model.Case {
	type row struct {
		id, serviceID, label, fee      string
		applicant, email, phone        string
		status                         model.CaseStatus
		priority                       model.CasePriority
		submitted, updated, consultant string
	}
	rows := []row{
		{"C001", model.ServiceWorkPermit, "Work Permit", "$1,500", "John Smith", "john.smith@email.com", "+1 (555) 123-4567",
			model.CaseStatusInReview, model.PriorityHigh, "2026-02-15", "2026-02-18", "Sarah Johnson"},
		{"C007", model.ServiceStudyPermit, "Study Permit", "$1,200", "John Smith", "john.smith@email.com", "+1 (555) 123-4567",
			model.CaseStatusInReview, model.PriorityMedium, "2026-02-10", "2026-02-12", "Michael Chen"},
		{"C012", "visitor_visa", "Visitor Visa", "", "John Smith", "john.smith@email.com", "+1 (555) 123-4567",
			model.CaseStatusApproved, model.PriorityLow, "2026-01-20", "2026-02-05", "Emily Rodriguez"},
		{"C015", model.ServiceWorkPermit, "Work Permit", "$1,500", "John Smith", "john.smith@email.com", "+1 (555) 123-4567",
			model.CaseStatusDocumentsRequired, model.PriorityHigh, "2026-02-18", "2026-02-22", "Sarah Johnson"},
		{"CASE-2024-001", model.ServiceWorkPermit, "Work Permit", "$1,500", "John Smith", "john.smith@email.com", "+1 (555) 123-4567",
			model.CaseStatusInReview, model.PriorityHigh, "2026-02-15", "2026-02-18", "Sarah Johnson"},
		{"CASE-2024-002", model.ServiceStudyPermit, "Study Permit", "$1,200", "John Smith", "john.smith@email.com", "+1 (555) 123-4567",
			model.CaseStatusDocumentsRequired, model.PriorityHigh, "2026-02-01", "2026-02-22", "Michael Chen"},
	}

	out := make([]*model.Case, 0, len(rows))
	for _, r := range rows {
		out = append(out, &model.Case{
			ID:            r.id,
			ServiceID:     r.serviceID,
			ServiceLabel:  r.label,
			Fee:           r.fee,
			ApplicantName: r.applicant,
			Email:         r.email,
			Phone:         r.phone,
			Documents:     map[model.DocumentSlot]string{},
			Status:        r.status,
			Priority:      r.priority,
			Consultant:    r.consultant,
			SubmittedAt:   day(r.submitted),
			UpdatedAt:     day(r.updated),
		})
	}
	return out
}
