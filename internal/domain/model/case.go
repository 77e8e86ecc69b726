package model

import (
	"crypto/rand"
	"strings"
	"time"

	"case-portal/internal/domain"

	"github.com/oklog/ulid/v2"
)

type CaseStatus string

const (
	CaseStatusSubmitted         CaseStatus = "submitted"
	CaseStatusInReview          CaseStatus = "in_review"
	CaseStatusDocumentsRequired CaseStatus = "documents_required"
	CaseStatusApproved          CaseStatus = "approved"
	CaseStatusRejected          CaseStatus = "rejected"
)

// CaseStatuses lists every status in the order the admin status picker shows them.
func CaseStatuses() []CaseStatus {
	return []CaseStatus{
		CaseStatusInReview,
		CaseStatusDocumentsRequired,
		CaseStatusSubmitted,
		CaseStatusApproved,
		CaseStatusRejected,
	}
}

var caseStatusLabels = map[CaseStatus]string{
	CaseStatusSubmitted:         "Submitted",
	CaseStatusInReview:          "In Review",
	CaseStatusDocumentsRequired: "Documents Required",
	CaseStatusApproved:          "Approved",
	CaseStatusRejected:          "Rejected",
}

func (s CaseStatus) Valid() bool {
	_, ok := caseStatusLabels[s]
	return ok
}

func (s CaseStatus) Label() string {
	if l, ok := caseStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseCaseStatus accepts either the identifier or the display label.
func ParseCaseStatus(s string) (CaseStatus, error) {
	v := strings.TrimSpace(s)
	if st := CaseStatus(strings.ToLower(v)); st.Valid() {
		return st, nil
	}
	for st, label := range caseStatusLabels {
		if strings.EqualFold(label, v) {
			return st, nil
		}
	}
	return "", domain.ErrInvalidStatus
}

type CasePriority string

const (
	PriorityHigh   CasePriority = "high"
	PriorityMedium CasePriority = "medium"
	PriorityLow    CasePriority = "low"
)

// Case is a submitted application as shown on the dashboards.
type Case struct {
	ID            string                  `json:"id"`
	SessionID     string                  `json:"session_id,omitempty"`
	ServiceID     string                  `json:"service_id"`
	ServiceLabel  string                  `json:"service_label"`
	Fee           string                  `json:"fee"`
	ApplicantName string                  `json:"applicant_name"`
	Email         string                  `json:"email"`
	Phone         string                  `json:"phone"`
	Nationality   string                  `json:"nationality,omitempty"`
	Address       string                  `json:"address,omitempty"`
	Documents     map[DocumentSlot]string `json:"documents"`
	Status        CaseStatus              `json:"status"`
	Priority      CasePriority            `json:"priority"`
	Consultant    string                  `json:"consultant,omitempty"`
	SubmittedAt   time.Time               `json:"submitted_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// CaseSummary is the public view of a case. It carries no applicant details.
type CaseSummary struct {
	ID            string       `json:"id"`
	ServiceID     string       `json:"service_id"`
	ServiceLabel  string       `json:"service_label"`
	Fee           string       `json:"fee"`
	Status        CaseStatus   `json:"status"`
	StatusLabel   string       `json:"status_label"`
	Priority      CasePriority `json:"priority"`
	Consultant    string       `json:"consultant,omitempty"`
	DocumentCount int          `json:"document_count"`
	SubmittedAt   time.Time    `json:"submitted_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (c *Case) Summary() CaseSummary {
	return CaseSummary{
		ID:            c.ID,
		ServiceID:     c.ServiceID,
		ServiceLabel:  c.ServiceLabel,
		Fee:           c.Fee,
		Status:        c.Status,
		StatusLabel:   c.Status.Label(),
		Priority:      c.Priority,
		Consultant:    c.Consultant,
		DocumentCount: len(c.Documents),
		SubmittedAt:   c.SubmittedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// NewCaseID returns a sortable case identifier.
func NewCaseID(at time.Time) string {
	return "CASE-" + ulid.MustNew(ulid.Timestamp(at), rand.Reader).String()
}

// NewCaseFromFlow builds the case recorded when a flow is submitted.
func NewCaseFromFlow(f *FlowState, at time.Time) (*Case, error) {
	if f == nil || f.ServiceType == nil {
		return nil, domain.ErrIncompleteFlow
	}
	info := f.PersonalInfo
	return &Case{
		ID:            NewCaseID(at),
		SessionID:     f.SessionID,
		ServiceID:     f.ServiceType.ID,
		ServiceLabel:  f.ServiceType.Label,
		Fee:           f.ServiceType.Price,
		ApplicantName: info.FullName(),
		Email:         info.Email,
		Phone:         info.Phone,
		Nationality:   info.Nationality,
		Address:       info.Address,
		Documents:     f.Documents.Names(),
		Status:        CaseStatusSubmitted,
		Priority:      PriorityMedium,
		SubmittedAt:   at,
		UpdatedAt:     at,
	}, nil
}

// Matches reports whether the case contains term in its ID, service, applicant or consultant.
func (c *Case) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, v := range []string{c.ID, c.ServiceLabel, c.ApplicantName, c.Consultant} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}
