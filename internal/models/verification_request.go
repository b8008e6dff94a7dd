package models

import "time"

// Verification request statuses. A request is mutable only while pending:
// a new submission cancels it, a reviewer approves or rejects it.
const (
	VerificationStatusPending   = "pending"
	VerificationStatusApproved  = "approved"
	VerificationStatusRejected  = "rejected"
	VerificationStatusCancelled = "cancelled"
)

// VerificationRequest is one submission attempt with an evidence document.
// Review fields are set only on approval/rejection.
type VerificationRequest struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	DocumentPath   string    `json:"document_path"`
	DocumentName   string    `json:"document_name"`
	Status         string    `json:"status"`
	SubmittedAt    time.Time `json:"submitted_at"`

	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	ReviewedByFirstName string     `json:"reviewed_by_first_name,omitempty"`
	ReviewedByLastName  string     `json:"reviewed_by_last_name,omitempty"`
	ReviewedByPhone     string     `json:"reviewed_by_phone,omitempty"`
	AdminNotes          string     `json:"admin_notes,omitempty"`
}

// Reviewer identifies the person who approved or rejected a request.
type Reviewer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// VerificationStatusView is what the organization dashboard renders.
// Status is one of approved|pending|rejected|cooldown|cancelled|none.
type VerificationStatusView struct {
	Status            string     `json:"status"`
	AttemptsUsed      int        `json:"attempts_used"`
	AttemptsRemaining int        `json:"attempts_remaining"`
	CanSubmit         bool       `json:"can_submit"`
	DaysRemaining     int        `json:"days_remaining,omitempty"`
	AdminNotes        string     `json:"admin_notes,omitempty"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
}
