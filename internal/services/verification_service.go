package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"givehub/internal/models"
	"givehub/internal/storage"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrAlreadyVerified      = errors.New("organization already verified")
	ErrDocumentTooLarge     = errors.New("document exceeds the 1MB limit")
	ErrInvalidDocumentType  = errors.New("document must be a PDF")
	ErrRequestNotFound      = errors.New("verification request not found")
	ErrNotificationFailed   = errors.New("notification dispatch failed")
)

// AttemptsExhaustedError means the 3-attempt cap is hit and the 7-day
// cooldown is still running.
type AttemptsExhaustedError struct {
	DaysRemaining int
}

func (e *AttemptsExhaustedError) Error() string {
	return fmt.Sprintf("verification attempts exhausted, try again in %d day(s)", e.DaysRemaining)
}

// NotPendingError means a review was attempted on a request that already
// left the pending state.
type NotPendingError struct {
	CurrentStatus string
}

func (e *NotPendingError) Error() string {
	return fmt.Sprintf("request is not pending (current status: %s)", e.CurrentStatus)
}

// RequestStore is the persistence adapter for verification requests.
// Implemented by repositories.VerificationRepository.
type RequestStore interface {
	Insert(req *models.VerificationRequest) error
	GetByID(id int64) (*models.VerificationRequest, error)
	ListByOrganization(organizationID int64) ([]*models.VerificationRequest, error)
	ListPending(limit, offset int) ([]*models.VerificationRequest, error)
	MarkCancelled(id int64) error
	Review(id int64, status string, reviewer models.Reviewer, notes string) error
	DeleteByIDs(ids []int64) error
	Delete(id int64) error
}

// OrganizationStore is the read side plus the single is_verified write.
type OrganizationStore interface {
	GetByID(id int64) (*models.Organization, error)
	SetVerified(id int64) error
}

// Notifier delivers the transactional mails of the workflow.
type Notifier interface {
	SendAdminReviewRequest(org *models.Organization, req *models.VerificationRequest, reviewLink string) error
	SendVerificationApproved(org *models.Organization, certificatePath string) error
	SendVerificationRejected(org *models.Organization, notes string, attemptsRemaining int, resubmitLink string) error
}

// CertificateGenerator produces the approval certificate PDF and returns its
// absolute path. Implemented by pdf.CertificateGenerator.
type CertificateGenerator interface {
	GenerateCertificate(org *models.Organization, reviewer models.Reviewer, approvedAt time.Time) (string, error)
}

// ReviewerAlerter is an optional fan-out channel (Telegram). Best effort
// only: it must never decide the outcome of a submission.
type ReviewerAlerter interface {
	AlertNewRequest(org *models.Organization, req *models.VerificationRequest) error
}

type VerificationService struct {
	Requests RequestStore
	Orgs     OrganizationStore
	Docs     storage.DocumentStore
	Notifier Notifier
	Certs    CertificateGenerator
	Alerts   ReviewerAlerter // may be nil

	ReviewBaseURL string
	Now           func() time.Time
}

func NewVerificationService(
	requests RequestStore,
	orgs OrganizationStore,
	docs storage.DocumentStore,
	notifier Notifier,
	certs CertificateGenerator,
	alerts ReviewerAlerter,
	reviewBaseURL string,
) *VerificationService {
	return &VerificationService{
		Requests:      requests,
		Orgs:          orgs,
		Docs:          docs,
		Notifier:      notifier,
		Certs:         certs,
		Alerts:        alerts,
		ReviewBaseURL: strings.TrimRight(reviewBaseURL, "/"),
		Now:           time.Now,
	}
}

// SubmitRequest runs the whole submission flow: validation, attempt/cooldown
// policy, cancellation of a previous pending request, document upload, row
// insert and the reviewer notification. A failed notification rolls the
// submission back entirely.
func (s *VerificationService) SubmitRequest(organizationID int64, documentName, contentType string, data []byte) (*models.VerificationRequest, error) {
	org, err := s.Orgs.GetByID(organizationID)
	if err != nil {
		return nil, fmt.Errorf("load organization: %w", err)
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}
	if org.IsVerified {
		return nil, ErrAlreadyVerified
	}

	if len(data) > MaxDocumentSize {
		return nil, ErrDocumentTooLarge
	}
	if mediaType(contentType) != DocumentMIME {
		return nil, ErrInvalidDocumentType
	}

	now := s.Now()
	reqs, err := s.Requests.ListByOrganization(organizationID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	if consumedAttempts(reqs) >= MaxAttempts {
		// Cooldown is anchored to the most recent submission regardless of
		// its status.
		if days := cooldownDaysLeft(reqs[0].SubmittedAt, now); days > 0 {
			return nil, &AttemptsExhaustedError{DaysRemaining: days}
		}
		// Cooldown over: the attempt cycle resets. Old rows and their
		// documents are gone for good.
		if err := s.purgeRequests(reqs); err != nil {
			return nil, fmt.Errorf("reset attempt cycle: %w", err)
		}
		reqs = nil
	}

	if p := findPending(reqs); p != nil {
		if err := s.Requests.MarkCancelled(p.ID); err != nil {
			return nil, fmt.Errorf("cancel previous request: %w", err)
		}
	}

	path := storage.DerivePath(organizationID, documentName, now)
	if err := s.Docs.Save(path, data); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	req := &models.VerificationRequest{
		OrganizationID: organizationID,
		DocumentPath:   path,
		DocumentName:   documentName,
		Status:         models.VerificationStatusPending,
		SubmittedAt:    now,
	}
	if err := s.Requests.Insert(req); err != nil {
		s.removeDocuments(path)
		return nil, err
	}

	// A request must never exist without a successful reviewer notification:
	// on failure the row and the document are taken back out.
	reviewLink := fmt.Sprintf("%s/admin/verifications/%d", s.ReviewBaseURL, req.ID)
	if err := s.Notifier.SendAdminReviewRequest(org, req, reviewLink); err != nil {
		log.Printf("[verification][submit] admin mail failed, rolling back request=%d org=%d: %v", req.ID, organizationID, err)
		if derr := s.Requests.Delete(req.ID); derr != nil {
			log.Printf("[verification][submit] rollback delete failed request=%d: %v", req.ID, derr)
		}
		s.removeDocuments(path)
		return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	if s.Alerts != nil {
		if err := s.Alerts.AlertNewRequest(org, req); err != nil {
			log.Printf("[verification][submit] reviewer alert failed request=%d: %v", req.ID, err)
		}
	}

	log.Printf("[verification][submit] ok org=%d request=%d doc=%s", organizationID, req.ID, path)
	return req, nil
}

// Approve moves a pending request to its terminal approved state, flips the
// organization flag and prunes the rest of the history. Notification and
// certificate generation are best effort: the status change is the durable
// source of truth.
func (s *VerificationService) Approve(requestID int64, reviewer models.Reviewer, notes string) error {
	req, err := s.Requests.GetByID(requestID)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.Status != models.VerificationStatusPending {
		return &NotPendingError{CurrentStatus: req.Status}
	}

	if err := s.Requests.Review(requestID, models.VerificationStatusApproved, reviewer, notes); err != nil {
		return fmt.Errorf("approve request: %w", err)
	}
	if err := s.Orgs.SetVerified(req.OrganizationID); err != nil {
		return fmt.Errorf("set organization verified: %w", err)
	}

	// Retention cleanup: only the approved record and its document survive.
	reqs, err := s.Requests.ListByOrganization(req.OrganizationID)
	if err != nil {
		log.Printf("[verification][approve] history load failed org=%d: %v", req.OrganizationID, err)
	} else {
		var others []*models.VerificationRequest
		for _, r := range reqs {
			if r.ID != requestID {
				others = append(others, r)
			}
		}
		if err := s.purgeRequests(others); err != nil {
			log.Printf("[verification][approve] history cleanup failed org=%d: %v", req.OrganizationID, err)
		}
	}

	org, err := s.Orgs.GetByID(req.OrganizationID)
	if err != nil || org == nil {
		log.Printf("[verification][approve] organization load failed org=%d: %v", req.OrganizationID, err)
		return nil
	}

	certPath := ""
	if s.Certs != nil {
		certPath, err = s.Certs.GenerateCertificate(org, reviewer, s.Now())
		if err != nil {
			log.Printf("[verification][approve] certificate generation failed org=%d: %v", org.ID, err)
			certPath = ""
		}
	}
	if err := s.Notifier.SendVerificationApproved(org, certPath); err != nil {
		log.Printf("[verification][approve] approval mail failed org=%d: %v", org.ID, err)
	}

	log.Printf("[verification][approve] ok org=%d request=%d", org.ID, requestID)
	return nil
}

// Reject moves a pending request to rejected and tells the organization how
// many attempts it has left. Notes are validated at the HTTP boundary.
func (s *VerificationService) Reject(requestID int64, reviewer models.Reviewer, notes string) error {
	req, err := s.Requests.GetByID(requestID)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.Status != models.VerificationStatusPending {
		return &NotPendingError{CurrentStatus: req.Status}
	}

	// Consumed attempts are measured while the row is still pending, so the
	// rejected submission itself counts as one used attempt in the message.
	reqs, err := s.Requests.ListByOrganization(req.OrganizationID)
	if err != nil {
		return fmt.Errorf("list requests: %w", err)
	}
	remaining := attemptsRemaining(consumedAttempts(reqs))

	if err := s.Requests.Review(requestID, models.VerificationStatusRejected, reviewer, notes); err != nil {
		return fmt.Errorf("reject request: %w", err)
	}

	org, err := s.Orgs.GetByID(req.OrganizationID)
	if err != nil || org == nil {
		log.Printf("[verification][reject] organization load failed org=%d: %v", req.OrganizationID, err)
		return nil
	}
	resubmitLink := ""
	if remaining > 0 {
		resubmitLink = fmt.Sprintf("%s/verification/submit", s.ReviewBaseURL)
	}
	if err := s.Notifier.SendVerificationRejected(org, notes, remaining, resubmitLink); err != nil {
		log.Printf("[verification][reject] rejection mail failed org=%d: %v", org.ID, err)
	}

	log.Printf("[verification][reject] ok org=%d request=%d remaining=%d", org.ID, requestID, remaining)
	return nil
}

// GetStatus derives the dashboard view for an organization. Pure read.
func (s *VerificationService) GetStatus(organizationID int64) (*models.VerificationStatusView, error) {
	org, err := s.Orgs.GetByID(organizationID)
	if err != nil {
		return nil, fmt.Errorf("load organization: %w", err)
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}
	if org.IsVerified {
		return &models.VerificationStatusView{Status: models.VerificationStatusApproved}, nil
	}

	reqs, err := s.Requests.ListByOrganization(organizationID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	consumed := consumedAttempts(reqs)

	if p := findPending(reqs); p != nil {
		at := p.SubmittedAt
		return &models.VerificationStatusView{
			Status:            models.VerificationStatusPending,
			AttemptsUsed:      consumed,
			AttemptsRemaining: attemptsRemaining(consumed),
			CanSubmit:         consumed < MaxAttempts,
			SubmittedAt:       &at,
		}, nil
	}

	if len(reqs) > 0 && reqs[0].Status == models.VerificationStatusRejected {
		// The latest rejected submission displays as a used attempt even
		// though it does not gate resubmission (see DESIGN.md).
		used := consumed + 1
		at := reqs[0].SubmittedAt
		return &models.VerificationStatusView{
			Status:            models.VerificationStatusRejected,
			AttemptsUsed:      used,
			AttemptsRemaining: attemptsRemaining(used),
			CanSubmit:         consumed < MaxAttempts,
			AdminNotes:        reqs[0].AdminNotes,
			SubmittedAt:       &at,
		}, nil
	}

	if consumed >= MaxAttempts {
		if days := cooldownDaysLeft(reqs[0].SubmittedAt, s.Now()); days > 0 {
			return &models.VerificationStatusView{
				Status:        "cooldown",
				AttemptsUsed:  consumed,
				CanSubmit:     false,
				DaysRemaining: days,
			}, nil
		}
	}

	if len(reqs) > 0 {
		at := reqs[0].SubmittedAt
		return &models.VerificationStatusView{
			Status:            models.VerificationStatusCancelled,
			AttemptsUsed:      consumed,
			AttemptsRemaining: attemptsRemaining(consumed),
			CanSubmit:         true,
			SubmittedAt:       &at,
		}, nil
	}

	return &models.VerificationStatusView{
		Status:            "none",
		AttemptsRemaining: MaxAttempts,
		CanSubmit:         true,
	}, nil
}

// PendingQueue returns the reviewer work list with the owning organization
// attached to each entry.
type PendingReview struct {
	Request      *models.VerificationRequest `json:"request"`
	Organization *models.Organization        `json:"organization"`
}

func (s *VerificationService) PendingQueue(limit, offset int) ([]*PendingReview, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	reqs, err := s.Requests.ListPending(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	out := make([]*PendingReview, 0, len(reqs))
	for _, r := range reqs {
		org, err := s.Orgs.GetByID(r.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("load organization %d: %w", r.OrganizationID, err)
		}
		out = append(out, &PendingReview{Request: r, Organization: org})
	}
	return out, nil
}

// RequestDetail returns one request with the owning organization and its
// full submission history (for the review screen).
func (s *VerificationService) RequestDetail(requestID int64) (*PendingReview, []*models.VerificationRequest, error) {
	req, err := s.Requests.GetByID(requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return nil, nil, ErrRequestNotFound
	}
	org, err := s.Orgs.GetByID(req.OrganizationID)
	if err != nil {
		return nil, nil, fmt.Errorf("load organization: %w", err)
	}
	history, err := s.Requests.ListByOrganization(req.OrganizationID)
	if err != nil {
		return nil, nil, fmt.Errorf("load history: %w", err)
	}
	return &PendingReview{Request: req, Organization: org}, history, nil
}

// DocumentForRequest resolves the evidence document of a request to an
// absolute path for serving, plus the original filename.
func (s *VerificationService) DocumentForRequest(requestID int64) (absPath, fileName string, err error) {
	req, err := s.Requests.GetByID(requestID)
	if err != nil {
		return "", "", fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return "", "", ErrRequestNotFound
	}
	abs, err := s.Docs.Resolve(req.DocumentPath)
	if err != nil {
		return "", "", err
	}
	name := req.DocumentName
	if name == "" {
		name = "document.pdf"
	}
	return abs, name, nil
}

func (s *VerificationService) purgeRequests(reqs []*models.VerificationRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(reqs))
	paths := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
		paths = append(paths, r.DocumentPath)
	}
	if err := s.Requests.DeleteByIDs(ids); err != nil {
		return err
	}
	s.removeDocuments(paths...)
	return nil
}

func (s *VerificationService) removeDocuments(paths ...string) {
	if err := s.Docs.Remove(paths...); err != nil {
		log.Printf("[verification][cleanup] document removal failed: %v", err)
	}
}

// mediaType strips parameters from a Content-Type header value.
func mediaType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
