package services

import (
	"errors"
	"sort"
	"time"

	"givehub/internal/models"
	"givehub/internal/repositories"
)

// In-memory stand-ins for the persistence and notification adapters.

type mockRequestStore struct {
	nextID   int64
	requests map[int64]*models.VerificationRequest

	insertErr error
}

func newMockRequestStore() *mockRequestStore {
	return &mockRequestStore{nextID: 1, requests: map[int64]*models.VerificationRequest{}}
}

func (m *mockRequestStore) Insert(req *models.VerificationRequest) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, r := range m.requests {
		if r.OrganizationID == req.OrganizationID && r.Status == models.VerificationStatusPending {
			return repositories.ErrPendingConflict
		}
	}
	req.ID = m.nextID
	m.nextID++
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *mockRequestStore) GetByID(id int64) (*models.VerificationRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *mockRequestStore) ListByOrganization(organizationID int64) ([]*models.VerificationRequest, error) {
	var out []*models.VerificationRequest
	for _, r := range m.requests {
		if r.OrganizationID == organizationID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (m *mockRequestStore) ListPending(limit, offset int) ([]*models.VerificationRequest, error) {
	var out []*models.VerificationRequest
	for _, r := range m.requests {
		if r.Status == models.VerificationStatusPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (m *mockRequestStore) MarkCancelled(id int64) error {
	if r, ok := m.requests[id]; ok && r.Status == models.VerificationStatusPending {
		r.Status = models.VerificationStatusCancelled
	}
	return nil
}

func (m *mockRequestStore) Review(id int64, status string, reviewer models.Reviewer, notes string) error {
	r, ok := m.requests[id]
	if !ok {
		return errors.New("no such request")
	}
	now := time.Now()
	r.Status = status
	r.ReviewedAt = &now
	r.ReviewedByFirstName = reviewer.FirstName
	r.ReviewedByLastName = reviewer.LastName
	r.ReviewedByPhone = reviewer.Phone
	r.AdminNotes = notes
	return nil
}

func (m *mockRequestStore) DeleteByIDs(ids []int64) error {
	for _, id := range ids {
		delete(m.requests, id)
	}
	return nil
}

func (m *mockRequestStore) Delete(id int64) error {
	delete(m.requests, id)
	return nil
}

// seed inserts a historical row directly, bypassing Insert checks.
func (m *mockRequestStore) seed(orgID int64, status string, submittedAt time.Time) *models.VerificationRequest {
	r := &models.VerificationRequest{
		ID:             m.nextID,
		OrganizationID: orgID,
		DocumentPath:   "doc_" + status,
		DocumentName:   "evidence.pdf",
		Status:         status,
		SubmittedAt:    submittedAt,
	}
	m.nextID++
	m.requests[r.ID] = r
	return r
}

type mockOrgStore struct {
	orgs map[int64]*models.Organization
}

func newMockOrgStore(orgs ...*models.Organization) *mockOrgStore {
	m := &mockOrgStore{orgs: map[int64]*models.Organization{}}
	for _, o := range orgs {
		m.orgs[o.ID] = o
	}
	return m
}

func (m *mockOrgStore) GetByID(id int64) (*models.Organization, error) {
	o, ok := m.orgs[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrgStore) SetVerified(id int64) error {
	if o, ok := m.orgs[id]; ok {
		o.IsVerified = true
	}
	return nil
}

type mockDocStore struct {
	files   map[string][]byte
	saveErr error
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{files: map[string][]byte{}}
}

func (m *mockDocStore) Save(path string, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.files[path] = data
	return nil
}

func (m *mockDocStore) Remove(paths ...string) error {
	for _, p := range paths {
		delete(m.files, p)
	}
	return nil
}

func (m *mockDocStore) Resolve(path string) (string, error) {
	if _, ok := m.files[path]; !ok {
		return "", errors.New("file not found")
	}
	return "/files/" + path, nil
}

type notifierCall struct {
	kind              string
	org               *models.Organization
	notes             string
	attemptsRemaining int
	link              string
	certificatePath   string
}

type mockNotifier struct {
	calls    []notifierCall
	adminErr error
}

func (m *mockNotifier) SendAdminReviewRequest(org *models.Organization, req *models.VerificationRequest, reviewLink string) error {
	if m.adminErr != nil {
		return m.adminErr
	}
	m.calls = append(m.calls, notifierCall{kind: "admin", org: org, link: reviewLink})
	return nil
}

func (m *mockNotifier) SendVerificationApproved(org *models.Organization, certificatePath string) error {
	m.calls = append(m.calls, notifierCall{kind: "approved", org: org, certificatePath: certificatePath})
	return nil
}

func (m *mockNotifier) SendVerificationRejected(org *models.Organization, notes string, attemptsRemaining int, resubmitLink string) error {
	m.calls = append(m.calls, notifierCall{kind: "rejected", org: org, notes: notes, attemptsRemaining: attemptsRemaining, link: resubmitLink})
	return nil
}

func (m *mockNotifier) last(kind string) *notifierCall {
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].kind == kind {
			return &m.calls[i]
		}
	}
	return nil
}
