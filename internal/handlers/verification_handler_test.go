package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givehub/internal/models"
	"givehub/internal/services"
	"givehub/internal/storage"
)

// minimal in-memory adapters for the handler tests

type fakeRequests struct {
	nextID   int64
	requests map[int64]*models.VerificationRequest
}

func newFakeRequests() *fakeRequests {
	return &fakeRequests{nextID: 1, requests: map[int64]*models.VerificationRequest{}}
}

func (f *fakeRequests) Insert(req *models.VerificationRequest) error {
	req.ID = f.nextID
	f.nextID++
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeRequests) GetByID(id int64) (*models.VerificationRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequests) ListByOrganization(orgID int64) ([]*models.VerificationRequest, error) {
	var out []*models.VerificationRequest
	for _, r := range f.requests {
		if r.OrganizationID == orgID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (f *fakeRequests) ListPending(limit, offset int) ([]*models.VerificationRequest, error) {
	return nil, nil
}

func (f *fakeRequests) MarkCancelled(id int64) error {
	if r, ok := f.requests[id]; ok {
		r.Status = models.VerificationStatusCancelled
	}
	return nil
}

func (f *fakeRequests) Review(id int64, status string, reviewer models.Reviewer, notes string) error {
	r, ok := f.requests[id]
	if !ok {
		return errors.New("not found")
	}
	now := time.Now()
	r.Status = status
	r.ReviewedAt = &now
	r.AdminNotes = notes
	return nil
}

func (f *fakeRequests) DeleteByIDs(ids []int64) error {
	for _, id := range ids {
		delete(f.requests, id)
	}
	return nil
}

func (f *fakeRequests) Delete(id int64) error {
	delete(f.requests, id)
	return nil
}

type fakeOrgs struct {
	org *models.Organization
}

func (f *fakeOrgs) GetByID(id int64) (*models.Organization, error) {
	if f.org != nil && f.org.ID == id {
		cp := *f.org
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeOrgs) SetVerified(id int64) error {
	if f.org != nil && f.org.ID == id {
		f.org.IsVerified = true
	}
	return nil
}

type fakeNotifier struct{}

func (fakeNotifier) SendAdminReviewRequest(*models.Organization, *models.VerificationRequest, string) error {
	return nil
}
func (fakeNotifier) SendVerificationApproved(*models.Organization, string) error { return nil }
func (fakeNotifier) SendVerificationRejected(*models.Organization, string, int, string) error {
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeRequests, *fakeOrgs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	requests := newFakeRequests()
	orgs := &fakeOrgs{org: &models.Organization{ID: 1, Name: "Helping Hands", Email: "c@h.org"}}
	svc := services.NewVerificationService(
		requests, orgs, storage.NewDiskStore(t.TempDir()), fakeNotifier{}, nil, nil,
		"https://dashboard.example",
	)

	h := NewVerificationHandler(svc)
	rh := NewReviewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("organization_id", int64(1))
		c.Set("role_id", 10)
	})
	r.POST("/verification/submit", h.Submit)
	r.GET("/verification/status", h.Status)
	r.POST("/admin/verifications/:id/approve", rh.Approve)
	r.POST("/admin/verifications/:id/reject", rh.Reject)
	return r, requests, orgs
}

func multipartPDF(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestSubmitEndpoint(t *testing.T) {
	t.Run("accepts a pdf upload", func(t *testing.T) {
		r, requests, _ := newTestRouter(t)
		body, ct := multipartPDF(t, "document", "charter.pdf", "application/pdf", []byte("%PDF-1.4"))

		req := httptest.NewRequest(http.MethodPost, "/verification/submit", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Len(t, requests.requests, 1)
	})

	t.Run("rejects a non-pdf upload", func(t *testing.T) {
		r, requests, _ := newTestRouter(t)
		body, ct := multipartPDF(t, "document", "photo.png", "image/png", []byte("png"))

		req := httptest.NewRequest(http.MethodPost, "/verification/submit", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		assert.Empty(t, requests.requests)
	})

	t.Run("rejects an oversized upload", func(t *testing.T) {
		r, _, _ := newTestRouter(t)
		body, ct := multipartPDF(t, "document", "big.pdf", "application/pdf", make([]byte, 2<<20))

		req := httptest.NewRequest(http.MethodPost, "/verification/submit", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		r, _, _ := newTestRouter(t)
		req := httptest.NewRequest(http.MethodPost, "/verification/submit", bytes.NewBufferString(""))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStatusEndpoint(t *testing.T) {
	r, requests, _ := newTestRouter(t)
	requests.requests[9] = &models.VerificationRequest{
		ID: 9, OrganizationID: 1, Status: models.VerificationStatusPending, SubmittedAt: time.Now(),
	}

	req := httptest.NewRequest(http.MethodGet, "/verification/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var view models.VerificationStatusView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, models.VerificationStatusPending, view.Status)
	assert.Equal(t, 1, view.AttemptsUsed)
	assert.True(t, view.CanSubmit)
}

func TestRejectEndpoint_NotesValidation(t *testing.T) {
	r, requests, _ := newTestRouter(t)
	requests.requests[3] = &models.VerificationRequest{
		ID: 3, OrganizationID: 1, Status: models.VerificationStatusPending, SubmittedAt: time.Now(),
	}

	t.Run("short notes are refused", func(t *testing.T) {
		body := `{"first_name":"Dana","last_name":"Lee","notes":"too short"}`
		req := httptest.NewRequest(http.MethodPost, "/admin/verifications/3/reject", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("proper notes go through", func(t *testing.T) {
		body := `{"first_name":"Dana","last_name":"Lee","notes":"registration document is unreadable"}`
		req := httptest.NewRequest(http.MethodPost, "/admin/verifications/3/reject", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}

func TestApproveEndpoint(t *testing.T) {
	r, requests, orgs := newTestRouter(t)
	requests.requests[5] = &models.VerificationRequest{
		ID: 5, OrganizationID: 1, Status: models.VerificationStatusPending, SubmittedAt: time.Now(),
	}

	body := `{"first_name":"Dana","last_name":"Lee","notes":"ok"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/verifications/5/approve", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, orgs.org.IsVerified)

	// approving twice conflicts
	req = httptest.NewRequest(http.MethodPost, "/admin/verifications/5/approve", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}