package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"givehub/internal/repositories"
	"givehub/internal/services"
)

type VerificationHandler struct {
	service *services.VerificationService
}

func NewVerificationHandler(service *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// maps the domain error taxonomy to HTTP statuses
func respondVerificationError(c *gin.Context, err error) {
	var exhausted *services.AttemptsExhaustedError
	var notPending *services.NotPendingError

	switch {
	case errors.Is(err, services.ErrOrganizationNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no organization for this account"})
	case errors.Is(err, services.ErrAlreadyVerified):
		c.JSON(http.StatusConflict, gin.H{"error": "organization is already verified"})
	case errors.Is(err, services.ErrDocumentTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "document exceeds the 1MB limit"})
	case errors.Is(err, services.ErrInvalidDocumentType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "document must be a PDF"})
	case errors.Is(err, services.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "verification request not found"})
	case errors.Is(err, repositories.ErrPendingConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "a pending request already exists, try again"})
	case errors.As(err, &exhausted):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":          "verification attempts exhausted",
			"days_remaining": exhausted.DaysRemaining,
		})
	case errors.As(err, &notPending):
		c.JSON(http.StatusConflict, gin.H{
			"error":          "request is no longer pending",
			"current_status": notPending.CurrentStatus,
		})
	case errors.Is(err, services.ErrNotificationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not notify reviewers, submission was not accepted"})
	default:
		log.Printf("[verification][http] internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// @Summary      Submit a verification request
// @Description  Uploads an evidence document (PDF, max 1MB) and opens a new verification request
// @Tags         Verification
// @Accept       multipart/form-data
// @Produce      json
// @Param        document  formData  file  true  "Evidence document (PDF)"
// @Success      201  {object}  models.VerificationRequest
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      413  {object}  map[string]string
// @Failure      415  {object}  map[string]string
// @Failure      429  {object}  map[string]interface{}
// @Router       /verification/submit [post]
// @Security     BearerAuth
func (h *VerificationHandler) Submit(c *gin.Context) {
	orgID, ok := getOrganizationID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no organization for this account"})
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document file is required"})
		return
	}
	// fast reject before buffering anything
	if fileHeader.Size > services.MaxDocumentSize {
		respondVerificationError(c, services.ErrDocumentTooLarge)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read document"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, services.MaxDocumentSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read document"})
		return
	}

	req, err := h.service.SubmitRequest(orgID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		respondVerificationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// @Summary      Verification status
// @Description  Dashboard view of the organization's verification state
// @Tags         Verification
// @Produce      json
// @Success      200  {object}  models.VerificationStatusView
// @Failure      401  {object}  map[string]string
// @Router       /verification/status [get]
// @Security     BearerAuth
func (h *VerificationHandler) Status(c *gin.Context) {
	orgID, ok := getOrganizationID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no organization for this account"})
		return
	}
	view, err := h.service.GetStatus(orgID)
	if err != nil {
		respondVerificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
