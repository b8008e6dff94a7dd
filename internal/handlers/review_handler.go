package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"givehub/internal/models"
	"givehub/internal/services"
)

// ReviewHandler is the reviewer/admin side of the verification workflow.
type ReviewHandler struct {
	service *services.VerificationService
}

func NewReviewHandler(service *services.VerificationService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

type reviewDecision struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

type rejectDecision struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
	// A rejection must explain itself.
	Notes string `json:"notes" binding:"required,min=10"`
}

func requestIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return 0, false
	}
	return id, true
}

// @Summary      Pending verification queue
// @Tags         Review
// @Produce      json
// @Param        limit   query  int  false  "page size"
// @Param        offset  query  int  false  "offset"
// @Success      200  {array}  services.PendingReview
// @Router       /admin/verifications [get]
// @Security     BearerAuth
func (h *ReviewHandler) ListPending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	queue, err := h.service.PendingQueue(limit, offset)
	if err != nil {
		respondVerificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, queue)
}

// @Summary      Verification request detail
// @Tags         Review
// @Produce      json
// @Param        id  path  int  true  "request id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /admin/verifications/{id} [get]
// @Security     BearerAuth
func (h *ReviewHandler) Detail(c *gin.Context) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}
	detail, history, err := h.service.RequestDetail(id)
	if err != nil {
		respondVerificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"request":      detail.Request,
		"organization": detail.Organization,
		"history":      history,
	})
}

// @Summary      Download the evidence document
// @Tags         Review
// @Produce      application/pdf
// @Param        id  path  int  true  "request id"
// @Failure      404  {object}  map[string]string
// @Router       /admin/verifications/{id}/document [get]
// @Security     BearerAuth
func (h *ReviewHandler) Document(c *gin.Context) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}
	abs, name, err := h.service.DocumentForRequest(id)
	if err != nil {
		respondVerificationError(c, err)
		return
	}
	c.FileAttachment(abs, name)
}

// @Summary      Approve a verification request
// @Tags         Review
// @Accept       json
// @Produce      json
// @Param        id    path  int             true  "request id"
// @Param        body  body  reviewDecision  true  "reviewer identity and optional notes"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]interface{}
// @Router       /admin/verifications/{id}/approve [post]
// @Security     BearerAuth
func (h *ReviewHandler) Approve(c *gin.Context) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}
	var req reviewDecision
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reviewer := models.Reviewer{FirstName: req.FirstName, LastName: req.LastName, Phone: req.Phone}
	if err := h.service.Approve(id, reviewer, req.Notes); err != nil {
		respondVerificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request approved"})
}

// @Summary      Reject a verification request
// @Tags         Review
// @Accept       json
// @Produce      json
// @Param        id    path  int             true  "request id"
// @Param        body  body  rejectDecision  true  "reviewer identity and rejection notes (min 10 chars)"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]interface{}
// @Router       /admin/verifications/{id}/reject [post]
// @Security     BearerAuth
func (h *ReviewHandler) Reject(c *gin.Context) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}
	var req rejectDecision
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reviewer := models.Reviewer{FirstName: req.FirstName, LastName: req.LastName, Phone: req.Phone}
	if err := h.service.Reject(id, reviewer, req.Notes); err != nil {
		respondVerificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request rejected"})
}
