package paymentsapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/payments"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/service"
)

type Handler struct {
	service *service.PaymentService
}

func NewHandler(svc *service.PaymentService) *Handler {
	return &Handler{service: svc}
}

// CreatePayment opens a gateway order for the authenticated user. The body may
// carry an amount for older clients; it is ignored. The course record is the
// only price source.
func (h *Handler) CreatePayment(c *gin.Context) {
	var body struct {
		CourseID string `json:"course_id" binding:"required"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
		return
	}

	courseID, err := uuid.Parse(body.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid course ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	desc, err := h.service.InitiateOrder(c.Request.Context(), userID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order": gin.H{
			"id":       desc.Order.ID,
			"amount":   desc.Order.AmountPaise,
			"currency": desc.Order.Currency,
		},
		"key": desc.KeyID,
	})
}

// VerifyPayment settles a gateway callback relayed by the client.
func (h *Handler) VerifyPayment(c *gin.Context) {
	var body struct {
		RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
		RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
		RazorpaySignature string `json:"razorpay_signature" binding:"required"`
		CourseID          string `json:"course_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
		return
	}

	courseID, err := uuid.Parse(body.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid course ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	tx, err := h.service.Settle(c.Request.Context(), userID, courseID,
		body.RazorpayOrderID, body.RazorpayPaymentID, body.RazorpaySignature)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment verified and enrollment recorded successfully",
		"data":    tx,
	})
}

// GetHistory lists the authenticated user's transactions.
func (h *Handler) GetHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	entries, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []payments.HistoryEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": entries})
}

// RefundPayment issues a refund. Operator action, admin only (enforced at the
// route).
func (h *Handler) RefundPayment(c *gin.Context) {
	var body struct {
		PaymentID string `json:"payment_id" binding:"required"`
		Amount    int64  `json:"amount"`
		Reason    string `json:"reason" binding:"required"`
		Speed     string `json:"speed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
		return
	}
	if len(body.Reason) < 10 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Reason must be at least 10 characters"})
		return
	}
	if body.Amount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Amount must be positive"})
		return
	}

	requestedBy := c.GetString("user_id")
	if requestedBy == "" {
		requestedBy = "system"
	}

	refund, err := h.service.Refund(c.Request.Context(), body.PaymentID, body.Amount, body.Reason, body.Speed, requestedBy)
	if err != nil {
		if errors.Is(err, payments.ErrReconciliationRequired) {
			// The gateway refund went through; tell the operator instead of
			// pretending nothing happened.
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"code":    "RECONCILIATION_REQUIRED",
				"message": "Refund issued at gateway but local record update failed",
				"refund":  refund,
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"refund":  refund,
		"message": "Refund initiated successfully",
	})
}

// ListEnrollments lists the enrollments settlement has granted to the caller.
func (h *Handler) ListEnrollments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	enrollments, err := h.service.Enrollments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": enrollments})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
