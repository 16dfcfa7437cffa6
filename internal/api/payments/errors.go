package paymentsapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/payments"
)

// respondError maps domain errors onto HTTP statuses. Unknown errors become a
// generic 500; upstream gateway text never reaches the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, payments.ErrAlreadyPurchased):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": payments.ErrAlreadyPurchased.Error()})
	case errors.Is(err, payments.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": payments.ErrCourseNotFound.Error()})
	case errors.Is(err, payments.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": payments.ErrTransactionNotFound.Error()})
	case errors.Is(err, payments.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": payments.ErrInvalidSignature.Error()})
	case errors.Is(err, payments.ErrPaymentNotCaptured):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": payments.ErrPaymentNotCaptured.Error()})
	case errors.Is(err, payments.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": payments.ErrAlreadyProcessed.Error()})
	case errors.Is(err, payments.ErrSettlementInFlight):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": payments.ErrSettlementInFlight.Error()})
	case errors.Is(err, payments.ErrGateway):
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Payment gateway error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
	}
}
