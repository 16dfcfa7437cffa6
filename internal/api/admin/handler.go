package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/itsNitinkumar/Skillarious-Backend/database"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/payments"
)

type AdminTransaction struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	CourseName   string     `json:"course_name"`
	AmountPaise  int64      `json:"amount"`
	Currency     string     `json:"currency"`
	Status       string     `json:"status"`
	PaymentID    *string    `json:"payment_id,omitempty"`
	OrderID      string     `json:"order_id"`
	Date         string     `json:"date"`
	RefundReason *string    `json:"refund_reason,omitempty"`
	RefundDate   *time.Time `json:"refund_date,omitempty"`
}

type AdminStats struct {
	TotalTransactions int64 `json:"total_transactions"`
	TotalRevenue      int64 `json:"total_revenue"`
	RecentRevenue     int64 `json:"recent_revenue"`
	RefundedAmount    int64 `json:"refunded_amount"`
}

// ListAllTransactions returns every transaction with payer email and course
// name for the operator view.
func ListAllTransactions(c *gin.Context) {
	type row struct {
		ID           uuid.UUID
		Email        string
		CourseName   string
		AmountPaise  int64
		Currency     string
		Status       string
		PaymentID    *string
		OrderID      string
		Date         time.Time
		RefundReason *string
		RefundDate   *time.Time
	}

	var rows []row
	err := database.DB.
		Table("transactions").
		Select("transactions.id, users.email, courses.name AS course_name, transactions.amount_paise, transactions.currency, transactions.status, transactions.payment_id, transactions.order_id, transactions.date, transactions.refund_reason, transactions.refund_date").
		Joins("INNER JOIN users ON users.id = transactions.user_id").
		Joins("INNER JOIN courses ON courses.id = transactions.course_id").
		Order("transactions.date DESC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	result := make([]AdminTransaction, 0, len(rows))
	for _, r := range rows {
		result = append(result, AdminTransaction{
			ID:           r.ID.String(),
			Email:        r.Email,
			CourseName:   r.CourseName,
			AmountPaise:  r.AmountPaise,
			Currency:     r.Currency,
			Status:       r.Status,
			PaymentID:    r.PaymentID,
			OrderID:      r.OrderID,
			Date:         r.Date.Format("2006-01-02 15:04"),
			RefundReason: r.RefundReason,
			RefundDate:   r.RefundDate,
		})
	}

	c.JSON(http.StatusOK, result)
}

// GetAdminStats aggregates settlement revenue. Amounts are in paise.
func GetAdminStats(c *gin.Context) {
	var stats AdminStats

	database.DB.Model(&payments.Transaction{}).Count(&stats.TotalTransactions)

	database.DB.Model(&payments.Transaction{}).
		Where("status = ?", payments.StatusCompleted).
		Select("COALESCE(SUM(amount_paise), 0)").
		Scan(&stats.TotalRevenue)

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	database.DB.Model(&payments.Transaction{}).
		Where("status = ? AND date >= ?", payments.StatusCompleted, thirtyDaysAgo).
		Select("COALESCE(SUM(amount_paise), 0)").
		Scan(&stats.RecentRevenue)

	database.DB.Model(&payments.Transaction{}).
		Where("status = ?", payments.StatusRefunded).
		Select("COALESCE(SUM(amount_paise), 0)").
		Scan(&stats.RefundedAmount)

	c.JSON(http.StatusOK, stats)
}
