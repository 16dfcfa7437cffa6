package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/courses"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/payments"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/infra/razorpay"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/telemetry"
)

const testSecret = "rzp_secret_1"

func TestMain(m *testing.M) {
	// The service logs through the shared telemetry logger; tests run it
	// against a nop core.
	telemetry.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// =============================================================================
// Fakes
// =============================================================================

type fakeRepo struct {
	courses       map[uuid.UUID]*courses.Course
	txByPaymentID map[string]*payments.Transaction
	enrollments   []*courses.Enrollment

	hasCompleted bool
	hasErr       error
	recordErr    error
	markErr      error

	hasCalls    int
	findCalls   int
	recordCalls int
	markCalls   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		courses:       map[uuid.UUID]*courses.Course{},
		txByPaymentID: map[string]*payments.Transaction{},
	}
}

func (r *fakeRepo) GetCourse(ctx context.Context, courseID uuid.UUID) (*courses.Course, error) {
	if c, ok := r.courses[courseID]; ok {
		return c, nil
	}
	return nil, payments.ErrCourseNotFound
}

func (r *fakeRepo) HasCompletedTransaction(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	r.hasCalls++
	if r.hasErr != nil {
		return false, r.hasErr
	}
	return r.hasCompleted, nil
}

func (r *fakeRepo) FindByPaymentID(ctx context.Context, paymentID string) (*payments.Transaction, error) {
	r.findCalls++
	if tx, ok := r.txByPaymentID[paymentID]; ok {
		return tx, nil
	}
	return nil, payments.ErrTransactionNotFound
}

func (r *fakeRepo) RecordSettlement(ctx context.Context, tx *payments.Transaction, enrollment *courses.Enrollment) error {
	r.recordCalls++
	if r.recordErr != nil {
		return r.recordErr
	}
	if tx.PaymentID != nil {
		if _, exists := r.txByPaymentID[*tx.PaymentID]; exists {
			return payments.ErrAlreadyProcessed
		}
	}
	tx.ID = uuid.New()
	r.txByPaymentID[*tx.PaymentID] = tx
	r.enrollments = append(r.enrollments, enrollment)
	return nil
}

func (r *fakeRepo) MarkRefunded(ctx context.Context, paymentID, reason string, at time.Time) error {
	r.markCalls++
	if r.markErr != nil {
		return r.markErr
	}
	tx, ok := r.txByPaymentID[paymentID]
	if !ok {
		return payments.ErrTransactionNotFound
	}
	tx.Status = payments.StatusRefunded
	tx.RefundReason = &reason
	tx.RefundDate = &at
	return nil
}

func (r *fakeRepo) HistoryByUser(ctx context.Context, userID uuid.UUID) ([]payments.HistoryEntry, error) {
	var entries []payments.HistoryEntry
	for _, tx := range r.txByPaymentID {
		if tx.UserID == userID {
			entries = append(entries, payments.HistoryEntry{
				ID:          tx.ID,
				AmountPaise: tx.AmountPaise,
				Currency:    tx.Currency,
				Status:      tx.Status,
				Date:        tx.Date,
				CourseName:  "Test Course",
			})
		}
	}
	return entries, nil
}

func (r *fakeRepo) EnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]courses.Enrollment, error) {
	var result []courses.Enrollment
	for _, e := range r.enrollments {
		if e.UserID == userID {
			result = append(result, *e)
		}
	}
	return result, nil
}

type fakeGateway struct {
	createdOrder *razorpay.Order
	payment      *razorpay.Payment
	order        *razorpay.Order
	refund       *razorpay.Refund

	createErr  error
	paymentErr error
	orderErr   error
	refundErr  error

	createCalls       int
	fetchPaymentCalls int
	fetchOrderCalls   int
	refundCalls       int

	lastCreateAmount  int64
	lastCreateNotes   map[string]interface{}
	lastRefundPayment string
	lastRefundAmount  int64
	lastRefundSpeed   string
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func (g *fakeGateway) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (*razorpay.Order, error) {
	g.createCalls++
	g.lastCreateAmount = amountPaise
	g.lastCreateNotes = notes
	if g.createErr != nil {
		return nil, g.createErr
	}
	if g.createdOrder != nil {
		return g.createdOrder, nil
	}
	return &razorpay.Order{ID: "order_1", AmountPaise: amountPaise, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (g *fakeGateway) FetchOrder(orderID string) (*razorpay.Order, error) {
	g.fetchOrderCalls++
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	return g.order, nil
}

func (g *fakeGateway) FetchPayment(paymentID string) (*razorpay.Payment, error) {
	g.fetchPaymentCalls++
	if g.paymentErr != nil {
		return nil, g.paymentErr
	}
	return g.payment, nil
}

func (g *fakeGateway) RefundPayment(paymentID string, amountPaise int64, speed string, notes map[string]interface{}) (*razorpay.Refund, error) {
	g.refundCalls++
	g.lastRefundPayment = paymentID
	g.lastRefundAmount = amountPaise
	g.lastRefundSpeed = speed
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	if g.refund != nil {
		return g.refund, nil
	}
	return &razorpay.Refund{ID: "rfnd_1", PaymentID: paymentID, AmountPaise: amountPaise, Status: "processed"}, nil
}

type fakeLocker struct {
	acquired     bool
	acquireErr   error
	acquireCalls int
	releaseCalls int
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.acquireCalls++
	return l.acquired, l.acquireErr
}

func (l *fakeLocker) Release(ctx context.Context, key string) error {
	l.releaseCalls++
	return nil
}

type fakePublisher struct {
	settledCalls  int
	refundedCalls int
	lastRefundID  string
}

func (p *fakePublisher) PaymentSettled(ctx context.Context, tx *payments.Transaction) {
	p.settledCalls++
}
func (p *fakePublisher) PaymentRefunded(ctx context.Context, tx *payments.Transaction, refundID string) {
	p.refundedCalls++
	p.lastRefundID = refundID
}
func (p *fakePublisher) Close() error { return nil }

// =============================================================================
// Test: InitiateOrder
// =============================================================================

func TestPaymentService_InitiateOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	courseID := uuid.New()

	t.Run("Given no prior purchase When order is initiated Then amount equals the course price", func(t *testing.T) {
		repo := newFakeRepo()
		repo.courses[courseID] = &courses.Course{ID: courseID, Name: "Go from Scratch", PricePaise: 49900}
		gw := &fakeGateway{}
		svc := NewPaymentService(repo, gw, nil, nil, testSecret)

		desc, err := svc.InitiateOrder(ctx, userID, courseID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if desc.Order.AmountPaise != 49900 {
			t.Errorf("order amount = %d, want 49900", desc.Order.AmountPaise)
		}
		if gw.lastCreateAmount != 49900 {
			t.Errorf("gateway charged %d, want the course price 49900", gw.lastCreateAmount)
		}
		if desc.KeyID != "rzp_test_key" {
			t.Errorf("key id = %q, want gateway public key", desc.KeyID)
		}
		if gw.lastCreateNotes["courseName"] != "Go from Scratch" {
			t.Errorf("order notes missing course name: %v", gw.lastCreateNotes)
		}
	})

	t.Run("Given a completed purchase When order is initiated Then AlreadyPurchased and no gateway call", func(t *testing.T) {
		repo := newFakeRepo()
		repo.hasCompleted = true
		gw := &fakeGateway{}
		svc := NewPaymentService(repo, gw, nil, nil, testSecret)

		_, err := svc.InitiateOrder(ctx, userID, courseID)
		if !errors.Is(err, payments.ErrAlreadyPurchased) {
			t.Fatalf("err = %v, want ErrAlreadyPurchased", err)
		}
		if gw.createCalls != 0 {
			t.Errorf("gateway called %d times, want 0", gw.createCalls)
		}
	})

	t.Run("Given an unknown course When order is initiated Then CourseNotFound", func(t *testing.T) {
		repo := newFakeRepo()
		gw := &fakeGateway{}
		svc := NewPaymentService(repo, gw, nil, nil, testSecret)

		_, err := svc.InitiateOrder(ctx, userID, courseID)
		if !errors.Is(err, payments.ErrCourseNotFound) {
			t.Fatalf("err = %v, want ErrCourseNotFound", err)
		}
		if gw.createCalls != 0 {
			t.Errorf("gateway called %d times, want 0", gw.createCalls)
		}
	})

	t.Run("Given the gateway rejects the order When order is initiated Then GatewayError", func(t *testing.T) {
		repo := newFakeRepo()
		repo.courses[courseID] = &courses.Course{ID: courseID, Name: "Go from Scratch", PricePaise: 49900}
		gw := &fakeGateway{createErr: errors.New("upstream down")}
		svc := NewPaymentService(repo, gw, nil, nil, testSecret)

		_, err := svc.InitiateOrder(ctx, userID, courseID)
		if !errors.Is(err, payments.ErrGateway) {
			t.Fatalf("err = %v, want ErrGateway", err)
		}
	})
}

// =============================================================================
// Test: Settle
// =============================================================================

func capturedGateway(amountPaise int64) *fakeGateway {
	return &fakeGateway{
		payment: &razorpay.Payment{ID: "pay_1", OrderID: "order_1", AmountPaise: amountPaise, Status: razorpay.PaymentCaptured},
		order:   &razorpay.Order{ID: "order_1", AmountPaise: amountPaise, Currency: "INR", Status: "paid"},
	}
}

func TestPaymentService_Settle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	courseID := uuid.New()
	validSig := sign("order_1", "pay_1", testSecret)

	t.Run("Given a valid captured payment When settled Then one completed transaction and an active enrollment", func(t *testing.T) {
		repo := newFakeRepo()
		gw := capturedGateway(49900)
		pub := &fakePublisher{}
		svc := NewPaymentService(repo, gw, nil, pub, testSecret)

		tx, err := svc.Settle(ctx, userID, courseID, "order_1", "pay_1", validSig)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tx.Status != payments.StatusCompleted {
			t.Errorf("status = %q, want completed", tx.Status)
		}
		if tx.AmountPaise != 49900 {
			t.Errorf("amount = %d, want the gateway order amount 49900", tx.AmountPaise)
		}
		if tx.PaymentID == nil || *tx.PaymentID != "pay_1" {
			t.Errorf("payment id not recorded: %v", tx.PaymentID)
		}
		if len(repo.enrollments) != 1 || repo.enrollments[0].Status != courses.EnrollmentActive {
			t.Errorf("expected one active enrollment, got %v", repo.enrollments)
		}
		if pub.settledCalls != 1 {
			t.Errorf("settled event published %d times, want 1", pub.settledCalls)
		}
	})

	t.Run("Given a tampered signature When settled Then InvalidSignature before any IO", func(t *testing.T) {
		repo := newFakeRepo()
		gw := capturedGateway(49900)
		svc := NewPaymentService(repo, gw, nil, nil, testSecret)

		_, err := svc.Settle(ctx, userID, courseID, "order_1", "pay_1", sign("order_1", "pay_1", "wrong_secret"))
		if !errors.Is(err, payments.ErrInvalidSignature) {
			t.Fatalf("err = %v, want ErrInvalidSignature", err)
		}
		if repo.findCalls != 0 || gw.fetchPaymentCalls != 0 || gw.fetchOrderCalls != 0 || repo.recordCalls != 0 {
			t.Error("tampered signature must fail before any repository or gateway access")
		}
	})

	t.Run("Given a replayed callback When settled again Then AlreadyProcessed and no additional writes", func(t *testing.T) {
		repo := newFakeRepo()
		gw := capturedGateway(49900)
		svc := NewPaymentService(repo, gw, nil, nil, testSecret)

		if _, err := svc.Settle(ctx, userID, courseID, "order_1", "pay_1", validSig); err != nil {
			t.Fatalf("first settle failed: %v", err)
		}
		recordsAfterFirst := repo.recordCalls

		_, err := svc.Settle(ctx, userID, courseID, "order_1", "pay_1", validSig)
		if !errors.Is(err, payments.ErrAlreadyProcessed) {
			t.Fatalf("err = %v, want ErrAlreadyProcessed", err)
		}
		if repo.recordCalls != recordsAfterFirst {
			t.Error("replay must not attempt another settlement write")
		}
		if len(repo.txByPaymentID) != 1 {
			t.Errorf("transaction count = %d, want exactly 1", len(repo.txByPaymentID))
		}
	})

	t.Run("Given the storage constraint loses a race When recording Then AlreadyProcessed surfaces", func(t *testing.T) {
		repo := newFakeRepo()
		repo.recordErr = payments.ErrAlreadyProcessed
		gw := capturedGateway(49900)
		svc := NewPaymentService(repo, gw, nil, nil, testSecret)

		_, err := svc.Settle(ctx, userID, courseID, "order_1", "pay_1", validSig)
		if !errors.Is(err, payments.ErrAlreadyProcessed) {
			t.Fatalf("err = %v, want ErrAlreadyProcessed", err)
		}
	})

	t.Run("Given a payment the gateway has not captured When settled Then PaymentNotCaptured and no writes", func(t *testing.T) {
		repo := newFakeRepo()
		gw := capturedGateway(49900)
		gw.payment.Status = razorpay.PaymentAuthorized
		svc := NewPaymentService(repo, gw, nil, nil, testSecret)

		_, err := svc.Settle(ctx, userID, courseID, "order_1", "pay_1", validSig)
		if !errors.Is(err, payments.ErrPaymentNotCaptured) {
			t.Fatalf("err = %v, want ErrPaymentNotCaptured", err)
		}
		if repo.recordCalls != 0 {
			t.Error("uncaptured payment must not be recorded")
		}
	})

	t.Run("Given another instance holds the settlement lock When settled Then the attempt is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		gw := capturedGateway(49900)
		locker := &fakeLocker{acquired: false}
		svc := NewPaymentService(repo, gw, locker, nil, testSecret)

		_, err := svc.Settle(ctx, userID, courseID, "order_1", "pay_1", validSig)
		if !errors.Is(err, payments.ErrSettlementInFlight) {
			t.Fatalf("err = %v, want ErrSettlementInFlight", err)
		}
		if repo.recordCalls != 0 {
			t.Error("locked payment must not be recorded by this instance")
		}
	})

	t.Run("Given the lock backend is down When settled Then settlement proceeds on storage constraints", func(t *testing.T) {
		repo := newFakeRepo()
		gw := capturedGateway(49900)
		locker := &fakeLocker{acquireErr: errors.New("redis unreachable")}
		svc := NewPaymentService(repo, gw, locker, nil, testSecret)

		tx, err := svc.Settle(ctx, userID, courseID, "order_1", "pay_1", validSig)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tx.Status != payments.StatusCompleted {
			t.Errorf("status = %q, want completed", tx.Status)
		}
	})

	t.Run("Given the lock is acquired When settlement finishes Then the lock is released", func(t *testing.T) {
		repo := newFakeRepo()
		gw := capturedGateway(49900)
		locker := &fakeLocker{acquired: true}
		svc := NewPaymentService(repo, gw, locker, nil, testSecret)

		if _, err := svc.Settle(ctx, userID, courseID, "order_1", "pay_1", validSig); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if locker.releaseCalls != 1 {
			t.Errorf("lock released %d times, want 1", locker.releaseCalls)
		}
	})
}

// =============================================================================
// Test: Refund
// =============================================================================

func TestPaymentService_Refund(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	courseID := uuid.New()
	validSig := sign("order_1", "pay_1", testSecret)

	settle := func(t *testing.T, repo *fakeRepo, gw *fakeGateway, svc *PaymentService) *payments.Transaction {
		t.Helper()
		tx, err := svc.Settle(ctx, userID, courseID, "order_1", "pay_1", validSig)
		if err != nil {
			t.Fatalf("settle failed: %v", err)
		}
		return tx
	}

	t.Run("Given a settled payment When fully refunded Then the transaction transitions to refunded", func(t *testing.T) {
		repo := newFakeRepo()
		gw := capturedGateway(49900)
		pub := &fakePublisher{}
		svc := NewPaymentService(repo, gw, nil, pub, testSecret)
		settle(t, repo, gw, svc)

		refund, err := svc.Refund(ctx, "pay_1", 0, "Customer requested refund", "", "admin-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gw.lastRefundPayment != "pay_1" {
			t.Errorf("refunded payment = %q, want pay_1", gw.lastRefundPayment)
		}
		if gw.lastRefundAmount != 0 {
			t.Errorf("refund amount = %d, want 0 (full refund)", gw.lastRefundAmount)
		}
		if got := repo.txByPaymentID["pay_1"].Status; got != payments.StatusRefunded {
			t.Errorf("transaction status = %q, want refunded", got)
		}
		if repo.txByPaymentID["pay_1"].RefundReason == nil {
			t.Error("refund reason not stored")
		}
		if pub.refundedCalls != 1 || pub.lastRefundID != refund.ID {
			t.Errorf("refund event not published correctly: calls=%d id=%q", pub.refundedCalls, pub.lastRefundID)
		}
	})

	t.Run("Given an unknown payment id When refunded Then TransactionNotFound and no gateway call", func(t *testing.T) {
		repo := newFakeRepo()
		gw := capturedGateway(49900)
		svc := NewPaymentService(repo, gw, nil, nil, testSecret)

		_, err := svc.Refund(ctx, "pay_missing", 0, "Customer requested refund", "", "admin-1")
		if !errors.Is(err, payments.ErrTransactionNotFound) {
			t.Fatalf("err = %v, want ErrTransactionNotFound", err)
		}
		if gw.refundCalls != 0 {
			t.Errorf("gateway refund called %d times, want 0", gw.refundCalls)
		}
	})

	t.Run("Given an already refunded payment When refunded again Then TransactionNotFound", func(t *testing.T) {
		repo := newFakeRepo()
		gw := capturedGateway(49900)
		svc := NewPaymentService(repo, gw, nil, nil, testSecret)
		settle(t, repo, gw, svc)

		if _, err := svc.Refund(ctx, "pay_1", 0, "Customer requested refund", "", "admin-1"); err != nil {
			t.Fatalf("first refund failed: %v", err)
		}
		_, err := svc.Refund(ctx, "pay_1", 0, "Customer requested refund", "", "admin-1")
		if !errors.Is(err, payments.ErrTransactionNotFound) {
			t.Fatalf("err = %v, want ErrTransactionNotFound", err)
		}
	})

	t.Run("Given the gateway refund succeeds but the local update fails Then ReconciliationRequired with the refund attached", func(t *testing.T) {
		repo := newFakeRepo()
		gw := capturedGateway(49900)
		svc := NewPaymentService(repo, gw, nil, nil, testSecret)
		settle(t, repo, gw, svc)
		repo.markErr = errors.New("connection reset")

		refund, err := svc.Refund(ctx, "pay_1", 0, "Customer requested refund", "", "admin-1")
		if !errors.Is(err, payments.ErrReconciliationRequired) {
			t.Fatalf("err = %v, want ErrReconciliationRequired", err)
		}
		if refund == nil {
			t.Fatal("refund descriptor must be returned so the operator can reconcile")
		}
	})

	t.Run("Given a gateway failure When refunded Then GatewayError and the transaction stays completed", func(t *testing.T) {
		repo := newFakeRepo()
		gw := capturedGateway(49900)
		svc := NewPaymentService(repo, gw, nil, nil, testSecret)
		settle(t, repo, gw, svc)
		gw.refundErr = errors.New("upstream 500")

		_, err := svc.Refund(ctx, "pay_1", 0, "Customer requested refund", "", "admin-1")
		if !errors.Is(err, payments.ErrGateway) {
			t.Fatalf("err = %v, want ErrGateway", err)
		}
		if got := repo.txByPaymentID["pay_1"].Status; got != payments.StatusCompleted {
			t.Errorf("transaction status = %q, want still completed", got)
		}
	})
}

// =============================================================================
// Test: History
// =============================================================================

func TestPaymentService_History(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	courseID := uuid.New()

	repo := newFakeRepo()
	gw := capturedGateway(49900)
	svc := NewPaymentService(repo, gw, nil, nil, testSecret)

	if _, err := svc.Settle(ctx, userID, courseID, "order_1", "pay_1", sign("order_1", "pay_1", testSecret)); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	entries, err := svc.History(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("history length = %d, want 1", len(entries))
	}
	if entries[0].AmountPaise != 49900 || entries[0].Status != payments.StatusCompleted {
		t.Errorf("unexpected entry: %+v", entries[0])
	}

	other, err := svc.History(ctx, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("other user's history length = %d, want 0", len(other))
	}
}
