package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/ordersystem/apperrors"
	"github.com/yeremiapane/ordersystem/models"
	"github.com/yeremiapane/ordersystem/utils"
	"gorm.io/gorm"
)

// PaymentService is the payment ledger. No external gateway is involved:
// cash starts PENDING and online payments are captured immediately.
type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{
		db: db,
	}
}

func (s *PaymentService) WithTx(tx *gorm.DB) *PaymentService {
	return &PaymentService{db: tx}
}

// CreatePayment records a payment of amount for customer.
func (s *PaymentService) CreatePayment(ctx context.Context, customerID uint, amount decimal.Decimal, method models.PaymentMethod) (*models.Payment, error) {
	if !method.Valid() {
		return nil, apperrors.InvalidOrder("Invalid payment method: %s. Valid values are CASH, UPI", method)
	}
	status := models.PaymentPending
	if method == models.PaymentUPI {
		status = models.PaymentPaid
	}
	payment := &models.Payment{
		CustomerID:    customerID,
		Amount:        utils.RoundMoney(amount),
		PaymentMethod: method,
		Status:        status,
		PaymentDate:   time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"paymentId": payment.ID,
		"method":    method,
		"status":    status,
		"amount":    payment.Amount.StringFixed(2),
	}).Info("payment created")
	return payment, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Payment", "id", id)
	}
	return &payment, nil
}

func (s *PaymentService) setStatus(ctx context.Context, payment *models.Payment, status models.PaymentStatus) error {
	if err := s.db.WithContext(ctx).Model(payment).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"paymentId": payment.ID,
		"from":      payment.Status,
		"to":        status,
	}).Info("payment status changed")
	payment.Status = status
	return nil
}

// guardedTransition moves the payment to next only when it is currently in
// from. Any other state is left untouched with a warning.
func (s *PaymentService) guardedTransition(ctx context.Context, id string, from, next models.PaymentStatus) (*models.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != from {
		utils.InfoLogger.WithFields(logrus.Fields{
			"paymentId": id,
			"status":    payment.Status,
		}).Warnf("payment is not %s, cannot move it to %s", from, next)
		return payment, nil
	}
	if err := s.setStatus(ctx, payment, next); err != nil {
		return nil, err
	}
	return payment, nil
}

// CompletePayment settles a PENDING payment.
func (s *PaymentService) CompletePayment(ctx context.Context, id string) (*models.Payment, error) {
	return s.guardedTransition(ctx, id, models.PaymentPending, models.PaymentPaid)
}

// RefundPayment returns a PAID payment to the customer.
func (s *PaymentService) RefundPayment(ctx context.Context, id string) (*models.Payment, error) {
	return s.guardedTransition(ctx, id, models.PaymentPaid, models.PaymentRefunded)
}

// CancelPayment forces CANCELLED whatever the current state.
func (s *PaymentService) CancelPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentCancelled {
		return payment, nil
	}
	if err := s.setStatus(ctx, payment, models.PaymentCancelled); err != nil {
		return nil, err
	}
	return payment, nil
}

// UpdateStatus is the administrative path. It follows the same state
// machine as the other operations and rejects anything else.
func (s *PaymentService) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status == status {
		return payment, nil
	}
	if !payment.Status.CanTransitionTo(status) {
		return nil, apperrors.InvalidOrder("Cannot change payment status from %s to %s", payment.Status, status)
	}
	if err := s.setStatus(ctx, payment, status); err != nil {
		return nil, err
	}
	return payment, nil
}
