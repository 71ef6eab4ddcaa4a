package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/ordersystem/models"
	"gorm.io/gorm"
)

// StatusTotals is the number and value of payments in one status.
type StatusTotals struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// PaymentMetrics summarises the ledger.
type PaymentMetrics struct {
	TotalTransactions int64                                 `json:"totalTransactions"`
	ByStatus          map[models.PaymentStatus]StatusTotals `json:"byStatus"`
	// Collected is the value of PAID payments.
	Collected decimal.Decimal `json:"collected"`
	// Outstanding is the value of PENDING cash payments.
	Outstanding decimal.Decimal `json:"outstanding"`
}

// PaymentMonitor reports ledger totals straight from the payments table.
type PaymentMonitor struct {
	db *gorm.DB
}

func NewPaymentMonitor(db *gorm.DB) *PaymentMonitor {
	return &PaymentMonitor{db: db}
}

type statusRow struct {
	Status models.PaymentStatus
	Count  int64
	Amount decimal.NullDecimal
}

// GetMetrics groups payments by status. Every status is present in the
// result, with zero totals when unused.
func (pm *PaymentMonitor) GetMetrics(ctx context.Context) (PaymentMetrics, error) {
	var rows []statusRow
	if err := pm.db.WithContext(ctx).Model(&models.Payment{}).
		Select("status, COUNT(*) AS count, SUM(amount) AS amount").
		Group("status").
		Scan(&rows).Error; err != nil {
		return PaymentMetrics{}, fmt.Errorf("failed to aggregate payments: %w", err)
	}

	metrics := PaymentMetrics{
		ByStatus:    map[models.PaymentStatus]StatusTotals{},
		Collected:   decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for _, s := range []models.PaymentStatus{models.PaymentPending, models.PaymentPaid, models.PaymentCancelled, models.PaymentRefunded} {
		metrics.ByStatus[s] = StatusTotals{Amount: decimal.Zero}
	}
	for _, row := range rows {
		amount := decimal.Zero
		if row.Amount.Valid {
			amount = row.Amount.Decimal.Round(2)
		}
		metrics.ByStatus[row.Status] = StatusTotals{Count: row.Count, Amount: amount}
		metrics.TotalTransactions += row.Count
	}
	metrics.Collected = metrics.ByStatus[models.PaymentPaid].Amount
	metrics.Outstanding = metrics.ByStatus[models.PaymentPending].Amount
	return metrics, nil
}
