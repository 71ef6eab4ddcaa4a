package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/ordersystem/apperrors"
	"github.com/yeremiapane/ordersystem/models"
	"github.com/yeremiapane/ordersystem/utils"
	"gorm.io/gorm"
)

// Discount kinds recorded on an order.
const (
	DiscountKindCoupon   = "COUPON"
	DiscountKindVoucher  = "VOUCHER"
	DiscountKindReferral = "REFERRAL"
)

var (
	// ErrVoucherCode marks a coupon lookup that matched a voucher instead.
	ErrVoucherCode = errors.New("code belongs to a voucher")
	// ErrReferralCode marks a coupon lookup that matched a referral instead.
	ErrReferralCode = errors.New("code belongs to a referral")
)

// DiscountResolution is the outcome of resolving a promotional code.
type DiscountResolution struct {
	Kind     string
	Code     string
	Amount   decimal.Decimal
	Coupon   *models.Coupon
	Voucher  *models.Voucher
	Referral *models.Referral
}

// DiscountService validates and applies coupons, vouchers and referrals.
type DiscountService struct {
	db *gorm.DB
}

func NewDiscountService(db *gorm.DB) *DiscountService {
	return &DiscountService{db: db}
}

// WithTx returns a copy of the service bound to tx.
func (s *DiscountService) WithTx(tx *gorm.DB) *DiscountService {
	return &DiscountService{db: tx}
}

// ValidateCoupon finds an active coupon for code whose window contains now.
// When code is really a voucher or referral the error wraps ErrVoucherCode
// or ErrReferralCode.
func (s *DiscountService) ValidateCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	db := s.db.WithContext(ctx)
	now := time.Now()

	var coupon models.Coupon
	err := db.Where("coupon_code = ? AND status = ? AND start_date <= ?", code, models.CouponActive, now).
		Where("end_date IS NULL OR end_date >= ?", now).
		First(&coupon).Error
	if err == nil {
		return &coupon, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}

	var count int64
	if err := db.Model(&models.Voucher{}).
		Where("voucher_code = ? AND status = ? AND is_used = ? AND expiry_date > ?", code, models.VoucherActive, false, now).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to look up voucher: %w", err)
	}
	if count > 0 {
		return nil, apperrors.Wrap(apperrors.KindInvalidCoupon, ErrVoucherCode,
			"Please use voucher code through the voucher section")
	}

	if err := db.Model(&models.Referral{}).
		Where("referral_code = ? AND is_used = ?", code, false).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to look up referral: %w", err)
	}
	if count > 0 {
		return nil, apperrors.Wrap(apperrors.KindInvalidCoupon, ErrReferralCode,
			"Please use referral code through the referral section")
	}

	return nil, apperrors.InvalidCoupon("Invalid or expired coupon code: %s", code)
}

// ApplyCouponDiscount computes the coupon's discount on total. Invalid
// coupons yield zero with a warning rather than an error.
func (s *DiscountService) ApplyCouponDiscount(coupon *models.Coupon, total decimal.Decimal) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	log := utils.InfoLogger.WithField("coupon", coupon.CouponCode)
	if !coupon.ActiveAt(time.Now()) {
		log.Warn("coupon is inactive or outside its validity window, no discount applied")
		return decimal.Zero
	}
	if total.LessThan(coupon.MinOrderValue) {
		log.WithFields(logrus.Fields{
			"total":         total.StringFixed(2),
			"minOrderValue": coupon.MinOrderValue.StringFixed(2),
		}).Info("order total below coupon minimum, no discount applied")
		return decimal.Zero
	}

	switch coupon.DiscountType {
	case models.DiscountPercentage:
		discount := utils.Percentage(total, int64(coupon.CouponDiscountPercentage))
		if coupon.MaxAmount.IsPositive() {
			discount = utils.MinMoney(discount, coupon.MaxAmount)
		}
		return utils.MinMoney(discount, total)
	case models.DiscountFixed:
		return utils.RoundMoney(utils.MinMoney(coupon.MaxAmount, total))
	default:
		log.Warnf("unknown coupon discount type %q, no discount applied", coupon.DiscountType)
		return decimal.Zero
	}
}

// ValidateVoucher loads a redeemable voucher issued to customer.
func (s *DiscountService) ValidateVoucher(ctx context.Context, code string, customer *models.Customer) (*models.Voucher, error) {
	var voucher models.Voucher
	err := s.db.WithContext(ctx).Where("voucher_code = ?", code).First(&voucher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.InvalidCoupon("Invalid or expired voucher code: %s", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up voucher: %w", err)
	}
	if voucher.IsUsed {
		return nil, apperrors.InvalidCoupon("Voucher code %s has already been used", code)
	}
	if !voucher.RedeemableAt(time.Now()) {
		return nil, apperrors.InvalidCoupon("Invalid or expired voucher code: %s", code)
	}
	if customer != nil && voucher.CustomerID != customer.ID {
		return nil, apperrors.InvalidCoupon("Voucher code %s was not issued to this customer", code)
	}
	return &voucher, nil
}

// ApplyVoucherDiscount computes the voucher's discount and marks it used in
// the same step. Only one caller can ever flip is_used; the others get an
// "already used" error.
func (s *DiscountService) ApplyVoucherDiscount(ctx context.Context, voucher *models.Voucher, total decimal.Decimal) (decimal.Decimal, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Voucher{}).
		Where("id = ? AND is_used = ?", voucher.ID, false).
		Updates(map[string]interface{}{
			"is_used":   true,
			"status":    models.VoucherUsed,
			"used_date": now,
		})
	if res.Error != nil {
		return decimal.Zero, fmt.Errorf("failed to redeem voucher: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, apperrors.InvalidCoupon("Voucher code %s has already been used", voucher.VoucherCode)
	}
	voucher.IsUsed = true
	voucher.Status = models.VoucherUsed
	voucher.UsedDate = &now

	var discount decimal.Decimal
	if voucher.DiscountPercentage > 0 {
		discount = utils.Percentage(total, int64(voucher.DiscountPercentage))
	} else {
		discount = utils.RoundMoney(voucher.DiscountAmount)
	}
	return utils.MinMoney(discount, total), nil
}

// ValidateReferral loads an unused referral that customer may redeem.
// Customers cannot redeem their own code, identified by phone number.
func (s *DiscountService) ValidateReferral(ctx context.Context, code string, customer *models.Customer) (*models.Referral, error) {
	var referral models.Referral
	err := s.db.WithContext(ctx).Preload("Referrer").
		Where("referral_code = ? AND is_used = ?", code, false).
		First(&referral).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.InvalidCoupon("Invalid or already used referral code: %s", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up referral: %w", err)
	}

	if customer == nil || referral.ReferrerID == customer.ID {
		return nil, apperrors.InvalidCoupon("Referral code cannot be used by the referrer")
	}
	if customer.EncryptedPhoneNumber == "" || referral.Referrer.EncryptedPhoneNumber == "" ||
		customer.EncryptedPhoneNumber == referral.Referrer.EncryptedPhoneNumber {
		return nil, apperrors.InvalidCoupon("Referral code cannot be used by the referrer")
	}
	return &referral, nil
}

// ApplyReferralDiscount is a flat ten percent of total.
func (s *DiscountService) ApplyReferralDiscount(referral *models.Referral, total decimal.Decimal) decimal.Decimal {
	if referral == nil {
		return decimal.Zero
	}
	return utils.Percentage(total, models.ReferralDiscountPercent)
}

// MarkReferralUsed burns the referral for customer. It must run only after
// the order has been written so a failed order keeps the code usable.
func (s *DiscountService) MarkReferralUsed(ctx context.Context, referral *models.Referral, customer *models.Customer) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Referral{}).
		Where("id = ? AND is_used = ?", referral.ID, false).
		Updates(map[string]interface{}{
			"is_used":     true,
			"status":      models.ReferralUsed,
			"used_date":   now,
			"referred_id": customer.ID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark referral used: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.InvalidCoupon("Invalid or already used referral code: %s", referral.ReferralCode)
	}
	referral.IsUsed = true
	referral.Status = models.ReferralUsed
	referral.UsedDate = &now
	referral.ReferredID = &customer.ID
	return nil
}

// Resolve turns a bare code into a discount, trying coupon first, then
// voucher, then referral. A voucher is redeemed as part of resolving; a
// referral still needs MarkReferralUsed.
func (s *DiscountService) Resolve(ctx context.Context, code string, customer *models.Customer, total decimal.Decimal) (*DiscountResolution, error) {
	code = strings.TrimSpace(code)

	coupon, err := s.ValidateCoupon(ctx, code)
	switch {
	case err == nil:
		return &DiscountResolution{
			Kind:   DiscountKindCoupon,
			Code:   code,
			Amount: s.ApplyCouponDiscount(coupon, total),
			Coupon: coupon,
		}, nil
	case errors.Is(err, ErrVoucherCode):
		voucher, err := s.ValidateVoucher(ctx, code, customer)
		if err != nil {
			return nil, err
		}
		amount, err := s.ApplyVoucherDiscount(ctx, voucher, total)
		if err != nil {
			return nil, err
		}
		return &DiscountResolution{Kind: DiscountKindVoucher, Code: code, Amount: amount, Voucher: voucher}, nil
	case errors.Is(err, ErrReferralCode):
		referral, err := s.ValidateReferral(ctx, code, customer)
		if err != nil {
			return nil, err
		}
		return &DiscountResolution{
			Kind:     DiscountKindReferral,
			Code:     code,
			Amount:   s.ApplyReferralDiscount(referral, total),
			Referral: referral,
		}, nil
	default:
		return nil, err
	}
}
