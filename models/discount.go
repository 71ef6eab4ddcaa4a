package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

const (
	CouponActive   = "Active"
	CouponInactive = "Inactive"
)

// Coupon is a reusable promotion valid between StartDate and EndDate. A nil
// EndDate leaves the coupon open-ended.
type Coupon struct {
	ID                       uint            `gorm:"primaryKey" json:"id"`
	CouponCode               string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"couponCode"`
	CouponName               string          `gorm:"type:varchar(255)" json:"couponName"`
	Description              string          `gorm:"type:text" json:"description"`
	Status                   string          `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	DiscountType             DiscountType    `gorm:"type:varchar(20);not null" json:"discountType"`
	CouponDiscountPercentage int             `gorm:"not null;default:0" json:"couponDiscountPercentage"`
	MaxAmount                decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"maxAmount"`
	MinOrderValue            decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"minOrderValue"`
	StartDate                time.Time       `gorm:"not null" json:"startDate"`
	EndDate                  *time.Time      `json:"endDate,omitempty"`
	CreatedAt                time.Time       `json:"createdAt"`
	UpdatedAt                time.Time       `json:"updatedAt"`
}

// ActiveAt reports whether the coupon is enabled and inside its window.
func (c *Coupon) ActiveAt(now time.Time) bool {
	if c.Status != CouponActive || now.Before(c.StartDate) {
		return false
	}
	return c.EndDate == nil || !now.After(*c.EndDate)
}

const (
	VoucherActive   = "Active"
	VoucherInactive = "Inactive"
	VoucherExpired  = "Expired"
	VoucherUsed     = "Used"
)

// Voucher is a single-use discount issued to one customer. Exactly one of
// DiscountPercentage and DiscountAmount is set.
type Voucher struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	VoucherCode        string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"voucherCode"`
	CustomerID         uint            `gorm:"not null;index" json:"customerId"`
	Customer           Customer        `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Status             string          `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	DiscountPercentage int             `gorm:"not null;default:0" json:"discountPercentage"`
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discountAmount"`
	ExpiryDate         time.Time       `gorm:"not null" json:"expiryDate"`
	IsUsed             bool            `gorm:"not null;default:false" json:"isUsed"`
	UsedDate           *time.Time      `json:"usedDate,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// RedeemableAt reports whether the voucher can still be applied.
func (v *Voucher) RedeemableAt(now time.Time) bool {
	return v.Status == VoucherActive && !v.IsUsed && now.Before(v.ExpiryDate)
}

const (
	ReferralActive  = "Active"
	ReferralUsed    = "Used"
	ReferralExpired = "Expired"
)

// ReferralDiscountPercent is the flat discount a referral code grants.
const ReferralDiscountPercent = 10

// Referral is a single-use code shared by Referrer. ReferredID is filled in
// when someone redeems it.
type Referral struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ReferralCode string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"referralCode"`
	ReferrerID   uint       `gorm:"not null;index" json:"referrerId"`
	Referrer     Customer   `gorm:"foreignKey:ReferrerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ReferredID   *uint      `json:"referredId,omitempty"`
	Referred     *Customer  `gorm:"foreignKey:ReferredID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Status       string     `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	IsUsed       bool       `gorm:"not null;default:false" json:"isUsed"`
	UsedDate     *time.Time `json:"usedDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
