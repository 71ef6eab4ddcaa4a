package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CategoryID    uint            `gorm:"not null" json:"categoryId"`
	Category      Category        `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	SubCategoryID *uint           `json:"subCategoryId,omitempty"`
	SubCategory   *SubCategory    `gorm:"foreignKey:SubCategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Available     bool            `gorm:"not null" json:"available"`
	Variants      []Variant       `gorm:"foreignKey:MenuItemID" json:"variants,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updatedAt"`
}

// Variant is a size or flavour of a MenuItem. A non-zero Price replaces the
// item's own price.
type Variant struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	MenuItemID  uint            `gorm:"not null;index" json:"menuItemId"`
	VariantName string          `gorm:"type:varchar(100);not null" json:"variantName"`
	VariantType string          `gorm:"type:varchar(50)" json:"variantType"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Available   bool            `gorm:"not null" json:"available"`
	CreatedAt   time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updatedAt"`
}

// UnitPrice is what one unit of item costs, honouring a variant override.
func UnitPrice(item MenuItem, variant *Variant) decimal.Decimal {
	if variant != nil && variant.Price.IsPositive() {
		return variant.Price
	}
	return item.Price
}
