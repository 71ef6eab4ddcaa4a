package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a frozen copy of a cart line at placement time. Later menu
// edits never change it.
type OrderItem struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	OrderID             string          `gorm:"type:varchar(36);not null;index" json:"orderId"`
	ItemName            string          `gorm:"type:varchar(255);not null" json:"itemName"`
	CategoryName        string          `gorm:"type:varchar(100)" json:"categoryName"`
	SubCategoryName     string          `gorm:"type:varchar(100)" json:"subCategoryName"`
	VariantName         string          `gorm:"type:varchar(100)" json:"variantName"`
	Price               decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity            int             `gorm:"not null" json:"quantity"`
	Subtotal            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	SpecialInstructions string          `gorm:"type:text" json:"specialInstructions"`
	IsFreeItem          bool            `gorm:"not null" json:"isFreeItem"`
	CreatedAt           time.Time       `gorm:"not null" json:"createdAt"`
}

// SnapshotCartItem copies the catalog names and pricing of a cart line. The
// item's MenuItem, its Category and SubCategory and the Variant must be loaded.
func SnapshotCartItem(ci CartItem) OrderItem {
	item := OrderItem{
		ItemName:            ci.MenuItem.Name,
		CategoryName:        ci.MenuItem.Category.Name,
		Price:               ci.Price,
		Quantity:            ci.Quantity,
		Subtotal:            ci.Subtotal,
		SpecialInstructions: ci.SpecialInstructions,
	}
	if ci.MenuItem.SubCategory != nil {
		item.SubCategoryName = ci.MenuItem.SubCategory.Name
	}
	if ci.Variant != nil {
		item.VariantName = ci.Variant.VariantName
	}
	return item
}
