package database

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/ordersystem/models"
	"github.com/yeremiapane/ordersystem/utils"
	"gorm.io/gorm"
)

// Seed inserts a small demo catalogue. Running it twice changes nothing.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Restaurant{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			utils.InfoLogger.Println("Seed skipped, data already present.")
			return nil
		}

		customers := []models.Customer{
			{FullName: "Asha Rao", Email: "asha@example.com", EncryptedPhoneNumber: utils.HashPhoneNumber("+91 98450 11111")},
			{FullName: "Vikram Shah", Email: "vikram@example.com", EncryptedPhoneNumber: utils.HashPhoneNumber("+91 98450 22222")},
		}
		if err := tx.Create(&customers).Error; err != nil {
			return err
		}

		restaurant := models.Restaurant{Name: "Spice Route", Address: "12 MG Road, Bengaluru"}
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}

		mains := models.Category{Name: "Mains"}
		drinks := models.Category{Name: "Drinks"}
		if err := tx.Create(&[]*models.Category{&mains, &drinks}).Error; err != nil {
			return err
		}
		curries := models.SubCategory{CategoryID: mains.ID, Name: "Curries"}
		if err := tx.Create(&curries).Error; err != nil {
			return err
		}

		items := []models.MenuItem{
			{CategoryID: mains.ID, SubCategoryID: &curries.ID, Name: "Paneer Butter Masala", Price: decimal.RequireFromString("12.99"), Available: true,
				Variants: []models.Variant{{VariantName: "Large", VariantType: "Size", Price: decimal.RequireFromString("15.49"), Available: true}}},
			{CategoryID: mains.ID, SubCategoryID: &curries.ID, Name: "Dal Tadka", Price: decimal.RequireFromString("9.50"), Available: true},
			{CategoryID: drinks.ID, Name: "Mango Lassi", Price: decimal.RequireFromString("4.25"), Available: true},
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		now := time.Now()
		coupons := []models.Coupon{
			{CouponCode: "WELCOME20", CouponName: "Welcome offer", Status: models.CouponActive, DiscountType: models.DiscountPercentage,
				CouponDiscountPercentage: 20, MaxAmount: decimal.NewFromInt(15), MinOrderValue: decimal.NewFromInt(20), StartDate: now.AddDate(0, -1, 0)},
			{CouponCode: "FLAT5", CouponName: "Five off", Status: models.CouponActive, DiscountType: models.DiscountFixed,
				MaxAmount: decimal.NewFromInt(5), StartDate: now.AddDate(0, -1, 0)},
		}
		if err := tx.Create(&coupons).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.Voucher{
			VoucherCode: "ASHA-THANKYOU", CustomerID: customers[0].ID, Status: models.VoucherActive,
			DiscountAmount: decimal.NewFromInt(3), ExpiryDate: now.AddDate(0, 3, 0),
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Referral{
			ReferralCode: "VIKRAM-REF", ReferrerID: customers[1].ID, Status: models.ReferralActive,
		}).Error; err != nil {
			return err
		}

		utils.InfoLogger.Println("Demo data seeded.")
		return nil
	})
}
