package database

import (
	"fmt"

	"github.com/yeremiapane/ordersystem/models"
	"github.com/yeremiapane/ordersystem/utils"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Customer{},
		&models.Restaurant{},
		&models.RestaurantWorkingHours{},
		&models.Category{},
		&models.SubCategory{},
		&models.MenuItem{},
		&models.Variant{},
		&models.Cart{},
		&models.CartItem{},
		&models.Coupon{},
		&models.Voucher{},
		&models.Referral{},
		&models.Payment{},
		&models.Order{},
		&models.OrderItem{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to AutoMigrate: %w", err)
	}

	// Orders are the hot read path for the kitchen and reporting screens.
	if !db.Migrator().HasIndex(&models.Order{}, "idx_orders_restaurant_status") {
		if err := db.Exec("CREATE INDEX idx_orders_restaurant_status ON orders (restaurant_id, status)").Error; err != nil {
			utils.ErrorLogger.Printf("Error creating orders index: %v", err)
		}
	}

	// A customer holds at most one ACTIVE cart. MySQL has no partial indexes,
	// there the customer row lock taken by the cart service serialises cart creation.
	switch db.Dialector.Name() {
	case "postgres", "sqlite":
		if !db.Migrator().HasIndex(&models.Cart{}, "idx_carts_one_active") {
			err := db.Exec("CREATE UNIQUE INDEX idx_carts_one_active ON carts (customer_id) WHERE status = 'ACTIVE'").Error
			if err != nil {
				return fmt.Errorf("failed to create active cart index: %w", err)
			}
		}
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
