package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/ordersystem/apperrors"
	"github.com/yeremiapane/ordersystem/models"
	"github.com/yeremiapane/ordersystem/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartItemInput describes one line a customer wants in their cart.
type CartItemInput struct {
	MenuItemID          uint
	VariantID           *uint
	Quantity            int
	SpecialInstructions string
}

// CartService owns the active cart of each customer. Every mutation keeps
// TotalAmount equal to the sum of the item subtotals.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

func (s *CartService) WithTx(tx *gorm.DB) *CartService {
	return &CartService{db: tx}
}

func preloadCartItems(db *gorm.DB) *gorm.DB {
	return db.Order("cart_items.id")
}

func (s *CartService) findActiveCart(db *gorm.DB, customerID uint) (*models.Cart, error) {
	var cart models.Cart
	err := db.Preload("CartItems", preloadCartItems).
		Preload("CartItems.MenuItem.Category").
		Preload("CartItems.MenuItem.SubCategory").
		Preload("CartItems.Variant").
		Where("customer_id = ? AND status = ?", customerID, models.CartActive).
		Order("id DESC").
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("No active cart found for customer %d", customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &cart, nil
}

// GetActiveCart returns the customer's ACTIVE cart with its items.
func (s *CartService) GetActiveCart(ctx context.Context, customerID uint) (*models.Cart, error) {
	return s.findActiveCart(s.db.WithContext(ctx), customerID)
}

// ValidateHasItems loads the active cart and fails when it is empty. The
// cart row is locked for the rest of the surrounding transaction where the
// database supports it.
func (s *CartService) ValidateHasItems(ctx context.Context, customerID uint) (*models.Cart, error) {
	cart, err := s.findActiveCart(s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), customerID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.InvalidOrder("%s", err.Error())
		}
		return nil, err
	}
	if len(cart.CartItems) == 0 {
		return nil, apperrors.InvalidOrder("Cart is empty. Cannot place order with empty cart.")
	}
	return cart, nil
}

// CompleteCart moves cart from ACTIVE to COMPLETED and deletes its items.
// The update only matches the version that was read, so two orders can
// never consume the same cart.
func (s *CartService) CompleteCart(ctx context.Context, cart *models.Cart) error {
	db := s.db.WithContext(ctx)
	res := db.Model(&models.Cart{}).
		Where("id = ? AND status = ? AND version = ?", cart.ID, models.CartActive, cart.Version).
		Updates(map[string]interface{}{
			"status":  models.CartCompleted,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to complete cart: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflict("Cart %d was modified by another request, please retry", cart.ID)
	}
	if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	cart.Status = models.CartCompleted
	cart.Version++
	cart.CartItems = nil
	return nil
}

// forUpdate locks the rows read through db until the transaction ends.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// activeOrNewCart returns the customer's locked ACTIVE cart, creating it when
// missing. The customer row is locked first so two first-time writers cannot
// both create a cart.
func (s *CartService) activeOrNewCart(db *gorm.DB, customerID uint) (*models.Cart, error) {
	var customer models.Customer
	if err := forUpdate(db).First(&customer, customerID).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Customer", "id", customerID)
	}

	cart, err := s.findActiveCart(forUpdate(db), customerID)
	if err == nil {
		return cart, nil
	}
	if !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}

	cart = &models.Cart{CustomerID: customerID, Status: models.CartActive, TotalAmount: decimal.Zero}
	if err := db.Create(cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	utils.InfoLogger.WithField("customerId", customerID).Info("created new active cart")
	return cart, nil
}

// priceLine resolves the unit price for a menu item and optional variant.
func (s *CartService) priceLine(db *gorm.DB, in CartItemInput) (models.CartItem, error) {
	if in.Quantity <= 0 {
		return models.CartItem{}, apperrors.InvalidOrder("Quantity must be greater than zero")
	}
	var item models.MenuItem
	if err := db.First(&item, in.MenuItemID).Error; err != nil {
		return models.CartItem{}, apperrors.FromLookup(err, "Menu item", "id", in.MenuItemID)
	}
	if !item.Available {
		return models.CartItem{}, apperrors.InvalidOrder("Menu item %s is not available", item.Name)
	}

	var variant *models.Variant
	if in.VariantID != nil {
		variant = &models.Variant{}
		if err := db.Where("id = ? AND menu_item_id = ?", *in.VariantID, item.ID).First(variant).Error; err != nil {
			return models.CartItem{}, apperrors.FromLookup(err, "Variant", "id", *in.VariantID)
		}
		if !variant.Available {
			return models.CartItem{}, apperrors.InvalidOrder("Variant %s of %s is not available", variant.VariantName, item.Name)
		}
	}

	line := models.CartItem{
		MenuItemID:          item.ID,
		VariantID:           in.VariantID,
		Quantity:            in.Quantity,
		Price:               models.UnitPrice(item, variant),
		SpecialInstructions: in.SpecialInstructions,
	}
	line.ComputeSubtotal()
	return line, nil
}

// saveTotal persists a new total and bumps the version.
func saveTotal(db *gorm.DB, cart *models.Cart, total decimal.Decimal) error {
	if err := db.Model(cart).Updates(map[string]interface{}{
		"total_amount": total,
		"version":      gorm.Expr("version + 1"),
	}).Error; err != nil {
		return fmt.Errorf("failed to update cart total: %w", err)
	}
	return nil
}

// AddItem appends a line to the customer's cart, creating the cart first
// when the customer has none.
func (s *CartService) AddItem(ctx context.Context, customerID uint, in CartItemInput) (*models.Cart, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.activeOrNewCart(tx, customerID)
		if err != nil {
			return err
		}
		line, err := s.priceLine(tx, in)
		if err != nil {
			return err
		}
		line.CartID = cart.ID
		if err := tx.Create(&line).Error; err != nil {
			return fmt.Errorf("failed to add cart item: %w", err)
		}
		return saveTotal(tx, cart, cart.TotalAmount.Add(line.Subtotal))
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"customerId": customerID,
		"menuItemId": in.MenuItemID,
		"quantity":   in.Quantity,
	}).Info("item added to cart")
	return s.GetActiveCart(ctx, customerID)
}

// loadActiveLine locks the cart owning cartItemID and returns the line as
// seen under that lock.
func (s *CartService) loadActiveLine(db *gorm.DB, cartItemID uint) (*models.CartItem, *models.Cart, error) {
	var line models.CartItem
	if err := db.First(&line, cartItemID).Error; err != nil {
		return nil, nil, apperrors.FromLookup(err, "Cart item", "id", cartItemID)
	}
	var cart models.Cart
	if err := forUpdate(db).First(&cart, line.CartID).Error; err != nil {
		return nil, nil, apperrors.FromLookup(err, "Cart", "id", line.CartID)
	}
	if cart.Status != models.CartActive {
		return nil, nil, apperrors.InvalidOrder("Cart %d is no longer active", cart.ID)
	}
	// Another writer may have changed or removed the line before the lock.
	line = models.CartItem{}
	if err := db.First(&line, cartItemID).Error; err != nil {
		return nil, nil, apperrors.FromLookup(err, "Cart item", "id", cartItemID)
	}
	return &line, &cart, nil
}

// UpdateItem changes a line's quantity and instructions. The cart total
// moves by the difference between the old and new subtotal.
func (s *CartService) UpdateItem(ctx context.Context, cartItemID uint, quantity int, instructions string) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidOrder("Quantity must be greater than zero")
	}
	var customerID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, cart, err := s.loadActiveLine(tx, cartItemID)
		if err != nil {
			return err
		}
		customerID = cart.CustomerID
		oldSubtotal := line.Subtotal
		line.Quantity = quantity
		line.SpecialInstructions = instructions
		line.ComputeSubtotal()
		if err := tx.Save(line).Error; err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		return saveTotal(tx, cart, cart.TotalAmount.Sub(oldSubtotal).Add(line.Subtotal))
	})
	if err != nil {
		return nil, err
	}
	return s.GetActiveCart(ctx, customerID)
}

// RemoveItem deletes a line and subtracts its subtotal from the cart.
func (s *CartService) RemoveItem(ctx context.Context, cartItemID uint) (*models.Cart, error) {
	var customerID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, cart, err := s.loadActiveLine(tx, cartItemID)
		if err != nil {
			return err
		}
		customerID = cart.CustomerID
		if err := tx.Delete(line).Error; err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}
		return saveTotal(tx, cart, cart.TotalAmount.Sub(line.Subtotal))
	})
	if err != nil {
		return nil, err
	}
	return s.GetActiveCart(ctx, customerID)
}

// ReplaceItems swaps the whole content of the cart and recomputes the total
// from scratch.
func (s *CartService) ReplaceItems(ctx context.Context, customerID uint, items []CartItemInput) (*models.Cart, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.activeOrNewCart(tx, customerID)
		if err != nil {
			return err
		}
		lines := make([]models.CartItem, 0, len(items))
		for _, in := range items {
			line, err := s.priceLine(tx, in)
			if err != nil {
				return err
			}
			line.CartID = cart.ID
			lines = append(lines, line)
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart items: %w", err)
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return fmt.Errorf("failed to add cart items: %w", err)
			}
		}
		return saveTotal(tx, cart, models.SumSubtotals(lines))
	})
	if err != nil {
		return nil, err
	}
	return s.GetActiveCart(ctx, customerID)
}

// ClearCart empties the active cart and resets its total to zero.
func (s *CartService) ClearCart(ctx context.Context, customerID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.findActiveCart(forUpdate(tx), customerID)
		if err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart items: %w", err)
		}
		return saveTotal(tx, cart, decimal.Zero)
	})
}
