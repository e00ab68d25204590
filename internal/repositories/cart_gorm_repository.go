package repositories

import (
	"errors"
	"fmt"
	"time"

	"tupperstock/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// Create stores a new, empty cart. An id is generated when missing.
func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := r.db.Omit(clause.Associations).Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	cart.Recalculate()
	return nil
}

// GetByID loads a cart with its items in cart order.
func (r *GORMCartRepository) GetByID(id string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&cart, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart %s: %w", id, err)
	}
	return &cart, nil
}

// Save writes the cart and replaces its item set in one transaction.
func (r *GORMCartRepository) Save(cart *models.Cart) error {
	cart.Recalculate()
	err := r.db.Transaction(func(tx *gorm.DB) error {
		cart.UpdatedAt = time.Now()
		res := tx.Model(&models.Cart{}).Where("id = ?", cart.ID).Update("updated_at", cart.UpdatedAt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("cart with ID %s: %w", cart.ID, ErrNotFound)
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}
		for i := range cart.Items {
			cart.Items[i].ID = 0
			cart.Items[i].CartID = cart.ID
		}
		return tx.Create(&cart.Items).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to save cart %s: %w", cart.ID, err)
	}
	return nil
}
