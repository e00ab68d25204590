package services

import (
	"errors"
	"fmt"

	"tupperstock/internal/models"
	"tupperstock/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// StockLimitError is returned when an add would exceed the known stock. Cart
// is the unchanged cart.
type StockLimitError struct {
	Cart *models.Cart
}

func (e *StockLimitError) Error() string { return models.ErrStockLimit.Error() }

func (e *StockLimitError) Unwrap() error { return models.ErrStockLimit }

// CartService applies cart mutations and persists the result.
type CartService struct {
	repo     repositories.CartRepository
	validate *validator.Validate
}

// NewCartService creates a new CartService.
func NewCartService(repo repositories.CartRepository) *CartService {
	return &CartService{repo: repo, validate: validator.New()}
}

// Create starts an empty cart.
func (s *CartService) Create() (*models.Cart, error) {
	cart := models.NewCart("")
	if err := s.repo.Create(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Get returns a cart by id.
func (s *CartService) Get(id string) (*models.Cart, error) {
	return s.repo.GetByID(id)
}

// AddItem adds one unit of product to the cart.
func (s *CartService) AddItem(id string, product models.CartProduct) (*models.Cart, error) {
	if err := s.validate.Struct(product); err != nil {
		return nil, validationError("Invalid cart item", err)
	}
	if product.Price.IsNegative() {
		return nil, &ValidationError{Message: "Invalid cart item", Fields: map[string]string{"Price": "must not be negative"}}
	}

	cart, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := cart.AddItem(product); err != nil {
		if errors.Is(err, models.ErrStockLimit) {
			return nil, &StockLimitError{Cart: cart}
		}
		return nil, err
	}
	if err := s.repo.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity sets the quantity of a line. Zero removes it.
func (s *CartService) UpdateQuantity(id, variantID string, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, invalid("Quantity must not be negative")
	}
	cart, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := cart.SetQuantity(variantID, quantity); err != nil {
		if errors.Is(err, models.ErrItemNotInCart) {
			return nil, fmt.Errorf("variant %s in cart %s: %w", variantID, id, repositories.ErrNotFound)
		}
		return nil, err
	}
	if err := s.repo.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(id, variantID string) (*models.Cart, error) {
	return s.UpdateQuantity(id, variantID, 0)
}

// Clear empties the cart.
func (s *CartService) Clear(id string) (*models.Cart, error) {
	cart, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	if err := s.repo.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// validationError turns validator field errors into a ValidationError.
func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Message: message}
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &ValidationError{Message: message, Fields: fields}
}
