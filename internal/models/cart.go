package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Prices travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	// ErrStockLimit means the cart already holds every known unit of a variant.
	ErrStockLimit = errors.New("stock limit reached")
	// ErrItemNotInCart is returned when a variant has no line in the cart.
	ErrItemNotInCart = errors.New("item not in cart")
	// ErrNegativeQuantity rejects quantities below zero.
	ErrNegativeQuantity = errors.New("quantity must not be negative")
)

// Cart is a server-kept shopping cart. TotalItems and TotalPrice are derived
// from Items and never stored.
type Cart struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Items      []CartItem      `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalItems int             `json:"totalItems" gorm:"-"`
	TotalPrice decimal.Decimal `json:"totalPrice" gorm:"-"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// CartItem is one line of a cart. Name, price and image are a snapshot taken
// when the line was added.
type CartItem struct {
	ID                uint            `json:"-" gorm:"primaryKey"`
	CartID            string          `json:"-" gorm:"index;type:varchar(36)"`
	Position          int             `json:"-"`
	ProductID         string          `json:"id" gorm:"type:varchar(255)"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price" gorm:"type:numeric(12,2)"`
	Quantity          int             `json:"quantity"`
	Image             *string         `json:"image"`
	VariantID         string          `json:"variantId" gorm:"type:varchar(255)"`
	QuantityAvailable int             `json:"quantityAvailable,omitempty"`
}

// CartProduct is what the storefront sends when adding to the cart.
type CartProduct struct {
	ID                string          `json:"id" validate:"required"`
	Name              string          `json:"name" validate:"required"`
	Price             decimal.Decimal `json:"price"`
	Image             *string         `json:"image"`
	VariantID         string          `json:"variantId" validate:"required"`
	QuantityAvailable int             `json:"quantityAvailable" validate:"gte=0"`
}

// NewCart returns an empty cart with the given id.
func NewCart(id string) *Cart {
	c := &Cart{ID: id}
	c.Recalculate()
	return c
}

// AfterFind derives the totals of a loaded cart.
func (c *Cart) AfterFind(tx *gorm.DB) error {
	c.Recalculate()
	return nil
}

// Recalculate derives TotalItems and TotalPrice from the items.
func (c *Cart) Recalculate() {
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	total := decimal.Zero
	count := 0
	for i := range c.Items {
		c.Items[i].Position = i
		count += c.Items[i].Quantity
		total = total.Add(c.Items[i].Price.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity))))
	}
	c.TotalItems = count
	c.TotalPrice = total
}

func (c *Cart) find(variantID string) int {
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// AddItem adds one unit of p. A positive QuantityAvailable caps the line;
// when the cap is already reached the cart is left as it was and
// ErrStockLimit is returned.
func (c *Cart) AddItem(p CartProduct) error {
	idx := c.find(p.VariantID)
	current := 0
	if idx >= 0 {
		current = c.Items[idx].Quantity
	}
	if p.QuantityAvailable > 0 && current >= p.QuantityAvailable {
		return ErrStockLimit
	}

	if idx >= 0 {
		c.Items[idx].Quantity++
		if p.QuantityAvailable > 0 {
			c.Items[idx].QuantityAvailable = p.QuantityAvailable
		}
	} else {
		c.Items = append(c.Items, CartItem{
			CartID:            c.ID,
			ProductID:         p.ID,
			Name:              p.Name,
			Price:             p.Price,
			Quantity:          1,
			Image:             p.Image,
			VariantID:         p.VariantID,
			QuantityAvailable: p.QuantityAvailable,
		})
	}
	c.Recalculate()
	return nil
}

// SetQuantity changes the quantity of a line. Zero removes it; anything else
// is clamped to the line's known stock.
func (c *Cart) SetQuantity(variantID string, quantity int) error {
	if quantity < 0 {
		return ErrNegativeQuantity
	}
	idx := c.find(variantID)
	if idx < 0 {
		return ErrItemNotInCart
	}

	if quantity == 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		if limit := c.Items[idx].QuantityAvailable; limit > 0 && quantity > limit {
			quantity = limit
		}
		c.Items[idx].Quantity = quantity
	}
	c.Recalculate()
	return nil
}

// RemoveItem drops the line for variantID.
func (c *Cart) RemoveItem(variantID string) error {
	return c.SetQuantity(variantID, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Recalculate()
}
