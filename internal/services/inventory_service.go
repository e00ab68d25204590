package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tupperstock/internal/models"
	"tupperstock/internal/repositories"
)

// Inventory actions.
const (
	ActionIncrement = "increment"
	ActionDecrement = "decrement"
)

// ErrVariantLookup means the variant to adjust could not be read.
var ErrVariantLookup = errors.New("failed to get variant details")

// AdjustRequest is a manual stock correction.
type AdjustRequest struct {
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Action    string `json:"action" validate:"required"`
}

// AdjustResult reports the stock before and after an adjustment.
type AdjustResult struct {
	Success           bool   `json:"success"`
	VariantID         string `json:"variantId"`
	PreviousInventory int    `json:"previousInventory"`
	NewInventory      int    `json:"newInventory"`
	Action            string `json:"action"`
	Quantity          int    `json:"quantity"`
}

// InventoryService reads and corrects variant stock on the platform.
type InventoryService struct {
	variants      repositories.VariantRepository
	deliveryFeeID int64
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(variants repositories.VariantRepository, deliveryFeeProductID int64) *InventoryService {
	return &InventoryService{variants: variants, deliveryFeeID: deliveryFeeProductID}
}

// Adjust increments or decrements the stock of a variant.
func (s *InventoryService) Adjust(ctx context.Context, req AdjustRequest) (*AdjustResult, error) {
	if req.VariantID == "" || req.Quantity <= 0 || req.Action == "" {
		return nil, invalid("Missing required fields: variantId, quantity, action")
	}
	if req.Action != ActionIncrement && req.Action != ActionDecrement {
		return nil, invalid("Invalid action. Must be 'increment' or 'decrement'")
	}
	id, err := models.ParseNumericID(req.VariantID)
	if err != nil {
		return nil, invalid("Invalid variantId %q", req.VariantID)
	}

	variant, err := s.variants.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVariantLookup, err)
	}

	next, err := s.apply(ctx, variant, req.Quantity, req.Action)
	if err != nil {
		return nil, err
	}

	return &AdjustResult{
		Success:           true,
		VariantID:         req.VariantID,
		PreviousInventory: variant.InventoryQuantity,
		NewInventory:      next,
		Action:            req.Action,
		Quantity:          req.Quantity,
	}, nil
}

// CheckStock rejects the first variant whose requested total, summed over
// every line naming it, is more than the platform has. Lines of the delivery
// fee product are not stock-checked.
func (s *InventoryService) CheckStock(ctx context.Context, lines []models.LineItem) error {
	for _, line := range mergeLines(lines) {
		variant, err := s.variants.Get(ctx, line.VariantID)
		if err != nil {
			return &StockCheckError{VariantID: fmt.Sprint(line.VariantID), Err: err}
		}
		if variant.ProductID == s.deliveryFeeID {
			continue
		}
		if line.Quantity > variant.InventoryQuantity {
			return &StockError{
				VariantID: fmt.Sprint(line.VariantID),
				Title:     variant.Title,
				Requested: line.Quantity,
				Available: variant.InventoryQuantity,
			}
		}
	}
	return nil
}

// mergeLines sums quantities per variant, keeping first-seen order.
func mergeLines(lines []models.LineItem) []models.LineItem {
	merged := make([]models.LineItem, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if i, ok := index[line.VariantID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.VariantID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// DecrementAll takes sold quantities off the platform stock. Failures are
// logged and skipped; the order has already been placed.
func (s *InventoryService) DecrementAll(ctx context.Context, lines []models.LineItem) {
	for _, line := range lines {
		variant, err := s.variants.Get(ctx, line.VariantID)
		if err != nil {
			log.Printf("Failed to get variant %d details: %v", line.VariantID, err)
			continue
		}
		if variant.ProductID == s.deliveryFeeID {
			continue
		}
		if _, err := s.apply(ctx, variant, line.Quantity, ActionDecrement); err != nil {
			log.Printf("Skipping inventory decrement: %v", err)
		}
	}
}

// apply writes the stock level that results from action. A decrement never
// goes below zero.
func (s *InventoryService) apply(ctx context.Context, variant *models.VariantStock, quantity int, action string) (int, error) {
	next := variant.InventoryQuantity + quantity
	if action == ActionDecrement {
		next = max(0, variant.InventoryQuantity-quantity)
	}
	if err := s.variants.SetAvailable(ctx, variant.InventoryItemID, next); err != nil {
		return 0, fmt.Errorf("failed to update inventory for variant %d: %w", variant.ID, err)
	}
	log.Printf("Inventory for variant %d: %d -> %d (%s %d)", variant.ID, variant.InventoryQuantity, next, action, quantity)
	return next, nil
}
