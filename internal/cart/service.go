package cart

import (
	"context"
	"fmt"

	"campuseats/internal/repositories"

	"github.com/google/uuid"
)

// Service applies cart mutations after resolving the catalog item and
// enforcing the variable-price gate. All reads and writes for one
// (student, canteen) pair go through the same store key, so the cart view
// and the menu view cannot clobber each other with diverging keys.
type Service struct {
	store        Store
	menuRepo     repositories.MenuItemRepository
	categoryRepo repositories.CategoryRepository
}

func NewService(store Store, menuRepo repositories.MenuItemRepository, categoryRepo repositories.CategoryRepository) *Service {
	return &Service{
		store:        store,
		menuRepo:     menuRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *Service) Get(ctx context.Context, studentID, canteenID uuid.UUID) (*Cart, error) {
	return s.store.Load(ctx, studentID, canteenID)
}

// Add puts one unit of the menu item into the student's cart for the
// item's canteen. For variable-price items chosenPrice must be one of
// the offered tiers; it is never defaulted. Fixed-price items always
// carry the catalog price, so repeated adds accumulate on one line.
func (s *Service) Add(ctx context.Context, studentID, canteenID, menuItemID uuid.UUID, chosenPrice *float64) (*Cart, error) {
	item, err := s.menuRepo.GetByID(ctx, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("resolve menu item: %w", err)
	}
	if item == nil || !item.IsAvailable || item.CanteenID != canteenID {
		return nil, ErrItemUnavailable
	}

	price := item.Price
	if item.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *item.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("resolve category: %w", err)
		}
		if VariablePricing(category) {
			if chosenPrice == nil {
				return nil, ErrPriceTierRequired
			}
			if !ValidTier(*chosenPrice) {
				return nil, ErrInvalidPriceTier
			}
			price = *chosenPrice
		}
	}

	c, err := s.store.Load(ctx, studentID, canteenID)
	if err != nil {
		return nil, err
	}
	c.Add(Line{MenuItemID: item.ID, Name: item.Name, Price: price, Quantity: 1})
	if err := s.store.Save(ctx, studentID, canteenID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Remove decrements the matching line, dropping it at zero.
func (s *Service) Remove(ctx context.Context, studentID, canteenID, menuItemID uuid.UUID, price float64) (*Cart, error) {
	return s.mutate(ctx, studentID, canteenID, func(c *Cart) {
		c.Remove(menuItemID, price)
	})
}

// ClearLine drops the matching line regardless of its quantity.
func (s *Service) ClearLine(ctx context.Context, studentID, canteenID, menuItemID uuid.UUID, price float64) (*Cart, error) {
	return s.mutate(ctx, studentID, canteenID, func(c *Cart) {
		c.ClearLine(menuItemID, price)
	})
}

// Clear removes the whole cart for one canteen. Other canteens' carts
// are untouched.
func (s *Service) Clear(ctx context.Context, studentID, canteenID uuid.UUID) error {
	return s.store.Delete(ctx, studentID, canteenID)
}

func (s *Service) mutate(ctx context.Context, studentID, canteenID uuid.UUID, fn func(*Cart)) (*Cart, error) {
	c, err := s.store.Load(ctx, studentID, canteenID)
	if err != nil {
		return nil, err
	}
	fn(c)
	if err := s.store.Save(ctx, studentID, canteenID, c); err != nil {
		return nil, err
	}
	return c, nil
}
