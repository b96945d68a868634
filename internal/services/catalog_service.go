package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campuseats/internal/caching"
	"campuseats/internal/models"
	"campuseats/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrCanteenNotFound  = errors.New("canteen not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrNotCanteenOwner  = errors.New("resource belongs to another canteen")
)

const catalogCacheTTL = 5 * time.Minute

// CatalogService serves the browse surface (canteens, categories, menu
// items) and the vendor-side management of it. Reads go through the
// cache; writes invalidate the affected keys.
type CatalogService interface {
	ListCanteens(ctx context.Context, limit, offset int) ([]*models.Canteen, error)
	GetCanteen(ctx context.Context, id uuid.UUID) (*models.Canteen, error)
	GetCanteenForVendor(ctx context.Context, vendorID uuid.UUID) (*models.Canteen, error)
	CreateCanteen(ctx context.Context, canteen *models.Canteen) error
	UpdateCanteen(ctx context.Context, canteen *models.Canteen) error

	ListCategories(ctx context.Context, canteenID uuid.UUID) ([]*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, canteenID uuid.UUID, category *models.Category) error
	DeleteCategory(ctx context.Context, canteenID, categoryID uuid.UUID) error

	ListAvailableItems(ctx context.Context, canteenID, categoryID uuid.UUID) ([]*models.MenuItem, error)
	ListItems(ctx context.Context, canteenID uuid.UUID) ([]*models.MenuItem, error)
	CreateItem(ctx context.Context, item *models.MenuItem) error
	UpdateItem(ctx context.Context, canteenID uuid.UUID, item *models.MenuItem) error
	SetItemAvailability(ctx context.Context, canteenID, itemID uuid.UUID, available bool) error
	DeleteItem(ctx context.Context, canteenID, itemID uuid.UUID) error
}

type catalogService struct {
	canteenRepo  repositories.CanteenRepository
	categoryRepo repositories.CategoryRepository
	menuRepo     repositories.MenuItemRepository
	cacheSvc     caching.CacheService
}

func NewCatalogService(canteenRepo repositories.CanteenRepository, categoryRepo repositories.CategoryRepository, menuRepo repositories.MenuItemRepository, cacheSvc caching.CacheService) CatalogService {
	return &catalogService{
		canteenRepo:  canteenRepo,
		categoryRepo: categoryRepo,
		menuRepo:     menuRepo,
		cacheSvc:     cacheSvc,
	}
}

func (s *catalogService) ListCanteens(ctx context.Context, limit, offset int) ([]*models.Canteen, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.canteenRepo.List(ctx, limit, offset)
}

func (s *catalogService) GetCanteen(ctx context.Context, id uuid.UUID) (*models.Canteen, error) {
	cached, err := s.cacheSvc.GetCanteen(ctx, id)
	if err != nil {
		log.Printf("Cache read failed for canteen %s: %v", id, err)
	}
	if cached != nil {
		return cached, nil
	}

	canteen, err := s.canteenRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get canteen: %w", err)
	}
	if canteen == nil {
		return nil, ErrCanteenNotFound
	}

	if err := s.cacheSvc.SetCanteen(ctx, canteen, catalogCacheTTL); err != nil {
		log.Printf("Cache write failed for canteen %s: %v", id, err)
	}
	return canteen, nil
}

func (s *catalogService) GetCanteenForVendor(ctx context.Context, vendorID uuid.UUID) (*models.Canteen, error) {
	canteen, err := s.canteenRepo.GetByVendorID(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("get canteen by vendor: %w", err)
	}
	if canteen == nil {
		return nil, ErrCanteenNotFound
	}
	return canteen, nil
}

func (s *catalogService) CreateCanteen(ctx context.Context, canteen *models.Canteen) error {
	if canteen.ID == uuid.Nil {
		canteen.ID = uuid.New()
	}
	if canteen.Name == "" {
		return fmt.Errorf("canteen name is required")
	}
	return s.canteenRepo.Create(ctx, canteen)
}

func (s *catalogService) UpdateCanteen(ctx context.Context, canteen *models.Canteen) error {
	if err := s.canteenRepo.Update(ctx, canteen); err != nil {
		return fmt.Errorf("update canteen: %w", err)
	}
	s.invalidateCanteen(ctx, canteen.ID)
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context, canteenID uuid.UUID) ([]*models.Category, error) {
	cached, err := s.cacheSvc.GetCategories(ctx, canteenID)
	if err != nil {
		log.Printf("Cache read failed for categories of %s: %v", canteenID, err)
	}
	if cached != nil {
		return cached, nil
	}

	categories, err := s.categoryRepo.ListByCanteen(ctx, canteenID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	if err := s.cacheSvc.SetCategories(ctx, canteenID, categories, catalogCacheTTL); err != nil {
		log.Printf("Cache write failed for categories of %s: %v", canteenID, err)
	}
	return categories, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if category.Name == "" {
		return fmt.Errorf("category name is required")
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	s.invalidateCanteen(ctx, category.CanteenID)
	return nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, canteenID uuid.UUID, category *models.Category) error {
	existing, err := s.categoryRepo.GetByID(ctx, category.ID)
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	if existing == nil {
		return ErrCategoryNotFound
	}
	if existing.CanteenID != canteenID {
		return ErrNotCanteenOwner
	}

	category.CanteenID = existing.CanteenID
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	s.invalidateCanteen(ctx, canteenID)
	s.invalidateItems(ctx, category.ID)
	return nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, canteenID, categoryID uuid.UUID) error {
	existing, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	if existing == nil {
		return ErrCategoryNotFound
	}
	if existing.CanteenID != canteenID {
		return ErrNotCanteenOwner
	}

	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidateCanteen(ctx, canteenID)
	s.invalidateItems(ctx, categoryID)
	return nil
}

func (s *catalogService) ListAvailableItems(ctx context.Context, canteenID, categoryID uuid.UUID) ([]*models.MenuItem, error) {
	cached, err := s.cacheSvc.GetMenuItems(ctx, categoryID)
	if err != nil {
		log.Printf("Cache read failed for items of %s: %v", categoryID, err)
	}
	if cached != nil {
		return cached, nil
	}

	items, err := s.menuRepo.ListAvailableByCategory(ctx, canteenID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}

	if err := s.cacheSvc.SetMenuItems(ctx, categoryID, items, catalogCacheTTL); err != nil {
		log.Printf("Cache write failed for items of %s: %v", categoryID, err)
	}
	return items, nil
}

func (s *catalogService) ListItems(ctx context.Context, canteenID uuid.UUID) ([]*models.MenuItem, error) {
	return s.menuRepo.ListByCanteen(ctx, canteenID)
}

func (s *catalogService) CreateItem(ctx context.Context, item *models.MenuItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Name == "" {
		return fmt.Errorf("item name is required")
	}
	if item.Price < 0 {
		return fmt.Errorf("item price cannot be negative")
	}
	if err := s.menuRepo.Create(ctx, item); err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}
	if item.CategoryID != nil {
		s.invalidateItems(ctx, *item.CategoryID)
	}
	return nil
}

func (s *catalogService) UpdateItem(ctx context.Context, canteenID uuid.UUID, item *models.MenuItem) error {
	existing, err := s.ownedItem(ctx, canteenID, item.ID)
	if err != nil {
		return err
	}

	item.CanteenID = existing.CanteenID
	if err := s.menuRepo.Update(ctx, item); err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	if existing.CategoryID != nil {
		s.invalidateItems(ctx, *existing.CategoryID)
	}
	if item.CategoryID != nil {
		s.invalidateItems(ctx, *item.CategoryID)
	}
	return nil
}

func (s *catalogService) SetItemAvailability(ctx context.Context, canteenID, itemID uuid.UUID, available bool) error {
	existing, err := s.ownedItem(ctx, canteenID, itemID)
	if err != nil {
		return err
	}

	existing.IsAvailable = available
	if err := s.menuRepo.Update(ctx, existing); err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	if existing.CategoryID != nil {
		s.invalidateItems(ctx, *existing.CategoryID)
	}
	return nil
}

func (s *catalogService) DeleteItem(ctx context.Context, canteenID, itemID uuid.UUID) error {
	existing, err := s.ownedItem(ctx, canteenID, itemID)
	if err != nil {
		return err
	}

	if err := s.menuRepo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if existing.CategoryID != nil {
		s.invalidateItems(ctx, *existing.CategoryID)
	}
	return nil
}

func (s *catalogService) ownedItem(ctx context.Context, canteenID, itemID uuid.UUID) (*models.MenuItem, error) {
	existing, err := s.menuRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	if existing == nil {
		return nil, ErrMenuItemNotFound
	}
	if existing.CanteenID != canteenID {
		return nil, ErrNotCanteenOwner
	}
	return existing, nil
}

func (s *catalogService) invalidateCanteen(ctx context.Context, canteenID uuid.UUID) {
	if err := s.cacheSvc.InvalidateCanteenCache(ctx, canteenID); err != nil {
		log.Printf("Cache invalidation failed for canteen %s: %v", canteenID, err)
	}
}

func (s *catalogService) invalidateItems(ctx context.Context, categoryID uuid.UUID) {
	if err := s.cacheSvc.DeleteMenuItems(ctx, categoryID); err != nil {
		log.Printf("Cache invalidation failed for items of %s: %v", categoryID, err)
	}
}
