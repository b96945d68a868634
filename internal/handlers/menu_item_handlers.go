package handlers

import (
	"net/http"

	"campuseats/internal/cart"
	"campuseats/internal/common"
	"campuseats/internal/models"
	"campuseats/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MenuItemHandlers serves the item browse surface for students and menu
// management for vendors.
type MenuItemHandlers struct {
	catalogService services.CatalogService
	imageService   services.ImageService
}

func NewMenuItemHandlers(catalogService services.CatalogService, imageService services.ImageService) *MenuItemHandlers {
	return &MenuItemHandlers{
		catalogService: catalogService,
		imageService:   imageService,
	}
}

// ListItems handles GET /canteens/:id/categories/:categoryID/items.
// Variable-priced categories carry the tier list so clients can offer
// the price choice up front.
func (h *MenuItemHandlers) ListItems(c echo.Context) error {
	canteenID, err := common.ValidateUUID(c.Param("id"), "canteen id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	categoryID, err := common.ValidateUUID(c.Param("categoryID"), "category id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	ctx := c.Request().Context()
	items, err := h.catalogService.ListAvailableItems(ctx, canteenID, categoryID)
	if err != nil {
		c.Logger().Errorf("list items failed: %v", err)
		return common.SendServerError(c, "Failed to list items")
	}

	resp := map[string]interface{}{"items": items}

	categories, err := h.catalogService.ListCategories(ctx, canteenID)
	if err == nil {
		for _, category := range categories {
			if category.ID == categoryID {
				if cart.VariablePricing(category) {
					resp["price_tiers"] = cart.PriceTiers
				}
				break
			}
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// ListMyItems handles GET /vendor/items
func (h *MenuItemHandlers) ListMyItems(c echo.Context) error {
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	items, err := h.catalogService.ListItems(c.Request().Context(), canteen.ID)
	if err != nil {
		c.Logger().Errorf("list vendor items failed: %v", err)
		return common.SendServerError(c, "Failed to list items")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

// CreateItem handles POST /vendor/items
func (h *MenuItemHandlers) CreateItem(c echo.Context) error {
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Price       float64 `json:"price"`
		CategoryID  *string `json:"category_id"`
		IsAvailable *bool   `json:"is_available"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if req.Price < 0 {
		return common.SendValidationError(c, "price", "price cannot be negative")
	}

	item := &models.MenuItem{
		ID:          uuid.New(),
		CanteenID:   canteen.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := common.ValidateUUID(*req.CategoryID, "category_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		item.CategoryID = &categoryID
	}

	if err := h.catalogService.CreateItem(c.Request().Context(), item); err != nil {
		c.Logger().Errorf("create item failed: %v", err)
		return common.SendServerError(c, "Failed to create item")
	}

	return c.JSON(http.StatusCreated, item)
}

// UpdateItem handles PUT /vendor/items/:id
func (h *MenuItemHandlers) UpdateItem(c echo.Context) error {
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Price       float64 `json:"price"`
		CategoryID  *string `json:"category_id"`
		IsAvailable bool    `json:"is_available"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if req.Price < 0 {
		return common.SendValidationError(c, "price", "price cannot be negative")
	}

	item := &models.MenuItem{
		ID:          itemID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsAvailable: req.IsAvailable,
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := common.ValidateUUID(*req.CategoryID, "category_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		item.CategoryID = &categoryID
	}

	if err := h.catalogService.UpdateItem(c.Request().Context(), canteen.ID, item); err != nil {
		return catalogError(c, err, "Menu item", "update item")
	}

	return c.JSON(http.StatusOK, item)
}

// SetAvailability handles PATCH /vendor/items/:id/availability
func (h *MenuItemHandlers) SetAvailability(c echo.Context) error {
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		IsAvailable bool `json:"is_available"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.catalogService.SetItemAvailability(c.Request().Context(), canteen.ID, itemID, req.IsAvailable); err != nil {
		return catalogError(c, err, "Menu item", "set availability")
	}

	return c.JSON(http.StatusOK, map[string]bool{"is_available": req.IsAvailable})
}

// DeleteItem handles DELETE /vendor/items/:id
func (h *MenuItemHandlers) DeleteItem(c echo.Context) error {
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.catalogService.DeleteItem(c.Request().Context(), canteen.ID, itemID); err != nil {
		return catalogError(c, err, "Menu item", "delete item")
	}

	return c.NoContent(http.StatusNoContent)
}

// UploadItemImage handles POST /vendor/items/:id/image
func (h *MenuItemHandlers) UploadItemImage(c echo.Context) error {
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	url, err := uploadImage(c, h.imageService, services.MenuItemImageBucket, itemID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	items, err := h.catalogService.ListItems(ctx, canteen.ID)
	if err != nil {
		c.Logger().Errorf("list vendor items failed: %v", err)
		return common.SendServerError(c, "Failed to save image")
	}
	for _, item := range items {
		if item.ID == itemID {
			item.ImageURL = &url
			if err := h.catalogService.UpdateItem(ctx, canteen.ID, item); err != nil {
				return catalogError(c, err, "Menu item", "update item image")
			}
			return c.JSON(http.StatusOK, map[string]string{"image_url": url})
		}
	}
	return common.SendNotFoundError(c, "Menu item")
}
