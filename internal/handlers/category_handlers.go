package handlers

import (
	"errors"
	"net/http"

	"campuseats/internal/common"
	"campuseats/internal/models"
	"campuseats/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CategoryHandlers serves category browsing for students and category
// management for vendors.
type CategoryHandlers struct {
	catalogService services.CatalogService
	imageService   services.ImageService
}

func NewCategoryHandlers(catalogService services.CatalogService, imageService services.ImageService) *CategoryHandlers {
	return &CategoryHandlers{
		catalogService: catalogService,
		imageService:   imageService,
	}
}

// ListCategories handles GET /canteens/:id/categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	canteenID, err := common.ValidateUUID(c.Param("id"), "canteen id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	categories, err := h.catalogService.ListCategories(c.Request().Context(), canteenID)
	if err != nil {
		c.Logger().Errorf("list categories failed: %v", err)
		return common.SendServerError(c, "Failed to list categories")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"categories": categories})
}

// CreateCategory handles POST /vendor/categories
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	var req struct {
		Name            string `json:"name"`
		VariablePricing bool   `json:"variable_pricing"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	category := &models.Category{
		ID:              uuid.New(),
		CanteenID:       canteen.ID,
		Name:            req.Name,
		VariablePricing: req.VariablePricing,
	}
	if err := h.catalogService.CreateCategory(ctx, category); err != nil {
		c.Logger().Errorf("create category failed: %v", err)
		return common.SendServerError(c, "Failed to create category")
	}

	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /vendor/categories/:id
func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	categoryID, err := common.ValidateUUID(c.Param("id"), "category id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Name            string `json:"name"`
		VariablePricing bool   `json:"variable_pricing"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	category := &models.Category{
		ID:              categoryID,
		Name:            req.Name,
		VariablePricing: req.VariablePricing,
	}
	if err := h.catalogService.UpdateCategory(ctx, canteen.ID, category); err != nil {
		return catalogError(c, err, "Category", "update category")
	}

	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /vendor/categories/:id
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	categoryID, err := common.ValidateUUID(c.Param("id"), "category id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.catalogService.DeleteCategory(ctx, canteen.ID, categoryID); err != nil {
		return catalogError(c, err, "Category", "delete category")
	}

	return c.NoContent(http.StatusNoContent)
}

// UploadCategoryImage handles POST /vendor/categories/:id/image
func (h *CategoryHandlers) UploadCategoryImage(c echo.Context) error {
	ctx := c.Request().Context()
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	categoryID, err := common.ValidateUUID(c.Param("id"), "category id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	url, err := uploadImage(c, h.imageService, services.CategoryImageBucket, categoryID)
	if err != nil {
		return err
	}

	categories, err := h.catalogService.ListCategories(ctx, canteen.ID)
	if err != nil {
		c.Logger().Errorf("list categories failed: %v", err)
		return common.SendServerError(c, "Failed to save image")
	}
	for _, category := range categories {
		if category.ID == categoryID {
			category.ImageURL = &url
			if err := h.catalogService.UpdateCategory(ctx, canteen.ID, category); err != nil {
				return catalogError(c, err, "Category", "update category image")
			}
			return c.JSON(http.StatusOK, map[string]string{"image_url": url})
		}
	}
	return common.SendNotFoundError(c, "Category")
}

// vendorCanteen resolves the calling vendor's canteen. Failures come
// back as echo HTTP errors so handlers can return them directly.
func vendorCanteen(c echo.Context, catalogSvc services.CatalogService) (*models.Canteen, error) {
	ctx := c.Request().Context()
	vendorID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized access")
	}

	canteen, err := catalogSvc.GetCanteenForVendor(ctx, vendorID)
	if err != nil {
		if errors.Is(err, services.ErrCanteenNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Canteen not found")
		}
		c.Logger().Errorf("get vendor canteen failed: %v", err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load canteen")
	}
	return canteen, nil
}

// catalogError maps catalog service errors onto HTTP responses.
func catalogError(c echo.Context, err error, resource, op string) error {
	switch {
	case errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrMenuItemNotFound),
		errors.Is(err, services.ErrCanteenNotFound):
		return common.SendNotFoundError(c, resource)
	case errors.Is(err, services.ErrNotCanteenOwner):
		return common.SendUnauthorizedError(c)
	default:
		c.Logger().Errorf("%s failed: %v", op, err)
		return common.SendServerError(c, "Operation failed")
	}
}
