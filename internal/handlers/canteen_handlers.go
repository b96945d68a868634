package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"campuseats/internal/common"
	"campuseats/internal/models"
	"campuseats/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const imageURLTTL = 7 * 24 * time.Hour

// CanteenHandlers serves the canteen browse surface for students and
// canteen management for vendors.
type CanteenHandlers struct {
	catalogService services.CatalogService
	imageService   services.ImageService
}

func NewCanteenHandlers(catalogService services.CatalogService, imageService services.ImageService) *CanteenHandlers {
	return &CanteenHandlers{
		catalogService: catalogService,
		imageService:   imageService,
	}
}

// ListCanteens handles GET /canteens
func (h *CanteenHandlers) ListCanteens(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	canteens, err := h.catalogService.ListCanteens(c.Request().Context(), limit, offset)
	if err != nil {
		c.Logger().Errorf("list canteens failed: %v", err)
		return common.SendServerError(c, "Failed to list canteens")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"canteens": canteens,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetCanteen handles GET /canteens/:id
func (h *CanteenHandlers) GetCanteen(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "canteen id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	canteen, err := h.catalogService.GetCanteen(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCanteenNotFound) {
			return common.SendNotFoundError(c, "Canteen")
		}
		c.Logger().Errorf("get canteen failed: %v", err)
		return common.SendServerError(c, "Failed to load canteen")
	}

	return c.JSON(http.StatusOK, canteen)
}

// GetMyCanteen handles GET /vendor/canteen
func (h *CanteenHandlers) GetMyCanteen(c echo.Context) error {
	ctx := c.Request().Context()
	vendorID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	canteen, err := h.catalogService.GetCanteenForVendor(ctx, vendorID)
	if err != nil {
		if errors.Is(err, services.ErrCanteenNotFound) {
			return common.SendNotFoundError(c, "Canteen")
		}
		c.Logger().Errorf("get vendor canteen failed: %v", err)
		return common.SendServerError(c, "Failed to load canteen")
	}

	return c.JSON(http.StatusOK, canteen)
}

// CreateCanteen handles POST /vendor/canteen
func (h *CanteenHandlers) CreateCanteen(c echo.Context) error {
	ctx := c.Request().Context()
	vendorID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	canteen := &models.Canteen{
		ID:       uuid.New(),
		VendorID: vendorID,
		Name:     req.Name,
		Location: req.Location,
	}
	if err := h.catalogService.CreateCanteen(ctx, canteen); err != nil {
		c.Logger().Errorf("create canteen failed: %v", err)
		return common.SendServerError(c, "Failed to create canteen")
	}

	return c.JSON(http.StatusCreated, canteen)
}

// UpdateCanteen handles PUT /vendor/canteen
func (h *CanteenHandlers) UpdateCanteen(c echo.Context) error {
	ctx := c.Request().Context()
	vendorID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	canteen, err := h.catalogService.GetCanteenForVendor(ctx, vendorID)
	if err != nil {
		if errors.Is(err, services.ErrCanteenNotFound) {
			return common.SendNotFoundError(c, "Canteen")
		}
		c.Logger().Errorf("get vendor canteen failed: %v", err)
		return common.SendServerError(c, "Failed to load canteen")
	}

	var req struct {
		Name     *string `json:"name"`
		Location *string `json:"location"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Name != nil {
		canteen.Name = *req.Name
	}
	if req.Location != nil {
		canteen.Location = *req.Location
	}

	if err := h.catalogService.UpdateCanteen(ctx, canteen); err != nil {
		c.Logger().Errorf("update canteen failed: %v", err)
		return common.SendServerError(c, "Failed to update canteen")
	}

	return c.JSON(http.StatusOK, canteen)
}

// UploadCanteenImage handles POST /vendor/canteen/image
func (h *CanteenHandlers) UploadCanteenImage(c echo.Context) error {
	ctx := c.Request().Context()
	vendorID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	canteen, err := h.catalogService.GetCanteenForVendor(ctx, vendorID)
	if err != nil {
		if errors.Is(err, services.ErrCanteenNotFound) {
			return common.SendNotFoundError(c, "Canteen")
		}
		c.Logger().Errorf("get vendor canteen failed: %v", err)
		return common.SendServerError(c, "Failed to load canteen")
	}

	url, err := uploadImage(c, h.imageService, services.CanteenImageBucket, canteen.ID)
	if err != nil {
		return err
	}

	canteen.ImageURL = &url
	if err := h.catalogService.UpdateCanteen(ctx, canteen); err != nil {
		c.Logger().Errorf("update canteen image failed: %v", err)
		return common.SendServerError(c, "Failed to save image")
	}

	return c.JSON(http.StatusOK, map[string]string{"image_url": url})
}

// uploadImage stores a multipart "image" file and returns a presigned
// URL for it. Shared by the canteen, category and menu item handlers.
// Failures come back as echo HTTP errors so handlers can return them
// directly.
func uploadImage(c echo.Context, imageSvc services.ImageService, bucket string, ownerID uuid.UUID) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	if file.Size > 5<<20 {
		return "", echo.NewHTTPError(http.StatusBadRequest, "image cannot exceed 5 MB")
	}

	src, err := file.Open()
	if err != nil {
		c.Logger().Errorf("open upload failed: %v", err)
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to read upload")
	}
	defer src.Close()

	ctx := c.Request().Context()
	objectName := fmt.Sprintf("%s/%s", ownerID.String(), file.Filename)
	contentType := file.Header.Get("Content-Type")

	if err := imageSvc.EnsureBucketExists(ctx, bucket); err != nil {
		c.Logger().Errorf("ensure bucket failed: %v", err)
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to store image")
	}
	if err := imageSvc.UploadImage(ctx, bucket, objectName, src, file.Size, contentType); err != nil {
		c.Logger().Errorf("upload image failed: %v", err)
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to store image")
	}

	url, err := imageSvc.GetPresignedURL(bucket, objectName, imageURLTTL)
	if err != nil {
		c.Logger().Errorf("presign image failed: %v", err)
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to store image")
	}
	return url, nil
}
