package handlers

import (
	"errors"
	"net/http"

	"campuseats/internal/cart"
	"campuseats/internal/common"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CartHandlers serves the student's per-canteen cart. Every route is
// scoped by canteen id; carts for different canteens never mix.
type CartHandlers struct {
	cartService *cart.Service
}

func NewCartHandlers(cartService *cart.Service) *CartHandlers {
	return &CartHandlers{cartService: cartService}
}

func cartScope(c echo.Context) (studentID, canteenID uuid.UUID, err error) {
	studentID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized access")
	}
	canteenID, err = common.ValidateUUID(c.Param("canteenID"), "canteen id")
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return studentID, canteenID, nil
}

func cartResponse(c echo.Context, crt *cart.Cart) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"lines": crt.Lines,
		"total": crt.Total(),
		"count": crt.Count(),
	})
}

// GetCart handles GET /canteens/:canteenID/cart
func (h *CartHandlers) GetCart(c echo.Context) error {
	studentID, canteenID, err := cartScope(c)
	if err != nil {
		return err
	}

	crt, err := h.cartService.Get(c.Request().Context(), studentID, canteenID)
	if err != nil {
		c.Logger().Errorf("load cart failed: %v", err)
		return common.SendServerError(c, "Failed to load cart")
	}
	return cartResponse(c, crt)
}

// AddItem handles POST /canteens/:canteenID/cart/items. Items in a
// variable-priced category must carry a chosen price tier; fixed-price
// items must not send one.
func (h *CartHandlers) AddItem(c echo.Context) error {
	studentID, canteenID, err := cartScope(c)
	if err != nil {
		return err
	}

	var req struct {
		MenuItemID string   `json:"menu_item_id"`
		Price      *float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	menuItemID, err := common.ValidateUUID(req.MenuItemID, "menu_item_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	crt, err := h.cartService.Add(c.Request().Context(), studentID, canteenID, menuItemID, req.Price)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrPriceTierRequired):
			return common.SendValidationError(c, "price", "a price tier must be selected for this item")
		case errors.Is(err, cart.ErrInvalidPriceTier):
			return common.SendValidationError(c, "price", "price is not an offered tier")
		case errors.Is(err, cart.ErrItemUnavailable):
			return common.SendNotFoundError(c, "Menu item")
		default:
			c.Logger().Errorf("cart add failed: %v", err)
			return common.SendServerError(c, "Failed to update cart")
		}
	}
	return cartResponse(c, crt)
}

// RemoveItem handles POST /canteens/:canteenID/cart/items/remove. It
// decrements the matching line by one.
func (h *CartHandlers) RemoveItem(c echo.Context) error {
	studentID, canteenID, err := cartScope(c)
	if err != nil {
		return err
	}

	var req struct {
		MenuItemID string  `json:"menu_item_id"`
		Price      float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	menuItemID, err := common.ValidateUUID(req.MenuItemID, "menu_item_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	crt, err := h.cartService.Remove(c.Request().Context(), studentID, canteenID, menuItemID, req.Price)
	if err != nil {
		c.Logger().Errorf("cart remove failed: %v", err)
		return common.SendServerError(c, "Failed to update cart")
	}
	return cartResponse(c, crt)
}

// ClearLine handles POST /canteens/:canteenID/cart/items/clear. It
// drops the matching line regardless of quantity.
func (h *CartHandlers) ClearLine(c echo.Context) error {
	studentID, canteenID, err := cartScope(c)
	if err != nil {
		return err
	}

	var req struct {
		MenuItemID string  `json:"menu_item_id"`
		Price      float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	menuItemID, err := common.ValidateUUID(req.MenuItemID, "menu_item_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	crt, err := h.cartService.ClearLine(c.Request().Context(), studentID, canteenID, menuItemID, req.Price)
	if err != nil {
		c.Logger().Errorf("cart clear line failed: %v", err)
		return common.SendServerError(c, "Failed to update cart")
	}
	return cartResponse(c, crt)
}

// ClearCart handles DELETE /canteens/:canteenID/cart
func (h *CartHandlers) ClearCart(c echo.Context) error {
	studentID, canteenID, err := cartScope(c)
	if err != nil {
		return err
	}

	if err := h.cartService.Clear(c.Request().Context(), studentID, canteenID); err != nil {
		c.Logger().Errorf("cart clear failed: %v", err)
		return common.SendServerError(c, "Failed to clear cart")
	}
	return c.NoContent(http.StatusNoContent)
}
