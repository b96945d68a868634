package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"campuseats/internal/cart"
	"campuseats/internal/common"
	"campuseats/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// OrderHandlers serves checkout and order history for students and the
// order board with status transitions for vendors.
type OrderHandlers struct {
	orderService   services.OrderServiceInterface
	catalogService services.CatalogService
}

func NewOrderHandlers(orderService services.OrderServiceInterface, catalogService services.CatalogService) *OrderHandlers {
	return &OrderHandlers{
		orderService:   orderService,
		catalogService: catalogService,
	}
}

// Checkout handles POST /canteens/:canteenID/checkout. The whole cart
// becomes one order; the cart is cleared only after the order commits.
func (h *OrderHandlers) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	studentID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	canteenID, err := common.ValidateUUID(c.Param("canteenID"), "canteen id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.orderService.Checkout(ctx, studentID, canteenID)
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			return common.SendClientError(c, "Cart is empty")
		}
		c.Logger().Errorf("checkout failed: %v", err)
		return common.SendServerError(c, "Failed to place order")
	}

	return c.JSON(http.StatusCreated, order)
}

// ListMyOrders handles GET /orders
func (h *OrderHandlers) ListMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	studentID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	orders, err := h.orderService.ListStudentOrders(ctx, studentID, limit, offset)
	if err != nil {
		c.Logger().Errorf("list student orders failed: %v", err)
		return common.SendServerError(c, "Failed to list orders")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

// GetOrder handles GET /orders/:id. Students see only their own orders.
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	studentID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.orderService.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return common.SendNotFoundError(c, "Order")
		}
		c.Logger().Errorf("get order failed: %v", err)
		return common.SendServerError(c, "Failed to load order")
	}
	if order.StudentID != studentID {
		return common.SendNotFoundError(c, "Order")
	}

	items, err := h.orderService.OrderItems(ctx, orderID)
	if err != nil {
		c.Logger().Errorf("list order items failed: %v", err)
		return common.SendServerError(c, "Failed to load order")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order": order,
		"items": items,
	})
}

// ListCanteenOrders handles GET /vendor/orders. Orders come back
// bucketed by status so the board renders without client-side sorting.
// An optional pickup_code query narrows the result to matching orders.
func (h *OrderHandlers) ListCanteenOrders(c echo.Context) error {
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	grouped, err := h.orderService.GroupCanteenOrders(ctx, canteen.ID, limit)
	if err != nil {
		c.Logger().Errorf("group canteen orders failed: %v", err)
		return common.SendServerError(c, "Failed to list orders")
	}

	if code := strings.TrimSpace(c.QueryParam("pickup_code")); code != "" {
		for status, orders := range grouped {
			filtered := orders[:0]
			for _, order := range orders {
				if order.PickupCode == code {
					filtered = append(filtered, order)
				}
			}
			grouped[status] = filtered
		}
	}

	return c.JSON(http.StatusOK, grouped)
}

// GetCanteenOrder handles GET /vendor/orders/:id with line items.
func (h *OrderHandlers) GetCanteenOrder(c echo.Context) error {
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	ctx := c.Request().Context()
	order, err := h.orderService.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return common.SendNotFoundError(c, "Order")
		}
		c.Logger().Errorf("get order failed: %v", err)
		return common.SendServerError(c, "Failed to load order")
	}
	if order.CanteenID != canteen.ID {
		return common.SendNotFoundError(c, "Order")
	}

	items, err := h.orderService.OrderItems(ctx, orderID)
	if err != nil {
		c.Logger().Errorf("list order items failed: %v", err)
		return common.SendServerError(c, "Failed to load order")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order": order,
		"items": items,
	})
}

// MarkReady handles POST /vendor/orders/:id/ready
func (h *OrderHandlers) MarkReady(c echo.Context) error {
	return h.transition(c, h.orderService.MarkReady)
}

// MarkCompleted handles POST /vendor/orders/:id/complete
func (h *OrderHandlers) MarkCompleted(c echo.Context) error {
	return h.transition(c, h.orderService.MarkCompleted)
}

func (h *OrderHandlers) transition(c echo.Context, do func(ctx context.Context, canteenID, orderID uuid.UUID) error) error {
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := do(c.Request().Context(), canteen.ID, orderID); err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return common.SendNotFoundError(c, "Order")
		case errors.Is(err, services.ErrInvalidTransition):
			return common.SendConflictError(c, err.Error())
		default:
			c.Logger().Errorf("order transition failed: %v", err)
			return common.SendServerError(c, "Failed to update order")
		}
	}

	return c.NoContent(http.StatusNoContent)
}
