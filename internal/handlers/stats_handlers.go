package handlers

import (
	"net/http"

	"campuseats/internal/analytics"
	"campuseats/internal/common"
	"campuseats/internal/services"

	"github.com/labstack/echo/v4"
)

// StatsHandlers serves the vendor dashboard numbers
type StatsHandlers struct {
	statsService   *analytics.Service
	catalogService services.CatalogService
}

func NewStatsHandlers(statsService *analytics.Service, catalogService services.CatalogService) *StatsHandlers {
	return &StatsHandlers{
		statsService:   statsService,
		catalogService: catalogService,
	}
}

// GetStats handles GET /vendor/stats
func (h *StatsHandlers) GetStats(c echo.Context) error {
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	stats, err := h.statsService.CanteenStats(c.Request().Context(), canteen.ID)
	if err != nil {
		c.Logger().Errorf("canteen stats failed: %v", err)
		return common.SendServerError(c, "Failed to load stats")
	}

	return c.JSON(http.StatusOK, stats)
}
