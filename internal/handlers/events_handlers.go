package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"campuseats/internal/common"
	"campuseats/internal/realtime"
	"campuseats/internal/repositories"
	"campuseats/internal/services"

	"github.com/labstack/echo/v4"
)

// EventsHandlers streams order change events over SSE. Students get the
// feed for their own orders, vendors the feed for their canteen. While
// a client is connected the matching notifier also runs, so the ready
// alert and push notification fire server-side. The stream is advisory:
// a dropped connection is healed by re-fetching the order list on
// reconnect.
type EventsHandlers struct {
	bus            realtime.Bus
	catalogService services.CatalogService
	canteenRepo    repositories.CanteenRepository
	profileRepo    repositories.ProfileRepository
	alerter        realtime.Alerter
}

func NewEventsHandlers(bus realtime.Bus, catalogService services.CatalogService, canteenRepo repositories.CanteenRepository, profileRepo repositories.ProfileRepository, alerter realtime.Alerter) *EventsHandlers {
	return &EventsHandlers{
		bus:            bus,
		catalogService: catalogService,
		canteenRepo:    canteenRepo,
		profileRepo:    profileRepo,
		alerter:        alerter,
	}
}

// StudentEvents handles GET /events
func (h *EventsHandlers) StudentEvents(c echo.Context) error {
	ctx := c.Request().Context()
	studentID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	notifier := realtime.NewStudentNotifier(h.bus, h.canteenRepo, h.profileRepo, h.alerter, nil)
	return h.stream(c, realtime.StudentFilter(studentID), func(ev realtime.OrderEvent) {
		notifier.Handle(ctx, studentID, ev)
	})
}

// VendorEvents handles GET /vendor/events
func (h *EventsHandlers) VendorEvents(c echo.Context) error {
	ctx := c.Request().Context()
	vendorID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	canteen, err := vendorCanteen(c, h.catalogService)
	if err != nil {
		return err
	}

	notifier := realtime.NewVendorNotifier(h.bus, h.alerter, vendorID, nil)
	return h.stream(c, realtime.CanteenFilter(canteen.ID), func(ev realtime.OrderEvent) {
		notifier.Handle(ctx, canteen.ID, ev)
	})
}

func (h *EventsHandlers) stream(c echo.Context, filter realtime.Filter, observe realtime.Handler) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ctx := c.Request().Context()
	events := make(chan realtime.OrderEvent, 16)

	sub, err := h.bus.Subscribe(ctx, filter, func(ev realtime.OrderEvent) {
		observe(ev)
		select {
		case events <- ev:
		default:
			// Slow consumer; the event is dropped and the client heals
			// on its next re-fetch.
		}
	})
	if err != nil {
		c.Logger().Errorf("event subscribe failed: %v", err)
		return err
	}
	defer sub.Cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			payload, err := json.Marshal(ev)
			if err != nil {
				c.Logger().Errorf("event marshal failed: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: order\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
