package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"ride-fare-service/internal/api/dto"
	"ride-fare-service/internal/domain"
	"ride-fare-service/internal/platform/obs"
	"ride-fare-service/internal/services"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const autocompleteLimit = 5

const missingAddressMsg = "Please enter both a pickup and a drop address."

// Home renders the address form with connection status and pending flashes.
func (h *Handler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	sid := sessionID(c)

	connected := false
	if h.auth != nil {
		_, ok, err := h.sessions.Token(ctx, sid, h.authProvider)
		if err != nil {
			h.log.Warn("read token failed",
				zap.String("req_id", obs.RequestID(ctx)),
				zap.Error(err),
			)
		}
		connected = ok
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Flashes":      h.flashes(ctx, sid),
		"AuthEnabled":  h.auth != nil,
		"AuthProvider": h.authProvider,
		"Connected":    connected,
		"Providers":    h.quoter.Providers(),
	})
}

// Results compares fares for the submitted addresses and renders them cheapest first.
func (h *Handler) Results(c *gin.Context) {
	var form dto.QuoteForm
	if err := c.ShouldBind(&form); err != nil {
		h.redirectHome(c, missingAddressMsg)
		return
	}
	pickup, drop := strings.TrimSpace(form.Pickup), strings.TrimSpace(form.Drop)
	if pickup == "" || drop == "" {
		h.redirectHome(c, missingAddressMsg)
		return
	}

	res, err := h.quoter.Aggregate(c.Request.Context(), services.QuoteRequest{
		SessionID: sessionID(c),
		Pickup:    pickup,
		Drop:      drop,
	})
	if err != nil {
		h.redirectHome(c, "Geocoding error: "+geocodeReason(err))
		return
	}

	warnings := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		warnings = append(warnings, w.Message())
	}

	c.HTML(http.StatusOK, "results.html", gin.H{
		"Pickup":       pickup,
		"Drop":         drop,
		"Prices":       res.Estimates,
		"Warnings":     warnings,
		"Skipped":      res.Skipped,
		"AuthProvider": h.authProvider,
	})
}

// Estimates is the JSON variant of Results.
func (h *Handler) Estimates(c *gin.Context) {
	var q dto.QuoteForm
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "pickup and drop are required")
		return
	}
	pickup, drop := strings.TrimSpace(q.Pickup), strings.TrimSpace(q.Drop)
	if pickup == "" || drop == "" {
		writeError(c, http.StatusBadRequest, "pickup and drop are required")
		return
	}

	res, err := h.quoter.Aggregate(c.Request.Context(), services.QuoteRequest{
		SessionID: sessionID(c),
		Pickup:    pickup,
		Drop:      drop,
	})
	if err != nil {
		var geoErr *domain.GeocodeError
		if errors.As(err, &geoErr) {
			writeError(c, http.StatusUnprocessableEntity, "Geocoding error: "+geoErr.Reason)
			return
		}
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, toEstimatesResponse(res))
}

// Autocomplete returns up to five raw geocoder suggestions for q.
// Failures yield an empty array.
func (h *Handler) Autocomplete(c *gin.Context) {
	empty := []json.RawMessage{}

	q := strings.TrimSpace(c.Query("q"))
	if q == "" || h.suggester == nil {
		c.JSON(http.StatusOK, empty)
		return
	}

	ctx := c.Request.Context()
	items, err := h.suggester.Suggest(ctx, q, autocompleteLimit)
	if err != nil {
		h.log.Warn("autocomplete failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(err),
		)
		c.JSON(http.StatusOK, empty)
		return
	}
	if len(items) > autocompleteLimit {
		items = items[:autocompleteLimit]
	}
	if items == nil {
		items = empty
	}

	c.JSON(http.StatusOK, items)
}

func geocodeReason(err error) string {
	var geoErr *domain.GeocodeError
	if errors.As(err, &geoErr) {
		return geoErr.Reason
	}
	return err.Error()
}

func toEstimatesResponse(res *services.QuoteResult) dto.EstimatesResponse {
	out := dto.EstimatesResponse{
		Pickup:    dto.CoordinatesResponse{Lat: res.Pickup.Lat, Lon: res.Pickup.Lon},
		Drop:      dto.CoordinatesResponse{Lat: res.Dropoff.Lat, Lon: res.Dropoff.Lon},
		Estimates: make([]dto.EstimateResponse, 0, len(res.Estimates)),
		Warnings:  make([]dto.WarningResponse, 0, len(res.Warnings)),
		Skipped:   append([]string{}, res.Skipped...),
	}
	for _, e := range res.Estimates {
		out.Estimates = append(out.Estimates, dto.EstimateResponse{
			Provider: e.Provider,
			Service:  e.Service,
			PriceMin: e.PriceMin,
			PriceMax: e.PriceMax,
			Currency: e.Currency,
			Duration: e.Duration,
			Distance: e.Distance,
			Deeplink: e.Deeplink,
		})
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, dto.WarningResponse{Provider: w.Provider, Message: w.Message()})
	}
	return out
}
