package handlers

import (
	"net/http"
	"ride-fare-service/internal/domain"
	"ride-fare-service/internal/platform/obs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const recentSearchLimit = 10

// SampleRides lists seeded rides and the caller's own recent searches when a
// repository is configured.
func (h *Handler) SampleRides(c *gin.Context) {
	data := gin.H{"Configured": h.rides != nil}
	if h.rides == nil {
		c.HTML(http.StatusOK, "sample_rides.html", data)
		return
	}

	ctx := c.Request.Context()

	rides, err := h.rides.ListSampleRides(ctx)
	if err != nil {
		h.log.Warn("list sample rides failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(err),
		)
		rides = []domain.SampleRide{}
	}

	searches, err := h.rides.ListRecentSearches(ctx, sessionID(c), recentSearchLimit)
	if err != nil {
		h.log.Warn("list recent searches failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(err),
		)
		searches = []domain.SearchRecord{}
	}

	data["Rides"] = rides
	data["Searches"] = searches
	c.HTML(http.StatusOK, "sample_rides.html", data)
}

func AIPrediction(c *gin.Context) {
	c.HTML(http.StatusOK, "ai_prediction.html", nil)
}

func Contact(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", nil)
}
