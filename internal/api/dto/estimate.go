package dto

// QuoteForm is bound from the /results form and the /api/estimates query string.
type QuoteForm struct {
	Pickup string `form:"pickup" binding:"required"`
	Drop   string `form:"drop" binding:"required"`
}

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type EstimateResponse struct {
	Provider string  `json:"provider"`
	Service  string  `json:"service"`
	PriceMin float64 `json:"price_min"`
	PriceMax float64 `json:"price_max"`
	Currency string  `json:"currency,omitempty"`
	Duration string  `json:"duration"`
	Distance string  `json:"distance"`
	Deeplink string  `json:"deeplink"`
}

type WarningResponse struct {
	Provider string `json:"provider"`
	Message  string `json:"message"`
}

type EstimatesResponse struct {
	Pickup    CoordinatesResponse `json:"pickup"`
	Drop      CoordinatesResponse `json:"drop"`
	Estimates []EstimateResponse  `json:"estimates"`
	Warnings  []WarningResponse   `json:"warnings"`
	Skipped   []string            `json:"skipped"`
}
