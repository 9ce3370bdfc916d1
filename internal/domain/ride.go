package domain

import "time"

// A saved pickup/drop pair offered on the sample rides page.
type SampleRide struct {
	ID      int
	Label   string
	Pickup  string
	Dropoff string
}

// SearchRecord summarizes one completed fare comparison.
// CheapestService is empty when no provider returned an estimate.
type SearchRecord struct {
	SessionID       string
	Pickup          string
	Dropoff         string
	PickupCoords    Coordinates
	DropoffCoords   Coordinates
	EstimateCount   int
	CheapestService string
	CheapestPrice   float64
	CreatedAt       time.Time
}
