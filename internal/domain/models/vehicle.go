package models

// Vehicle mirrors vehicles. Capacity caps how many seats get allocated per
// generated trip even if more seat rows exist.
type Vehicle struct {
	ID          int64  `json:"id"`
	VehicleCode string `json:"vehicleCode"`
	Name        string `json:"name"`
	PlateNumber string `json:"plateNumber"`
	Capacity    int    `json:"capacity"`
	Active      bool   `json:"active"`
}

type VehiclePayload struct {
	VehicleCode string `json:"vehicleCode" binding:"required"`
	Name        string `json:"name"`
	PlateNumber string `json:"plateNumber" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required"`
}
