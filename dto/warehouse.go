package dto

import "employee_tracker/utils"

type WarehouseRequest struct {
	Name      *string  `json:"name" binding:"omitempty,min=1,max=128"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude"`
	IsActive  *bool    `json:"isActive"`
}

// Location is nil unless both coordinates were sent.
func (r WarehouseRequest) Location() *utils.Point {
	if r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return &utils.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
}
