package model

import (
	"errors"
	"strings"
	"time"

	"employee_tracker/utils"
)

type Warehouse struct {
	WarehouseID    string      `bson:"warehouse_id" json:"warehouse_id"`
	Name           string      `bson:"name" json:"name"`
	Location       utils.Point `bson:"location" json:"location"`
	TotalEmployees int         `bson:"total_employees" json:"totalEmployees"`
	Managers       []string    `bson:"managers" json:"managers"`
	IsActive       bool        `bson:"is_active" json:"isActive"`
	CreatedAt      time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time   `bson:"updated_at" json:"updatedAt"`
}

// Validate checks the fields the geofence depends on.
func (w *Warehouse) Validate() error {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return errors.New("warehouse name is required")
	}
	if !w.Location.Valid() {
		return errors.New("warehouse location must be finite coordinates")
	}
	if w.Location.Latitude < -90 || w.Location.Latitude > 90 ||
		w.Location.Longitude < -180 || w.Location.Longitude > 180 {
		return errors.New("warehouse location is out of range")
	}
	if w.TotalEmployees < 0 {
		return errors.New("total employees cannot be negative")
	}
	return nil
}
