// server/internal/models/common.go
package models

// GeoPoint stores a GPS fix captured on the field device.
// Longitude first, matching the GeoJSON coordinate order.
type GeoPoint struct {
	Longitude float64 `bson:"longitude" json:"longitude"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
}
