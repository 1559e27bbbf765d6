package models

import (
    "time"

    "github.com/google/uuid"
)

type PropertyType string

const (
    PropertyTypeLand         PropertyType = "LAND"
    PropertyTypeResidential  PropertyType = "RESIDENTIAL"
    PropertyTypeCommercial   PropertyType = "COMMERCIAL"
    PropertyTypeJointVenture PropertyType = "JOINT_VENTURE"
)

type Property struct {
    ID           uuid.UUID    `json:"id"`
    OwnerID      uuid.UUID    `json:"owner_id"`
    Title        string       `json:"title"`
    PropertyType PropertyType `json:"property_type"`
    Price        float64      `json:"price"`
    Address      string       `json:"address"`
    City         string       `json:"city"`
    State        string       `json:"state"`
    TimeZone     string       `json:"timezone"`
    Latitude     float64      `json:"latitude"`
    Longitude    float64      `json:"longitude"`
    ThumbnailURL string       `json:"thumbnail_url"`
    IsDemo       bool         `json:"is_demo"`
    CreatedAt    time.Time    `json:"created_at"`
}
