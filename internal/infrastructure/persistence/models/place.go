package models

import (
	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/place"
)

// SavedPlaceModel is the persistence model for the SavedPlace domain entity.
type SavedPlaceModel struct {
	BaseModel
	UserID           uuid.UUID `gorm:"type:uuid;not null;index"`
	Name             string    `gorm:"type:text;not null"`
	FormattedAddress string    `gorm:"type:text;not null"`
	Latitude         float64   `gorm:"type:double precision;not null"`
	Longitude        float64   `gorm:"type:double precision;not null"`
	PlaceID          *string   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SavedPlaceModel) TableName() string {
	return "saved_places"
}

// ToDomain converts the persistence model to a domain SavedPlace
func (m *SavedPlaceModel) ToDomain() *place.SavedPlace {
	return &place.SavedPlace{
		BaseEntity:       m.BaseModel.ToDomain(),
		UserID:           m.UserID,
		Name:             m.Name,
		FormattedAddress: m.FormattedAddress,
		Latitude:         m.Latitude,
		Longitude:        m.Longitude,
		PlaceID:          m.PlaceID,
	}
}

// SavedPlaceModelFromDomain creates a persistence model from a domain SavedPlace
func SavedPlaceModelFromDomain(p *place.SavedPlace) *SavedPlaceModel {
	m := &SavedPlaceModel{
		UserID:           p.UserID,
		Name:             p.Name,
		FormattedAddress: p.FormattedAddress,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		PlaceID:          p.PlaceID,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
