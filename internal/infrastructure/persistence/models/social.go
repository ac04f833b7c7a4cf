package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/social"
)

// FollowModel is the persistence model for a follow edge.
// idx_follows_pair keeps one edge per ordered pair.
type FollowModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	FollowerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair,priority:1"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair,priority:2;index:idx_follows_following"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FollowModel) TableName() string {
	return "follows"
}

// ToDomain converts the persistence model to a domain FollowEdge
func (m *FollowModel) ToDomain() *social.FollowEdge {
	return &social.FollowEdge{
		ID:          m.ID,
		FollowerID:  m.FollowerID,
		FollowingID: m.FollowingID,
		CreatedAt:   m.CreatedAt,
	}
}

// FollowModelFromDomain creates a persistence model from a domain FollowEdge
func FollowModelFromDomain(e *social.FollowEdge) *FollowModel {
	return &FollowModel{
		ID:          e.ID,
		FollowerID:  e.FollowerID,
		FollowingID: e.FollowingID,
		CreatedAt:   e.CreatedAt,
	}
}

// ConnectionRow is the projection of a user joined through a follow edge
type ConnectionRow struct {
	ID         uuid.UUID
	Name       string
	Username   *string
	Image      string
	FollowedAt time.Time
}

// ToDomain converts the projection to a domain Connection
func (r ConnectionRow) ToDomain() social.Connection {
	c := social.Connection{
		UserID:     r.ID,
		Name:       r.Name,
		Image:      r.Image,
		FollowedAt: r.FollowedAt,
	}
	if r.Username != nil {
		c.Username = *r.Username
	}
	return c
}
