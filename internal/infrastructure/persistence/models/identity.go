package models

import (
	"github.com/wayfarer/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	Name                string   `gorm:"type:varchar(100);not null"`
	Email               string   `gorm:"type:varchar(200);not null;uniqueIndex"`
	Username            *string  `gorm:"type:varchar(30);uniqueIndex"`
	Image               string   `gorm:"type:varchar(500)"`
	PasswordHash        string   `gorm:"type:varchar(255);not null"`
	Interests           []string `gorm:"type:text;serializer:json;not null"`
	OnboardingCompleted bool     `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		BaseEntity:          m.BaseModel.ToDomain(),
		Name:                m.Name,
		Email:               m.Email,
		Image:               m.Image,
		PasswordHash:        m.PasswordHash,
		Interests:           m.Interests,
		OnboardingCompleted: m.OnboardingCompleted,
	}
	if m.Username != nil {
		user.Username = *m.Username
	}
	if user.Interests == nil {
		user.Interests = make([]string, 0)
	}
	return user
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Name = u.Name
	m.Email = u.Email
	m.Image = u.Image
	m.PasswordHash = u.PasswordHash
	m.Interests = u.Interests
	if m.Interests == nil {
		m.Interests = make([]string, 0)
	}
	m.OnboardingCompleted = u.OnboardingCompleted
	m.Username = nil
	if u.Username != "" {
		username := u.Username
		m.Username = &username
	}
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
