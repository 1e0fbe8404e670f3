package models

import (
	"github.com/cshub/backend/internal/domain/user"
)

// UserModel is the persistence model for directory users
type UserModel struct {
	BaseModel
	Email    string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	FullName string    `gorm:"type:varchar(200);not null"`
	Role     user.Role `gorm:"type:varchar(20);not null;index"`
	IsActive bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a domain User
func (m *UserModel) ToDomain() *user.User {
	return &user.User{
		BaseEntity: m.BaseModel.ToDomain(),
		Email:      m.Email,
		FullName:   m.FullName,
		Role:       m.Role,
		IsActive:   m.IsActive,
	}
}

// UserModelFromDomain creates a model from a domain User
func UserModelFromDomain(u *user.User) *UserModel {
	m := &UserModel{
		Email:    user.NormalizeEmail(u.Email),
		FullName: u.FullName,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}
