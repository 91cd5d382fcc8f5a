package models

import "github.com/google/uuid"

type User struct {
	Base
	Email        string `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username     string `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName    string `gorm:"size:150;not null" json:"first_name"`
	LastName     string `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// OwnerID makes a user the owner of their own account
func (u *User) OwnerID() uuid.UUID {
	return u.ID
}
