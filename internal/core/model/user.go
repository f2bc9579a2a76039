package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"` // bcrypt hash, never serialized
	Name      string             `json:"name" bson:"name"`
	Role      string             `json:"role" bson:"role"`
	Theme     string             `json:"theme" bson:"theme"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

func NewUser(email, passwordHash, name string) *User {
	return &User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Password:  passwordHash,
		Name:      name,
		Role:      RoleUser,
		Theme:     ThemeLight,
		CreatedAt: time.Now(),
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SellerRef is the partial seller projection attached to product responses.
// It deliberately carries name and email only.
type SellerRef struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

func (u *User) Ref() *SellerRef {
	return &SellerRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

func ValidTheme(theme string) bool {
	return theme == ThemeLight || theme == ThemeDark
}
