package models

import (
	"math/rand"
	"time"
)

// User represents an application user (credentials-based account)
type User struct {
	ID              string    `bson:"id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	Email           string    `bson:"email" json:"email"`
	PasswordHash    string    `bson:"passwordHash" json:"-"`
	AvatarColor     string    `bson:"avatarColor" json:"avatarColor"`
	ResetOTP        string    `bson:"resetOTP,omitempty" json:"-"`
	ResetOTPExpires time.Time `bson:"resetOTPExpires,omitempty" json:"-"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// avatarColors is the palette a new account's avatar color is picked from.
var avatarColors = []string{
	"#6366f1", "#8b5cf6", "#a855f7", "#d946ef",
	"#ec4899", "#f43f5e", "#ef4444", "#f97316",
	"#eab308", "#22c55e", "#14b8a6", "#06b6d4",
	"#3b82f6", "#6366f1",
}

// RandomAvatarColor returns a random color from the avatar palette.
func RandomAvatarColor() string {
	return avatarColors[rand.Intn(len(avatarColors))]
}

// PublicUser is the projection of a user embedded in API responses
// (owner, collaborators, lastEditedBy, version editors).
type PublicUser struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Email       string `bson:"email" json:"email"`
	AvatarColor string `bson:"avatarColor,omitempty" json:"avatarColor,omitempty"`
}

// Public returns the user's public projection.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, AvatarColor: u.AvatarColor}
}
