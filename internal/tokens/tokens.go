package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/syncboard/syncboard/internal/config"
	"github.com/syncboard/syncboard/internal/models"
)

// ErrInvalidToken is returned when a token fails signature or claims validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded identity carried by an access token.
type Claims struct {
	UserID      string
	Name        string
	Email       string
	AvatarColor string
}

// GenerateAccessToken creates a signed JWT access token for the user
func GenerateAccessToken(cfg *config.Config, u *models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":         u.ID,
		"name":        u.Name,
		"email":       u.Email,
		"avatarColor": u.AvatarColor,
		"iat":         time.Now().Unix(),
		"exp":         time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// ParseAccessToken verifies the signature and expiry of a token string and
// returns the identity claims. Only HS256 tokens are accepted.
func ParseAccessToken(cfg *config.Config, tokenStr string) (*Claims, error) {
	parsed, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	name, _ := mc["name"].(string)
	email, _ := mc["email"].(string)
	color, _ := mc["avatarColor"].(string)
	return &Claims{UserID: sub, Name: name, Email: email, AvatarColor: color}, nil
}
