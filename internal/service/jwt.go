package service

import (
	"errors"
	"time"

	"economy_server/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSecret []byte

var ErrInvalidToken = errors.New("invalid token")

func InitJWT(secret string) {
	if secret == "" {
		panic("JWT_SECRET is not set")
	}
	jwtSecret = []byte(secret)
}

// PlayerClaims identify the player behind a request.
type PlayerClaims struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Admin    bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

func GenerateJWT(p domain.Player, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := PlayerClaims{
		PlayerID: p.ID.String(),
		Name:     p.Name,
		Admin:    p.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ParseJWT(tokenString string) (domain.Player, error) {
	claims := &PlayerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return domain.Player{}, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.PlayerID)
	if err != nil {
		return domain.Player{}, errors.New("player_id not found")
	}

	return domain.Player{ID: id, Name: claims.Name, Admin: claims.Admin}, nil
}
