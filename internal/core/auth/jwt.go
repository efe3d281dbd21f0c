package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the opaque (userId, email) pair the rest of the pipeline sees.
// Credential management lives with the external identity provider; this
// service only validates its tokens.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

type Service struct {
	secretKey string
}

func NewService(secretKey string) *Service {
	return &Service{secretKey: secretKey}
}

// ValidateToken parses and verifies a bearer token and extracts the identity.
func (s *Service) ValidateToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id claim: %w", err)
	}

	email, _ := claims["email"].(string)

	return &Identity{UserID: userID, Email: email}, nil
}
