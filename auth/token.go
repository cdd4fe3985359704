package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/golang-jwt/jwt/v5"
)

const guestTokenTTL = 24 * time.Hour

var (
	jwtSecret []byte
	tokenTTL  = 72 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email,omitempty"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Configure sets the signing secret and the lifetime of user tokens. Call once at startup.
func Configure(secret string, ttl time.Duration) {
	jwtSecret = []byte(secret)
	if ttl > 0 {
		tokenTTL = ttl
	}
}

// IssueToken signs an HS256 token for a registered user.
func IssueToken(userID, email string, role models.Role) (string, error) {
	return sign(Claims{UserID: userID, Email: email, Role: role}, tokenTTL)
}

func issueGuestToken(guestID string) (string, error) {
	return sign(Claims{UserID: guestID, Role: models.RoleGuest}, guestTokenTTL)
}

func sign(claims Claims, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// ParseToken validates signature, algorithm and expiry.
func ParseToken(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.UserID == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}
