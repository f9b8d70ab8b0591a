package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token audiences separate user and admin sessions.
const (
	audienceUser  = "user"
	audienceAdmin = "admin"
)

// ErrInvalidToken indicates a token that failed validation.
var ErrInvalidToken = errors.New("security: invalid token")

// userClaims carries the signed user session payload.
type userClaims struct {
	UserID uint64 `json:"uid"`
	jwt.RegisteredClaims
}

// adminClaims carries the signed admin session payload.
type adminClaims struct {
	AdminID uint64 `json:"aid"`
	jwt.RegisteredClaims
}

// SignUserToken issues a signed bearer token for a user session.
func SignUserToken(secret string, userID uint64, expiry time.Duration) (string, error) {
	return signToken(secret, audienceUser, func(reg jwt.RegisteredClaims) jwt.Claims {
		return userClaims{UserID: userID, RegisteredClaims: reg}
	}, expiry)
}

// SignAdminToken issues a signed bearer token for an admin session.
func SignAdminToken(secret string, adminID uint64, expiry time.Duration) (string, error) {
	return signToken(secret, audienceAdmin, func(reg jwt.RegisteredClaims) jwt.Claims {
		return adminClaims{AdminID: adminID, RegisteredClaims: reg}
	}, expiry)
}

// ParseUserToken validates a user token and returns the user ID.
func ParseUserToken(secret, token string) (uint64, error) {
	var claims userClaims
	if err := parseToken(secret, token, audienceUser, &claims); err != nil {
		return 0, err
	}
	if claims.UserID == 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// ParseAdminToken validates an admin token and returns the admin ID.
func ParseAdminToken(secret, token string) (uint64, error) {
	var claims adminClaims
	if err := parseToken(secret, token, audienceAdmin, &claims); err != nil {
		return 0, err
	}
	if claims.AdminID == 0 {
		return 0, ErrInvalidToken
	}
	return claims.AdminID, nil
}

func signToken(secret, audience string, build func(jwt.RegisteredClaims) jwt.Claims, expiry time.Duration) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", errors.New("security: empty jwt secret")
	}
	if expiry <= 0 {
		return "", errors.New("security: non-positive jwt expiry")
	}
	now := time.Now().UTC()
	reg := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, build(reg)).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("security: sign token: %w", err)
	}
	return signed, nil
}

func parseToken(secret, token, audience string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("security: unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithAudience(audience), jwt.WithExpirationRequired())
	if err != nil {
		return ErrInvalidToken
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
