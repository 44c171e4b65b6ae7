package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"go-restaurant-printing/models"
)

type SignedDetails struct {
	Email     string
	Name      string
	Uid       string
	User_role models.UserRole
	jwt.StandardClaims
}

const tokenTTL = 24 * time.Hour

// GenerateToken signs a staff session token valid for 24 hours.
func GenerateToken(secret string, staff models.Staff) (string, error) {
	if secret == "" {
		return "", errors.New("secret key is empty")
	}
	claim := SignedDetails{
		Email:     staff.Email,
		Name:      staff.Name,
		Uid:       staff.Uid,
		User_role: staff.User_role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Local().Add(tokenTTL).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claim).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ValidateToken returns the claims of a valid token, or a message describing
// why the token was rejected.
func ValidateToken(signedToken, secret string) (claims *SignedDetails, msg string) {
	if secret == "" {
		return nil, "secret key is not configured"
	}
	token, err := jwt.ParseWithClaims(
		signedToken,
		&SignedDetails{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		return nil, err.Error()
	}
	claims, ok := token.Claims.(*SignedDetails)
	if !ok || !token.Valid {
		return nil, "the token is invalid"
	}
	if claims.ExpiresAt < time.Now().Local().Unix() {
		return nil, "token is expired"
	}
	if !claims.User_role.Valid() {
		return nil, fmt.Sprintf("unknown user role %q", claims.User_role)
	}
	return claims, ""
}
