package jwthandling

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RespondentClaims is the identity a respondent token encodes. The values
// end up in a session's @user/@group header records; the engine stores
// them, it does not authenticate.
type RespondentClaims struct {
	UserID string `json:"user_id,omitempty"`
	Group  string `json:"group,omitempty"`
	jwt.RegisteredClaims
}

func GenerateNewRespondentToken(expiresIn time.Duration, userID string, group string, secretKey string) (string, error) {
	claims := RespondentClaims{
		userID,
		group,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

func ValidateRespondentToken(tokenString string, secretKey string) (claims *RespondentClaims, valid bool, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &RespondentClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if token == nil {
		return
	}
	claims, valid = token.Claims.(*RespondentClaims)
	valid = valid && token.Valid
	return
}
