package auth

import (
	"time"

	"github.com/dmitrijs2005/llave/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by a session token. TwoFactorVerified distinguishes a
// partial session (password accepted, second factor pending) from a full
// one. Tokens are stateless: validity is signature plus expiry only, so
// rotating the signing key is the only way to revoke outstanding tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID            string `json:"userId"`
	Email             string `json:"email"`
	TwoFactorVerified bool   `json:"twoFactorVerified"`
}

func GenerateToken(userID, email string, twoFactorVerified bool, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:            userID,
		Email:             email,
		TwoFactorVerified: twoFactorVerified,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
// Any failure — malformed input, wrong signature, expiry — comes back as
// common.ErrInvalidToken; callers must not distinguish the reason.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
