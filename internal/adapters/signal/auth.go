package signal

import (
	"time"

	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 5 * time.Minute

// Claims identify the endpoint to the signaling server.
type Claims struct {
	Room string `json:"room"`
	jwt.RegisteredClaims
}

// SignToken issues a short-lived HS256 token keyed by the connection secret.
func SignToken(p domain.ConnectionParameters) (string, error) {
	now := time.Now()
	claims := Claims{
		Room: string(p.Room),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(p.Identity),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(p.Secret))
}
