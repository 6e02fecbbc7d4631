package room

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type videoGrant struct {
	RoomJoin bool   `json:"roomJoin"`
	Room     string `json:"room"`
}

type joinClaims struct {
	jwt.RegisteredClaims
	Video videoGrant `json:"video"`
}

// AccessToken mints the HS256 join token the room server expects: issuer is
// the API key, subject is the participant identity, and the video grant
// scopes the token to a single room.
func AccessToken(apiKey, apiSecret, roomName, identity string, ttl time.Duration) (string, error) {
	if apiKey == "" || apiSecret == "" {
		return "", fmt.Errorf("room: api key and secret are required")
	}
	if identity == "" {
		identity = "agent"
	}

	now := time.Now()
	claims := joinClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    apiKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Video: videoGrant{RoomJoin: true, Room: roomName},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(apiSecret))
	if err != nil {
		return "", fmt.Errorf("room: sign token: %w", err)
	}
	return signed, nil
}
