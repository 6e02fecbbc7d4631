package room

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	signed, err := AccessToken("api-key", "api-secret", "demo-room", "teacher", time.Hour)
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	var claims joinClaims
	parsed, err := jwt.ParseWithClaims(signed, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			t.Fatalf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte("api-secret"), nil
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Valid {
		t.Fatalf("token not valid")
	}

	if claims.Issuer != "api-key" {
		t.Errorf("issuer=%q", claims.Issuer)
	}
	if claims.Subject != "teacher" {
		t.Errorf("subject=%q", claims.Subject)
	}
	if !claims.Video.RoomJoin || claims.Video.Room != "demo-room" {
		t.Errorf("video grant=%+v", claims.Video)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Errorf("expiry out of range: %v", claims.ExpiresAt)
	}
}

func TestAccessToken_RequiresKeyPair(t *testing.T) {
	if _, err := AccessToken("", "secret", "room", "id", time.Hour); err == nil {
		t.Fatalf("expected error with empty api key")
	}
	if _, err := AccessToken("key", "", "room", "id", time.Hour); err == nil {
		t.Fatalf("expected error with empty api secret")
	}
}

func TestJoinURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"wss://rooms.example.test", "wss://rooms.example.test/rtc"},
		{"https://rooms.example.test", "wss://rooms.example.test/rtc"},
		{"http://127.0.0.1:7880", "ws://127.0.0.1:7880/rtc"},
		{"wss://rooms.example.test/custom", "wss://rooms.example.test/custom"},
	}
	for _, tc := range cases {
		got, err := joinURL(tc.in, "tok")
		if err != nil {
			t.Fatalf("joinURL(%q): %v", tc.in, err)
		}
		want := tc.want + "?access_token=tok&auto_subscribe=true"
		if got != want {
			t.Errorf("joinURL(%q) = %q, want %q", tc.in, got, want)
		}
	}

	if _, err := joinURL("ftp://example.test", "tok"); err == nil {
		t.Errorf("expected error for unsupported scheme")
	}
}
