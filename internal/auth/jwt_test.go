package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("secret")

	token, err := GenerateToken(secret, "user-1", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected subject user-1, got %q", claims.Subject)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	secret := []byte("secret")
	expired, _ := GenerateToken(secret, "user-1", -time.Minute)
	wrongKey, _ := GenerateToken([]byte("other"), "user-1", time.Minute)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "user-1"}).
		SignedString(secret)

	tests := map[string]string{
		"expired":    expired,
		"wrong key":  wrongKey,
		"alg none":   none,
		"other hmac": hs512,
		"garbage":    "abc.def.ghi",
		"empty":      "",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseToken(secret, token); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"Bearer  abc ", "abc", false},
		{"", "", true},
		{"Bearer ", "", true},
		{"Basic abc", "", true},
		{"bearer abc", "", true},
	}

	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if tt.wantErr {
			if !errors.Is(err, ErrMissingToken) {
				t.Errorf("%q: expected ErrMissingToken, got %v", tt.header, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: expected %q, got %q (err %v)", tt.header, tt.want, got, err)
		}
	}
}
