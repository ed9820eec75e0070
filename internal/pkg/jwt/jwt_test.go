package jwt

import (
	"errors"
	"testing"
)

func TestDevTokenRoundTrip(t *testing.T) {
	token, err := GenerateDevToken("user-1", "user@example.com", "secret", 5)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := ValidateAccessToken(token, "secret")
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("Expected user-1, got %s", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("Expected email to round-trip, got %s", claims.Email)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := GenerateDevToken("user-1", "", "secret", 5)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := ValidateAccessToken(token, "other-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	token, err := GenerateDevToken("user-1", "", "secret", -1)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := ValidateAccessToken(token, "secret"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Expected ErrTokenExpired, got %v", err)
	}
}
