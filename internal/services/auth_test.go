package services

import (
	"testing"
	"time"
)

func TestAuthService_GenerateAndValidateToken(t *testing.T) {
	authService := NewAuthService("test-secret", time.Hour)

	tests := []struct {
		name     string
		userID   string
		username string
	}{
		{"simple user", "123456789", "melody"},
		{"another user", "987654321", "bassline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := authService.GenerateToken(tt.userID, tt.username)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}

			if token == "" {
				t.Fatal("GenerateToken() returned empty token")
			}

			claims, err := authService.ValidateToken(token)
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}

			if claims.UserID != tt.userID {
				t.Errorf("UserID = %v, want %v", claims.UserID, tt.userID)
			}

			if claims.Username != tt.username {
				t.Errorf("Username = %v, want %v", claims.Username, tt.username)
			}
		})
	}
}

func TestAuthService_InvalidToken(t *testing.T) {
	authService := NewAuthService("test-secret", time.Hour)

	_, err := authService.ValidateToken("invalid-token")
	if err == nil {
		t.Error("ValidateToken() should return error for invalid token")
	}
}

func TestAuthService_WrongSecret(t *testing.T) {
	authService1 := NewAuthService("secret-1", time.Hour)
	authService2 := NewAuthService("secret-2", time.Hour)

	token, _ := authService1.GenerateToken("123", "melody")

	_, err := authService2.ValidateToken(token)
	if err == nil {
		t.Error("ValidateToken() should return error for token signed with different secret")
	}
}

func TestAuthService_ExpiredToken(t *testing.T) {
	// Create service with negative token duration
	authService := NewAuthService("test-secret", -time.Hour)

	token, _ := authService.GenerateToken("123", "melody")

	_, err := authService.ValidateToken(token)
	if err == nil {
		t.Error("ValidateToken() should return error for expired token")
	}
}
