package utils

import (
	"errors"
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	SetSecret("test-secret")

	token, err := GenerateToken(TokenAccess, "u1", "j@x.com", "User")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token, TokenAccess)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "j@x.com" || claims.Role != "User" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsOtherTypes(t *testing.T) {
	SetSecret("test-secret")

	token, err := GenerateToken(TokenRefresh, "u1", "", "")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ValidateToken(token, TokenReset); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("expected ErrWrongTokenType, got %v", err)
	}
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	SetSecret("one")
	token, _ := GenerateToken(TokenAccess, "u1", "", "")

	SetSecret("two")
	if _, err := ValidateToken(token, TokenAccess); err == nil {
		t.Error("expected signature error")
	}
}
