package handlers

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken("test-secret", "clerk@court", time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := parseToken("test-secret", token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "clerk@court" {
		t.Errorf("subject = %q", claims.Subject)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := IssueToken("test-secret", "clerk@court", time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := parseToken("other-secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseExpiredToken(t *testing.T) {
	token, err := IssueToken("test-secret", "clerk@court", -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := parseToken("test-secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
