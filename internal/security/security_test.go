package security

import (
	"testing"
	"time"
)

func TestPasswordHashRoundtrip(t *testing.T) {
	hashed, err := HashPassword("byte-it-up")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hashed, "byte-it-up") {
		t.Fatalf("expected password to verify")
	}
	if VerifyPassword(hashed, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestUserTokenRoundtrip(t *testing.T) {
	token, err := SignUserToken("secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	userID, errParse := ParseUserToken("secret", token)
	if errParse != nil {
		t.Fatalf("parse: %v", errParse)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestTokenAudiencesDoNotCross(t *testing.T) {
	token, err := SignAdminToken("secret", 7, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, errParse := ParseUserToken("secret", token); errParse == nil {
		t.Fatalf("expected admin token to fail user parse")
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := SignUserToken("secret", 1, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, errParse := ParseUserToken("other", token); errParse == nil {
		t.Fatalf("expected parse with wrong secret to fail")
	}
}
