package util

import (
	"strings"
	"testing"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken("usr_abc", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	userID, err := ParseSessionToken(token, "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "usr_abc" {
		t.Errorf("got %q, want usr_abc", userID)
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, _ := GenerateSessionToken("usr_abc", "secret")

	if _, err := ParseSessionToken(token, "other"); err == nil {
		t.Error("tampered secret must fail")
	}
	if _, err := ParseSessionToken("not.a.token", "secret"); err == nil {
		t.Error("malformed token must fail")
	}
}

func TestNewID(t *testing.T) {
	a := NewID("log")
	b := NewID("log")

	if !strings.HasPrefix(a, "log_") {
		t.Errorf("missing prefix: %q", a)
	}
	if a == b {
		t.Error("ids must be unique")
	}
	if strings.Contains(a, "-") {
		t.Errorf("ids must be compact: %q", a)
	}
}
