package util

import (
	"net/http"
	"testing"
	"time"

	"marketplace/internal/core/model"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)
	user := model.NewUser("alice@example.com", "hash", "Alice")
	user.Role = model.RoleAdmin

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.UserID != user.ID.Hex() {
		t.Errorf("subject mismatch: got %q, want %q", claims.UserID, user.ID.Hex())
	}
	if claims.Email != "alice@example.com" || claims.Role != model.RoleAdmin {
		t.Errorf("claims mismatch: %+v", claims)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := NewTokenManager("test-secret", -time.Hour)
	token, err := manager.Generate(model.NewUser("a@example.com", "hash", "A"))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := manager.Verify(token); err == nil {
		t.Error("expired token must fail verification")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Generate(model.NewUser("a@example.com", "hash", "A"))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := NewTokenManager("secret-b", time.Hour).Verify(token); err == nil {
		t.Error("token signed with another secret must fail verification")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)
	for _, token := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, err := manager.Verify(token); err == nil {
			t.Errorf("token %q must fail verification", token)
		}
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{name: "missing header"},
		{name: "wrong scheme", header: "Basic abc123"},
		{name: "no token", header: "Bearer "},
		{name: "extra parts", header: "Bearer a b"},
		{name: "valid", header: "Bearer sometoken", want: "sometoken", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, ok := ExtractBearer(r)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("got (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
