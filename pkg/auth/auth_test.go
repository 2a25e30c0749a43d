package auth

import "testing"

func TestHMACKeyRoundTrip(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "test-secret")

	key := GenerateHMACKey("svc-1")
	userID, err := VerifyHMACKey(key)
	if err != nil {
		t.Fatalf("expected key to verify, got %v", err)
	}
	if userID != "svc-1" {
		t.Errorf("expected user id svc-1, got %q", userID)
	}
}

func TestHMACKeyTampered(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "test-secret")

	key := GenerateHMACKey("svc-1")
	if _, err := VerifyHMACKey("svc-2." + key[len("svc-1."):]); err == nil {
		t.Error("expected tampered key to fail verification")
	}
	if _, err := VerifyHMACKey("no-signature"); err == nil {
		t.Error("expected malformed key to fail verification")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-test-secret")

	token, err := CreateToken("admin")
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("expected username admin, got %q", claims.Username)
	}

	if _, err := VerifyToken(token + "x"); err == nil {
		t.Error("expected corrupted token to fail verification")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("hunter2", hash) {
		t.Error("expected password to match its hash")
	}
	if CheckPasswordHash("hunter3", hash) {
		t.Error("expected wrong password to be rejected")
	}
}
