package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/cup-simulator/models"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := NewAuthService(string(hash), discardLogger())

	role, err := svc.Login(context.Background(), LoginInput{Password: "s3cret"})
	if err != nil || role != models.RoleAdmin {
		t.Fatalf("Login = %q, %v", role, err)
	}
	for _, pw := range []string{"", "wrong"} {
		if _, err := svc.Login(context.Background(), LoginInput{Password: pw}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Login(%q) err = %v", pw, err)
		}
	}
}
