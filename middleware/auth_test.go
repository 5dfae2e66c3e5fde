package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/cup-simulator/models"
	"github.com/golang-jwt/jwt/v4"
)

var testSecret = []byte("test-secret")

func signed(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	adminToken, err := IssueToken(models.RoleAdmin, testSecret, time.Now())
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + adminToken, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signed(t, jwt.MapClaims{"role": "admin", "exp": time.Now().Add(time.Hour).Unix()}, []byte("other")), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, jwt.MapClaims{"role": "admin", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret), http.StatusUnauthorized},
		{"unknown role", "Bearer " + signed(t, jwt.MapClaims{"role": "organizer", "exp": time.Now().Add(time.Hour).Unix()}, testSecret), http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusNoContent},
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, err := GetUserRoleFromContext(r.Context())
		if err != nil || role != models.RoleAdmin {
			t.Errorf("role = %q, err = %v", role, err)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Authenticate(testSecret)(Authorize(string(models.RoleAdmin))(final))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/simulate_round", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestIssueTokenExpiry(t *testing.T) {
	now := time.Now()
	token, err := IssueToken(models.RoleAdmin, testSecret, now)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatalf("exp claim has type %T", claims["exp"])
	}
	if int64(exp) != now.Add(TokenTTL).Unix() {
		t.Errorf("exp = %d, want %d", int64(exp), now.Add(TokenTTL).Unix())
	}
}
