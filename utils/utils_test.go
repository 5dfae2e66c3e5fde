package utils

import "testing"

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash equals the plain password")
	}

	tests := []struct {
		password string
		want     bool
	}{
		{"correct horse", true},
		{"Correct horse", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := CheckPasswordHash(tt.password, hash); got != tt.want {
			t.Errorf("CheckPasswordHash(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}

	if CheckPasswordHash("anything", "not-a-bcrypt-hash") {
		t.Error("CheckPasswordHash accepted a malformed hash")
	}
}
