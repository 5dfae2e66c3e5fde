package utils

import (
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

// HashPassword хеширует пароль администратора при старте сервера.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
