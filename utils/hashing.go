package utils

import (
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

func HashPassword(password string) (string, error) {
	secret := viper.GetString("JWT_SECRET")
	saltedPassword := password + secret
	bytes, err := bcrypt.GenerateFromPassword([]byte(saltedPassword), bcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	secret := viper.GetString("JWT_SECRET")
	saltedPassword := password + secret
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(saltedPassword))
	return err == nil
}
