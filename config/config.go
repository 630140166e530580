package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	Port          string
	Env           string
	SessionSecret string
	JWTSecret     string

	// PayChangu gateway settings
	PayChanguBaseURL   string
	PayChanguSecretKey string
	PayChanguPublicKey string
	CallbackURL        string
	ReturnURL          string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	config := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		Port:          os.Getenv("PORT"),
		Env:           os.Getenv("ENV"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		JWTSecret:     os.Getenv("JWT_SECRET"),

		PayChanguBaseURL:   os.Getenv("PAYCHANGU_BASE_URL"),
		PayChanguSecretKey: os.Getenv("PAYCHANGU_SECRET_KEY"),
		PayChanguPublicKey: os.Getenv("PAYCHANGU_PUBLIC_KEY"),
		CallbackURL:        os.Getenv("PAYCHANGU_CALLBACK_URL"),
		ReturnURL:          os.Getenv("PAYCHANGU_RETURN_URL"),
	}

	if config.PayChanguBaseURL == "" {
		config.PayChanguBaseURL = "https://api.paychangu.com"
	}
	if config.Port == "" {
		config.Port = "8080"
	}

	return config, nil
}
