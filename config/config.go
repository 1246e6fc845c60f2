package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadENV loads environment variables from .env when GO_ENV is unset or development
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type Environment struct {
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// Redis (task queue for upload dispatch)
	REDIS_URL string
	// S3 object storage
	AWS_ACCESS_KEY_ID     string
	AWS_SECRET_ACCESS_KEY string
	AWS_REGION            string
	AWS_S3_BUCKET         string
	AWS_S3_ENDPOINT       string
	// LLM (OpenAI-compatible chat completions)
	LLM_API_KEY     string
	LLM_BASE_URL    string
	LLM_MODEL       string
	LLM_TEMPERATURE float64
	LLM_TIMEOUT     time.Duration
	LLM_RETRIES     int
	LLM_BACKOFF     time.Duration
	// OCR
	OCR_LANGUAGE string
	// Question mining fallback when no matched topic resolves a subject
	DEFAULT_SUBJECT_ID uint
	// Pipeline workers
	WORKER_CONCURRENCY int
	// Uploads stuck in processing longer than this are reaped as failed
	REAPER_THRESHOLD time.Duration
}

func Get() (*Environment, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	env := &Environment{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),
		PORT:         port,
		// Redis
		REDIS_URL: getString("REDIS_URL", "redis://localhost:6379/0"),
		// S3
		AWS_ACCESS_KEY_ID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWS_SECRET_ACCESS_KEY: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWS_REGION:            getString("AWS_REGION", "us-east-1"),
		AWS_S3_BUCKET:         os.Getenv("AWS_S3_BUCKET"),
		AWS_S3_ENDPOINT:       os.Getenv("AWS_S3_ENDPOINT"),
		// LLM
		LLM_API_KEY:     os.Getenv("LLM_API_KEY"),
		LLM_BASE_URL:    getString("LLM_BASE_URL", "https://api.openai.com"),
		LLM_MODEL:       getString("LLM_MODEL", "gpt-4o-mini"),
		LLM_TEMPERATURE: getFloat("LLM_TEMPERATURE", 0.7),
		LLM_TIMEOUT:     getDuration("LLM_TIMEOUT", 30*time.Second),
		LLM_RETRIES:     getInt("LLM_RETRIES", 2),
		LLM_BACKOFF:     getDuration("LLM_BACKOFF", time.Second),
		// OCR
		OCR_LANGUAGE: getString("OCR_LANGUAGE", "eng"),
		// Mining
		DEFAULT_SUBJECT_ID: uint(getInt("DEFAULT_SUBJECT_ID", 0)),
		// Workers
		WORKER_CONCURRENCY: getInt("WORKER_CONCURRENCY", 2),
		REAPER_THRESHOLD:   getDuration("REAPER_THRESHOLD", time.Hour),
	}

	return env, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
