package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting. It is built once in main and passed
// down explicitly; nothing reads the environment after startup.
type Config struct {
	ListenAddr     string
	DatabaseDSN    string
	JWTSecret      string
	StorageRoot    string
	MaxUploadBytes int64
	OCRLanguages   []string
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddr:     getenv("LISTEN_ADDR", ":8080"),
		DatabaseDSN:    getenv("DATABASE_URL", "file:instance/research_repo.db?_pragma=foreign_keys(1)"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		StorageRoot:    getenv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: getenvInt64("MAX_UPLOAD_BYTES", 16<<20),
		OCRLanguages:   []string{getenv("OCR_LANGUAGE", "eng")},
	}
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt64(k string, fallback int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
