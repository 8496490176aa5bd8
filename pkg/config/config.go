package config

import (
	"os"
	"strconv"
)

// Config holds all environment-driven settings.
type Config struct {
	Port                    string
	Env                     string
	MongoURI                string
	MongoDBName             string
	JWTSecret               string
	TokenTTLMinutes         int
	AuthProvider            string
	FirebaseCredentialsPath string
	UploadDir               string
	LogLevel                string
	LogFormat               string
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDBName:             getEnv("MONGO_DB_NAME", "urbano"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		TokenTTLMinutes:         getEnvInt("TOKEN_TTL_MINUTES", 60),
		AuthProvider:            getEnv("AUTH_PROVIDER", "jwt"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		UploadDir:               getEnv("UPLOAD_DIR", "./uploads"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
