package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config reúne toda la configuración del servicio, leída de env vars.
type Config struct {
	Port string

	// Si DBDSN está vacío, el router usa los repos in-memory (modo dev).
	DBDSN string

	GatewayURL    string
	GatewayAPIKey string

	XRoadURL   string
	XRoadToken string
}

// Load carga .env si existe (dev) y arma la configuración con defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBDSN:         getEnv("DB_DSN", ""),
		GatewayURL:    getEnv("GATEWAY_URL", ""),
		GatewayAPIKey: getEnv("GATEWAY_API_KEY", ""),
		XRoadURL:      getEnv("XROAD_URL", ""),
		XRoadToken:    getEnv("XROAD_TOKEN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
