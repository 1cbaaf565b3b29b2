package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

// GeocodingConfig selects the geocoding providers. A non-empty GoogleAPIKey
// makes Google the primary provider with Nominatim as fallback; otherwise
// Nominatim is used directly.
type GeocodingConfig struct {
	GoogleAPIKey   string
	NominatimHost  string
	Language       string
	UserAgent      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// RecommendationsConfig bounds the POI providers. OverpassMaxRadius caps the
// community provider's search radius to avoid upstream timeouts.
type RecommendationsConfig struct {
	GoogleAPIKey      string
	OverpassURL       string
	OverpassMaxRadius float64
}

type Config struct {
	Repositories    RepositoriesConfig
	Geocoding       GeocodingConfig
	Recommendations RecommendationsConfig
	ServerPort      string
	JWTSecret       string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "adventurelog"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		Geocoding: GeocodingConfig{
			GoogleAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
			NominatimHost:  getEnvOrDefault("NOMINATIM_HOST", "nominatim.openstreetmap.org"),
			Language:       getEnvOrDefault("GEOCODER_LANGUAGE", "en"),
			UserAgent:      getEnvOrDefault("GEOCODER_USER_AGENT", "AdventureLog Server (self-hosted)"),
			ConnectTimeout: 2 * time.Second,
			ReadTimeout:    6 * time.Second,
		},
		Recommendations: RecommendationsConfig{
			GoogleAPIKey:      os.Getenv("GOOGLE_MAPS_API_KEY"),
			OverpassURL:       getEnvOrDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
			OverpassMaxRadius: getEnvFloatOrDefault("OVERPASS_MAX_RADIUS_M", 5000),
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "8016"),
		JWTSecret:  os.Getenv("JWT_SECRET_KEY"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
