package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WindyAPIKey       string

	// Outbound HTTP behaviour.
	HTTPTimeout time.Duration

	// Durable storage.
	DBPath string

	// Search resolver tuning.
	SearchMinChars   int
	SearchDebounce   time.Duration
	SearchMaxResults int
	GeocoderLang     string
	GeocoderRPS      float64

	// Webcam lookup.
	WebcamRadiusKm int
	WebcamLimit    int

	// Sessions and maintenance.
	SessionTTL    time.Duration
	PruneInterval time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WindyAPIKey = os.Getenv("WINDY_API_KEY")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.DBPath = getenvDefault("DB_PATH", "cityboard.db")

	cfg.SearchMinChars = getenvInt("SEARCH_MIN_CHARS", 3)
	debounce, err := getenvDuration("SEARCH_DEBOUNCE", "200ms")
	if err != nil {
		return nil, err
	}
	cfg.SearchDebounce = debounce
	cfg.SearchMaxResults = getenvInt("SEARCH_MAX_RESULTS", 5)
	cfg.GeocoderLang = getenvDefault("GEOCODER_LANG", "en")
	cfg.GeocoderRPS = getenvFloat("GEOCODER_RPS", 1)

	cfg.WebcamRadiusKm = getenvInt("WEBCAM_RADIUS_KM", 10)
	cfg.WebcamLimit = getenvInt("WEBCAM_LIMIT", 5)

	ttl, err := getenvDuration("SESSION_TTL", "720h")
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = ttl

	prune, err := getenvDuration("PRUNE_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	cfg.PruneInterval = prune

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
