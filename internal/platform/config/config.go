package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	MongoURI      string
	MongoDatabase string
	JWTSigningKey string
	TokenTTL      time.Duration

	// Weather provider settings for read-time enrichment.
	WeatherAPIKey string
	WeatherAPIURL string
	// EnrichFallback controls whether upstream weather failures substitute the
	// placeholder snapshot (true) or omit the snapshot entirely (false). Either
	// way enrichment never fails the request.
	EnrichFallback bool

	// RedisURL enables the shared token revocation list. Empty means the
	// in-process fallback is used.
	RedisURL string

	// KafkaBrokers enables publishing admin activity events. Empty disables it.
	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("MINETRACK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDB := os.Getenv("MONGODB_DATABASE")
	if mongoDB == "" {
		mongoDB = "minetrack"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := 24 * time.Hour
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			tokenTTL = d
		}
	}

	weatherURL := os.Getenv("WEATHER_API_URL")
	if weatherURL == "" {
		weatherURL = "http://api.weatherapi.com/v1/current.json"
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = strings.Split(v, ",")
	}
	topic := os.Getenv("KAFKA_ACTIVITY_TOPIC")
	if topic == "" {
		topic = "minetrack.activity"
	}

	return Server{
		Addr:           addr,
		MongoURI:       mongoURI,
		MongoDatabase:  mongoDB,
		JWTSigningKey:  jwtSigningKey,
		TokenTTL:       tokenTTL,
		WeatherAPIKey:  os.Getenv("WEATHER_API_KEY"),
		WeatherAPIURL:  weatherURL,
		EnrichFallback: os.Getenv("ENRICH_FALLBACK") != "false",
		RedisURL:       os.Getenv("REDIS_URL"),
		KafkaBrokers:   brokers,
		KafkaTopic:     topic,
	}
}
