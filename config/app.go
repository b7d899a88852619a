package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"employee_tracker/utils"

	"github.com/joho/godotenv"
)

// RequiredEnvVars must be present outside of tests.
var RequiredEnvVars = []string{
	"MONGO_URI",
	"MONGO_DB",
	"JWT_SECRET_KEY",
	"JWT_EXPIRATION_TIME",
	"PORT",
}

type AppConfig struct {
	Port             string
	Timezone         *time.Location
	GeofenceRadiusKm float64
	AutoCheckoutCron string
	JWTSecretKey     string
	JWTExpiration    time.Duration
	JWTIssuer        string
	RedisURL         string
	StatusCacheTTL   time.Duration
	RabbitMQURL      string
	ExpoPushURL      string
	AllowedOrigins   []string
}

// LoadEnv reads .env unless running tests and verifies required variables.
func LoadEnv() {
	if os.Getenv("GO_ENV") == "test" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: no .env file loaded: %v", err)
	}

	for _, envVar := range RequiredEnvVars {
		if os.Getenv(envVar) == "" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}
}

func LoadAppConfig() (AppConfig, error) {
	tzName := utils.GetEnvAsString("APP_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tzName, err)
	}

	radius := utils.GetEnvAsFloat("GEOFENCE_RADIUS_KM", 0.2)
	if radius <= 0 {
		return AppConfig{}, fmt.Errorf("GEOFENCE_RADIUS_KM must be positive, got %v", radius)
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		if os.Getenv("GO_ENV") != "test" {
			return AppConfig{}, fmt.Errorf("JWT_SECRET_KEY is not set")
		}
		secret = "test_secret_key"
	}

	var origins []string
	for _, o := range strings.Split(utils.GetEnvAsString("ALLOWED_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return AppConfig{
		Port:             utils.GetEnvAsString("PORT", "5000"),
		Timezone:         loc,
		GeofenceRadiusKm: radius,
		AutoCheckoutCron: utils.GetEnvAsString("AUTO_CHECKOUT_CRON", "0 20 * * *"),
		JWTSecretKey:     secret,
		JWTExpiration:    time.Duration(utils.GetEnvAsInt("JWT_EXPIRATION_TIME", 86400)) * time.Second,
		JWTIssuer:        utils.GetEnvAsString("JWT_ISSUER", "employee-tracker"),
		RedisURL:         os.Getenv("REDIS_URL"),
		StatusCacheTTL:   utils.GetEnvAsDuration("STATUS_CACHE_TTL", 5*time.Minute),
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		ExpoPushURL:      utils.GetEnvAsString("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
		AllowedOrigins:   origins,
	}, nil
}
