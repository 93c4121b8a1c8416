package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures the configuration for the CardDemo backend and the
// session-core defaults the demo client shares with it.
type Server struct {
	Addr          string
	JWTSigningKey string
	TokenTTL      time.Duration
	RefreshTTL    time.Duration

	// SessionMaxLifetime bounds how long a login stays valid regardless of
	// refresh activity. MonitorInterval is how often the session monitor
	// re-checks it.
	SessionMaxLifetime time.Duration
	MonitorInterval    time.Duration

	// StateDir is where the demo client keeps its durable credential tier.
	StateDir string

	CORSOrigins []string
}

const (
	defaultTokenTTL           = 15 * time.Minute
	defaultRefreshTTL         = 24 * time.Hour
	defaultSessionMaxLifetime = 8 * time.Hour
	defaultMonitorInterval    = 5 * time.Minute
)

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file in the working directory is loaded first when present.
func FromEnv() Server {
	_ = godotenv.Load()

	addr := os.Getenv("CARDDEMO_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("CARDDEMO_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in any real deployment.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	stateDir := os.Getenv("CARDDEMO_STATE_DIR")
	if stateDir == "" {
		stateDir = ".carddemo"
	}

	origins := []string{"http://localhost:3000"}
	if raw := os.Getenv("CARDDEMO_CORS_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}

	return Server{
		Addr:               addr,
		JWTSigningKey:      jwtSigningKey,
		TokenTTL:           durationEnv("CARDDEMO_TOKEN_TTL", defaultTokenTTL),
		RefreshTTL:         durationEnv("CARDDEMO_REFRESH_TTL", defaultRefreshTTL),
		SessionMaxLifetime: durationEnv("CARDDEMO_SESSION_MAX_LIFETIME", defaultSessionMaxLifetime),
		MonitorInterval:    durationEnv("CARDDEMO_MONITOR_INTERVAL", defaultMonitorInterval),
		StateDir:           stateDir,
		CORSOrigins:        origins,
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
