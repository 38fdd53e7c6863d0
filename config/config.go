package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// MinJWTSecretLength is the minimum required length for the staff token secret in production
	MinJWTSecretLength = 32
)

type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	DBPath      string `env:"DB_PATH" envDefault:"db/app.db"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	UploadDir   string `env:"UPLOAD_DIR" envDefault:"static/uploads"`
	// Email (Resend)
	ResendAPIKey  string `env:"RESEND_API_KEY"`
	EmailFrom     string `env:"EMAIL_FROM" envDefault:"noreply@rakaiz.org"`
	EmailFromName string `env:"EMAIL_FROM_NAME" envDefault:"Rakaiz Foundation"`
	EmailTestMode bool   `env:"EMAIL_TEST_MODE" envDefault:"true"` // When true, emails are logged instead of sent
	// Address that receives new-submission notifications
	StaffNotificationEmail string `env:"STAFF_NOTIFICATION_EMAIL" envDefault:"info@rakaiz.org"`
	// Other
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	AppURL           string   `env:"APP_URL" envDefault:"http://localhost:8080"`
	FallbackLocale   string   `env:"FALLBACK_LOCALE" envDefault:"ar"`
	TursoDatabaseURL string   `env:"TURSO_DATABASE_URL"`
	TursoAuthToken   string   `env:"TURSO_AUTH_TOKEN"`
	// Staff identity
	JWTSecret     string `env:"JWT_SECRET"`
	OIDCIssuerURL string `env:"OIDC_ISSUER_URL"`
	OIDCClientID  string `env:"OIDC_CLIENT_ID"`
	// Cloudflare Turnstile
	TurnstileSiteKey   string `env:"TURNSTILE_SITE_KEY"`
	TurnstileSecretKey string `env:"TURNSTILE_SECRET_KEY"`
	// Cloudflare R2 Storage
	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `env:"R2_BUCKET_NAME"`
	R2PublicURL       string `env:"R2_PUBLIC_URL"`
}

// Load reads the .env file (if any) and parses the environment into a Config.
func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("[CRITICAL] Invalid configuration: %v", err)
	}
	return cfg
}

// Parse builds a Config from the current process environment.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	for i, origin := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
	cfg.FallbackLocale = strings.ToLower(strings.TrimSpace(cfg.FallbackLocale))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate checks settings that must hold before the server starts
func (c *Config) Validate() error {
	switch c.FallbackLocale {
	case "ar", "en", "tr":
	default:
		return fmt.Errorf("FALLBACK_LOCALE must be one of ar, en, tr (got %q)", c.FallbackLocale)
	}

	if c.IsProduction() {
		if c.OIDCIssuerURL == "" && len(c.JWTSecret) < MinJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters in production when OIDC_ISSUER_URL is not set", MinJWTSecretLength)
		}
		if !c.EmailTestMode && c.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required when EMAIL_TEST_MODE is off")
		}
	} else if c.OIDCIssuerURL == "" && c.JWTSecret == "" {
		log.Printf("[WARNING] Neither OIDC_ISSUER_URL nor JWT_SECRET is set. Staff routes will reject every request.")
	}

	if c.OIDCIssuerURL != "" && c.OIDCClientID == "" {
		return fmt.Errorf("OIDC_CLIENT_ID is required when OIDC_ISSUER_URL is set")
	}
	return nil
}

// TurnstileEnabled reports whether public forms must pass a Turnstile challenge
func (c *Config) TurnstileEnabled() bool {
	return c.TurnstileSecretKey != ""
}
