package contacts

import (
	"os"
	"strconv"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// AppConfig is the environment backed configuration for the service
type AppConfig struct {
	SigningKey             string `json:"-"`
	SigningMethod          string
	AccessTokenMinutes     int
	RefreshTokenMinutes    int
	ResetTokenMinutes      int
	VerificationTokenHours int
	BaseURL                string

	DatabaseDSN string
	RedisURL    string
	Port        string

	SendGridAPIKey string `json:"-"`
	FromName       string
	FromEmail      string

	S3 S3Config
}

var _ Config = (*AppConfig)(nil)

// LoadConfig reads configuration from the environment. Call godotenv
// before this if you keep a .env file around.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		SigningKey:             os.Getenv("SECRET_KEY"),
		SigningMethod:          envString("JWT_ALGORITHM", "HS256"),
		AccessTokenMinutes:     envInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
		RefreshTokenMinutes:    envInt("REFRESH_TOKEN_EXPIRE_MINUTES", 60*24*7),
		ResetTokenMinutes:      envInt("RESET_TOKEN_EXPIRE_MINUTES", 60),
		VerificationTokenHours: envInt("VERIFICATION_TOKEN_EXPIRE_HOURS", 24),
		BaseURL:                envString("BASE_URL", "http://localhost:8000"),

		DatabaseDSN: envString("DATABASE_URL", "file:contacts.db?cache=shared&_pragma=foreign_keys(1)"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Port:        envString("PORT", "8000"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		FromName:       envString("SMTP_FROM_NAME", "Contacts"),
		FromEmail:      envString("SMTP_FROM_EMAIL", "noreply@localhost"),

		S3: S3Config{
			Region:       envString("S3_REGION", "us-east-1"),
			Bucket:       envString("S3_BUCKET", "avatars"),
			AccessKey:    os.Getenv("S3_ACCESS_KEY"),
			SecretKey:    os.Getenv("S3_SECRET_KEY"),
			BaseEndpoint: os.Getenv("S3_BASE_ENDPOINT"),
			PublicURL:    os.Getenv("S3_PUBLIC_URL"),
		},
	}

	if cfg.SigningKey == "" {
		return nil, goerrors.New("SECRET_KEY is required", goerrors.CategoryBadInput)
	}

	return cfg, nil
}

func (c *AppConfig) GetSigningKey() string    { return c.SigningKey }
func (c *AppConfig) GetSigningMethod() string { return c.SigningMethod }
func (c *AppConfig) GetBaseURL() string       { return c.BaseURL }

func (c *AppConfig) GetAccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

func (c *AppConfig) GetRefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenMinutes) * time.Minute
}

func (c *AppConfig) GetResetTokenTTL() time.Duration {
	return time.Duration(c.ResetTokenMinutes) * time.Minute
}

func (c *AppConfig) GetVerificationTokenTTL() time.Duration {
	return time.Duration(c.VerificationTokenHours) * time.Hour
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return n
}
