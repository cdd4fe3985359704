package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	Port      string `envconfig:"PORT" default:"8080"`
	AppURL    string `envconfig:"APP_URL" default:"http://localhost:3000"`
	Currency  string `envconfig:"CURRENCY" default:"AZN"`
	UploadDir string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	// Base for upload URLs; empty uses the request host.
	PublicURL string `envconfig:"PUBLIC_URL"`

	// Empty disables the nightly uploads backup.
	BackupDir     string `envconfig:"BACKUP_DIR"`
	BackupKeepDay int    `envconfig:"BACKUP_KEEP_DAYS" default:"4"`

	// Empty allows only the APP_URL origin.
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	// DB
	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"autoparts.db"`

	// JWT
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	JWTTTLHours int    `envconfig:"JWT_TTL_HOURS" default:"72"`

	// Admin
	CreateAdmin      bool   `envconfig:"CREATE_ADMIN" default:"false"`
	AdminEmail       string `envconfig:"ADMIN_EMAIL"`
	AdminPassword    string `envconfig:"ADMIN_PASSWORD"`
	AdminResetSecret string `envconfig:"ADMIN_RESET_SECRET"`

	// Stripe
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`

	// PayTR
	PayTRMerchantID string `envconfig:"PAYTR_MERCHANT_ID"`
	PayTRKey        string `envconfig:"PAYTR_API_KEY"`
	PayTRSalt       string `envconfig:"PAYTR_API_SECRET"`
	PayTRAPIURL     string `envconfig:"PAYTR_API_URL" default:"https://www.paytr.com/odeme/api/get-token"`
	PayTRTestMode   bool   `envconfig:"PAYTR_TEST_MODE" default:"false"`

	// Messaging
	RabbitURL      string `envconfig:"RABBIT_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"autoparts.events"`

	// Mail
	ResendAPIKey string `envconfig:"RESEND_API_KEY"`
	MailFrom     string `envconfig:"MAIL_FROM" default:"Avtohissə <onboarding@resend.dev>"`
	ContactInbox string `envconfig:"CONTACT_INBOX"`

	// Google sign-in
	FirebaseCredentialsJSON string `envconfig:"FIREBASE_CREDENTIALS_JSON"`
	FirebaseProjectID       string `envconfig:"FIREBASE_PROJECT_ID"`

	// Valuation
	ValuationScript     string `envconfig:"VALUATION_SCRIPT"`
	ValuationPython     string `envconfig:"VALUATION_PYTHON" default:"python3"`
	ValuationTimeoutSec int    `envconfig:"VALUATION_TIMEOUT_SEC" default:"10"`
	ValuationTables     string `envconfig:"VALUATION_TABLES"`
}

// Load reads an optional .env file and then the process environment.
func Load() (App, error) {
	_ = godotenv.Load()

	var c App
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	c.DBDriver = strings.ToLower(c.DBDriver)
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return c, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return c, nil
}

// DSN returns the Postgres connection string.
func (c App) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// AllowedOrigins lists the browser origins allowed by CORS.
func (c App) AllowedOrigins() []string {
	var origins []string
	for _, o := range c.CORSOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{strings.TrimRight(c.AppURL, "/")}
	}
	return origins
}

// CORSCredentials reports whether cookies and auth headers may cross origins.
// Browsers refuse credentials for a wildcard origin.
func (c App) CORSCredentials() bool {
	return !slices.Contains(c.AllowedOrigins(), "*")
}

func (c App) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func (c App) ValuationTimeout() time.Duration {
	return time.Duration(c.ValuationTimeoutSec) * time.Second
}

func (c App) StripeEnabled() bool {
	return c.StripeSecretKey != ""
}

func (c App) PayTREnabled() bool {
	return c.PayTRMerchantID != "" && c.PayTRKey != "" && c.PayTRSalt != ""
}
