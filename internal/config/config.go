package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	DBMaxConns          int
	AutoMigrate         bool
	RedisURL            string
	NatsURL             string
	SupabaseURL         string // project URL, used for storage sign URLs and public URLs
	SupabaseSecretKey   string // service_role key, not the anon key
	StripeSecretKey     string
	StripeWebhookSecret string
	FrontendURL         string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	SendinblueAPIKey    string
	MailFrom            string
	InviteBaseURL       string
	BookingHold         time.Duration
	SweepInterval       time.Duration
}

// IsProduction reports whether the app runs with production cookies and DSN.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("BOOKING_HOLD_MINUTES", 30)
	v.SetDefault("SWEEP_INTERVAL_SECONDS", 60)
	v.SetDefault("MAIL_FROM", "noreply@buffr.ai")

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	env := v.GetString("APP_ENV")
	if env == "" {
		env = v.GetString("NODE_ENV")
	}
	if env == "" {
		env = "development"
	}

	dbURL := v.GetString("DATABASE_URL_DEV")
	switch env {
	case "production":
		dbURL = v.GetString("DATABASE_URL_PROD")
	case "test":
		dbURL = v.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = v.GetString("DATABASE_URL")
	}

	hold := v.GetInt("BOOKING_HOLD_MINUTES")
	if hold <= 0 {
		hold = 30
	}
	sweep := v.GetInt("SWEEP_INTERVAL_SECONDS")
	if sweep <= 0 {
		sweep = 60
	}

	return &Config{
		Env:                 env,
		Port:                v.GetString("PORT"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		DBMaxConns:          v.GetInt("DB_MAX_CONNS"),
		AutoMigrate:         v.GetBool("DB_AUTO_MIGRATE"),
		RedisURL:            v.GetString("REDIS_URL"),
		NatsURL:             v.GetString("NATS_URL"),
		SupabaseURL:         v.GetString("SUPABASE_URL"),
		SupabaseSecretKey:   v.GetString("SUPABASE_SECRET_KEY"),
		StripeSecretKey:     v.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		FrontendURL:         v.GetString("FRONTEND_URL"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(v.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		SendinblueAPIKey:    v.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            v.GetString("MAIL_FROM"),
		InviteBaseURL:       inviteBaseURL(v.GetString("INVITE_BASE_URL")),
		BookingHold:         time.Duration(hold) * time.Minute,
		SweepInterval:       time.Duration(sweep) * time.Second,
	}
}

func inviteBaseURL(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if s == "" {
		return "https://host.buffr.ai"
	}
	return s
}
