package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// DemoAccount is one entry of AUTH_DEMO_ACCOUNTS.
type DemoAccount struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role,omitempty"`
}

// DemoAccounts decodes the JSON list held in AUTH_DEMO_ACCOUNTS.
type DemoAccounts []DemoAccount

func (d *DemoAccounts) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = nil
		return nil
	}
	var accounts []DemoAccount
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return fmt.Errorf("AUTH_DEMO_ACCOUNTS: %w", err)
	}
	for i, a := range accounts {
		if a.Email == "" || a.Password == "" {
			return fmt.Errorf("AUTH_DEMO_ACCOUNTS: entry %d needs email and password", i)
		}
	}
	*d = accounts
	return nil
}

// Config is the whole runtime configuration, read from the environment.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI    string `env:"MONGO_URI"`
	MongoDB     string `env:"MONGO_DB" envDefault:"quickhire"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`
	OTPTTL    time.Duration `env:"OTP_TTL" envDefault:"10m"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	SMTPFrom string `env:"SMTP_FROM"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	DemoAccounts                 DemoAccounts `env:"AUTH_DEMO_ACCOUNTS"`
	ForceOnboardingOnEmptyUpdate bool         `env:"AUTH_FORCE_ONBOARDING_ON_EMPTY_UPDATE" envDefault:"true"`

	AIAPIKey  string `env:"AI_API_KEY"`
	AIBaseURL string `env:"AI_BASE_URL"`
	AIModel   string `env:"AI_MODEL" envDefault:"gpt-4o-mini"`
}

// Production reports whether development conveniences must be off.
func (c Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads .env if present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse(nil)
}

// Parse reads configuration from environment, or from the process
// environment when environment is nil, and validates it.
func Parse(environment map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	missing := []string{}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			missing = append(missing, "MONGO_URI")
		}
	case DriverMemory:
		if c.Production() {
			return errors.New("STORE_DRIVER=memory is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.Production() {
		if c.SMTPHost == "" {
			missing = append(missing, "SMTP_HOST")
		}
		if c.SMTPUser == "" {
			missing = append(missing, "SMTP_USER")
		}
		if c.SMTPPass == "" {
			missing = append(missing, "SMTP_PASS")
		}
	}
	if len(missing) > 0 {
		return errors.New("missing env: " + strings.Join(missing, ", "))
	}
	return nil
}
