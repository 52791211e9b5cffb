package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "STOREFRONT_CONFIG_FILE"

const devSecret = "default-secret-key-for-development"

type server struct {
	Port            int           `mapstructure:"port"`
	BaseURL         string        `mapstructure:"base_url"`
	StaticDir       string        `mapstructure:"static_dir"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type session struct {
	Name   string `mapstructure:"name"`
	Secret string `mapstructure:"secret"`
	MaxAge int    `mapstructure:"max_age"`
	Secure bool   `mapstructure:"secure"`
}

type stripe struct {
	SecretKey        string        `mapstructure:"secret_key"`
	PublishableKey   string        `mapstructure:"publishable_key"`
	WebhookSecret    string        `mapstructure:"webhook_secret"`
	WebhookTolerance time.Duration `mapstructure:"webhook_tolerance"`
}

type database struct {
	Type  string `mapstructure:"type"`
	DSN   string `mapstructure:"dsn"`
	Debug bool   `mapstructure:"debug"`
	Seed  bool   `mapstructure:"seed"`
}

type upload struct {
	Folder            string   `mapstructure:"folder"`
	URLPrefix         string   `mapstructure:"url_prefix"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MaxBytes          int64    `mapstructure:"max_bytes"`
}

type cart struct {
	ImageOverrides map[string]string `mapstructure:"image_overrides"`
}

type checkout struct {
	Currency         string   `mapstructure:"currency"`
	AllowedCountries []string `mapstructure:"allowed_countries"`
}

type log struct {
	Level      string `mapstructure:"level"`
	Env        string `mapstructure:"env"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type metrics struct {
	Namespace string `mapstructure:"namespace"`
}

type Config struct {
	Server   server   `mapstructure:"server"`
	Session  session  `mapstructure:"session"`
	Stripe   stripe   `mapstructure:"stripe"`
	Database database `mapstructure:"database"`
	Upload   upload   `mapstructure:"upload"`
	Cart     cart     `mapstructure:"cart"`
	Checkout checkout `mapstructure:"checkout"`
	Log      log      `mapstructure:"log"`
	Metrics  metrics  `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("session.name", "storefront_session")
	v.SetDefault("session.secret", devSecret)
	v.SetDefault("session.max_age", 30*24*3600)
	v.SetDefault("session.secure", false)

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.publishable_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("stripe.webhook_tolerance", 5*time.Minute)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "instance/delus.db")
	v.SetDefault("database.debug", false)
	v.SetDefault("database.seed", true)

	v.SetDefault("upload.folder", "static/music")
	v.SetDefault("upload.url_prefix", "music")
	v.SetDefault("upload.allowed_extensions", []string{"wav", "mp3"})
	v.SetDefault("upload.max_bytes", 64<<20)

	v.SetDefault("cart.image_overrides", map[string]string{})

	v.SetDefault("checkout.currency", "usd")
	v.SetDefault("checkout.allowed_countries", []string{"US", "CA"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.env", "development")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 64)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 7)

	v.SetDefault("metrics.namespace", "")
}

// bindEnv maps the deployment environment variables onto config keys.
// The first listed variable wins when several are set.
func bindEnv(v *viper.Viper) error {
	binds := map[string][]string{
		"session.secret":         {"SECRET_KEY", "FLASK_SECRET_KEY"},
		"stripe.secret_key":      {"STRIPE_SECRET_KEY"},
		"stripe.publishable_key": {"STRIPE_PUBLISHABLE_KEY"},
		"stripe.webhook_secret":  {"STRIPE_WEBHOOK_SECRET"},
		"upload.folder":          {"UPLOAD_FOLDER"},
		"server.port":            {"PORT"},
		"server.base_url":        {"BASE_URL"},
		"database.dsn":           {"DATABASE_URL"},
		"database.type":          {"DATABASE_TYPE"},
		"log.level":              {"LOG_LEVEL"},
		"log.file":               {"LOG_FILE"},
		"log.env":                {"APP_ENV"},
	}
	for key, envs := range binds {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("config: bind %s: %w", key, err)
		}
	}
	return nil
}

// Load reads defaults, the optional config file and the environment, in increasing precedence.
// args are the command line arguments without the program name.
func Load(args []string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return Config{}, err
	}

	path, err := configFilepath(args)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configFilepath(args []string) (string, error) {
	cmdLine := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	arg := cmdLine.String("config", "", "config file")
	if err := cmdLine.Parse(args); err != nil {
		return "", fmt.Errorf("config: flags: %w", err)
	}
	if env, ok := os.LookupEnv(configFileEnvName); ok && env != "" {
		return env, nil
	}
	return *arg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("session.secret is empty"))
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		errs = append(errs, errors.New("upload.allowed_extensions is empty"))
	}
	if _, err := c.ImageOverrides(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// ImageOverrides converts the configured product id keys to int64.
func (c Config) ImageOverrides() (map[int64]string, error) {
	out := make(map[int64]string, len(c.Cart.ImageOverrides))
	for k, img := range c.Cart.ImageOverrides {
		id, err := cast.ToInt64E(k)
		if err != nil {
			return nil, fmt.Errorf("cart.image_overrides: key %q is not a product id", k)
		}
		out[id] = img
	}
	return out, nil
}

// UsingDevSecret reports whether sessions are signed with the built-in development key.
func (c Config) UsingDevSecret() bool { return c.Session.Secret == devSecret }

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }

// Summary lists non-secret settings for the startup log line.
func (c Config) Summary() map[string]any {
	return map[string]any{
		"port":              c.Server.Port,
		"database_type":     c.Database.Type,
		"upload_folder":     c.Upload.Folder,
		"log_level":         c.Log.Level,
		"stripe_configured": c.Stripe.SecretKey != "",
		"webhook_secured":   c.Stripe.WebhookSecret != "",
		"allowed_countries": strings.Join(c.Checkout.AllowedCountries, ","),
	}
}
