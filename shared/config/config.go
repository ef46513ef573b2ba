package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	// Backend selects the adapter used to reach the managed backend: "api" or "pg".
	Backend         string        `yaml:"backend" validate:"required,oneof=api pg"`
	ApiURL          string        `yaml:"api_url" validate:"required_if=Backend api"`
	SubscriptionURL string        `yaml:"subscription_url" validate:"required_if=Backend api"`
	HttpTimeout     time.Duration `yaml:"http_timeout"`
	Pg              Pg            `yaml:"pg"`

	Subscription Subscription `yaml:"subscription"`

	SessionRefreshSkew    time.Duration `yaml:"session_refresh_skew"`
	LikePreviewAccumulate bool          `yaml:"like_preview_accumulate"` // reproduce hover list accumulation across posts
	SecureCookies         bool          `yaml:"secure_cookies"`
	LoginURL              string        `yaml:"login_url" validate:"required"` // managed auth sign-in page
	ListenAddr            string        `yaml:"listen_addr"`
	AllowedOrigins        []string      `yaml:"allowed_origins"`

	PostTitleMaxLen int `yaml:"post_title_max_len" validate:"gte=0"`
	PostBodyMaxLen  int `yaml:"post_body_max_len" validate:"gte=0"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

type Subscription struct {
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	PingInterval      time.Duration `yaml:"ping_interval"`
	BufferSize        int           `yaml:"buffer_size"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required_if=Enabled true"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Dbname   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Enabled  bool   `yaml:"-"`
	Password string `yaml:"-"`
}

type Private struct {
	JwtKey     string `yaml:"jwt_key" validate:"required"`
	PgPassword string `yaml:"pg_password"`
	// ApiToken authenticates the process-wide subscription and the terminal
	// client against the managed backend.
	ApiToken string `yaml:"api_token"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (p *Public) setDefaults() {
	if p.HttpTimeout == 0 {
		p.HttpTimeout = 10 * time.Second
	}
	if p.Subscription.ReconnectInterval == 0 {
		p.Subscription.ReconnectInterval = 2 * time.Second
	}
	if p.Subscription.ReadTimeout == 0 {
		p.Subscription.ReadTimeout = 60 * time.Second
	}
	if p.Subscription.WriteTimeout == 0 {
		p.Subscription.WriteTimeout = 5 * time.Second
	}
	if p.Subscription.PingInterval == 0 {
		p.Subscription.PingInterval = 20 * time.Second
	}
	if p.Subscription.BufferSize == 0 {
		p.Subscription.BufferSize = 64
	}
	if p.SessionRefreshSkew == 0 {
		p.SessionRefreshSkew = 30 * time.Second
	}
	if p.ListenAddr == "" {
		p.ListenAddr = ":8081"
	}
	if p.Pg.Port == 0 {
		p.Pg.Port = 5432
	}
	if p.Pg.SSLMode == "" {
		p.Pg.SSLMode = "disable"
	}
	if p.PostTitleMaxLen == 0 {
		p.PostTitleMaxLen = 200
	}
	if p.PostBodyMaxLen == 0 {
		p.PostBodyMaxLen = 20000
	}
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

// Load reads public.yaml and private.yaml from configFolder, applies env
// overrides and defaults, and validates the result.
func Load(configFolder string) (*Config, error) {
	var cfg Config
	mustLoadPath(path.Join(configFolder, "public.yaml"), &cfg.Public)
	mustLoadPath(path.Join(configFolder, "private.yaml"), &cfg.Private)

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Private.JwtKey = secret
	}
	if pass := os.Getenv("BLOGFEED_PG_PASSWORD"); pass != "" {
		cfg.Private.PgPassword = pass
	}
	if token := os.Getenv("BLOGFEED_API_TOKEN"); token != "" {
		cfg.Private.ApiToken = token
	}

	cfg.Public.setDefaults()
	cfg.Public.Pg.Enabled = cfg.Public.Backend == "pg"
	cfg.Public.Pg.Password = cfg.Private.PgPassword

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}
