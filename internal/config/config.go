package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App           AppConfig           `yaml:"app"`
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	JWT           JWTConfig           `yaml:"jwt"`
	Admin         AdminConfig         `yaml:"admin"`
	Email         EmailConfig         `yaml:"email"`
	OAuth         OAuthConfig         `yaml:"oauth"`
	Map           MapConfig           `yaml:"map"`
	Redis         RedisConfig         `yaml:"redis"`
	Participation ParticipationConfig `yaml:"participation"`
	Reminders     RemindersConfig     `yaml:"reminders"`
	Audit         AuditConfig         `yaml:"audit"`
	Log           LogConfig           `yaml:"log"`
}

type AppConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"` // public base URL used in emails and OAuth callbacks
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           string   `yaml:"port"`
	Mode           string   `yaml:"mode"` // debug, release, test
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // sqlite, mysql, postgres
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	LogQueries   bool   `yaml:"log_queries"`
}

type JWTConfig struct {
	Secret           string `yaml:"secret"`
	ExpireHour       int    `yaml:"expire_hour"`
	RefreshExpireDay int    `yaml:"refresh_expire_day"`
}

// AdminConfig is the account created on first start when no admin exists.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// EmailConfig for outbound SMTP delivery
type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	UseTLS   bool   `yaml:"use_tls"`
}

type OAuthConfig struct {
	VK         VKConfig `yaml:"vk"`
	CookieHash string   `yaml:"cookie_hash"` // signs the OAuth state cookie
}

type VKConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	APIURL       string `yaml:"api_url"`
	APIVersion   string `yaml:"api_version"`
}

// Enabled reports whether VK sign-in is configured.
func (c VKConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type MapConfig struct {
	APIKey string `yaml:"api_key"`
}

// RedisConfig for optional async task queue and reference data cache
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ParticipationConfig struct {
	// RequireApproval makes volunteer sign-ups start as PENDING until the NGO
	// approves them. When false, sign-ups are approved immediately.
	RequireApproval bool `yaml:"require_approval"`
}

type RemindersConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

type AuditConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from configPath. A .env file in the working
// directory is loaded first so that its values take part in env overrides.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.overrideFromEnv()
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name: "Волонтерский Портал Росатома",
			URL:  "http://localhost:3000",
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           "8080",
			Mode:           "debug",
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			DSN:          "volunteerhub.db",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		JWT: JWTConfig{
			Secret:           "volunteerhub-secret-key-change-in-production",
			ExpireHour:       24,
			RefreshExpireDay: 30,
		},
		Admin: AdminConfig{
			Email:    "admin@volunteerhub.local",
			Password: "admin123",
			Name:     "Administrator",
		},
		Email: EmailConfig{
			Enabled: false,
			Port:    587,
		},
		OAuth: OAuthConfig{
			VK: VKConfig{
				APIURL:     "https://api.vk.com/method",
				APIVersion: "5.131",
			},
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		Participation: ParticipationConfig{
			RequireApproval: false,
		},
		Reminders: RemindersConfig{
			Enabled: true,
			Cron:    "0 9 * * *",
		},
		Audit: AuditConfig{
			RetentionDays: 90,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitAndTrim(origins, ",")
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if appURL := os.Getenv("APP_URL"); appURL != "" {
		c.App.URL = strings.TrimSuffix(appURL, "/")
	}
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		c.Admin.Email = email
	}
	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		c.Admin.Password = password
	}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		c.Email.Host = host
		c.Email.Enabled = true
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Email.Port = p
		}
	}
	if user := os.Getenv("SMTP_USER"); user != "" {
		c.Email.Username = user
	}
	if password := os.Getenv("SMTP_PASSWORD"); password != "" {
		c.Email.Password = password
	}
	if from := os.Getenv("EMAIL_FROM"); from != "" {
		c.Email.From = from
	}
	if id := os.Getenv("VK_CLIENT_ID"); id != "" {
		c.OAuth.VK.ClientID = id
	}
	if secret := os.Getenv("VK_CLIENT_SECRET"); secret != "" {
		c.OAuth.VK.ClientSecret = secret
	}
	if key := os.Getenv("OAUTH_COOKIE_HASH"); key != "" {
		c.OAuth.CookieHash = key
	}
	if key := os.Getenv("MAP_API_KEY"); key != "" {
		c.Map.APIKey = key
	}
	if v := os.Getenv("PARTICIPATION_REQUIRE_APPROVAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Participation.RequireApproval = b
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		// Password format: :password or user:password
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}

// Address returns host:port for the HTTP listener.
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
