package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Sheets   SheetsConfig   `yaml:"sheets"`
	Auth     AuthConfig     `yaml:"auth"`
	Drafts   DraftsConfig   `yaml:"drafts"`
	Log      LogConfig      `yaml:"log"`
	Users    []User         `yaml:"users"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// StorageConfig points at the object-storage collaborator that keeps
// uploaded attachments.
type StorageConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

// SheetsConfig points at the spreadsheet bridge that mirrors submission
// rows, plus the sheet names for each sink group.
type SheetsConfig struct {
	APIURL        string `yaml:"api_url"`
	APIToken      string `yaml:"api_token"`
	SpreadsheetID string `yaml:"spreadsheet_id"`
	PoliciesSheet string `yaml:"policies_sheet"`
	PaymentSheet  string `yaml:"payment_sheet"`
	PlansSheet    string `yaml:"plans_sheet"`
	RetryMax      int    `yaml:"retry_max"`
	RetryBaseMs   int    `yaml:"retry_base_ms"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type DraftsConfig struct {
	ListLimit int `yaml:"list_limit"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// User is an operator account. Password may be a bcrypt hash or, for
// accounts that predate hashing, the plaintext secret itself.
type User struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
}

// Load reads the yaml config file (optional), applies environment
// overrides for secrets and destinations, and fills defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Env-only deployment; everything comes from overrides below.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("SHEETS_API_URL"); v != "" {
		cfg.Sheets.APIURL = v
	}
	if v := os.Getenv("SHEETS_API_TOKEN"); v != "" {
		cfg.Sheets.APIToken = v
	}
	if v := os.Getenv("SHEETS_SPREADSHEET_ID"); v != "" {
		cfg.Sheets.SpreadsheetID = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}
	if cfg.Storage.ExpireDays == 0 {
		cfg.Storage.ExpireDays = 7
	}
	if cfg.Sheets.PoliciesSheet == "" {
		cfg.Sheets.PoliciesSheet = "Polizas"
	}
	if cfg.Sheets.PaymentSheet == "" {
		cfg.Sheets.PaymentSheet = "Pagos"
	}
	if cfg.Sheets.PlansSheet == "" {
		cfg.Sheets.PlansSheet = "Suplementarios"
	}
	if cfg.Sheets.RetryMax == 0 {
		cfg.Sheets.RetryMax = 3
	}
	if cfg.Sheets.RetryBaseMs == 0 {
		cfg.Sheets.RetryBaseMs = 1000
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Drafts.ListLimit == 0 {
		cfg.Drafts.ListLimit = 100
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FindUser finds an operator account by email.
func (c *Config) FindUser(email string) *User {
	for i := range c.Users {
		if c.Users[i].Email == email {
			return &c.Users[i]
		}
	}
	return nil
}
