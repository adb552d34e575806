package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const defaultConfigFile = "config.yaml"

type Config struct {
	AppEnv     string `koanf:"app_env"`
	AppPort    string `koanf:"app_port"`
	CORSOrigin string `koanf:"cors_origin"`

	DBHost     string `koanf:"db_host"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`
	DBPort     string `koanf:"db_port"`
	DBSSLMode  string `koanf:"db_sslmode"`

	JWTSecret string `koanf:"jwt_secret"`

	// AdminEmail and AdminPassword seed the first back-office account.
	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`

	// Pricing
	TaxRate               float64 `koanf:"tax_rate"`
	OnlineShippingFee     float64 `koanf:"online_shipping_fee"`
	FreeShippingThreshold float64 `koanf:"free_shipping_threshold"`

	// Inventory
	LowStockThreshold int  `koanf:"low_stock_threshold"`
	StrictStock       bool `koanf:"strict_stock"`

	PaymentKeyID     string `koanf:"payment_key_id"`
	PaymentKeySecret string `koanf:"payment_key_secret"`
	PaymentBaseURL   string `koanf:"payment_base_url"`

	ReceiptQRSize  int    `koanf:"receipt_qr_size"`
	ReceiptQRLevel string `koanf:"receipt_qr_level"`
}

func defaults() *Config {
	return &Config{
		AppEnv:                "development",
		AppPort:               "8080",
		CORSOrigin:            "http://localhost:3000",
		DBPort:                "5432",
		DBSSLMode:             "disable",
		TaxRate:               0.05,
		OnlineShippingFee:     40,
		FreeShippingThreshold: 500,
		LowStockThreshold:     5,
		PaymentBaseURL:        "https://api.razorpay.com/v1",
		ReceiptQRSize:         256,
		ReceiptQRLevel:        "M",
	}
}

// LoadConfig reads .env into the process environment, then layers
// config.yaml (when present) and environment variables over defaults.
// Environment variables win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = defaultConfigFile
	}
	return load(path)
}

func load(path string) (*Config, error) {
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(key), value
		},
	}), nil); err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.DBHost == "" {
		return nil, errors.New("DB_HOST is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
