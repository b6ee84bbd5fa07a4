package config

import (
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Ledger drivers.
const (
	LedgerDriverEVM    = "evm"
	LedgerDriverMemory = "memory"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL     string
	Port            string
	IsProduction    bool
	EnableDBCheck   bool
	JWTSecret       string
	FrontendBaseURL string
	RateLimit       string // limiter formatted rate, e.g. "30-M"
	PosthogAPIKey   string

	MetricsNamespace string

	// Ledger
	LedgerDriver          string
	LedgerRPCURL          string
	LedgerContractAddress string
	LedgerChainID         *big.Int
	CatalogKind           string
	SignerPrivateKey      string
	SignerAccount         string // Active account for the memory driver

	ConfirmationTimeout time.Duration // Zero waits until the ledger answers
	RefreshTimeout      time.Duration
}

// Deployment identifies the persisted state of this catalog, one per contract.
func (c *Config) Deployment() string {
	if c.LedgerDriver == LedgerDriverMemory {
		return c.CatalogKind + ":memory"
	}
	return c.CatalogKind + ":" + strings.ToLower(c.LedgerContractAddress)
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("RATE_LIMIT", "30-M")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("METRICS_NAMESPACE", "catalog_sync")
	viper.SetDefault("LEDGER_DRIVER", LedgerDriverMemory)
	viper.SetDefault("LEDGER_RPC_URL", "http://localhost:8545")
	viper.SetDefault("LEDGER_CONTRACT_ADDRESS", "")
	viper.SetDefault("LEDGER_CHAIN_ID", "1337")
	viper.SetDefault("CATALOG_KIND", "course")
	viper.SetDefault("SIGNER_PRIVATE_KEY", "")
	viper.SetDefault("SIGNER_ACCOUNT", "0x0000000000000000000000000000000000000001")
	viper.SetDefault("CONFIRMATION_TIMEOUT", "2m")
	viper.SetDefault("REFRESH_TIMEOUT", "15s")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:           viper.GetString("PGSQL_URL"),
		Port:                  viper.GetString("PORT"),
		IsProduction:          viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:         viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:             viper.GetString("JWT_SECRET"),
		FrontendBaseURL:       viper.GetString("FRONTEND_BASE_URL"),
		RateLimit:             viper.GetString("RATE_LIMIT"),
		PosthogAPIKey:         viper.GetString("POSTHOG_API_KEY"),
		MetricsNamespace:      viper.GetString("METRICS_NAMESPACE"),
		LedgerDriver:          strings.ToLower(viper.GetString("LEDGER_DRIVER")),
		LedgerRPCURL:          viper.GetString("LEDGER_RPC_URL"),
		LedgerContractAddress: viper.GetString("LEDGER_CONTRACT_ADDRESS"),
		CatalogKind:           strings.ToLower(viper.GetString("CATALOG_KIND")),
		SignerPrivateKey:      viper.GetString("SIGNER_PRIVATE_KEY"),
		SignerAccount:         viper.GetString("SIGNER_ACCOUNT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL not set. Catalog snapshots will not be persisted.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = defaultJWTSecret
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	var err error
	if cfg.ConfirmationTimeout, err = parseDuration("CONFIRMATION_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.RefreshTimeout, err = parseDuration("REFRESH_TIMEOUT"); err != nil {
		return nil, err
	}

	chainID, ok := new(big.Int).SetString(strings.TrimSpace(viper.GetString("LEDGER_CHAIN_ID")), 10)
	if !ok || chainID.Sign() <= 0 {
		return nil, fmt.Errorf("invalid LEDGER_CHAIN_ID %q", viper.GetString("LEDGER_CHAIN_ID"))
	}
	cfg.LedgerChainID = chainID

	switch cfg.LedgerDriver {
	case LedgerDriverMemory:
	case LedgerDriverEVM:
		if cfg.LedgerContractAddress == "" {
			return nil, fmt.Errorf("LEDGER_CONTRACT_ADDRESS is required for the %s driver", LedgerDriverEVM)
		}
		if cfg.SignerPrivateKey == "" {
			return nil, fmt.Errorf("SIGNER_PRIVATE_KEY is required for the %s driver", LedgerDriverEVM)
		}
	default:
		return nil, fmt.Errorf("unknown LEDGER_DRIVER %q (want %s or %s)", cfg.LedgerDriver, LedgerDriverEVM, LedgerDriverMemory)
	}

	return cfg, nil
}

// parseDuration accepts Go durations; "0" disables the bound.
func parseDuration(key string) (time.Duration, error) {
	raw := strings.TrimSpace(viper.GetString(key))
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q: want a non-negative duration such as 30s", key, raw)
	}
	return d, nil
}
