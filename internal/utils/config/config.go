package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/xrpyield/bridge-backend/internal/types/environments"
)

type AppConfig struct {
	Environment environments.Environment
	ApiServer   ApiServerConfig
	Postgres    DBConnection
	SourceChain ChainConfig
	DestChain   ChainConfig
	Relayer     RelayerConfig
	Bridge      BridgeConfig
	Vault       VaultConfig
}

type ApiServerConfig struct {
	Port           string
	AllowedOrigins string
}

type DBConnection struct {
	Host string
	Port string
	User string
	Name string
	Pass string

	SSLMode string
}

// ChainConfig describes one RPC endpoint plus the contract the bridge
// interacts with on that chain.
type ChainConfig struct {
	RPCEndpoint  string
	ContractAddr string
	ChainID      int64
}

type RelayerConfig struct {
	// PrivateKey is the hex-encoded custodial key for destination-chain
	// credits. Left empty when the key is served from Vault instead.
	PrivateKey string
	GasLimit   uint64
	QueueSize  int
}

type BridgeConfig struct {
	ConfirmationTimeout time.Duration
	PollInterval        time.Duration
	ReconcilePeriod     string
	TerminalWebhookURL  string
}

type VaultConfig struct {
	Addr          string
	KVSecretPath  string
	Role          string
	RelayerKeyKey string
}

func New() *AppConfig {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// will not override env variables that already exist
	godotenv.Load(".env." + env)

	return &AppConfig{
		Environment: environments.Environment(env),
		ApiServer: ApiServerConfig{
			Port:           envVarOrDefault("API_PORT", "8080"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Postgres: DBConnection{
			Host:    os.Getenv("DB_HOST"),
			Port:    os.Getenv("DB_PORT"),
			User:    os.Getenv("DB_USER"),
			Name:    os.Getenv("DB_NAME"),
			Pass:    os.Getenv("DB_PASS"),
			SSLMode: os.Getenv("DB_SSL_MODE"),
		},
		SourceChain: ChainConfig{
			RPCEndpoint:  os.Getenv("SOURCE_CHAIN_RPC_ENDPOINT"),
			ContractAddr: os.Getenv("SOURCE_CUSTODY_CONTRACT_ADDR"),
			ChainID:      envVarAtoi64("SOURCE_CHAIN_ID", 1440002),
		},
		DestChain: ChainConfig{
			RPCEndpoint:  os.Getenv("DEST_CHAIN_RPC_ENDPOINT"),
			ContractAddr: os.Getenv("DEST_BRIDGE_CONTRACT_ADDR"),
			ChainID:      envVarAtoi64("DEST_CHAIN_ID", 11155111),
		},
		Relayer: RelayerConfig{
			PrivateKey: os.Getenv("RELAYER_PRIVATE_KEY"),
			GasLimit:   uint64(envVarAtoi64("RELAYER_GAS_LIMIT", 300000)),
			QueueSize:  int(envVarAtoi64("RELAYER_QUEUE_SIZE", 64)),
		},
		Bridge: BridgeConfig{
			ConfirmationTimeout: envVarDuration("BRIDGE_CONFIRMATION_TIMEOUT", 5*time.Minute),
			PollInterval:        envVarDuration("BRIDGE_POLL_INTERVAL", 5*time.Second),
			ReconcilePeriod:     envVarOrDefault("BRIDGE_RECONCILE_PERIOD", "@every 2m"),
			TerminalWebhookURL:  os.Getenv("BRIDGE_TERMINAL_WEBHOOK_URL"),
		},
		Vault: VaultConfig{
			Addr:          os.Getenv("VAULT_ADDR"),
			KVSecretPath:  os.Getenv("VAULT_KV_SECRET_PATH"),
			Role:          os.Getenv("VAULT_ROLE"),
			RelayerKeyKey: envVarOrDefault("VAULT_RELAYER_KEY_NAME", "relayer_private_key"),
		},
	}
}

func envVarOrDefault(envName, fallback string) string {
	value := os.Getenv(envName)
	if value == "" {
		return fallback
	}

	return value
}

func envVarAtoi64(envName string, fallback int64) int64 {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return fallback
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return fallback
	}

	return value
}

func envVarDuration(envName string, fallback time.Duration) time.Duration {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return fallback
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}

	return value
}
