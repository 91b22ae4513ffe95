package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendIndexer = "indexer"
	BackendChain   = "chain"

	// contractEnvPrefix is suffixed with the chain id, e.g. BOXES_CONTRACT_ADDRESS_8453
	contractEnvPrefix = "BOXES_CONTRACT_ADDRESS_"
)

// KnownChains are the chains the mini app ships contract addresses for.
var KnownChains = []int64{8453, 84532}

type Config struct {
	Server    ServerConfig
	Chain     ChainConfig
	Ownership OwnershipConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

type ChainConfig struct {
	ChainID int64
	// ContractAddresses maps chain id to the boxes collection address
	ContractAddresses map[int64]string
}

type OwnershipConfig struct {
	Backend         string
	IndexerURL      string
	IndexerClientID string
	IndexerSecret   string
	RPCURL          string
	Timeout         time.Duration
}

type RedisConfig struct {
	Addr string
}

type RateLimitConfig struct {
	PerMinute int
	Window    time.Duration
	// TrustedProxies lists CIDRs or IPs allowed to set X-Forwarded-For
	TrustedProxies []string
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	Verifications string
}

type LogConfig struct {
	Dir string
}

func Load() *Config {
	chainID := getEnvInt64("CHAIN_ID", 8453)

	contracts := make(map[int64]string)
	for _, id := range KnownChains {
		if addr := strings.TrimSpace(os.Getenv(contractEnv(id))); addr != "" {
			contracts[id] = addr
		}
	}
	// the active chain may be outside KnownChains (local devnets)
	if _, ok := contracts[chainID]; !ok {
		if addr := strings.TrimSpace(os.Getenv(contractEnv(chainID))); addr != "" {
			contracts[chainID] = addr
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", ":8080"),
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Chain: ChainConfig{
			ChainID:           chainID,
			ContractAddresses: contracts,
		},
		Ownership: OwnershipConfig{
			Backend:         strings.ToLower(getEnv("OWNERSHIP_BACKEND", BackendIndexer)),
			IndexerURL:      strings.TrimRight(getEnv("INDEXER_URL", ""), "/"),
			IndexerClientID: getEnv("INDEXER_CLIENT_ID", ""),
			IndexerSecret:   getEnv("INDEXER_SECRET_KEY", ""),
			RPCURL:          getEnv("RPC_URL", "https://mainnet.base.org"),
			Timeout:         time.Duration(getEnvInt("OWNERSHIP_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		RateLimit: RateLimitConfig{
			PerMinute:      getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
			Window:         time.Minute,
			TrustedProxies: getEnvList("TRUSTED_PROXIES", nil),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Topics: TopicConfig{
				Verifications: getEnv("KAFKA_TOPIC_VERIFICATIONS", "boxes.wallet.verified"),
			},
		},
		Log: LogConfig{
			Dir: getEnv("LOG_DIR", "logs"),
		},
	}
}

// ContractAddress returns the boxes contract for the active chain, or "" if unset.
func (c ChainConfig) ContractAddress() string {
	return c.ContractAddresses[c.ChainID]
}

func (c OwnershipConfig) Validate() error {
	switch c.Backend {
	case BackendIndexer:
		if c.IndexerURL == "" {
			return fmt.Errorf("INDEXER_URL not set (required for the indexer backend)")
		}
	case BackendChain:
		if c.RPCURL == "" {
			return fmt.Errorf("RPC_URL not set")
		}
	default:
		return fmt.Errorf("unknown OWNERSHIP_BACKEND %q", c.Backend)
	}
	return nil
}

func contractEnv(chainID int64) string {
	return contractEnvPrefix + strconv.FormatInt(chainID, 10)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
