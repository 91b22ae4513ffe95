package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHAIN_ID", "")
	t.Setenv("BOXES_CONTRACT_ADDRESS_8453", "")
	t.Setenv("BOXES_CONTRACT_ADDRESS_84532", "")
	t.Setenv("OWNERSHIP_BACKEND", "")
	t.Setenv("KAFKA_ENABLED", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")
	t.Setenv("OWNERSHIP_TIMEOUT_SECONDS", "")
	t.Setenv("KAFKA_TOPIC_VERIFICATIONS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("INDEXER_URL", "")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg := Load()

	assert.Equal(t, int64(8453), cfg.Chain.ChainID)
	assert.Equal(t, "", cfg.Chain.ContractAddress())
	assert.Equal(t, BackendIndexer, cfg.Ownership.Backend)
	assert.Equal(t, 10*time.Second, cfg.Ownership.Timeout)
	assert.Equal(t, 60, cfg.RateLimit.PerMinute)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "boxes.wallet.verified", cfg.Kafka.Topics.Verifications)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.RateLimit.TrustedProxies)
}

func TestLoad_IndexerURLRequired(t *testing.T) {
	t.Setenv("OWNERSHIP_BACKEND", "")
	t.Setenv("INDEXER_URL", "")

	cfg := Load()

	assert.Equal(t, "", cfg.Ownership.IndexerURL)
	err := cfg.Ownership.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INDEXER_URL")
}

func TestLoad_PerChainContract(t *testing.T) {
	t.Setenv("CHAIN_ID", "84532")
	t.Setenv("BOXES_CONTRACT_ADDRESS_8453", "0xMainnet")
	t.Setenv("BOXES_CONTRACT_ADDRESS_84532", " 0xSepolia ")

	cfg := Load()

	assert.Equal(t, "0xSepolia", cfg.Chain.ContractAddress())
	assert.Equal(t, "0xMainnet", cfg.Chain.ContractAddresses[8453])
}

func TestLoad_UnknownActiveChain(t *testing.T) {
	t.Setenv("CHAIN_ID", "31337")
	t.Setenv("BOXES_CONTRACT_ADDRESS_31337", "0xLocal")

	cfg := Load()

	assert.Equal(t, "0xLocal", cfg.Chain.ContractAddress())
}

func TestLoad_ListsAndFlags(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://warpcast.com,https://farcaster.xyz")
	t.Setenv("OWNERSHIP_BACKEND", "CHAIN")
	t.Setenv("INDEXER_URL", "https://indexer.example/")
	t.Setenv("TRUSTED_PROXIES", "10.1.0.0/16, 192.0.2.10")

	cfg := Load()

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"https://warpcast.com", "https://farcaster.xyz"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, BackendChain, cfg.Ownership.Backend)
	assert.Equal(t, "https://indexer.example", cfg.Ownership.IndexerURL)
	assert.Equal(t, []string{"10.1.0.0/16", "192.0.2.10"}, cfg.RateLimit.TrustedProxies)
}

func TestOwnershipConfig_Validate(t *testing.T) {
	require.NoError(t, OwnershipConfig{Backend: BackendIndexer, IndexerURL: "http://x"}.Validate())
	require.NoError(t, OwnershipConfig{Backend: BackendChain, RPCURL: "http://x"}.Validate())
	assert.Error(t, OwnershipConfig{Backend: BackendIndexer}.Validate())
	assert.Error(t, OwnershipConfig{Backend: BackendChain}.Validate())
	assert.Error(t, OwnershipConfig{Backend: "graph"}.Validate())
}
