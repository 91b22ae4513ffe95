package main

import (
	"bytes"
	"context"
	"errors"
	"ms-verify/internal/config"
	"ms-verify/internal/logger"
	"ms-verify/internal/models"
	"ms-verify/internal/ownership"
	"ms-verify/internal/verify"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(lookup ownership.Lookup) *verify.Service {
	chain := config.ChainConfig{ChainID: 8453, ContractAddresses: map[int64]string{8453: "0xBoxes"}}
	return verify.NewService(lookup, chain, logger.New(&bytes.Buffer{}))
}

func TestRun_Verified(t *testing.T) {
	svc := newTestService(ownership.Func(func(ctx context.Context, contract string, ids []string) (map[string]models.TokenOwner, error) {
		return map[string]models.TokenOwner{"2222": {Owner: "0xABC"}}, nil
	}))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), svc, "0xabc", &out))
	assert.JSONEq(t, `{"verified":true}`, out.String())
}

func TestRun_MissingWallet(t *testing.T) {
	svc := newTestService(ownership.Func(func(ctx context.Context, contract string, ids []string) (map[string]models.TokenOwner, error) {
		t.Fatal("lookup should not be called")
		return nil, nil
	}))

	var out bytes.Buffer
	err := run(context.Background(), svc, "", &out)
	assert.ErrorIs(t, err, verify.ErrWalletRequired)
	assert.JSONEq(t, `{"error":"Wallet address is required."}`, out.String())
}

func TestRun_LookupFailure(t *testing.T) {
	svc := newTestService(ownership.Func(func(ctx context.Context, contract string, ids []string) (map[string]models.TokenOwner, error) {
		return nil, errors.New("timeout")
	}))

	var out bytes.Buffer
	err := run(context.Background(), svc, "0xabc", &out)
	assert.ErrorIs(t, err, verify.ErrVerificationFailed)
	assert.JSONEq(t, `{"error":"Failed to verify wallet."}`, out.String())
}
