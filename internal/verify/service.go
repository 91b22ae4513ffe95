package verify

import (
	"context"
	"errors"
	"fmt"
	"ms-verify/internal/config"
	"ms-verify/internal/contest"
	"ms-verify/internal/logger"
	"ms-verify/internal/models"
	"ms-verify/internal/ownership"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPublishTimeout bounds how long an audit event may hold up a response.
const DefaultPublishTimeout = 2 * time.Second

// Client-facing messages for each failure tier.
const (
	MsgWalletRequired        = "Wallet address is required."
	MsgContractNotConfigured = "Boxes contract address not configured."
	MsgVerificationFailed    = "Failed to verify wallet."
)

var (
	ErrWalletRequired        = errors.New("wallet address is required")
	ErrContractNotConfigured = errors.New("boxes contract address not configured")
	ErrVerificationFailed    = errors.New("failed to verify wallet")
)

// PublicMessage returns the client-safe message for an error from Verify.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrWalletRequired):
		return MsgWalletRequired
	case errors.Is(err, ErrContractNotConfigured):
		return MsgContractNotConfigured
	default:
		return MsgVerificationFailed
	}
}

type EventPublisher interface {
	PublishVerification(ctx context.Context, event models.VerificationEvent) error
}

type Service struct {
	Lookup   ownership.Lookup
	Chain    config.ChainConfig
	Contests []contest.ID
	// Timeout bounds the ownership lookup; zero leaves it to the caller's context
	Timeout time.Duration
	Events  EventPublisher
	// PublishTimeout bounds each event publish, independent of the request context
	PublishTimeout time.Duration
	Logger         *logger.Logger

	now func() time.Time
}

func NewService(lookup ownership.Lookup, chain config.ChainConfig, log *logger.Logger) *Service {
	return &Service{
		Lookup:   lookup,
		Chain:    chain,
		Contests:       contest.Active,
		PublishTimeout: DefaultPublishTimeout,
		Logger:         log,
		now:            time.Now,
	}
}

// Verify reports whether walletAddress owns at least one box token of the
// active contests on the configured chain.
func (s *Service) Verify(ctx context.Context, walletAddress string) (verified bool, err error) {
	if strings.TrimSpace(walletAddress) == "" {
		return false, ErrWalletRequired
	}

	contractAddress := s.Chain.ContractAddress()
	if contractAddress == "" {
		s.Logger.Error("CONFIG", fmt.Sprintf("No boxes contract address for chain %d", s.Chain.ChainID))
		return false, ErrContractNotConfigured
	}

	wallet := strings.ToLower(strings.TrimSpace(walletAddress))
	tokenIDs := contest.TokenIDStrings(s.Contests)

	defer func() {
		if r := recover(); r != nil {
			s.logFailure(walletAddress, fmt.Errorf("panic: %v", r))
			verified, err = false, fmt.Errorf("%w: panic: %v", ErrVerificationFailed, r)
		}
	}()

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := s.clock()
	owners, err := s.Lookup.OwnersOf(ctx, contractAddress, tokenIDs)
	if err != nil {
		s.logFailure(walletAddress, err)
		return false, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	verified = ownsAny(owners, tokenIDs, wallet)
	s.Logger.LogVerification(wallet, verified, s.clock().Sub(start))

	s.publish(ctx, wallet, verified, contractAddress)
	return verified, nil
}

func ownsAny(owners map[string]models.TokenOwner, tokenIDs []string, wallet string) bool {
	for _, id := range tokenIDs {
		record, ok := owners[id]
		if !ok || record.Owner == "" {
			continue
		}
		if strings.ToLower(record.Owner) == wallet {
			return true
		}
	}
	return false
}

func (s *Service) logFailure(walletAddress string, err error) {
	s.Logger.Error("VERIFY", fmt.Sprintf("Error verifying wallet: %v (walletAddress=%s, contestIds=%v)",
		err, walletAddress, contest.Ints(s.Contests)))
}

func (s *Service) publish(ctx context.Context, wallet string, verified bool, contractAddress string) {
	if s.Events == nil {
		return
	}
	event := models.VerificationEvent{
		EventID:         uuid.New().String(),
		WalletAddress:   wallet,
		Verified:        verified,
		ContestIDs:      contest.Ints(s.Contests),
		ContractAddress: contractAddress,
		ChainID:         s.Chain.ChainID,
		CheckedAt:       s.clock().UTC(),
	}
	timeout := s.PublishTimeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.Events.PublishVerification(pubCtx, event); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish verification event for %s: %v", wallet, err))
	}
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
