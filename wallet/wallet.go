// Package wallet models the wallet provider as an injected capability.
// The provider hands out the user's public identity and a signing
// callback; it is never looked up as ambient global state.
package wallet

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	clienterrors "github.com/mediaboard/mediaboard/errors"
)

// ConnectOpts controls how a provider establishes a session.
type ConnectOpts struct {
	// OnlyIfTrusted asks the provider to reconnect without prompting
	// the user. Providers fail with USER_REJECTED when no prior trusted
	// grant exists.
	OnlyIfTrusted bool
}

// Provider is the external wallet boundary. Implementations must
// return ClientError codes PROVIDER_MISSING and USER_REJECTED for the
// corresponding conditions so callers can tell them apart.
type Provider interface {
	// Connect establishes access and returns the wallet's public identity.
	Connect(ctx context.Context, opts ConnectOpts) (solana.PublicKey, error)

	// Signer returns the key getter used to sign transactions, in the
	// form solana.Transaction.Sign expects. The getter answers nil for
	// keys the provider does not hold.
	Signer() func(key solana.PublicKey) *solana.PrivateKey
}

// Session tracks the authenticated identity for the lifetime of one
// client process. It starts unauthenticated; a successful connect
// transitions it and Disconnect tears it down.
type Session struct {
	provider  Provider
	identity  solana.PublicKey
	connected bool
	logger    zerolog.Logger
}

// NewSession creates a session over the given provider. A nil provider
// is a valid "extension not installed" state, surfaced on connect.
func NewSession(provider Provider, logger zerolog.Logger) *Session {
	return &Session{
		provider: provider,
		logger:   logger.With().Str("component", "wallet_session").Logger(),
	}
}

// ConnectSilently attempts reconnection without prompting the user.
// A missing provider or absent trusted grant is not an error: it
// reports ok=false and the caller stays unauthenticated.
func (s *Session) ConnectSilently(ctx context.Context) (solana.PublicKey, bool, error) {
	if s.provider == nil {
		return solana.PublicKey{}, false, nil
	}

	identity, err := s.provider.Connect(ctx, ConnectOpts{OnlyIfTrusted: true})
	if err != nil {
		if clienterrors.IsCode(err, clienterrors.ErrCodeProviderMissing) ||
			clienterrors.IsCode(err, clienterrors.ErrCodeUserRejected) {
			s.logger.Debug().Err(err).Msg("silent connect declined")
			return solana.PublicKey{}, false, nil
		}
		return solana.PublicKey{}, false, clienterrors.Wrap(err, "silent connect failed")
	}

	s.identity = identity
	s.connected = true
	s.logger.Info().Str("identity", identity.String()).Msg("wallet connected silently")
	return identity, true, nil
}

// ConnectInteractive establishes a session, prompting the user if the
// provider requires it. Fails with PROVIDER_MISSING when no provider is
// available and USER_REJECTED when the user declines.
func (s *Session) ConnectInteractive(ctx context.Context) (solana.PublicKey, error) {
	if s.provider == nil {
		return solana.PublicKey{}, clienterrors.NewProviderMissingError("no wallet provider available")
	}

	identity, err := s.provider.Connect(ctx, ConnectOpts{})
	if err != nil {
		return solana.PublicKey{}, err
	}

	s.identity = identity
	s.connected = true
	s.logger.Info().Str("identity", identity.String()).Msg("wallet connected")
	return identity, nil
}

// Identity returns the authenticated public identity, if any.
func (s *Session) Identity() (solana.PublicKey, bool) {
	return s.identity, s.connected
}

// Signer returns the signing callback for the connected wallet.
func (s *Session) Signer() (func(key solana.PublicKey) *solana.PrivateKey, error) {
	if !s.connected {
		return nil, clienterrors.NewValidationError("wallet is not connected")
	}
	return s.provider.Signer(), nil
}

// Disconnect ends the session and forgets the identity.
func (s *Session) Disconnect() {
	if s.connected {
		s.logger.Info().Str("identity", s.identity.String()).Msg("wallet disconnected")
	}
	s.identity = solana.PublicKey{}
	s.connected = false
}
