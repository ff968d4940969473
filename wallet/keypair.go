package wallet

import (
	"context"
	"os"

	"github.com/gagliardetto/solana-go"

	clienterrors "github.com/mediaboard/mediaboard/errors"
	"github.com/mediaboard/mediaboard/keys"
)

// KeypairProvider is a file-backed Provider over a solana-keygen
// keypair. Presence of the key file stands in for a prior trusted
// grant: silent connects succeed only when the file already exists.
type KeypairProvider struct {
	path string
	key  solana.PrivateKey
}

// NewKeypairProvider creates a provider reading the keypair at path.
// The file is not touched until Connect.
func NewKeypairProvider(path string) *KeypairProvider {
	return &KeypairProvider{path: path}
}

// Connect loads the keypair and returns its public key.
func (p *KeypairProvider) Connect(ctx context.Context, opts ConnectOpts) (solana.PublicKey, error) {
	if err := ctx.Err(); err != nil {
		return solana.PublicKey{}, err
	}

	if _, err := os.Stat(p.path); os.IsNotExist(err) {
		if opts.OnlyIfTrusted {
			return solana.PublicKey{}, clienterrors.NewUserRejectedError("no trusted wallet keypair present")
		}
		return solana.PublicKey{}, clienterrors.NewProviderMissingError("wallet keypair not found at " + p.path)
	}

	key, err := keys.LoadKeypair(p.path)
	if err != nil {
		return solana.PublicKey{}, clienterrors.WrapClientError(err, clienterrors.ErrCodeProviderMissing, "failed to load wallet keypair")
	}

	p.key = key
	return key.PublicKey(), nil
}

// Signer returns a getter answering only for this provider's key.
func (p *KeypairProvider) Signer() func(key solana.PublicKey) *solana.PrivateKey {
	return func(key solana.PublicKey) *solana.PrivateKey {
		if p.key != nil && key.Equals(p.key.PublicKey()) {
			k := p.key
			return &k
		}
		return nil
	}
}
