package program

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/mediaboard/mediaboard/config"
	clienterrors "github.com/mediaboard/mediaboard/errors"
)

// rpcAPI is the subset of the Solana RPC surface the client uses.
// *rpc.Client satisfies it; tests substitute a fake.
type rpcAPI interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	GetHealth(ctx context.Context) (string, error)
}

// SignerFunc resolves private keys for transaction signing, in the
// form solana.Transaction.Sign expects. The wallet session provides
// one for the authenticated identity.
type SignerFunc func(key solana.PublicKey) *solana.PrivateKey

// Client binds the program ID, the backing record handle, the RPC
// connection and the wallet signer into an object able to read typed
// account state and invoke the program's procedures through signed
// transactions. Endpoint and commitment are fixed at construction.
type Client struct {
	rpc        rpcAPI
	programID  solana.PublicKey
	record     solana.PrivateKey
	payer      solana.PublicKey
	signer     SignerFunc
	commitment rpc.CommitmentType
	timeout    time.Duration
	retries    int
	logger     zerolog.Logger
}

// NewClient builds a Client from configuration, the backing record
// keypair, and the authenticated wallet's identity and signer.
func NewClient(
	cfg config.Config,
	record solana.PrivateKey,
	payer solana.PublicKey,
	signer SignerFunc,
	logger zerolog.Logger,
) (*Client, error) {
	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		return nil, clienterrors.NewConfigError("invalid program id: " + cfg.ProgramID)
	}
	if len(record) == 0 {
		return nil, clienterrors.NewConfigError("backing record keypair is required")
	}
	if signer == nil {
		return nil, clienterrors.NewConfigError("transaction signer is required")
	}

	commitment, err := commitmentFromString(cfg.Commitment)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpc:        rpc.New(cfg.RPCURL),
		programID:  programID,
		record:     record,
		payer:      payer,
		signer:     signer,
		commitment: commitment,
		timeout:    time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		retries:    cfg.ConnectRetries,
		logger: logger.With().
			Str("component", "program_client").
			Str("program", programID.String()).
			Logger(),
	}, nil
}

func commitmentFromString(s string) (rpc.CommitmentType, error) {
	switch s {
	case "processed", "":
		return rpc.CommitmentProcessed, nil
	case "confirmed":
		return rpc.CommitmentConfirmed, nil
	case "finalized":
		return rpc.CommitmentFinalized, nil
	default:
		return "", clienterrors.NewConfigError("unknown commitment level: " + s)
	}
}

// RecordAddress returns the address of the backing record.
func (c *Client) RecordAddress() solana.PublicKey {
	return c.record.PublicKey()
}

// VerifyConnection checks endpoint health, retrying transient
// transport failures. Intended for session start only; invokes are
// never retried.
func (c *Client) VerifyConnection(ctx context.Context) error {
	return clienterrors.RetryWithBackoff(ctx, func() error {
		opCtx, cancel := c.opContext(ctx)
		defer cancel()

		health, err := c.rpc.GetHealth(opCtx)
		if err != nil {
			return clienterrors.NewRPCError("health check failed", err)
		}
		if health != "ok" {
			return clienterrors.NewRPCError("node is not healthy: "+health, nil)
		}
		return nil
	}, c.retries)
}

// FetchRecord reads the backing record at the configured commitment.
// A missing account is the normal Uninitialized state, not a failure;
// every other error is reported as a read error.
func (c *Client) FetchRecord(ctx context.Context) (RecordState, error) {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	res, err := c.rpc.GetAccountInfoWithOpts(opCtx, c.record.PublicKey(), &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			c.logger.Debug().Msg("backing record does not exist yet")
			return RecordState{}, nil
		}
		return RecordState{}, clienterrors.NewReadError("failed to read backing record", err)
	}
	if res == nil || res.Value == nil {
		return RecordState{}, nil
	}

	state, err := decodeRecord(res.Value.Data.GetBinary())
	if err != nil {
		return RecordState{}, clienterrors.NewReadError(err.Error(), err)
	}

	c.logger.Debug().
		Uint64("total", state.Total).
		Int("entries", len(state.Entries)).
		Msg("backing record fetched")
	return state, nil
}

// Initialize invokes the initialize procedure, creating the backing
// record. The record keypair co-signs to prove control of the address;
// the wallet signs as fee payer and authority.
func (c *Client) Initialize(ctx context.Context) (solana.Signature, error) {
	accounts := []*solana.AccountMeta{
		{PublicKey: c.record.PublicKey(), IsWritable: true, IsSigner: true},
		{PublicKey: c.payer, IsWritable: true, IsSigner: true},
		{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
	}
	return c.invoke(ctx, ProcedureInitialize, accounts, initializeDiscriminator, true)
}

// Append invokes the append procedure with the given link, signed by
// the wallet.
func (c *Client) Append(ctx context.Context, link string) (solana.Signature, error) {
	if link == "" {
		return solana.Signature{}, clienterrors.NewValidationError("link must not be empty")
	}

	data, err := encodeAppendData(link)
	if err != nil {
		return solana.Signature{}, clienterrors.WrapClientError(err, clienterrors.ErrCodeInternal, "failed to build append instruction")
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: c.record.PublicKey(), IsWritable: true, IsSigner: false},
		{PublicKey: c.payer, IsWritable: true, IsSigner: true},
	}
	return c.invoke(ctx, ProcedureAppend, accounts, data, false)
}

// invoke builds, signs and submits one transaction carrying a single
// program instruction. Failures carry the remote diagnostic and are
// never retried here; resubmission is a user action.
func (c *Client) invoke(
	ctx context.Context,
	procedure string,
	accounts []*solana.AccountMeta,
	data []byte,
	recordSigns bool,
) (solana.Signature, error) {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	blockhash, err := c.rpc.GetLatestBlockhash(opCtx, c.commitment)
	if err != nil {
		return solana.Signature{}, clienterrors.NewInvokeError("failed to get recent blockhash", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			solana.NewInstruction(c.programID, accounts, data),
		},
		blockhash.Value.Blockhash,
		solana.TransactionPayer(c.payer),
	)
	if err != nil {
		return solana.Signature{}, clienterrors.NewInvokeError("failed to build transaction", err)
	}

	if _, err := tx.Sign(c.keyGetter(recordSigns)); err != nil {
		return solana.Signature{}, clienterrors.NewInvokeError("failed to sign transaction", err)
	}

	sig, err := c.rpc.SendTransaction(opCtx, tx)
	if err != nil {
		return solana.Signature{}, clienterrors.NewInvokeError(err.Error(), err).
			WithContext("procedure", procedure)
	}

	c.logger.Info().
		Str("procedure", procedure).
		Str("signature", sig.String()).
		Msg("transaction submitted")
	return sig, nil
}

// keyGetter combines the wallet signer with the record keypair when
// the record must co-sign its own creation.
func (c *Client) keyGetter(recordSigns bool) func(key solana.PublicKey) *solana.PrivateKey {
	return func(key solana.PublicKey) *solana.PrivateKey {
		if recordSigns && key.Equals(c.record.PublicKey()) {
			k := c.record
			return &k
		}
		return c.signer(key)
	}
}

func (c *Client) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
