package program

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediaboard/mediaboard/config"
	clienterrors "github.com/mediaboard/mediaboard/errors"
)

// testProgramID is a valid base58 program address used for offline tests.
var testProgramID = solana.MustPublicKeyFromBase58("CuRF5bMpCoatpfGTKy7H99JoAseKEUCrENzFv9yHTnG4")

// fakeRPC scripts the RPC surface the client depends on.
type fakeRPC struct {
	accountRes   *rpc.GetAccountInfoResult
	accountErr   error
	accountCalls int

	blockhashErr   error
	blockhashCalls int

	sentTx    *solana.Transaction
	sendSig   solana.Signature
	sendErr   error
	sendCalls int

	health      string
	healthErr   error
	healthCalls int
}

func (f *fakeRPC) GetAccountInfoWithOpts(_ context.Context, _ solana.PublicKey, _ *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	f.accountCalls++
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	return f.accountRes, nil
}

func (f *fakeRPC) GetLatestBlockhash(_ context.Context, _ rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	f.blockhashCalls++
	if f.blockhashErr != nil {
		return nil, f.blockhashErr
	}
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{
			Blockhash: solana.Hash{1, 2, 3},
		},
	}, nil
}

func (f *fakeRPC) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	f.sendCalls++
	f.sentTx = tx
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	return f.sendSig, nil
}

func (f *fakeRPC) GetHealth(_ context.Context) (string, error) {
	f.healthCalls++
	if f.healthErr != nil {
		return "", f.healthErr
	}
	return f.health, nil
}

func newTestClient(t *testing.T, rpcClient rpcAPI) (*Client, solana.PrivateKey, solana.PrivateKey) {
	t.Helper()

	record := solana.NewWallet().PrivateKey
	payer := solana.NewWallet().PrivateKey

	client := &Client{
		rpc:       rpcClient,
		programID: testProgramID,
		record:    record,
		payer:     payer.PublicKey(),
		signer: func(key solana.PublicKey) *solana.PrivateKey {
			if key.Equals(payer.PublicKey()) {
				k := payer
				return &k
			}
			return nil
		},
		commitment: rpc.CommitmentProcessed,
		retries:    1,
		logger:     zerolog.Nop(),
	}
	return client, record, payer
}

// buildRecordData builds raw account bytes the way the program lays
// them out: discriminator(8) + total(u64 LE) + Vec<Entry>, each entry a
// Borsh string followed by a 32-byte pubkey.
func buildRecordData(total uint64, entries []Entry) []byte {
	data := make([]byte, 0, 64)
	data = append(data, recordDiscriminator...)

	totalBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(totalBytes, total)
	data = append(data, totalBytes...)

	countBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBytes, uint32(len(entries)))
	data = append(data, countBytes...)

	for _, e := range entries {
		linkLen := make([]byte, 4)
		binary.LittleEndian.PutUint32(linkLen, uint32(len(e.Link)))
		data = append(data, linkLen...)
		data = append(data, []byte(e.Link)...)
		data = append(data, e.SubmittedBy.Bytes()...)
	}
	return data
}

// accountInfoResult wraps raw account bytes in the RPC response shape
// via its JSON decoding path.
func accountInfoResult(t *testing.T, data []byte) *rpc.GetAccountInfoResult {
	t.Helper()

	payload := fmt.Sprintf(
		`{"value":{"data":[%q,"base64"],"owner":%q,"lamports":1000,"executable":false,"rentEpoch":0}}`,
		base64.StdEncoding.EncodeToString(data),
		testProgramID.String(),
	)
	var out rpc.GetAccountInfoResult
	require.NoError(t, json.Unmarshal([]byte(payload), &out))
	return &out
}

func TestFetchRecordUninitialized(t *testing.T) {
	t.Run("not found error", func(t *testing.T) {
		client, _, _ := newTestClient(t, &fakeRPC{accountErr: rpc.ErrNotFound})

		state, err := client.FetchRecord(context.Background())
		require.NoError(t, err)
		assert.False(t, state.Initialized)
		assert.Empty(t, state.Entries)
	})

	t.Run("nil value", func(t *testing.T) {
		client, _, _ := newTestClient(t, &fakeRPC{accountRes: &rpc.GetAccountInfoResult{}})

		state, err := client.FetchRecord(context.Background())
		require.NoError(t, err)
		assert.False(t, state.Initialized)
	})
}

func TestFetchRecordPopulated(t *testing.T) {
	submitter := solana.NewWallet().PublicKey()
	entries := []Entry{
		{Link: "https://x/a.gif", SubmittedBy: submitter},
		{Link: "https://x/b.gif", SubmittedBy: submitter},
	}
	fake := &fakeRPC{accountRes: accountInfoResult(t, buildRecordData(2, entries))}
	client, _, _ := newTestClient(t, fake)

	state, err := client.FetchRecord(context.Background())
	require.NoError(t, err)
	assert.True(t, state.Initialized)
	assert.Equal(t, uint64(2), state.Total)
	assert.Equal(t, entries, state.Entries)
}

func TestFetchRecordEmpty(t *testing.T) {
	fake := &fakeRPC{accountRes: accountInfoResult(t, buildRecordData(0, nil))}
	client, _, _ := newTestClient(t, fake)

	state, err := client.FetchRecord(context.Background())
	require.NoError(t, err)
	assert.True(t, state.Initialized)
	assert.Empty(t, state.Entries)
}

func TestFetchRecordIdempotent(t *testing.T) {
	entries := []Entry{{Link: "https://x/a.gif", SubmittedBy: solana.NewWallet().PublicKey()}}
	fake := &fakeRPC{accountRes: accountInfoResult(t, buildRecordData(1, entries))}
	client, _, _ := newTestClient(t, fake)

	first, err := client.FetchRecord(context.Background())
	require.NoError(t, err)
	second, err := client.FetchRecord(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFetchRecordReadErrors(t *testing.T) {
	t.Run("rpc failure is a read error, not absence", func(t *testing.T) {
		client, _, _ := newTestClient(t, &fakeRPC{accountErr: fmt.Errorf("connection reset")})

		_, err := client.FetchRecord(context.Background())
		require.Error(t, err)
		assert.True(t, clienterrors.IsCode(err, clienterrors.ErrCodeRead))
	})

	t.Run("foreign account discriminator", func(t *testing.T) {
		data := buildRecordData(0, nil)
		copy(data[:8], []byte{9, 9, 9, 9, 9, 9, 9, 9})
		client, _, _ := newTestClient(t, &fakeRPC{accountRes: accountInfoResult(t, data)})

		_, err := client.FetchRecord(context.Background())
		require.Error(t, err)
		assert.True(t, clienterrors.IsCode(err, clienterrors.ErrCodeRead))
	})

	t.Run("truncated account data", func(t *testing.T) {
		client, _, _ := newTestClient(t, &fakeRPC{accountRes: accountInfoResult(t, []byte{1, 2, 3})})

		_, err := client.FetchRecord(context.Background())
		require.Error(t, err)
		assert.True(t, clienterrors.IsCode(err, clienterrors.ErrCodeRead))
	})
}

func TestInitializeBuildsCoSignedTransaction(t *testing.T) {
	fake := &fakeRPC{sendSig: solana.Signature{7}}
	client, record, payer := newTestClient(t, fake)

	sig, err := client.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solana.Signature{7}, sig)
	require.NotNil(t, fake.sentTx)

	tx := fake.sentTx
	// record + user both sign; record proves control of the new address
	assert.EqualValues(t, 2, tx.Message.Header.NumRequiredSignatures)
	require.NoError(t, tx.VerifySignatures())

	keys := tx.Message.AccountKeys
	assert.Contains(t, keys, record.PublicKey())
	assert.Contains(t, keys, payer.PublicKey())
	assert.Contains(t, keys, solana.SystemProgramID)
	assert.Contains(t, keys, testProgramID)

	require.Len(t, tx.Message.Instructions, 1)
	assert.Equal(t, instructionDiscriminator(ProcedureInitialize), []byte(tx.Message.Instructions[0].Data))
}

func TestAppendBuildsTransaction(t *testing.T) {
	fake := &fakeRPC{sendSig: solana.Signature{8}}
	client, record, payer := newTestClient(t, fake)

	link := "https://x/b.gif"
	sig, err := client.Append(context.Background(), link)
	require.NoError(t, err)
	assert.Equal(t, solana.Signature{8}, sig)
	require.NotNil(t, fake.sentTx)

	tx := fake.sentTx
	// only the user signs an append
	assert.EqualValues(t, 1, tx.Message.Header.NumRequiredSignatures)
	require.NoError(t, tx.VerifySignatures())
	assert.Contains(t, tx.Message.AccountKeys, record.PublicKey())
	assert.Contains(t, tx.Message.AccountKeys, payer.PublicKey())

	// data = sighash + Borsh string
	expected := instructionDiscriminator(ProcedureAppend)
	linkLen := make([]byte, 4)
	binary.LittleEndian.PutUint32(linkLen, uint32(len(link)))
	expected = append(expected, linkLen...)
	expected = append(expected, []byte(link)...)

	require.Len(t, tx.Message.Instructions, 1)
	assert.True(t, bytes.Equal(expected, tx.Message.Instructions[0].Data))
}

func TestAppendEmptyLinkMakesNoRemoteCall(t *testing.T) {
	fake := &fakeRPC{}
	client, _, _ := newTestClient(t, fake)

	_, err := client.Append(context.Background(), "")
	require.Error(t, err)
	assert.True(t, clienterrors.IsCode(err, clienterrors.ErrCodeValidation))
	assert.Zero(t, fake.blockhashCalls)
	assert.Zero(t, fake.sendCalls)
}

func TestInvokeFailures(t *testing.T) {
	t.Run("send rejection carries remote diagnostic", func(t *testing.T) {
		fake := &fakeRPC{sendErr: fmt.Errorf("custom program error: 0x1")}
		client, _, _ := newTestClient(t, fake)

		_, err := client.Append(context.Background(), "https://x/c.gif")
		require.Error(t, err)
		assert.True(t, clienterrors.IsCode(err, clienterrors.ErrCodeInvoke))
		assert.Contains(t, err.Error(), "custom program error: 0x1")
	})

	t.Run("blockhash failure", func(t *testing.T) {
		fake := &fakeRPC{blockhashErr: fmt.Errorf("rpc unavailable")}
		client, _, _ := newTestClient(t, fake)

		_, err := client.Initialize(context.Background())
		require.Error(t, err)
		assert.True(t, clienterrors.IsCode(err, clienterrors.ErrCodeInvoke))
		assert.Zero(t, fake.sendCalls)
	})
}

func TestVerifyConnection(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		fake := &fakeRPC{health: "ok"}
		client, _, _ := newTestClient(t, fake)

		require.NoError(t, client.VerifyConnection(context.Background()))
		assert.Equal(t, 1, fake.healthCalls)
	})

	t.Run("unhealthy", func(t *testing.T) {
		fake := &fakeRPC{health: "behind"}
		client, _, _ := newTestClient(t, fake)

		err := client.VerifyConnection(context.Background())
		require.Error(t, err)
	})
}

func TestNewClientValidation(t *testing.T) {
	record := solana.NewWallet().PrivateKey
	payer := solana.NewWallet()
	signer := func(solana.PublicKey) *solana.PrivateKey { return nil }

	baseCfg := config.Config{
		RPCURL:     "http://127.0.0.1:8899",
		Commitment: "processed",
		ProgramID:  testProgramID.String(),
	}

	t.Run("valid", func(t *testing.T) {
		client, err := NewClient(baseCfg, record, payer.PublicKey(), signer, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, record.PublicKey(), client.RecordAddress())
	})

	t.Run("bad program id", func(t *testing.T) {
		cfg := baseCfg
		cfg.ProgramID = "not-base58!"
		_, err := NewClient(cfg, record, payer.PublicKey(), signer, zerolog.Nop())
		assert.True(t, clienterrors.IsCode(err, clienterrors.ErrCodeConfig))
	})

	t.Run("missing record keypair", func(t *testing.T) {
		_, err := NewClient(baseCfg, nil, payer.PublicKey(), signer, zerolog.Nop())
		assert.True(t, clienterrors.IsCode(err, clienterrors.ErrCodeConfig))
	})

	t.Run("missing signer", func(t *testing.T) {
		_, err := NewClient(baseCfg, record, payer.PublicKey(), nil, zerolog.Nop())
		assert.True(t, clienterrors.IsCode(err, clienterrors.ErrCodeConfig))
	})

	t.Run("bad commitment", func(t *testing.T) {
		cfg := baseCfg
		cfg.Commitment = "instant"
		_, err := NewClient(cfg, record, payer.PublicKey(), signer, zerolog.Nop())
		assert.True(t, clienterrors.IsCode(err, clienterrors.ErrCodeConfig))
	})
}
