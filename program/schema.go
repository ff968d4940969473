// Package program is the typed boundary to the on-chain board program.
// The program owns a single record account holding the append-only
// entry list and exposes two procedures, initialize and append,
// following Anchor conventions: 8-byte sha256 discriminators and Borsh
// encoded account and instruction data.
package program

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Remote procedure names.
const (
	ProcedureInitialize = "initialize"
	ProcedureAppend     = "append"
)

// recordAccountName is the account type name declared in the program's
// interface schema.
const recordAccountName = "BoardRecord"

var (
	initializeDiscriminator = instructionDiscriminator(ProcedureInitialize)
	appendDiscriminator     = instructionDiscriminator(ProcedureAppend)
	recordDiscriminator     = accountDiscriminator(recordAccountName)
)

// instructionDiscriminator derives the Anchor instruction sighash:
// sha256("global:<name>")[:8].
func instructionDiscriminator(name string) []byte {
	h := sha256.Sum256([]byte("global:" + name))
	return h[:8]
}

// accountDiscriminator derives the Anchor account discriminator:
// sha256("account:<Name>")[:8].
func accountDiscriminator(name string) []byte {
	h := sha256.Sum256([]byte("account:" + name))
	return h[:8]
}

// Entry is one submitted link with its submitter identity. Entries are
// immutable once read; the client only ever appends new ones.
type Entry struct {
	Link        string
	SubmittedBy solana.PublicKey
}

// RecordState is the decoded state of the backing record. A zero value
// means the account does not exist yet (Uninitialized); read failures
// are reported as errors, never conflated with absence.
type RecordState struct {
	Initialized bool
	Total       uint64
	Entries     []Entry
}

// recordAccount mirrors the on-chain account layout after the 8-byte
// discriminator: total (u64 LE) followed by Vec<Entry>.
type recordAccount struct {
	Total   uint64
	Entries []Entry
}

// appendArgs is the Borsh-encoded argument block of the append
// procedure.
type appendArgs struct {
	Link string
}

func decodeRecord(data []byte) (RecordState, error) {
	if len(data) < 8 {
		return RecordState{}, fmt.Errorf("account data too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:8], recordDiscriminator) {
		return RecordState{}, fmt.Errorf("account is not a %s", recordAccountName)
	}

	var acc recordAccount
	if err := bin.NewBorshDecoder(data[8:]).Decode(&acc); err != nil {
		return RecordState{}, fmt.Errorf("failed to decode %s: %w", recordAccountName, err)
	}

	return RecordState{
		Initialized: true,
		Total:       acc.Total,
		Entries:     acc.Entries,
	}, nil
}

func encodeAppendData(link string) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(appendArgs{Link: link}); err != nil {
		return nil, fmt.Errorf("failed to encode append args: %w", err)
	}

	data := make([]byte, 0, 8+buf.Len())
	data = append(data, appendDiscriminator...)
	data = append(data, buf.Bytes()...)
	return data, nil
}
